// Package csvlog manages the single shears-side CSV log file:
// header-enforced creation, one save's atomic open-append-close, and the
// transfer emitter's sequential open-read-close. It also provides the CSV
// preview used by the shears CLI.
package csvlog

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"watermelon-log-transfer/internal/gga"
)

// Header is the first row of every CSV log file.
const Header = "utc_time,latitude,longitude,fix_quality,num_satellites,hdop,altitude,geoid_height"

// Record is one parsed CSV row.
type Record struct {
	UTCTime       string
	LatDeg        float64
	LonDeg        float64
	FixQuality    int
	NumSatellites int
	HDOP          float64
	AltitudeM     float64
	GeoidHeightM  float64
}

// FormatRow renders a fix into the documented column order and precision:
// lat/lon 7 decimals, HDOP 1, altitude/geoid 3, others integer.
func FormatRow(fix gga.Fix) string {
	return fmt.Sprintf("%s,%.7f,%.7f,%d,%d,%.1f,%.3f,%.3f",
		fix.UTCTime, fix.LatDeg, fix.LonDeg, fix.FixQuality,
		fix.NumSatellites, fix.HDOP, fix.AltitudeM, fix.GeoidHeightM)
}

// EnsureFile creates path with just the header row if it does not already
// exist: the first attempt to stat the file covers the common case, and a
// missing file is then created with the header. It does not create missing
// parent directories or mount anything.
func EnsureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("csvlog: create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, Header); err != nil {
		return fmt.Errorf("csvlog: write header %s: %w", path, err)
	}
	return nil
}

// AppendRow opens path for append, writes one row, and closes it, an atomic
// operation from the caller's perspective.
func AppendRow(path string, fix gga.Fix) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("csvlog: open for append %s: %w", path, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, FormatRow(fix)); err != nil {
		return fmt.Errorf("csvlog: append row %s: %w", path, err)
	}
	return nil
}

// OpenForRead opens path for sequential read and reports its size, matching
// the shears log server's open-and-stat transition when starting a transfer.
// The caller owns closing the file.
func OpenForRead(path string) (f *os.File, size int64, err error) {
	f, err = os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// Clear truncates path back to just the header row. The control-channel
// protocol carries no host-acknowledgment message that would trigger this
// from the base side, so this is a primitive callers may invoke directly
// (e.g. an operator-triggered reset) rather than something the state
// machines call automatically.
func Clear(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("csvlog: clear %s: %w", path, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, Header); err != nil {
		return fmt.Errorf("csvlog: write header %s: %w", path, err)
	}
	return nil
}

// Tail reads the last n data rows (header excluded) of path.
func Tail(path string, n int) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvlog: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("csvlog: read %s: %w", path, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("csvlog: %s is empty", path)
	}
	dataLines := lines[1:] // drop header
	if n > 0 && len(dataLines) > n {
		dataLines = dataLines[len(dataLines)-n:]
	}

	out := make([]Record, 0, len(dataLines))
	for _, line := range dataLines {
		rec, ok := parseRow(line)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(line string) (Record, bool) {
	tok := strings.Split(line, ",")
	if len(tok) != 8 {
		return Record{}, false
	}
	lat, err1 := strconv.ParseFloat(tok[1], 64)
	lon, err2 := strconv.ParseFloat(tok[2], 64)
	fixQ, err3 := strconv.Atoi(tok[3])
	sats, err4 := strconv.Atoi(tok[4])
	hdop, err5 := strconv.ParseFloat(tok[5], 64)
	alt, err6 := strconv.ParseFloat(tok[6], 64)
	geo, err7 := strconv.ParseFloat(tok[7], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil || err7 != nil {
		return Record{}, false
	}
	return Record{
		UTCTime:       tok[0],
		LatDeg:        lat,
		LonDeg:        lon,
		FixQuality:    fixQ,
		NumSatellites: sats,
		HDOP:          hdop,
		AltitudeM:     alt,
		GeoidHeightM:  geo,
	}, true
}

// FormatTable renders records as a fixed-width table for operator debugging,
// following the original firmware's printCsvFile layout (utc_time formatted
// hh:mm:ss.ss via gga.FormatUTC, other fields as stored).
func FormatTable(records []Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-11s | %-11s | %-12s | %-3s | %-4s | %-4s | %-8s | %-11s\n",
		"utc_time", "latitude", "longitude", "fix", "sats", "hdop", "alt(m)", "geoid(m)")
	for _, r := range records {
		fmt.Fprintf(&b, "%-11s | %11.7f | %12.7f | %3d | %4d | %4.1f | %8.3f | %11.3f\n",
			gga.FormatUTC(r.UTCTime), r.LatDeg, r.LonDeg, r.FixQuality, r.NumSatellites, r.HDOP, r.AltitudeM, r.GeoidHeightM)
	}
	return b.String()
}
