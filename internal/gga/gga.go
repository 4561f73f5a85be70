// Package gga parses NMEA GGA fix sentences into the fields the shears CSV
// log records.
package gga

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MinFields is the minimum number of comma-separated tokens a GGA sentence
// must carry for the fix to be extracted.
const MinFields = 12

// Fix holds one parsed GGA fix, ready to become a CSV row.
type Fix struct {
	UTCTime       string
	LatDeg        float64
	LonDeg        float64
	FixQuality    int
	NumSatellites int
	HDOP          float64
	AltitudeM     float64
	GeoidHeightM  float64
}

// acceptedLeaders lists the sentence leaders this parser recognizes. Both
// $GPGGA and $GNGGA are accepted unconditionally and treated identically.
var acceptedLeaders = []string{"$GPGGA", "$GNGGA"}

// HasGGALeader reports whether line starts with a recognized GGA sentence
// leader.
func HasGGALeader(line string) bool {
	for _, l := range acceptedLeaders {
		if strings.HasPrefix(line, l) {
			return true
		}
	}
	return false
}

// Parse splits a terminated NMEA line into a Fix. It returns an error for any
// sentence with fewer than MinFields comma-separated tokens; malformed
// numeric fields are treated as zero rather than failing the whole sentence.
func Parse(line string) (Fix, error) {
	line = strings.TrimRight(line, "\r\n")
	if !HasGGALeader(line) {
		return Fix{}, fmt.Errorf("gga: sentence has no recognized GGA leader")
	}

	tokens := strings.Split(line, ",")
	if len(tokens) < MinFields {
		return Fix{}, fmt.Errorf("gga: sentence has %d tokens, want at least %d", len(tokens), MinFields)
	}

	lastTok := tokens[11]
	if star := strings.IndexByte(lastTok, '*'); star >= 0 {
		lastTok = lastTok[:star]
	}

	lat := decimalDegrees(atofSafe(tokens[2]), tokens[3])
	lon := decimalDegrees(atofSafe(tokens[4]), tokens[5])

	return Fix{
		UTCTime:       tokens[1],
		LatDeg:        lat,
		LonDeg:        lon,
		FixQuality:    atoiSafe(tokens[6]),
		NumSatellites: atoiSafe(tokens[7]),
		HDOP:          atofSafe(tokens[8]),
		AltitudeM:     atofSafe(tokens[9]),
		GeoidHeightM:  atofSafe(lastTok),
	}, nil
}

// decimalDegrees converts an NMEA ddmm.mmmm/dddmm.mmmm value plus hemisphere
// letter into signed decimal degrees:
//
//	degrees = floor(value / 100)
//	minutes = value - 100*degrees
//	decimal = degrees + minutes/60
//
// negated for 'S' or 'W'.
func decimalDegrees(value float64, hemisphere string) float64 {
	degrees := math.Floor(value / 100)
	minutes := value - 100*degrees
	decimal := degrees + minutes/60.0

	h := ""
	if len(hemisphere) > 0 {
		h = strings.ToUpper(hemisphere[:1])
	}
	if h == "S" || h == "W" {
		decimal = -decimal
	}
	return decimal
}

func atofSafe(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func atoiSafe(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// FormatUTC turns a raw NMEA hhmmss.ss string into hh:mm:ss.ss for operator
// display; the fractional seconds are kept as they appear in raw. The persisted CSV row always keeps the raw string; this is only
// used by the CSV preview.
func FormatUTC(raw string) string {
	if len(raw) < 6 {
		return "--:--:--"
	}
	return fmt.Sprintf("%s:%s:%s", raw[0:2], raw[2:4], raw[4:])
}
