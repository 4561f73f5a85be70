package gga

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestParseConvertsDegreesMinutesToDecimalDegrees(t *testing.T) {
	line := "$GPGGA,192928.00,2934.5678,N,08219.7654,W,1,08,0.9,10.0,M,-34.0,M,,*hh"
	fix, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if fix.UTCTime != "192928.00" {
		t.Errorf("UTCTime = %q", fix.UTCTime)
	}
	if !approxEqual(fix.LatDeg, 29.5761300, 1e-6) {
		t.Errorf("LatDeg = %v, want ~29.5761300", fix.LatDeg)
	}
	if !approxEqual(fix.LonDeg, -82.3294233, 1e-6) {
		t.Errorf("LonDeg = %v, want ~-82.3294233", fix.LonDeg)
	}
	if fix.FixQuality != 1 {
		t.Errorf("FixQuality = %d", fix.FixQuality)
	}
	if fix.NumSatellites != 8 {
		t.Errorf("NumSatellites = %d", fix.NumSatellites)
	}
	if !approxEqual(fix.HDOP, 0.9, 1e-9) {
		t.Errorf("HDOP = %v", fix.HDOP)
	}
	if !approxEqual(fix.AltitudeM, 10.0, 1e-9) {
		t.Errorf("AltitudeM = %v", fix.AltitudeM)
	}
	if !approxEqual(fix.GeoidHeightM, -34.0, 1e-9) {
		t.Errorf("GeoidHeightM = %v", fix.GeoidHeightM)
	}
}

func TestParseAcceptsGNGGA(t *testing.T) {
	line := "$GNGGA,192928.00,2934.5678,N,08219.7654,W,1,08,0.9,10.0,M,-34.0,M,,*hh"
	if _, err := Parse(line); err != nil {
		t.Fatalf("Parse($GNGGA...): %v", err)
	}
}

func TestParseRejectsUnrecognizedLeader(t *testing.T) {
	line := "$GPRMC,192928.00,A,2934.5678,N,08219.7654,W,0.0,0.0,230394,,,A*hh"
	if _, err := Parse(line); err == nil {
		t.Fatal("expected error for non-GGA leader")
	}
}

func TestParseRejectsShortSentence(t *testing.T) {
	line := "$GPGGA,192928.00,2934.5678,N,08219.7654,W,1,08,0.9"
	if _, err := Parse(line); err == nil {
		t.Fatal("expected error for too-short sentence")
	}
}

func TestDecimalDegreesHemisphereSigns(t *testing.T) {
	n := decimalDegrees(4807.038, "N")
	if n <= 0 {
		t.Errorf("north should be positive, got %v", n)
	}
	s := decimalDegrees(4807.038, "S")
	if s >= 0 {
		t.Errorf("south should be negative, got %v", s)
	}
	e := decimalDegrees(01131.000, "E")
	if e <= 0 {
		t.Errorf("east should be positive, got %v", e)
	}
	w := decimalDegrees(01131.000, "W")
	if w >= 0 {
		t.Errorf("west should be negative, got %v", w)
	}
}

func TestBoundaryInvariant(t *testing.T) {
	fix, err := Parse("$GPGGA,120000.00,9000.0000,N,18000.0000,E,1,04,1.0,0.0,M,0.0,M,,*00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if math.Abs(fix.LatDeg) > 90.0001 {
		t.Errorf("|lat| > 90: %v", fix.LatDeg)
	}
	if math.Abs(fix.LonDeg) > 180.0001 {
		t.Errorf("|lon| > 180: %v", fix.LonDeg)
	}
}

func TestFormatUTC(t *testing.T) {
	if got := FormatUTC("192928.00"); got != "19:29:28.00" {
		t.Errorf("FormatUTC = %q", got)
	}
	if got := FormatUTC("12"); got != "--:--:--" {
		t.Errorf("FormatUTC short input = %q", got)
	}
}
