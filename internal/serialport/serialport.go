// Package serialport opens raw-mode UART devices shared by the GPS ingest
// path on the shears and the host uplink on the base.
package serialport

import "os"

// Config describes how to open and configure a UART device.
type Config struct {
	Device string
	Baud   int
}

// Open opens the device in raw 8N1 mode with no line discipline, suitable for
// both NMEA ingest and framed binary traffic.
func Open(cfg Config) (*os.File, error) {
	return openSerial(cfg.Device, cfg.Baud)
}
