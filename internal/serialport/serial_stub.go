//go:build !linux

package serialport

import (
	"fmt"
	"os"
)

func openSerial(path string, baud int) (*os.File, error) {
	return nil, fmt.Errorf("serialport: raw UART not supported on this platform")
}
