//go:build !linux

package indicator

import "fmt"

// OpenGPIO is unsupported outside Linux; callers should fall back to NullLine.
func OpenGPIO(chipHint, lineName string) (Line, error) {
	return nil, fmt.Errorf("indicator: gpio unsupported on this platform")
}
