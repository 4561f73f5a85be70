//go:build !linux

package gpioedge

import "fmt"

func watch(cfg Config, onFallingEdge func()) (Watcher, error) {
	return nil, fmt.Errorf("gpioedge: unsupported on this platform")
}
