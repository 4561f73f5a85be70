// Package gpioedge wires a single active-low GPIO input to an edge-triggered
// callback, for save-request buttons and similar physical controls. The
// callback runs in the same goroutine context as the underlying driver's
// event dispatch and must not block or perform I/O; it exists only to hand
// off to a flag or channel consumed elsewhere.
package gpioedge

// Watcher observes falling edges on a single input line.
type Watcher interface {
	Close() error
}

// Config selects the chip and line. No debouncing is applied.
type Config struct {
	// Chip is a device path such as "/dev/gpiochip0". Empty auto-detects the
	// first chip exposing Line.
	Chip string
	// Line is the GPIO line name (e.g. "GPIO23"), looked up by name on each
	// candidate chip; a raw line offset is not accepted.
	Line string
}

// Watch requests the given input line with a pull-up and negative-edge
// detection enabled, invoking onFallingEdge for every observed edge. The
// returned Watcher must be closed to release the line.
func Watch(cfg Config, onFallingEdge func()) (Watcher, error) {
	return watch(cfg, onFallingEdge)
}
