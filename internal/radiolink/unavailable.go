package radiolink

import "fmt"

// NewProductionPeripheral and NewProductionCentral are the extension points
// a real deployment fills in with a platform radio SDK binding. This repo
// implements the log-transfer protocol, its state machines, and the narrow
// Peripheral/Central contracts those state machines drive; it does not ship
// a BLE stack.
//
// Tests and local dry-runs use FakePair instead of either of these.

func NewProductionPeripheral() (Peripheral, error) {
	return nil, fmt.Errorf("radiolink: no production BLE peripheral backend linked into this build")
}

func NewProductionCentral() (Central, error) {
	return nil, fmt.Errorf("radiolink: no production BLE central backend linked into this build")
}
