// Package radiolink narrows the external radio stack (advertise, scan,
// connect, GATT primitives) to the capability sets the two connection
// supervisors actually drive. Production code talks to a concrete radio SDK
// binding that implements these interfaces; tests use the Fake pair in
// fake.go.
package radiolink

import "fmt"

// Channel identifies one of the two log-transfer service characteristics:
// control (write + notify) and data (notify only).
type Channel int

const (
	ChannelControl Channel = iota
	ChannelData
)

func (c Channel) String() string {
	switch c {
	case ChannelControl:
		return "control"
	case ChannelData:
		return "data"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// ServiceUUID and characteristic UUIDs for the log-transfer service.
const (
	ServiceUUID     = 0xFFF0
	ControlCharUUID = 0xFFF1
	DataCharUUID    = 0xFFF2
)

// ConnParams mirrors the fixed connection parameters the base requests on
// connect.
type ConnParams struct {
	IntervalMin        uint16
	IntervalMax        uint16
	Latency            uint16
	SupervisionTimeout uint16
}

// DefaultConnParams are the values the base requests on every connect:
// interval 0x10-0x20, latency 0, supervision timeout 0x258 (6s at the 10ms
// tick).
var DefaultConnParams = ConnParams{
	IntervalMin:        0x10,
	IntervalMax:        0x20,
	Latency:            0,
	SupervisionTimeout: 0x258,
}

// PeerHandle identifies a discovered advertiser during scanning.
type PeerHandle interface{}

// Peripheral is the capability set the shears-side supervisor needs from the
// radio stack: advertise under a name/service list, accept writes on the
// control channel, and notify both channels to whichever central is
// currently connected.
type Peripheral interface {
	// Advertise (re)starts advertising the given local name and 16-bit
	// service UUID list. Called on init and resumed on disconnect/failure.
	Advertise(localName string, serviceUUIDs []uint16) error
	// Notify sends payload as a notification on channel to the current
	// connection. It is a no-op error if nothing is connected.
	Notify(channel Channel, payload []byte) error
	// SetWriteHandler registers the callback invoked for every inbound
	// control-channel write.
	SetWriteHandler(func(payload []byte))
	// SetConnStateHandler registers the callback invoked on connect (true)
	// and disconnect (false).
	SetConnStateHandler(func(connected bool))
}

// Central is the capability set the base-side supervisor needs from the
// radio stack: scan for a named advertiser, connect, discover the log
// service and its characteristics, subscribe to notifications, and write the
// control channel.
type Central interface {
	// StartScan begins active scanning; onMatch fires once per advertiser
	// whose local name equals targetName.
	StartScan(targetName string, onMatch func(PeerHandle)) error
	CancelScan() error

	// Connect initiates a connection to peer with the given parameters.
	Connect(peer PeerHandle, params ConnParams) error

	// DiscoverServices and DiscoverCharacteristics drive GATT discovery in
	// order: full service discovery, then characteristic discovery within
	// the matched service's handle range.
	DiscoverServices(onService func(uuid16 uint16, startHandle, endHandle uint16)) error
	DiscoverCharacteristics(startHandle, endHandle uint16, onChar func(uuid16 uint16, valueHandle uint16)) error

	// EnableNotify writes {0x01, 0x00} to the CCCD immediately following
	// valueHandle.
	EnableNotify(valueHandle uint16) error

	// WriteControl writes payload to the control characteristic.
	WriteControl(payload []byte) error

	// SetNotifyHandler registers the callback invoked for every inbound
	// notification, identified by which characteristic value handle it
	// arrived on.
	SetNotifyHandler(func(valueHandle uint16, payload []byte))
	// SetDisconnectHandler registers the callback invoked on link loss.
	SetDisconnectHandler(func())
}
