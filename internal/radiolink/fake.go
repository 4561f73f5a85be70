package radiolink

import "sync"

// FakePeer is the PeerHandle a FakeCentral hands back from StartScan; it
// carries nothing beyond identity since the fake pairs a single central with
// a single peripheral.
type FakePeer struct{ name string }

// FakePair wires a FakePeripheral and FakeCentral directly together in
// memory, so the shears and base supervisors (and the state machines above
// them) can be exercised end to end without a real radio stack.
type FakePair struct {
	mu sync.Mutex

	localName    string
	serviceUUIDs []uint16
	advertising  bool
	connected    bool

	peripheralWriteHandler func([]byte)
	peripheralConnHandler  func(bool)

	centralNotifyHandler     func(valueHandle uint16, payload []byte)
	centralDisconnectHandler func()

	// dropNotify, when true, makes Peripheral.Notify silently discard
	// payloads instead of delivering them: used to simulate link loss
	// without tearing down the connected state.
	dropNotify bool
}

// NewFakePair returns a disconnected peripheral/central pair sharing state.
func NewFakePair() *FakePair {
	return &FakePair{}
}

// Peripheral returns the shears-side view of the pair.
func (p *FakePair) Peripheral() *FakePeripheral { return &FakePeripheral{pair: p} }

// Central returns the base-side view of the pair.
func (p *FakePair) Central() *FakeCentral { return &FakeCentral{pair: p} }

// SetDropNotify toggles whether Peripheral.Notify delivers to the connected
// central, modeling a radio link that has gone quiet without an explicit
// disconnect event.
func (p *FakePair) SetDropNotify(drop bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropNotify = drop
}

// Disconnect simulates link loss: fires both sides' disconnect callbacks.
func (p *FakePair) Disconnect() {
	p.mu.Lock()
	wasConnected := p.connected
	p.connected = false
	connHandler := p.peripheralConnHandler
	discHandler := p.centralDisconnectHandler
	p.mu.Unlock()

	if !wasConnected {
		return
	}
	if connHandler != nil {
		connHandler(false)
	}
	if discHandler != nil {
		discHandler()
	}
}

// FakePeripheral implements Peripheral against a FakePair.
type FakePeripheral struct{ pair *FakePair }

func (f *FakePeripheral) Advertise(localName string, serviceUUIDs []uint16) error {
	f.pair.mu.Lock()
	defer f.pair.mu.Unlock()
	f.pair.localName = localName
	f.pair.serviceUUIDs = append([]uint16(nil), serviceUUIDs...)
	f.pair.advertising = true
	return nil
}

func (f *FakePeripheral) Notify(channel Channel, payload []byte) error {
	f.pair.mu.Lock()
	connected := f.pair.connected
	drop := f.pair.dropNotify
	handler := f.pair.centralNotifyHandler
	f.pair.mu.Unlock()

	if !connected || drop || handler == nil {
		return nil
	}
	valueHandle := uint16(DataCharUUID)
	if channel == ChannelControl {
		valueHandle = uint16(ControlCharUUID)
	}
	handler(valueHandle, payload)
	return nil
}

func (f *FakePeripheral) SetWriteHandler(h func(payload []byte)) {
	f.pair.mu.Lock()
	defer f.pair.mu.Unlock()
	f.pair.peripheralWriteHandler = h
}

func (f *FakePeripheral) SetConnStateHandler(h func(connected bool)) {
	f.pair.mu.Lock()
	defer f.pair.mu.Unlock()
	f.pair.peripheralConnHandler = h
}

// FakeCentral implements Central against a FakePair.
type FakeCentral struct{ pair *FakePair }

func (c *FakeCentral) StartScan(targetName string, onMatch func(PeerHandle)) error {
	c.pair.mu.Lock()
	name := c.pair.localName
	advertising := c.pair.advertising
	c.pair.mu.Unlock()

	if advertising && name == targetName {
		onMatch(FakePeer{name: name})
	}
	return nil
}

func (c *FakeCentral) CancelScan() error { return nil }

func (c *FakeCentral) Connect(peer PeerHandle, params ConnParams) error {
	c.pair.mu.Lock()
	c.pair.connected = true
	// A connected peripheral stops advertising until it calls Advertise again.
	c.pair.advertising = false
	connHandler := c.pair.peripheralConnHandler
	c.pair.mu.Unlock()

	if connHandler != nil {
		connHandler(true)
	}
	return nil
}

func (c *FakeCentral) DiscoverServices(onService func(uuid16 uint16, startHandle, endHandle uint16)) error {
	onService(ServiceUUID, 1, 10)
	return nil
}

func (c *FakeCentral) DiscoverCharacteristics(startHandle, endHandle uint16, onChar func(uuid16 uint16, valueHandle uint16)) error {
	onChar(ControlCharUUID, uint16(ControlCharUUID))
	onChar(DataCharUUID, uint16(DataCharUUID))
	return nil
}

func (c *FakeCentral) EnableNotify(valueHandle uint16) error { return nil }

func (c *FakeCentral) WriteControl(payload []byte) error {
	c.pair.mu.Lock()
	handler := c.pair.peripheralWriteHandler
	c.pair.mu.Unlock()
	if handler != nil {
		handler(payload)
	}
	return nil
}

func (c *FakeCentral) SetNotifyHandler(h func(valueHandle uint16, payload []byte)) {
	c.pair.mu.Lock()
	defer c.pair.mu.Unlock()
	c.pair.centralNotifyHandler = h
}

func (c *FakeCentral) SetDisconnectHandler(h func()) {
	c.pair.mu.Lock()
	defer c.pair.mu.Unlock()
	c.pair.centralDisconnectHandler = h
}
