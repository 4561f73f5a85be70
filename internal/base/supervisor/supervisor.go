// Package supervisor implements the base side of the connection supervisor:
// scans for the well-known shears advertiser, connects with fixed
// parameters, performs service/characteristic discovery, enables
// notifications on both channels, routes inbound notifications to the log
// client by attribute-handle identity, drains the pending-request slot on
// discovery completion, and drives an indicator.
package supervisor

import (
	"log"

	"watermelon-log-transfer/internal/base/logclient"
	"watermelon-log-transfer/internal/base/reqqueue"
	"watermelon-log-transfer/internal/indicator"
	"watermelon-log-transfer/internal/radiolink"
	"watermelon-log-transfer/internal/radioproto"
)

// ConnStateFunc is the application-facing connection state callback.
type ConnStateFunc func(connected bool)

// Supervisor owns the base-side scan/connect/discover lifecycle.
type Supervisor struct {
	central     radiolink.Central
	client      *logclient.Client
	indicator   *indicator.Indicator
	pending     reqqueue.Slot
	targetName  string
	onConnState ConnStateFunc

	ctrlHandle    uint16
	dataHandle    uint16
	notifyEnabled [2]bool // [0]=control, [1]=data
	discovered    bool
}

const (
	handleIdxControl = 0
	handleIdxData    = 1
)

// New wires a Supervisor around a central radio binding, the log client it
// routes notifications to, the indicator it drives, and the advertiser name
// it scans for.
func New(central radiolink.Central, client *logclient.Client, ind *indicator.Indicator, targetName string, onConnState ConnStateFunc) *Supervisor {
	s := &Supervisor{central: central, client: client, indicator: ind, targetName: targetName, onConnState: onConnState}
	central.SetNotifyHandler(s.onNotify)
	central.SetDisconnectHandler(s.onDisconnect)
	return s
}

// Start begins scanning.
func (s *Supervisor) Start() error {
	return s.central.StartScan(s.targetName, s.onMatch)
}

// RequestLog asks the client to fetch basename, or queues it along with its
// trigger identity in the pending-request slot if discovery has not
// completed yet.
func (s *Supervisor) RequestLog(basename string, trigger reqqueue.Trigger) {
	if !s.discovered {
		s.pending.Set(basename, trigger)
		return
	}
	if err := s.client.Request(basename); err != nil {
		log.Printf("supervisor(base): request failed: %v", err)
	}
}

func (s *Supervisor) onMatch(peer radiolink.PeerHandle) {
	if err := s.central.CancelScan(); err != nil {
		log.Printf("supervisor(base): cancel scan failed: %v", err)
	}
	if err := s.central.Connect(peer, radiolink.DefaultConnParams); err != nil {
		log.Printf("supervisor(base): connect failed: %v", err)
		s.resumeScan()
		return
	}
	if err := s.central.DiscoverServices(s.onService); err != nil {
		log.Printf("supervisor(base): discover services failed: %v", err)
	}
}

func (s *Supervisor) onService(uuid16 uint16, startHandle, endHandle uint16) {
	if uuid16 != radiolink.ServiceUUID {
		return
	}
	if err := s.central.DiscoverCharacteristics(startHandle, endHandle, s.onCharacteristic); err != nil {
		log.Printf("supervisor(base): discover characteristics failed: %v", err)
	}
}

func (s *Supervisor) onCharacteristic(uuid16 uint16, valueHandle uint16) {
	switch uuid16 {
	case radiolink.ControlCharUUID:
		s.ctrlHandle = valueHandle
		if err := s.central.EnableNotify(valueHandle); err != nil {
			log.Printf("supervisor(base): enable notify (control) failed: %v", err)
			return
		}
		s.notifyEnabled[handleIdxControl] = true
	case radiolink.DataCharUUID:
		s.dataHandle = valueHandle
		if err := s.central.EnableNotify(valueHandle); err != nil {
			log.Printf("supervisor(base): enable notify (data) failed: %v", err)
			return
		}
		s.notifyEnabled[handleIdxData] = true
	}
	s.checkDiscoveryComplete()
}

// checkDiscoveryComplete gates the connected transition: discovery is only
// considered complete once both handles are known and both notify-subscribe
// writes succeeded.
func (s *Supervisor) checkDiscoveryComplete() {
	if s.discovered {
		return
	}
	if s.ctrlHandle == 0 || s.dataHandle == 0 {
		return
	}
	if !s.notifyEnabled[handleIdxControl] || !s.notifyEnabled[handleIdxData] {
		return
	}
	s.discovered = true
	s.indicator.Connected(true)
	if s.onConnState != nil {
		s.onConnState(true)
	}
	if basename, _, ok := s.pending.Take(); ok {
		if err := s.client.Request(basename); err != nil {
			log.Printf("supervisor(base): draining pending request failed: %v", err)
		}
	}
}

func (s *Supervisor) onNotify(valueHandle uint16, payload []byte) {
	switch valueHandle {
	case s.ctrlHandle:
		status, fileSize, err := decodeControlPayload(payload)
		if err != nil {
			log.Printf("supervisor(base): %v", err)
			return
		}
		s.client.HandleControl(status, fileSize)
	case s.dataHandle:
		s.client.HandleChunk(payload)
	default:
		log.Printf("supervisor(base): notification on unknown handle %d", valueHandle)
	}
}

func decodeControlPayload(payload []byte) (radioproto.StatusCode, uint32, error) {
	_, rest, err := radioproto.DecodeOpcode(payload)
	if err != nil {
		return 0, 0, err
	}
	return radioproto.DecodeStatus(rest)
}

func (s *Supervisor) onDisconnect() {
	s.client.OnLinkLoss()
	s.indicator.Connected(false)
	if s.onConnState != nil {
		s.onConnState(false)
	}
	s.ctrlHandle = 0
	s.dataHandle = 0
	s.notifyEnabled = [2]bool{}
	s.discovered = false
	s.resumeScan()
}

func (s *Supervisor) resumeScan() {
	if err := s.central.StartScan(s.targetName, s.onMatch); err != nil {
		log.Printf("supervisor(base): resume scan failed: %v", err)
	}
}
