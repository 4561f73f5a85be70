// Package supervisor implements the shears side of the connection
// supervisor: brings up advertising, resumes it on disconnect, routes
// inbound control-channel writes to the log server state machine, and
// drives an indicator.
package supervisor

import (
	"log"

	"watermelon-log-transfer/internal/indicator"
	"watermelon-log-transfer/internal/radiolink"
	"watermelon-log-transfer/internal/radioproto"
	"watermelon-log-transfer/internal/shears/logserver"
)

// LinkAttributeSize is the negotiated attribute size assumed once connected.
// The fake/production radio bindings available to this reimplementation do
// not expose per-connection MTU negotiation results, so a fixed value
// standing in for "negotiated MTU − 3" is used; a real radio SDK binding
// would read this from its connection-parameters callback instead.
const LinkAttributeSize = 20

// Supervisor owns the shears-side advertise/accept lifecycle.
type Supervisor struct {
	peripheral radiolink.Peripheral
	server     *logserver.Server
	indicator  *indicator.Indicator
	localName  string
	serviceID  uint16
}

// New wires a Supervisor around a peripheral radio binding, the log server
// it routes control-channel messages to, and the indicator it drives.
func New(peripheral radiolink.Peripheral, server *logserver.Server, ind *indicator.Indicator, localName string, serviceID uint16) *Supervisor {
	s := &Supervisor{peripheral: peripheral, server: server, indicator: ind, localName: localName, serviceID: serviceID}
	peripheral.SetWriteHandler(s.onWrite)
	peripheral.SetConnStateHandler(s.onConnState)
	return s
}

// Start brings up advertising.
func (s *Supervisor) Start() error {
	return s.peripheral.Advertise(s.localName, []uint16{s.serviceID})
}

func (s *Supervisor) onConnState(connected bool) {
	s.indicator.Connected(connected)
	if connected {
		return
	}
	s.server.OnLinkLoss()
	if err := s.peripheral.Advertise(s.localName, []uint16{s.serviceID}); err != nil {
		log.Printf("supervisor(shears): resume advertising failed: %v", err)
	}
}

func (s *Supervisor) onWrite(payload []byte) {
	opcode, rest, err := radioproto.DecodeOpcode(payload)
	if err != nil {
		log.Printf("supervisor(shears): %v", err)
		return
	}
	s.server.HandleControl(opcode, rest, LinkAttributeSize)
}
