// Package logserver implements the shears-side log transfer state machine:
// IDLE/ACTIVE/FINALIZING, driven by control-channel opcodes and a periodic
// background step that emits file chunks. Session state lives on the Server
// value itself rather than in package-level statics, so a process can run
// more than one independently.
package logserver

import (
	"fmt"
	"log"
	"os"
	"sync"

	"watermelon-log-transfer/internal/radiolink"
	"watermelon-log-transfer/internal/radioproto"
)

// State is one of the three server states.
type State int

const (
	StateIdle State = iota
	StateActive
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateActive:
		return "ACTIVE"
	case StateFinalizing:
		return "FINALIZING"
	default:
		return "UNKNOWN"
	}
}

// Notifier is the narrow capability the server needs to emit frames; a
// radiolink.Peripheral satisfies it directly.
type Notifier interface {
	Notify(channel radiolink.Channel, payload []byte) error
}

// PathResolver turns a requested basename into a full path under the
// shears's fixed log-file prefix.
type PathResolver func(basename string) string

// Server is the shears-side transfer state machine. One Server instance
// handles at most one connection's sessions serially; a second
// START_TRANSFER while active is rejected.
type Server struct {
	resolvePath PathResolver
	notifier    Notifier

	mu               sync.Mutex
	state            State
	chunkPayloadSize int
	chunkIndex       uint16
	bytesEmitted     uint32
	fileSize         uint32
	file             *os.File
}

// New returns an IDLE Server that resolves basenames via resolvePath and
// emits frames through notifier.
func New(resolvePath PathResolver, notifier Notifier) *Server {
	return &Server{resolvePath: resolvePath, notifier: notifier, state: StateIdle}
}

// Snapshot is an immutable view of server state for diagnostics/tests.
type Snapshot struct {
	State        State
	ChunkIndex   uint16
	BytesEmitted uint32
	FileSize     uint32
}

func (s *Server) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, ChunkIndex: s.chunkIndex, BytesEmitted: s.bytesEmitted, FileSize: s.fileSize}
}

// HandleControl dispatches one decoded control opcode. linkMaxAttributeSize
// is the current connection's negotiated attribute size, used only when
// starting a new transfer.
func (s *Server) HandleControl(opcode radioproto.CtrlOpcode, payload []byte, linkMaxAttributeSize int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch opcode {
	case radioproto.CtrlCmdStartTransfer:
		s.handleStartTransferLocked(payload, linkMaxAttributeSize)
	case radioproto.CtrlCmdAbort:
		s.handleAbortLocked()
	default:
		log.Printf("logserver: unrecognized control opcode %v", opcode)
	}
}

func (s *Server) handleStartTransferLocked(payload []byte, linkMaxAttributeSize int) {
	if s.state != StateIdle {
		s.emitStatusLocked(radioproto.StatusBusy, 0)
		return
	}

	chunkPayloadSize := radioproto.ChunkPayloadSize(linkMaxAttributeSize)
	if chunkPayloadSize <= 0 {
		s.emitStatusLocked(radioproto.StatusFSError, 0)
		return
	}

	name := radioproto.DecodeStartTransfer(payload)
	if name == "" || len(name) > radioproto.MaxBasenameLen {
		s.emitStatusLocked(radioproto.StatusFSError, 0)
		return
	}

	path := s.resolvePath(name)
	f, err := os.Open(path)
	if err != nil {
		s.emitStatusLocked(radioproto.StatusNoFile, 0)
		return
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		s.emitStatusLocked(radioproto.StatusFSError, 0)
		return
	}

	s.file = f
	s.chunkPayloadSize = chunkPayloadSize
	s.chunkIndex = 0
	s.bytesEmitted = 0
	s.fileSize = uint32(info.Size())
	s.state = StateActive
	s.emitStatusLocked(radioproto.StatusAccepted, s.fileSize)
}

func (s *Server) handleAbortLocked() {
	if s.state != StateActive {
		return
	}
	s.closeFileLocked()
	s.emitStatusLocked(radioproto.StatusAborted, s.fileSize)
	s.state = StateIdle
}

// Step performs one background-task iteration: reading and emitting the next
// chunk while ACTIVE, or emitting DONE once FINALIZING. It is a no-op outside
// those two states, so callers may invoke it unconditionally from a
// fixed-interval ticker; the caller can inspect Snapshot().State to choose a
// faster interval while active and a slower one while idle.
func (s *Server) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateActive:
		s.stepActiveLocked()
	case StateFinalizing:
		s.emitStatusLocked(radioproto.StatusDone, s.fileSize)
		s.state = StateIdle
	}
}

func (s *Server) stepActiveLocked() {
	buf := make([]byte, s.chunkPayloadSize)
	n, err := s.file.Read(buf)
	if n > 0 {
		chunk := radioproto.EncodeChunk(s.chunkIndex, buf[:n])
		if nerr := s.notifier.Notify(radiolink.ChannelData, chunk); nerr != nil {
			log.Printf("logserver: notify failed: %v", nerr)
		}
		s.chunkIndex++
		s.bytesEmitted += uint32(n)
	}
	if n < s.chunkPayloadSize || err != nil {
		s.closeFileLocked()
		s.state = StateFinalizing
	}
}

// OnLinkLoss resets the server to IDLE without emitting any peer-visible
// status.
func (s *Server) OnLinkLoss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeFileLocked()
	s.state = StateIdle
}

func (s *Server) closeFileLocked() {
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
}

func (s *Server) emitStatusLocked(status radioproto.StatusCode, fileSize uint32) {
	msg := radioproto.EncodeStatus(status, fileSize)
	if err := s.notifier.Notify(radiolink.ChannelControl, msg); err != nil {
		log.Printf("logserver: status emit failed: %v", err)
	}
}

// FixedPrefixResolver returns a PathResolver that joins basename under a
// single fixed directory prefix.
func FixedPrefixResolver(prefix string) PathResolver {
	return func(basename string) string {
		return fmt.Sprintf("%s/%s", prefix, basename)
	}
}
