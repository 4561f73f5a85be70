// Package uplink implements the base's serial uplink writer: a single-writer
// wrapper around an io.Writer that frames each message with serialproto and
// writes it in one call, so a concurrent reader on the other end of the wire
// never observes a torn frame.
package uplink

import (
	"fmt"
	"io"
	"sync"

	"watermelon-log-transfer/internal/serialproto"
)

// Writer serializes frame writes to an underlying transport (normally an
// open serial port from internal/serialport). Only one logical writer exists
// application-wide, but the mutex makes concurrent callers safe rather than
// assuming they never occur.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// New wraps w as a frame-at-a-time uplink writer.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Send builds a full frame in a stack-local buffer and writes it with a
// single call. It rejects payload longer than serialproto.MaxPayload as a
// programming error rather than truncating or fragmenting.
func (u *Writer) Send(msgType serialproto.MsgType, payload []byte) error {
	if len(payload) > serialproto.MaxPayload {
		return fmt.Errorf("uplink: payload too large (%d > %d)", len(payload), serialproto.MaxPayload)
	}
	frame, err := serialproto.Build(msgType, payload)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	_, err = u.w.Write(frame)
	return err
}

// SendStatus is a thin convenience wrapper around Send for status messages.
func (u *Writer) SendStatus(code serialproto.StatusCode) error {
	frame, err := serialproto.BuildStatus(code)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	_, err = u.w.Write(frame)
	return err
}

// SendLogLine is a thin convenience wrapper carrying one forwarded chunk
// payload as a log-line message.
func (u *Writer) SendLogLine(line []byte) error {
	if len(line) > serialproto.MaxPayload {
		return fmt.Errorf("uplink: log line too large (%d > %d)", len(line), serialproto.MaxPayload)
	}
	frame, err := serialproto.BuildLogLine(line)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	_, err = u.w.Write(frame)
	return err
}

// SendCutRecord is a thin convenience wrapper for georeferenced cut events,
// a message type carried alongside the log-transfer protocol on the same
// serial link.
func (u *Writer) SendCutRecord(r serialproto.CutRecord) error {
	frame, err := serialproto.BuildCutRecord(r)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	_, err = u.w.Write(frame)
	return err
}
