// Package serialproto implements the base-to-host serial uplink framing: a
// start byte, a one-byte message type, a little-endian length, the payload,
// and a trailing XOR checksum. Unlike the radio link, this framing carries a
// checksum because the serial wire has no link-layer integrity of its own
// and the host must be able to resynchronize after noise.
package serialproto

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	startByte = 0xAA

	// MaxPayload is the hard ceiling enforced by both the sender (as a
	// programming-error rejection) and the receiver.
	MaxPayload = 200

	headerLen  = 1 + 1 + 2 // start + type + len
	trailerLen = 1         // checksum
)

// MsgType identifies the kind of message framed on the serial uplink.
type MsgType byte

const (
	MsgCutRecord MsgType = 0x01
	MsgStatus    MsgType = 0x02
	MsgLogLine   MsgType = 0x03
)

// StatusCode is the single payload byte of a MsgStatus frame.
type StatusCode byte

const (
	StatusLinkUp        StatusCode = 1
	StatusLinkDown      StatusCode = 2
	StatusTransferStart StatusCode = 3
	StatusTransferDone  StatusCode = 4
	StatusTransferError StatusCode = 5
)

// CutRecordSize is the packed size of a cut-record payload: seq u32,
// timestamp u32, lat f32, lon f32, force f32, fix u8.
const CutRecordSize = 4 + 4 + 4 + 4 + 4 + 1

// CutRecord is one georeferenced cut event.
type CutRecord struct {
	Seq       uint32
	Timestamp uint32
	Lat       float32
	Lon       float32
	Force     float32
	Fix       uint8
}

func checksum(typeAndPayload []byte) byte {
	var c byte
	for _, b := range typeAndPayload {
		c ^= b
	}
	return c
}

// Build constructs a complete framed message: start byte, type, length,
// payload, checksum. It rejects payloads over MaxPayload as a programming
// error.
func Build(msgType MsgType, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("serialproto: payload too large (%d > %d)", len(payload), MaxPayload)
	}

	out := make([]byte, 0, headerLen+len(payload)+trailerLen)
	out = append(out, startByte, byte(msgType))
	lenBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBuf, uint16(len(payload)))
	out = append(out, lenBuf...)
	out = append(out, payload...)
	out = append(out, checksum(out[1:]))
	return out, nil
}

// BuildStatus is a thin convenience wrapper for status messages.
func BuildStatus(code StatusCode) ([]byte, error) {
	return Build(MsgStatus, []byte{byte(code)})
}

// BuildLogLine is a thin convenience wrapper for log-line messages. The line
// is carried verbatim with no added terminator.
func BuildLogLine(line []byte) ([]byte, error) {
	return Build(MsgLogLine, line)
}

// BuildCutRecord packs and frames a cut-record message.
func BuildCutRecord(r CutRecord) ([]byte, error) {
	payload := make([]byte, CutRecordSize)
	binary.LittleEndian.PutUint32(payload[0:4], r.Seq)
	binary.LittleEndian.PutUint32(payload[4:8], r.Timestamp)
	binary.LittleEndian.PutUint32(payload[8:12], math.Float32bits(r.Lat))
	binary.LittleEndian.PutUint32(payload[12:16], math.Float32bits(r.Lon))
	binary.LittleEndian.PutUint32(payload[16:20], math.Float32bits(r.Force))
	payload[20] = r.Fix
	return Build(MsgCutRecord, payload)
}

// ParseCutRecord unpacks a cut-record payload (type byte already stripped).
func ParseCutRecord(payload []byte) (CutRecord, error) {
	if len(payload) != CutRecordSize {
		return CutRecord{}, fmt.Errorf("serialproto: cut-record payload is %d bytes, want %d", len(payload), CutRecordSize)
	}
	return CutRecord{
		Seq:       binary.LittleEndian.Uint32(payload[0:4]),
		Timestamp: binary.LittleEndian.Uint32(payload[4:8]),
		Lat:       math.Float32frombits(binary.LittleEndian.Uint32(payload[8:12])),
		Lon:       math.Float32frombits(binary.LittleEndian.Uint32(payload[12:16])),
		Force:     math.Float32frombits(binary.LittleEndian.Uint32(payload[16:20])),
		Fix:       payload[20],
	}, nil
}

// Unframe validates and strips one complete frame from the front of buf,
// returning the message type, payload, and the number of bytes consumed. It
// rejects a checksum mismatch or a declared length exceeding MaxPayload.
// ErrIncomplete signals the caller should read more bytes before retrying;
// it is not a framing error.
func Unframe(buf []byte) (msgType MsgType, payload []byte, consumed int, err error) {
	if len(buf) < headerLen {
		return 0, nil, 0, ErrIncomplete
	}
	if buf[0] != startByte {
		return 0, nil, 0, fmt.Errorf("serialproto: missing start byte (got 0x%02x)", buf[0])
	}
	declaredLen := int(binary.LittleEndian.Uint16(buf[2:4]))
	if declaredLen > MaxPayload {
		return 0, nil, 0, fmt.Errorf("serialproto: declared length %d exceeds max %d", declaredLen, MaxPayload)
	}
	total := headerLen + declaredLen + trailerLen
	if len(buf) < total {
		return 0, nil, 0, ErrIncomplete
	}

	body := buf[1:headerLen+declaredLen]
	want := buf[headerLen+declaredLen]
	got := checksum(body)
	if got != want {
		return 0, nil, 0, fmt.Errorf("serialproto: checksum mismatch (got 0x%02x want 0x%02x)", got, want)
	}

	return MsgType(buf[1]), append([]byte(nil), buf[headerLen:headerLen+declaredLen]...), total, nil
}

// ErrIncomplete is returned by Unframe when buf does not yet contain a full
// frame.
var ErrIncomplete = fmt.Errorf("serialproto: incomplete frame")

// FindStartByte returns the index of the next candidate start byte in buf,
// or -1 if none is present. Used by a reader to resynchronize after a
// framing error.
func FindStartByte(buf []byte) int {
	for i, b := range buf {
		if b == startByte {
			return i
		}
	}
	return -1
}
