package uplink

import (
	"bytes"
	"strings"
	"testing"

	"watermelon-log-transfer/internal/serialproto"
)

func TestSendProducesValidFrame(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	if err := w.SendLogLine([]byte("hello")); err != nil {
		t.Fatalf("SendLogLine: %v", err)
	}

	msgType, payload, consumed, err := serialproto.Unframe(buf.Bytes())
	if err != nil {
		t.Fatalf("Unframe: %v", err)
	}
	if msgType != serialproto.MsgLogLine {
		t.Errorf("msgType = %v, want MsgLogLine", msgType)
	}
	if string(payload) != "hello" {
		t.Errorf("payload = %q", payload)
	}
	if consumed != buf.Len() {
		t.Errorf("consumed = %d, want %d", consumed, buf.Len())
	}
}

func TestSendRejectsOversizePayload(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	big := strings.Repeat("x", serialproto.MaxPayload+1)
	if err := w.Send(serialproto.MsgLogLine, []byte(big)); err == nil {
		t.Fatal("expected error for oversize payload")
	}
	if buf.Len() != 0 {
		t.Error("rejected send must not write anything")
	}
}

func TestSendStatusAndCutRecord(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	if err := w.SendStatus(serialproto.StatusLinkUp); err != nil {
		t.Fatalf("SendStatus: %v", err)
	}
	rec := serialproto.CutRecord{Seq: 1, Timestamp: 1000, Lat: 29.5, Lon: -82.3, Force: 12.5, Fix: 1}
	if err := w.SendCutRecord(rec); err != nil {
		t.Fatalf("SendCutRecord: %v", err)
	}

	remaining := buf.Bytes()
	msgType, payload, consumed, err := serialproto.Unframe(remaining)
	if err != nil || msgType != serialproto.MsgStatus {
		t.Fatalf("first frame: type=%v err=%v", msgType, err)
	}
	if serialproto.StatusCode(payload[0]) != serialproto.StatusLinkUp {
		t.Errorf("status = %v", payload[0])
	}
	remaining = remaining[consumed:]

	msgType, payload, _, err = serialproto.Unframe(remaining)
	if err != nil || msgType != serialproto.MsgCutRecord {
		t.Fatalf("second frame: type=%v err=%v", msgType, err)
	}
	got, err := serialproto.ParseCutRecord(payload)
	if err != nil {
		t.Fatalf("ParseCutRecord: %v", err)
	}
	if got.Seq != 1 || got.Fix != 1 {
		t.Errorf("got = %+v", got)
	}
}
