package logclient

import (
	"testing"

	"watermelon-log-transfer/internal/radioproto"
	"watermelon-log-transfer/internal/serialproto"
)

type fakeControl struct {
	writes [][]byte
}

func (f *fakeControl) WriteControl(payload []byte) error {
	f.writes = append(f.writes, append([]byte(nil), payload...))
	return nil
}

type fakeHost struct {
	statuses []serialproto.StatusCode
	lines    [][]byte
}

func (f *fakeHost) SendStatus(code serialproto.StatusCode) error {
	f.statuses = append(f.statuses, code)
	return nil
}

func (f *fakeHost) SendLogLine(line []byte) error {
	f.lines = append(f.lines, append([]byte(nil), line...))
	return nil
}

func TestRequestWritesStartTransfer(t *testing.T) {
	ctrl := &fakeControl{}
	host := &fakeHost{}
	c := New(ctrl, host, PolicyStrict)

	if err := c.Request("gps.csv"); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if got := c.Snapshot().State; got != StateAwaitingAccept {
		t.Fatalf("state = %v, want AWAITING_ACCEPT", got)
	}
	if len(ctrl.writes) != 1 {
		t.Fatalf("len(writes) = %d, want 1", len(ctrl.writes))
	}
	op, rest, err := radioproto.DecodeOpcode(ctrl.writes[0])
	if err != nil || op != radioproto.CtrlCmdStartTransfer {
		t.Fatalf("opcode = %v, err = %v", op, err)
	}
	if got := radioproto.DecodeStartTransfer(rest); got != "gps.csv" {
		t.Errorf("basename = %q", got)
	}
}

func TestFullTransferForwardsAllChunksThenDone(t *testing.T) {
	ctrl := &fakeControl{}
	host := &fakeHost{}
	c := New(ctrl, host, PolicyStrict)
	c.Request("gps.csv")

	c.HandleControl(radioproto.StatusAccepted, 46)
	if got := c.Snapshot().State; got != StateReceiving {
		t.Fatalf("state = %v, want RECEIVING", got)
	}

	chunks := [][]byte{
		make([]byte, 18),
		make([]byte, 18),
		make([]byte, 10),
	}
	for i, payload := range chunks {
		c.HandleChunk(radioproto.EncodeChunk(uint16(i), payload))
	}

	c.HandleControl(radioproto.StatusDone, 46)

	snap := c.Snapshot()
	if snap.State != StateIdle {
		t.Fatalf("state after DONE = %v, want IDLE", snap.State)
	}
	if snap.BytesReceived != 46 {
		t.Errorf("bytesReceived = %d, want 46", snap.BytesReceived)
	}
	if snap.NextExpectedChunkIndex != 3 {
		t.Errorf("nextExpectedChunkIndex = %d, want 3", snap.NextExpectedChunkIndex)
	}
	if len(host.statuses) != 2 || host.statuses[0] != serialproto.StatusTransferStart || host.statuses[1] != serialproto.StatusTransferDone {
		t.Errorf("host statuses = %v, want [start done]", host.statuses)
	}
	if len(host.lines) != 3 {
		t.Errorf("len(host.lines) = %d, want 3", len(host.lines))
	}
}

func TestNoFileEmitsTransferError(t *testing.T) {
	ctrl := &fakeControl{}
	host := &fakeHost{}
	c := New(ctrl, host, PolicyStrict)
	c.Request("nope.csv")
	c.HandleControl(radioproto.StatusNoFile, 0)

	if got := c.Snapshot().State; got != StateIdle {
		t.Fatalf("state = %v, want IDLE", got)
	}
	if len(host.statuses) != 1 || host.statuses[0] != serialproto.StatusTransferError {
		t.Errorf("host statuses = %v, want [transfer-error]", host.statuses)
	}
}

func TestBusyEmitsTransferError(t *testing.T) {
	ctrl := &fakeControl{}
	host := &fakeHost{}
	c := New(ctrl, host, PolicyStrict)
	c.Request("a.csv")
	c.HandleControl(radioproto.StatusBusy, 0)

	if len(host.statuses) != 1 || host.statuses[0] != serialproto.StatusTransferError {
		t.Errorf("host statuses = %v, want [transfer-error]", host.statuses)
	}
}

func TestStrictMismatchDropsAndRealignsLater(t *testing.T) {
	ctrl := &fakeControl{}
	host := &fakeHost{}
	c := New(ctrl, host, PolicyStrict)
	c.Request("x.csv")
	c.HandleControl(radioproto.StatusAccepted, 100)

	c.HandleChunk(radioproto.EncodeChunk(0, []byte("a")))
	c.HandleChunk(radioproto.EncodeChunk(1, []byte("b")))
	c.HandleChunk(radioproto.EncodeChunk(3, []byte("skip-me"))) // mismatch, dropped

	if got := c.Snapshot().NextExpectedChunkIndex; got != 2 {
		t.Fatalf("nextExpected = %d, want 2 (unaffected by dropped mismatch)", got)
	}
	if len(host.lines) != 2 {
		t.Fatalf("len(host.lines) = %d, want 2 (mismatch not forwarded)", len(host.lines))
	}

	c.HandleChunk(radioproto.EncodeChunk(2, []byte("c")))
	if got := c.Snapshot().NextExpectedChunkIndex; got != 3 {
		t.Fatalf("nextExpected = %d, want 3", got)
	}

	c.HandleControl(radioproto.StatusDone, 100)
	snap := c.Snapshot()
	if snap.State != StateIdle {
		t.Fatalf("state = %v, want IDLE", snap.State)
	}
	if snap.BytesReceived >= 100 {
		t.Errorf("bytesReceived = %d, want < 100 (one chunk was dropped)", snap.BytesReceived)
	}
	// DONE with bytesReceived < expectedSize must still read as
	// transfer-done, not transfer-error.
	last := host.statuses[len(host.statuses)-1]
	if last != serialproto.StatusTransferDone {
		t.Errorf("final host status = %v, want transfer-done", last)
	}
}

func TestPermissivePolicyRealignsImmediately(t *testing.T) {
	ctrl := &fakeControl{}
	host := &fakeHost{}
	c := New(ctrl, host, PolicyPermissive)
	c.Request("x.csv")
	c.HandleControl(radioproto.StatusAccepted, 100)

	c.HandleChunk(radioproto.EncodeChunk(5, []byte("jump")))
	if got := c.Snapshot().NextExpectedChunkIndex; got != 5 {
		t.Fatalf("nextExpected = %d, want 5 (permissive realigns, not commits)", got)
	}
	if len(host.lines) != 0 {
		t.Errorf("permissive realign must not forward the mismatched chunk itself")
	}
}

func TestChunkOutsideReceivingIsIgnored(t *testing.T) {
	ctrl := &fakeControl{}
	host := &fakeHost{}
	c := New(ctrl, host, PolicyStrict)
	c.HandleChunk(radioproto.EncodeChunk(0, []byte("x")))
	if len(host.lines) != 0 {
		t.Error("chunk received while IDLE must not be committed")
	}
}

func TestLinkLossClearsActiveWithoutHostStatus(t *testing.T) {
	ctrl := &fakeControl{}
	host := &fakeHost{}
	c := New(ctrl, host, PolicyStrict)
	c.Request("x.csv")
	c.HandleControl(radioproto.StatusAccepted, 100)
	before := len(host.statuses)

	c.OnLinkLoss()

	snap := c.Snapshot()
	if snap.Active {
		t.Error("OnLinkLoss must clear active")
	}
	if snap.State != StateIdle {
		t.Errorf("state = %v, want IDLE", snap.State)
	}
	if len(host.statuses) != before {
		t.Error("OnLinkLoss must not emit a host status")
	}
}
