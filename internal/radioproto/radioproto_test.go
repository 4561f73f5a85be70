package radioproto

import "testing"

func TestChunkPayloadSize(t *testing.T) {
	cases := []struct {
		mtu  int
		want int
	}{
		{mtu: 23, want: 21},
		{mtu: 2, want: 0},
		{mtu: 1, want: -1},
		{mtu: 1000, want: MaxChunkPayload},
	}
	for _, c := range cases {
		got := ChunkPayloadSize(c.mtu)
		if got != c.want {
			t.Errorf("ChunkPayloadSize(%d) = %d, want %d", c.mtu, got, c.want)
		}
	}
}

func TestEncodeDecodeChunkRoundTrip(t *testing.T) {
	payload := []byte("hello world")
	enc := EncodeChunk(42, payload)
	idx, got, err := DecodeChunk(enc)
	if err != nil {
		t.Fatalf("DecodeChunk: %v", err)
	}
	if idx != 42 {
		t.Errorf("index = %d, want 42", idx)
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %q, want %q", got, payload)
	}
}

func TestDecodeChunkTooShort(t *testing.T) {
	if _, _, err := DecodeChunk([]byte{0x01}); err == nil {
		t.Fatal("expected error for short chunk")
	}
}

func TestStartTransferRoundTrip(t *testing.T) {
	enc := EncodeStartTransfer("gps.csv")
	op, rest, err := DecodeOpcode(enc)
	if err != nil {
		t.Fatalf("DecodeOpcode: %v", err)
	}
	if op != CtrlCmdStartTransfer {
		t.Fatalf("opcode = %x, want %x", op, CtrlCmdStartTransfer)
	}
	if got := DecodeStartTransfer(rest); got != "gps.csv" {
		t.Errorf("basename = %q, want gps.csv", got)
	}
}

func TestStatusAcceptedRoundTrip(t *testing.T) {
	enc := EncodeStatus(StatusAccepted, 46)
	_, rest, err := DecodeOpcode(enc)
	if err != nil {
		t.Fatalf("DecodeOpcode: %v", err)
	}
	status, size, err := DecodeStatus(rest)
	if err != nil {
		t.Fatalf("DecodeStatus: %v", err)
	}
	if status != StatusAccepted || size != 46 {
		t.Errorf("status=%v size=%d, want ACCEPTED/46", status, size)
	}
}

func TestStatusNonAcceptedHasNoSize(t *testing.T) {
	enc := EncodeStatus(StatusNoFile, 0)
	if len(enc) != 2 {
		t.Fatalf("encoded non-accepted status should be 2 bytes, got %d", len(enc))
	}
}

func TestDecodeStatusAcceptedMissingSize(t *testing.T) {
	if _, _, err := DecodeStatus([]byte{byte(StatusAccepted), 1, 2}); err == nil {
		t.Fatal("expected error for truncated accepted status")
	}
}

func TestDoneAndAbortedHaveNoSize(t *testing.T) {
	for _, s := range []StatusCode{StatusDone, StatusAborted} {
		enc := EncodeStatus(s, 46)
		if len(enc) != 2 {
			t.Fatalf("encoded %v should be 2 bytes, got %d", s, len(enc))
		}
		_, rest, err := DecodeOpcode(enc)
		if err != nil {
			t.Fatalf("DecodeOpcode: %v", err)
		}
		status, size, err := DecodeStatus(rest)
		if err != nil {
			t.Fatalf("DecodeStatus(%v): %v", s, err)
		}
		if status != s || size != 0 {
			t.Errorf("status=%v size=%d, want %v/0", status, size, s)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if StatusAccepted.IsTerminal() {
		t.Error("ACCEPTED must not be terminal")
	}
	for _, s := range []StatusCode{StatusNoFile, StatusFSError, StatusBusy, StatusDone, StatusAborted} {
		if !s.IsTerminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
}
