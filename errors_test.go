package imap

import (
	"errors"
	"testing"
)

func TestCommandTimeoutError(t *testing.T) {
	err := &CommandTimeout{Tag: "A0001", Name: "FETCH"}
	want := "imap: command A0001 FETCH timed out"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTransportLostUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &TransportLost{Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	want := "imap: transport lost: connection reset"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTransportLostNoCause(t *testing.T) {
	err := &TransportLost{}
	if got, want := err.Error(), "imap: transport lost"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestProtocolAbortAndErrorMessages(t *testing.T) {
	abort := &ProtocolAbort{Reason: "tag reused"}
	if got, want := abort.Error(), "imap: protocol abort: tag reused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	protoErr := &ProtocolError{Reason: "EXPUNGE is not valid in the current state"}
	if got, want := protoErr.Error(), "imap: EXPUNGE is not valid in the current state"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
