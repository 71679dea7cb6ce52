package imap

import "testing"

func TestConnStateString(t *testing.T) {
	cases := map[ConnState]string{
		ConnStateStarted:          "started",
		ConnStateConnected:        "connected",
		ConnStateNotAuthenticated: "not authenticated",
		ConnStateAuthenticated:    "authenticated",
		ConnStateSelected:         "selected",
		ConnStateLogout:           "logout",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", int(state), got, want)
		}
	}
}

func TestConnStateStringUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected String() to panic on an unrecognized state")
		}
	}()
	ConnState(999).String()
}
