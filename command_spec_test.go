package imap

import "testing"

func TestLookupCommandUnknown(t *testing.T) {
	if _, ok := LookupCommand("BOGUS"); ok {
		t.Error("expected BOGUS to not be a known command")
	}
}

func TestCommandSpecValidIn(t *testing.T) {
	spec, ok := LookupCommand("SELECT")
	if !ok {
		t.Fatal("SELECT should be a known command")
	}
	if !spec.ValidIn(ConnStateAuthenticated) {
		t.Error("SELECT should be valid in Authenticated")
	}
	if spec.ValidIn(ConnStateNotAuthenticated) {
		t.Error("SELECT should not be valid in NotAuthenticated")
	}
	if spec.ValidIn(ConnStateLogout) {
		t.Error("SELECT should not be valid in Logout")
	}
}

func TestCommandSpecRespNameOverride(t *testing.T) {
	spec, ok := LookupCommand("GETQUOTAROOT")
	if !ok {
		t.Fatal("GETQUOTAROOT should be a known command")
	}
	if got, want := spec.RespName(), "QUOTA"; got != want {
		t.Errorf("RespName() = %q, want %q", got, want)
	}

	storeSpec, ok := LookupCommand("STORE")
	if !ok {
		t.Fatal("STORE should be a known command")
	}
	if got, want := storeSpec.RespName(), "FETCH"; got != want {
		t.Errorf("RespName() = %q, want %q", got, want)
	}
}

func TestCommandSpecRespNameDefault(t *testing.T) {
	spec, ok := LookupCommand("NOOP")
	if !ok {
		t.Fatal("NOOP should be a known command")
	}
	if got, want := spec.RespName(), "NOOP"; got != want {
		t.Errorf("RespName() = %q, want %q", got, want)
	}
}

func TestIdleOnlyValidInSelected(t *testing.T) {
	spec, ok := LookupCommand("IDLE")
	if !ok {
		t.Fatal("IDLE should be a known command")
	}
	for _, st := range []ConnState{ConnStateStarted, ConnStateNotAuthenticated, ConnStateAuthenticated, ConnStateLogout} {
		if spec.ValidIn(st) {
			t.Errorf("IDLE should not be valid in state %v", st)
		}
	}
	if !spec.ValidIn(ConnStateSelected) {
		t.Error("IDLE should be valid in Selected")
	}
}
