package imap

import "testing"

func TestCapSetHasCaseInsensitive(t *testing.T) {
	set := NewCapSet("idle", "UIDPLUS")
	if !set.Has(CapIdle) {
		t.Error("expected lowercase token to be recognized as IDLE")
	}
	if !set.Has(CapUIDPlus) {
		t.Error("expected UIDPLUS to be present")
	}
	if set.Has(CapMove) {
		t.Error("did not expect MOVE to be present")
	}
}

func TestCapSetAdd(t *testing.T) {
	set := NewCapSet()
	set.Add(CapStartTLS)
	if !set.Has(CapStartTLS) {
		t.Error("expected Add to insert STARTTLS")
	}
}

func TestCapSetUnionDoesNotMutate(t *testing.T) {
	a := NewCapSet("IDLE")
	b := NewCapSet("MOVE")
	out := a.Union(b)

	if !out.Has(CapIdle) || !out.Has(CapMove) {
		t.Fatalf("union missing expected members: %v", out)
	}
	if a.Has(CapMove) {
		t.Error("Union must not mutate its receiver")
	}
	if b.Has(CapIdle) {
		t.Error("Union must not mutate its argument")
	}
}

func TestCapSetAuthMechanisms(t *testing.T) {
	set := NewCapSet("AUTH=PLAIN", "AUTH=XOAUTH2", "IDLE")
	mechs := set.AuthMechanisms()
	if len(mechs) != 2 {
		t.Fatalf("expected 2 auth mechanisms, got %v", mechs)
	}
	seen := map[string]bool{}
	for _, m := range mechs {
		seen[m] = true
	}
	if !seen["PLAIN"] || !seen["XOAUTH2"] {
		t.Errorf("expected PLAIN and XOAUTH2, got %v", mechs)
	}
}

func TestNegotiatedVersion(t *testing.T) {
	v, ok := NegotiatedVersion([]string{"idle", "imap4rev1", "uidplus"})
	if !ok || v != string(CapIMAP4rev1) {
		t.Errorf("NegotiatedVersion() = (%q, %v), want (%q, true)", v, ok, CapIMAP4rev1)
	}

	if _, ok := NegotiatedVersion([]string{"idle", "uidplus"}); ok {
		t.Error("expected no version match when neither token is present")
	}
}
