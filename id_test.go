package imap

import (
	"strings"
	"testing"
)

func TestEncodeIDEmpty(t *testing.T) {
	got, err := EncodeID(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "NIL" {
		t.Errorf("EncodeID(nil) = %q, want %q", got, "NIL")
	}
}

func TestEncodeIDFields(t *testing.T) {
	fields := IDFields{
		IDString("name", "mua"),
		IDString("version", "1.0"),
		{Name: "vendor", Value: nil},
	}
	got, err := EncodeID(fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `("name" "mua" "version" "1.0" "vendor" NIL)`
	if got != want {
		t.Errorf("EncodeID() = %q, want %q", got, want)
	}
}

func TestEncodeIDTooManyPairs(t *testing.T) {
	fields := make(IDFields, idMaxPairsCount+1)
	for i := range fields {
		fields[i] = IDString("k", "v")
	}
	if _, err := EncodeID(fields); err == nil {
		t.Error("expected error when exceeding the max pair count")
	}
}

func TestEncodeIDFieldNameTooLong(t *testing.T) {
	fields := IDFields{IDString(strings.Repeat("x", idMaxFieldLen+1), "v")}
	if _, err := EncodeID(fields); err == nil {
		t.Error("expected error for an over-long field name")
	}
}

func TestEncodeIDValueTooLong(t *testing.T) {
	fields := IDFields{IDString("name", strings.Repeat("x", idMaxValueLen+1))}
	if _, err := EncodeID(fields); err == nil {
		t.Error("expected error for an over-long field value")
	}
}
