package imap

import (
	"testing"
	"time"
)

func TestFormatInternalDateTime(t *testing.T) {
	loc := time.FixedZone("", -7*3600)
	tm := time.Date(2024, time.March, 5, 1, 2, 3, 0, loc)
	got, err := FormatInternalDate(tm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `"05-Mar-2024 01:02:03 -0700"`
	if got != want {
		t.Errorf("FormatInternalDate() = %q, want %q", got, want)
	}
}

func TestFormatInternalDateZero(t *testing.T) {
	if _, err := FormatInternalDate(time.Time{}); err == nil {
		t.Error("expected error for zero time.Time")
	}
}

func TestFormatInternalDateEpoch(t *testing.T) {
	if _, err := FormatInternalDate(int64(1700000000)); err != nil {
		t.Errorf("unexpected error for int64 input: %v", err)
	}
	if _, err := FormatInternalDate(1700000000); err != nil {
		t.Errorf("unexpected error for int input: %v", err)
	}
	if _, err := FormatInternalDate(1700000000.5); err != nil {
		t.Errorf("unexpected error for float64 input: %v", err)
	}
}

func TestFormatInternalDatePreQuotedString(t *testing.T) {
	in := `"05-Mar-2024 01:02:03 -0700"`
	got, err := FormatInternalDate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != in {
		t.Errorf("FormatInternalDate() = %q, want passthrough %q", got, in)
	}
}

func TestFormatInternalDateUnquotedString(t *testing.T) {
	if _, err := FormatInternalDate("05-Mar-2024 01:02:03 -0700"); err == nil {
		t.Error("expected error for unquoted string input")
	}
}

func TestFormatInternalDateUnsupportedType(t *testing.T) {
	if _, err := FormatInternalDate([]byte("x")); err == nil {
		t.Error("expected error for unsupported input type")
	}
}
