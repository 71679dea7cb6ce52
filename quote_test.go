package imap

import "testing"

func TestQuote(t *testing.T) {
	cases := []struct{ in, want string }{
		{"INBOX", `"INBOX"`},
		{"", `""`},
		{`a"b`, `"a\"b"`},
		{`a\b`, `"a\\b"`},
		{`"quoted" \ string`, `"\"quoted\" \\ string"`},
	}
	for _, tc := range cases {
		if got := Quote(tc.in); got != tc.want {
			t.Errorf("Quote(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
