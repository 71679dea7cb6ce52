package imap

import "testing"

func TestSeqSetString(t *testing.T) {
	cases := []struct {
		name string
		set  SeqSet
		want string
	}{
		{"single", SeqSetNum(5), "5"},
		{"discrete", SeqSetNum(1, 3, 9), "1,3,9"},
		{"range", func() SeqSet { var s SeqSet; s.AddRange(1, 3); return s }(), "1:3"},
		{"star-tail", func() SeqSet { var s SeqSet; s.AddRange(5, star); return s }(), "5:*"},
		{"mixed", func() SeqSet {
			var s SeqSet
			s.AddRange(1, 3)
			s.AddNum(9)
			s.AddRange(20, star)
			return s
		}(), "1:3,9,20:*"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.set.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSeqSetDynamic(t *testing.T) {
	if (SeqSetNum(1, 2, 3)).Dynamic() {
		t.Error("discrete set should not be dynamic")
	}
	var s SeqSet
	s.AddRange(1, star)
	if !s.Dynamic() {
		t.Error("range ending in * should be dynamic")
	}
}

func TestSeqSetContains(t *testing.T) {
	var s SeqSet
	s.AddRange(1, 3)
	s.AddNum(9)
	for _, n := range []uint32{1, 2, 3, 9} {
		if !s.Contains(n) {
			t.Errorf("expected set to contain %d", n)
		}
	}
	for _, n := range []uint32{4, 8, 10} {
		if s.Contains(n) {
			t.Errorf("expected set to not contain %d", n)
		}
	}
}

func TestUIDSetString(t *testing.T) {
	s := UIDSetNum(100, 200)
	s.AddRange(300, star)
	if got, want := s.String(), "100,200,300:*"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestUIDSetDynamic(t *testing.T) {
	if (UIDSetNum(1, 2)).Dynamic() {
		t.Error("discrete UID set should not be dynamic")
	}
	var s UIDSet
	s.AddRange(1, star)
	if !s.Dynamic() {
		t.Error("UID range ending in * should be dynamic")
	}
}
