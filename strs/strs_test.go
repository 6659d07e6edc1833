package strs

import "testing"

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		[]byte(""),
		[]byte("hello"),
		[]byte("this string is definitely longer than twenty four bytes"),
		[]byte("héllo wörld"), // multi-byte runes
	}
	for _, b := range cases {
		s := New(b)
		if string(s.Bytes()) != string(b) {
			t.Fatalf("Bytes\nhave %q\nwant %q", s.Bytes(), b)
		}
		want := 0
		for range string(b) {
			want++
		}
		if s.Len() != want {
			t.Fatalf("Len\nhave %d\nwant %d", s.Len(), want)
		}
	}
}

func TestRefcount(t *testing.T) {
	big := make([]byte, smallCap+1)
	s := New(big)
	if s.dyn == nil {
		t.Fatal("expected dynamic String for > smallCap bytes")
	}

	freed := 0
	s.dyn.onFree = func() { freed++ }

	const n = 5
	clones := make([]String, n)
	for i := range clones {
		clones[i] = s.Clone()
	}
	for i := range clones {
		clones[i].Release()
	}
	if freed != 0 {
		t.Fatalf("freed early: %d", freed)
	}
	s.Release()
	if freed != 1 {
		t.Fatalf("freed count\nhave %d\nwant 1", freed)
	}
}

func TestSmallBufferNoSharing(t *testing.T) {
	s := New([]byte("short"))
	if s.dyn != nil {
		t.Fatal("expected small-buffer String")
	}
	clone := s.Clone()
	clone.Release()
	s.Release() // no-op, must not panic
	if string(s.Bytes()) != "short" {
		t.Fatalf("small string mutated after Release: %q", s.Bytes())
	}
}

func TestEqualAndHash(t *testing.T) {
	a := FromString("abc")
	b := FromString("abc")
	c := FromString("abd")
	if !a.Equal(b) {
		t.Fatal("expected a == b")
	}
	if a.Equal(c) {
		t.Fatal("expected a != c")
	}
	if a.Hash() != b.Hash() {
		t.Fatal("expected equal hashes for equal strings")
	}
}
