package sack

import "testing"

func TestParseReldepStringOperators(t *testing.T) {
	cases := []struct {
		in       string
		wantName string
		wantCmp  CmpFlag
		wantEVR  string
	}{
		{"libc", "libc", 0, ""},
		{"libc >= 2.17", "libc", GT | EQ, "2.17"},
		{"libc <= 2.17", "libc", LT | EQ, "2.17"},
		{"libc = 2.17", "libc", EQ, "2.17"},
		{"libc < 2.17", "libc", LT, "2.17"},
		{"libc > 2.17", "libc", GT, "2.17"},
		{"perl(Foo::Bar)", "perl(Foo::Bar)", 0, ""},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			name, cmp, evr, err := ParseReldepString(c.in)
			if err != nil {
				t.Fatalf("ParseReldepString(%q): %v", c.in, err)
			}
			if name != c.wantName || cmp != c.wantCmp || evr != c.wantEVR {
				t.Errorf("ParseReldepString(%q) = (%q, %v, %q), want (%q, %v, %q)",
					c.in, name, cmp, evr, c.wantName, c.wantCmp, c.wantEVR)
			}
		})
	}
}

func TestReldepStringRenders(t *testing.T) {
	s := testSack(t)
	rd, err := NewReldep(s, "libc", GT|EQ, "2.17")
	if err != nil {
		t.Fatalf("NewReldep: %v", err)
	}
	if got, want := rd.String(), "libc >= 2.17"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	bare, err := NewReldep(s, "libc", 0, "")
	if err != nil {
		t.Fatalf("NewReldep: %v", err)
	}
	if got, want := bare.String(), "libc"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewReldepRejectsEmptyName(t *testing.T) {
	s := testSack(t)
	if _, err := NewReldep(s, "", EQ, "1"); err == nil {
		t.Fatal("expected error for empty reldep name")
	}
}

func TestReldepListAddAndExtend(t *testing.T) {
	s := testSack(t)
	a, _ := NewReldep(s, "a", 0, "")
	b, _ := NewReldep(s, "b", 0, "")
	var l1, l2 ReldepList
	l1.Add(a)
	l2.Add(b)
	l1.Extend(l2)
	if l1.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l1.Len())
	}
	if l1.Get(0).Name() != "a" || l1.Get(1).Name() != "b" {
		t.Errorf("unexpected order: %v", l1.All())
	}
}
