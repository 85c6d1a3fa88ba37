package sack

import "testing"

func TestSelectorMatchesByNameAndArch(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{name: "foo", version: "1.0", release: "1", arch: "x86_64"})
	addTestPkg(t, s, testPkgSpec{name: "foo", version: "1.0", release: "1", arch: "i686"})

	sel := NewSelector(s)
	if err := sel.Set(PKGNAME, EQ, "foo"); err != nil {
		t.Fatalf("Set name: %v", err)
	}
	if err := sel.Set(ARCH, EQ, "x86_64"); err != nil {
		t.Fatalf("Set arch: %v", err)
	}
	ps, err := sel.Matches()
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if ps.Len() != 1 || ps.Packages()[0].Arch() != "x86_64" {
		t.Fatalf("expected single x86_64 match, got %d", ps.Len())
	}
}

func TestSelectorRejectsEmptySelector(t *testing.T) {
	s := testSack(t)
	sel := NewSelector(s)
	if err := sel.Set(ARCH, EQ, "x86_64"); err != nil {
		t.Fatalf("Set arch: %v", err)
	}
	if _, err := sel.Matches(); err == nil {
		t.Fatal("expected error: selector has no name/provides/file")
	}
}

func TestSelectorFixesEVR(t *testing.T) {
	s := testSack(t)
	sel := NewSelector(s)
	_ = sel.Set(PKGNAME, EQ, "foo")
	if sel.fixesEVR() {
		t.Fatal("fixesEVR should be false before EVR is set")
	}
	_ = sel.Set(EVR, EQ, "1.0-1")
	if !sel.fixesEVR() {
		t.Fatal("fixesEVR should be true once EVR is set")
	}
}
