package sack

import "testing"

func TestSubjectNevraPossibilitiesMostSpecificFirst(t *testing.T) {
	it := NewSubject("bash-5.1.8-1.fc35.x86_64").NevraPossibilities(nil)
	n, form, ok := it.Next()
	if !ok {
		t.Fatal("expected at least one candidate")
	}
	if form != FormNEVRA {
		t.Fatalf("expected first candidate to be FormNEVRA, got %v", form)
	}
	if n.Name != "bash" || n.Arch != "x86_64" {
		t.Fatalf("unexpected candidate: %+v", n)
	}
}

func TestSubjectNevraPossibilitiesRealFiltersByKnownName(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{name: "bash", version: "5.1.8", release: "1.fc35", arch: "x86_64"})

	it := NewSubject("nonexistent-package").NevraPossibilitiesReal(s, 0)
	if _, _, ok := it.Next(); ok {
		t.Fatal("expected no reality-checked candidates for an unknown name")
	}

	it2 := NewSubject("bash").NevraPossibilitiesReal(s, 0)
	n, _, ok := it2.Next()
	if !ok || n.Name != "bash" {
		t.Fatalf("expected a candidate named bash, got %+v ok=%v", n, ok)
	}
}

func TestSubjectReldepPossibilitiesReal(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{name: "bash", version: "5.1", release: "1", arch: "x86_64",
		provides: []string{"bash"}})

	rd, ok, err := NewSubject("bash >= 5.0").ReldepPossibilitiesReal(s)
	if err != nil {
		t.Fatalf("ReldepPossibilitiesReal: %v", err)
	}
	if !ok || rd.Name() != "bash" {
		t.Fatalf("expected a bash reldep, got %+v ok=%v", rd, ok)
	}

	_, ok2, err := NewSubject("totally-unknown-pkg").ReldepPossibilitiesReal(s)
	if err != nil {
		t.Fatalf("ReldepPossibilitiesReal: %v", err)
	}
	if ok2 {
		t.Fatal("expected no match for an unknown package name")
	}
}
