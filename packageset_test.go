package sack

import "testing"

func TestPackageSetAddContainsRemove(t *testing.T) {
	s := testSack(t)
	foo := addTestPkg(t, s, testPkgSpec{name: "foo", version: "1.0", release: "1", arch: "x86_64"})
	bar := addTestPkg(t, s, testPkgSpec{name: "bar", version: "1.0", release: "1", arch: "x86_64"})

	ps := NewPackageSet(s)
	ps.Add(foo)
	if !ps.Contains(foo) || ps.Contains(bar) {
		t.Fatalf("Contains mismatch after Add(foo)")
	}
	if ps.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ps.Len())
	}
	ps.Remove(foo)
	if ps.Contains(foo) || ps.Len() != 0 {
		t.Fatalf("expected empty set after Remove")
	}
}

func TestPackageSetSetOps(t *testing.T) {
	s := testSack(t)
	foo := addTestPkg(t, s, testPkgSpec{name: "foo", version: "1.0", release: "1", arch: "x86_64"})
	bar := addTestPkg(t, s, testPkgSpec{name: "bar", version: "1.0", release: "1", arch: "x86_64"})

	a := NewPackageSet(s)
	a.Add(foo)
	b := NewPackageSet(s)
	b.Add(foo)
	b.Add(bar)

	if got := a.Union(b).Len(); got != 2 {
		t.Errorf("Union.Len() = %d, want 2", got)
	}
	if got := a.Intersection(b).Len(); got != 1 {
		t.Errorf("Intersection.Len() = %d, want 1", got)
	}
	if got := b.Difference(a).Len(); got != 1 || !b.Difference(a).Contains(bar) {
		t.Errorf("Difference.Len() = %d, want 1 containing bar", got)
	}
}

func TestPackageCmpAndEqual(t *testing.T) {
	s := testSack(t)
	older := addTestPkg(t, s, testPkgSpec{name: "foo", version: "1.0", release: "1", arch: "x86_64"})
	newer := addTestPkg(t, s, testPkgSpec{name: "foo", version: "2.0", release: "1", arch: "x86_64"})

	if Cmp(older, newer) >= 0 {
		t.Errorf("Cmp(older, newer) should be negative")
	}
	if !Equal(older, older) {
		t.Errorf("Equal(older, older) should be true")
	}
	if Equal(older, newer) {
		t.Errorf("Equal(older, newer) should be false")
	}
}
