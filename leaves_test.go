package sack

import "testing"

// TestLeavesExcludesRequiredDependency builds a -> b (a Requires what only b
// Provides): b has an incoming edge so it is not a leaf, a has none so it is.
func TestLeavesExcludesRequiredDependency(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{
		name: "a", version: "1.0", release: "1", arch: "x86_64", installed: true,
		requires: []string{"libb"},
	})
	addTestPkg(t, s, testPkgSpec{
		name: "b", version: "1.0", release: "1", arch: "x86_64", installed: true,
		provides: []string{"libb"},
	})

	groups, err := Leaves(s)
	if err != nil {
		t.Fatalf("Leaves: %v", err)
	}
	var names []string
	for _, g := range groups {
		for _, p := range g {
			names = append(names, p.Name())
		}
	}
	if len(names) != 1 || names[0] != "a" {
		t.Fatalf("expected leaves=[a], got %v", names)
	}
}

func TestLeavesIncludesUnrelatedInstalledPackages(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{name: "standalone", version: "1.0", release: "1", arch: "x86_64", installed: true})

	groups, err := Leaves(s)
	if err != nil {
		t.Fatalf("Leaves: %v", err)
	}
	if len(groups) != 1 || len(groups[0]) != 1 || groups[0][0].Name() != "standalone" {
		t.Fatalf("expected single leaf group [standalone], got %v", groups)
	}
}

func TestLeavesIgnoresAmbiguousProvider(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{
		name: "a", version: "1.0", release: "1", arch: "x86_64", installed: true,
		requires: []string{"libb"},
	})
	addTestPkg(t, s, testPkgSpec{
		name: "b1", version: "1.0", release: "1", arch: "x86_64", installed: true,
		provides: []string{"libb"},
	})
	addTestPkg(t, s, testPkgSpec{
		name: "b2", version: "1.0", release: "1", arch: "x86_64", installed: true,
		provides: []string{"libb"},
	})

	groups, err := Leaves(s)
	if err != nil {
		t.Fatalf("Leaves: %v", err)
	}
	// With two providers of libb, uniqueInstalledProvider finds none, so no
	// edge is recorded and all three packages are leaves in their own right.
	if len(groups) != 3 {
		t.Fatalf("expected 3 independent leaves, got %d", len(groups))
	}
}
