package sack

import "testing"

// testSack returns a minimal sack usable without touching disk: a pool with
// two archs (NewSack requires at least two to succeed) and no loaded repos.
func testSack(t *testing.T) *Sack {
	t.Helper()
	s, err := NewSack(SackOptions{CacheDir: t.TempDir(), Arch: "x86_64"})
	if err != nil {
		t.Fatalf("NewSack: %v", err)
	}
	return s
}

type testPkgSpec struct {
	name, version, release, arch string
	epoch                        int64
	installed, userInstalled     bool
	requires, provides, obsoletes []string // "name" or "name OP evr"
	files                          []string
}

// addTestPkg interns pkg directly into s's pool, bypassing repo loading
// entirely, constructing solver fixtures by hand rather than round-tripping
// through a file format in every test.
func addTestPkg(t *testing.T, s *Sack, spec testPkgSpec) Package {
	t.Helper()
	sv := &solvable{
		name: spec.name, version: spec.version, release: spec.release, arch: spec.arch,
		epoch: spec.epoch, installed: spec.installed, userInstalled: spec.userInstalled,
		files: spec.files,
	}
	sv.requires = mustReldeps(t, s, spec.requires)
	sv.provides = mustReldeps(t, s, spec.provides)
	sv.obsoletes = mustReldeps(t, s, spec.obsoletes)
	id := s.pool.addSolvable(sv)
	if spec.installed {
		s.pool.installed = &repoHandle{name: SystemRepoName}
		sv.repo = s.pool.installed
	}
	s.consideredUpToDate = false
	return Package{s: s, id: id}
}

func mustReldeps(t *testing.T, s *Sack, strs []string) ReldepList {
	t.Helper()
	var rl ReldepList
	for _, str := range strs {
		rd, err := NewReldepFromString(s, str)
		if err != nil {
			t.Fatalf("NewReldepFromString(%q): %v", str, err)
		}
		rl.Add(rd)
	}
	return rl
}
