package sack

import (
	"os"
	"path/filepath"
)

// InstalledPackage is one rpmdb record, already decoded by the caller.
// Parsing the actual Berkeley-DB/sqlite rpmdb formats is outside this
// package's scope (no example-pack library covers either format); a caller
// that owns an rpmdb reader supplies the decoded records here instead, the
// same way this package accepts pre-parsed RepoFiles paths rather than
// fetching them itself.
type InstalledPackage struct {
	Name, Version, Release, Arch string
	Epoch                        int64
	Summary, Description, URL    string
	SourceRPM                    string
	Files                        []string
	Requires, Provides           []Dependency
	Conflicts, Obsoletes         []Dependency
	UserInstalled                bool
}

// Dependency is a caller-facing, string-only relational dependency, used at
// the InstalledPackage/LoadSystemRepo boundary so callers don't need to
// depend on the pool-interned Reldep type to build a record.
type Dependency struct {
	Name string
	Cmp  CmpFlag
	EVR  string
}

func depsToCache(ds []Dependency) []cacheReldep {
	out := make([]cacheReldep, 0, len(ds))
	for _, d := range ds {
		out = append(out, cacheReldep{Name: d.Name, EVR: d.EVR, Cmp: d.Cmp})
	}
	return out
}

// rpmdbPath resolves the rpmdb location: <rootdir>/var/lib/rpm/Packages,
// falling back to /usr/share/rpm/Packages when the rootdir path is absent.
func rpmdbPath(rootDir string) string {
	primary := filepath.Join(rootDir, "var", "lib", "rpm", "Packages")
	if _, err := os.Stat(primary); err == nil {
		return primary
	}
	return "/usr/share/rpm/Packages"
}

// LoadSystemRepo loads the @System repo from the caller-decoded rpmdb
// records in pkgs, using the rpmdb file's stat to compute the same
// content checksum a real rpmdb-backed implementation would use for cache
// validation. If a valid @System.solv cache exists it is preferred over
// pkgs; otherwise pkgs is materialized and, when buildCache is set, written
// back. Loading the system repo sets the pool's installed repo and marks
// every one of its solvables installed.
func (s *Sack) LoadSystemRepo(pkgs []InstalledPackage, buildCache bool) (Repo, error) {
	const op = "Sack.LoadSystemRepo"

	path := rpmdbPath(s.rootDir)
	fi, err := os.Stat(path)
	var checksum [32]byte
	if err == nil {
		dev, ino := statDevIno(fi)
		checksum = rpmdbChecksum(fi, dev, ino)
	}

	h := newRepoHandle(SystemRepoName)
	s.repos[SystemRepoName] = h
	if !containsString(s.repoOrder, SystemRepoName) {
		s.repoOrder = append([]string{SystemRepoName}, s.repoOrder...)
	}
	s.pool.installed = h

	cp := cachePath(s.cacheDir, SystemRepoName, ExtMain)
	if err == nil {
		if payload, ok := readCache(cp, checksum); ok {
			s.materializeInstalled(h, payload)
			h.states[ExtMain] = StateLoadedCache
			h.checksum = checksum
			s.providesReady = false
			s.consideredUpToDate = false
			return Repo{h: h}, nil
		}
	}

	payload := systemPayload(pkgs)
	s.materializeInstalled(h, payload)
	h.states[ExtMain] = StateLoadedFetch
	h.checksum = checksum
	if buildCache && err == nil {
		if werr := writeCache(cp, payload, checksum); werr != nil {
			return Repo{}, werr
		}
		h.states[ExtMain] = StateWritten
	}

	s.providesReady = false
	s.consideredUpToDate = false
	return Repo{h: h}, nil
}

func containsString(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

func systemPayload(pkgs []InstalledPackage) cachePayload {
	var payload cachePayload
	for _, p := range pkgs {
		payload.Solvables = append(payload.Solvables, cacheSolvable{
			Name: p.Name, Version: p.Version, Release: p.Release, Arch: p.Arch, Epoch: p.Epoch,
			Summary: p.Summary, Description: p.Description, URL: p.URL, SourceRPM: p.SourceRPM,
			Files:     p.Files,
			Requires:  depsToCache(p.Requires),
			Provides:  depsToCache(p.Provides),
			Conflicts: depsToCache(p.Conflicts),
			Obsoletes: depsToCache(p.Obsoletes),
		})
	}
	return payload
}

func (s *Sack) materializeInstalled(h *repoHandle, payload cachePayload) {
	s.materialize(h, payload)
	for _, id := range s.pool.allIDs() {
		sv := s.pool.get(id)
		if sv != nil && sv.repo == h {
			sv.installed = true
		}
	}
}
