package sack

import "fmt"

// Selector carries at most one filter per field. It is the partial-spec
// counterpart to Query: Matches compiles it to a Query and materialises the
// result as a PackageSet.
type Selector struct {
	s *Sack

	hasName, hasProvides, hasFile bool
	name, provides, file          string
	nameCmp, providesCmp, fileCmp CmpFlag

	hasArch, hasEVR, hasReponame bool
	arch, evr, reponame          string
	archCmp                      CmpFlag
}

// NewSelector returns an empty selector bound to s.
func NewSelector(s *Sack) *Selector { return &Selector{s: s} }

// Set validates (key, cmp) and overwrites the existing value for that field.
func (sel *Selector) Set(key Keyname, cmp CmpFlag, match string) error {
	base := cmp.base()
	switch key {
	case PKGNAME:
		if base != EQ && base != GLOB {
			return newErr("Selector.Set", KindSelector, fmt.Errorf("NAME accepts EQ or GLOB only"))
		}
		sel.hasName, sel.name, sel.nameCmp = true, match, cmp
	case PROVIDES:
		sel.hasProvides, sel.provides, sel.providesCmp = true, match, cmp
	case FILE:
		sel.hasFile, sel.file, sel.fileCmp = true, match, cmp
	case ARCH:
		if base != EQ && base != GLOB {
			return newErr("Selector.Set", KindSelector, fmt.Errorf("ARCH accepts EQ or GLOB only"))
		}
		sel.hasArch, sel.arch, sel.archCmp = true, match, cmp
	case EVR:
		sel.hasEVR, sel.evr = true, match
	case REPONAME:
		if base != EQ {
			return newErr("Selector.Set", KindSelector, fmt.Errorf("REPONAME accepts EQ only"))
		}
		sel.hasReponame, sel.reponame = true, match
	default:
		return newErr("Selector.Set", KindSelector, fmt.Errorf("field %v cannot be used in a selector", key))
	}
	return nil
}

// wellFormed reports whether the selector has at least one of
// name/provides/file set.
func (sel *Selector) wellFormed() bool {
	return sel.hasName || sel.hasProvides || sel.hasFile
}

// Matches materialises the selector against the sack as a PackageSet,
// constraining by arch/evr/repo as configured. Converting an ill-formed
// selector (no name/provides/file) fails with KindSelector.
func (sel *Selector) Matches() (PackageSet, error) {
	if !sel.wellFormed() {
		return PackageSet{}, newErr("Selector.Matches", KindSelector, fmt.Errorf("selector has no name, provides, or file filter"))
	}

	q := NewQuery(sel.s, 0)
	if sel.hasName {
		if err := q.Filter(PKGNAME, sel.nameCmp, sel.name); err != nil {
			return PackageSet{}, err
		}
	}
	if sel.hasProvides {
		rd, cmp, evr, err := ParseReldepString(sel.provides)
		if err != nil {
			return PackageSet{}, err
		}
		reldep, err := NewReldep(sel.s, rd, cmp, evr)
		if err != nil {
			return PackageSet{}, err
		}
		var rl ReldepList
		rl.Add(reldep)
		if err := q.FilterReldep(PROVIDES, sel.providesCmp, rl); err != nil {
			return PackageSet{}, err
		}
	}
	if sel.hasFile {
		if err := q.Filter(FILE, sel.fileCmp, sel.file); err != nil {
			return PackageSet{}, err
		}
	}
	if sel.hasArch {
		if err := q.Filter(ARCH, sel.archCmp, sel.arch); err != nil {
			return PackageSet{}, err
		}
	}
	if sel.hasEVR {
		if err := q.Filter(EVR, EQ, sel.evr); err != nil {
			return PackageSet{}, err
		}
	}
	if sel.hasReponame {
		if err := q.Filter(REPONAME, EQ, sel.reponame); err != nil {
			return PackageSet{}, err
		}
	}
	return q.RunSet()
}

// fixesEVR reports whether the selector pins an exact EVR, matching the
// goal layer's "EVR-fixing selector becomes an install, not an update" rule.
func (sel *Selector) fixesEVR() bool { return sel.hasEVR }
