package sack

import "path/filepath"

// SubjectFlags controls how Subject resolves candidates against a sack.
type SubjectFlags uint8

const (
	// SubjectGlob honours glob characters in the subject string when
	// reality-checking a candidate's name/arch against the sack.
	SubjectGlob SubjectFlags = 1 << iota
	// SubjectICase makes reality checks against the sack case-insensitive.
	SubjectICase
)

// Subject is a lazily-parsed, user-supplied package reference string. It
// yields structured NEVRA candidates on demand; it never restarts once
// exhausted.
type Subject struct {
	str string
}

// NewSubject wraps a raw string for later parsing.
func NewSubject(s string) Subject { return Subject{str: s} }

// nevraIter is the finite, non-restartable iterator Subject.NevraPossibilities
// and Subject.NevraPossibilitiesReal both return.
type nevraIter struct {
	str    string
	forms  []Form
	cursor int
	real   bool
	sack   *Sack
	flags  SubjectFlags
}

// NevraPossibilities yields NEVRAs most-specific-first (NEVRA, NEVR, NEV,
// NA, NAME) when forms is nil, trying each grammar against the raw string
// with no cross-check against any sack.
func (s Subject) NevraPossibilities(forms []Form) *nevraIter {
	if forms == nil {
		forms = mostSpecificFirst
	}
	return &nevraIter{str: s.str, forms: forms}
}

// NevraPossibilitiesReal is like NevraPossibilities, but tries forms in
// "real/user-intent" order (NA, NAME, NEVRA, NEV, NEVR) and reality-checks
// each candidate against sk: the name must be known to the sack, and the
// arch (if any) must be "src", "noarch", or a listed architecture.
func (s Subject) NevraPossibilitiesReal(sk *Sack, flags SubjectFlags) *nevraIter {
	return &nevraIter{str: s.str, forms: realIntentOrder, real: true, sack: sk, flags: flags}
}

// Next returns the next candidate, or ok=false once the iterator is
// exhausted. Once it has returned ok=false, later calls return ok=false too.
func (it *nevraIter) Next() (n NEVRA, f Form, ok bool) {
	for it.cursor < len(it.forms) {
		form := it.forms[it.cursor]
		it.cursor++

		cand, matched := parseForm(it.str, form)
		if !matched {
			continue
		}
		if it.real && !it.passesReality(cand) {
			continue
		}
		return cand, form, true
	}
	return NEVRA{}, 0, false
}

func (it *nevraIter) passesReality(n NEVRA) bool {
	if it.sack == nil {
		return true
	}
	nameOK := it.sack.knowsName(n.Name, it.flags&SubjectGlob != 0, it.flags&SubjectICase != 0)
	if !nameOK {
		return false
	}
	if n.Arch == "" {
		return true
	}
	if n.Arch == "src" || n.Arch == "noarch" {
		return true
	}
	if it.flags&SubjectGlob != 0 {
		for _, a := range it.sack.pool.archs {
			if ok, _ := filepath.Match(n.Arch, a); ok {
				return true
			}
		}
		return false
	}
	return isKnownArch(n.Arch)
}

// ReldepPossibilitiesReal yields at most one Reldep: the subject is parsed
// as a reldep string, and its name component (glob-expanded against the
// sack's known package names) must match at least one package name.
func (s Subject) ReldepPossibilitiesReal(sk *Sack) (Reldep, bool, error) {
	name, cmp, evr, err := ParseReldepString(s.str)
	if err != nil {
		return Reldep{}, false, err
	}
	if !sk.knowsName(name, true, false) {
		return Reldep{}, false, nil
	}
	rd, err := NewReldep(sk, name, cmp, evr)
	if err != nil {
		return Reldep{}, false, err
	}
	return rd, true, nil
}
