package sack

// Package is a borrowing handle to one solvable in one sack. Two packages
// are identical iff their solvable ids are equal.
type Package struct {
	s  *Sack
	id SolvableID
}

func (p Package) sv() *solvable { return p.s.pool.get(p.id) }

func (p Package) ID() SolvableID { return p.id }
func (p Package) Name() string    { return p.sv().name }
func (p Package) Epoch() int64    { return p.sv().epoch }
func (p Package) Version() string { return p.sv().version }
func (p Package) Release() string { return p.sv().release }
func (p Package) Arch() string    { return p.sv().arch }
func (p Package) EVR() string     { return p.sv().evrString() }
func (p Package) Nevra() string   { return p.sv().nevraString() }

func (p Package) Summary() string     { return p.sv().summary }
func (p Package) Description() string { return p.sv().description }
func (p Package) URL() string         { return p.sv().url }
func (p Package) Location() string    { return p.sv().location }
func (p Package) SourceRPM() string   { return p.sv().sourcerpm }
func (p Package) Checksum() string    { return p.sv().checksum }
func (p Package) Files() []string     { return p.sv().files }

func (p Package) Requires() ReldepList    { return p.sv().requires }
func (p Package) Provides() ReldepList    { return p.sv().provides }
func (p Package) Conflicts() ReldepList   { return p.sv().conflicts }
func (p Package) Obsoletes() ReldepList   { return p.sv().obsoletes }
func (p Package) Recommends() ReldepList  { return p.sv().recommends }
func (p Package) Suggests() ReldepList    { return p.sv().suggests }
func (p Package) Enhances() ReldepList    { return p.sv().enhances }
func (p Package) Supplements() ReldepList { return p.sv().supplements }

func (p Package) Installed() bool { return p.sv().installed }

func (p Package) Repo() Repo { return Repo{h: p.sv().repo} }

func (p Package) Advisories() []*Advisory { return p.sv().advisories }

// NEVRA returns the structured identity of p.
func (p Package) NEVRA() NEVRA {
	sv := p.sv()
	return NEVRA{Name: sv.name, Epoch: sv.epoch, Version: sv.version, Release: sv.release, Arch: sv.arch}
}

// Cmp compares a and b as (name, evr)-lexicographic: name by plain
// string comparison, then epoch/version/release by real RPM-EVR
// comparison (evrCmp). Arch matters for upgrade matching but not for
// equality.
func Cmp(a, b Package) int {
	an, bn := a.NEVRA(), b.NEVRA()
	if c := cmpLess(an.Name, bn.Name); c != 0 {
		return c
	}
	return evrCmpNEVRA(an, bn)
}

// Equal reports whether a and b refer to the same solvable in the same sack.
func Equal(a, b Package) bool { return a.s == b.s && a.id == b.id }
