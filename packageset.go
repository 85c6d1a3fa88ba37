package sack

import "github.com/bits-and-blooms/bitset"

// PackageSet is a dense, bitmap-backed unordered set of package handles
// within one sack. Iteration order is ascending solvable id.
type PackageSet struct {
	s    *Sack
	bits *bitset.BitSet
}

// NewPackageSet returns an empty PackageSet sized to s's current pool.
func NewPackageSet(s *Sack) PackageSet {
	return PackageSet{s: s, bits: bitset.New(uint(len(s.pool.solvables)))}
}

func (ps PackageSet) ensure(n uint) {
	if ps.bits.Len() < n {
		ps.bits.Set(n - 1) // grows the underlying storage as a side effect
		ps.bits.Clear(n - 1)
	}
}

// Add inserts p into the set.
func (ps PackageSet) Add(p Package) {
	ps.ensure(uint(p.id) + 1)
	ps.bits.Set(uint(p.id))
}

// Remove removes p from the set.
func (ps PackageSet) Remove(p Package) {
	if uint(p.id) < ps.bits.Len() {
		ps.bits.Clear(uint(p.id))
	}
}

// Contains reports whether p is a member.
func (ps PackageSet) Contains(p Package) bool {
	return uint(p.id) < ps.bits.Len() && ps.bits.Test(uint(p.id))
}

// Len returns the popcount of the set.
func (ps PackageSet) Len() int { return int(ps.bits.Count()) }

// Packages returns every member as a Package, in ascending solvable-id order.
func (ps PackageSet) Packages() []Package {
	var out []Package
	for i, ok := ps.bits.NextSet(0); ok; i, ok = ps.bits.NextSet(i + 1) {
		out = append(out, Package{s: ps.s, id: SolvableID(i)})
	}
	return out
}

// Union, Intersection and Difference operate on two PackageSets sharing a
// sack, returning a new PackageSet.
func (ps PackageSet) Union(o PackageSet) PackageSet {
	return PackageSet{s: ps.s, bits: ps.bits.Union(o.bits)}
}

func (ps PackageSet) Intersection(o PackageSet) PackageSet {
	return PackageSet{s: ps.s, bits: ps.bits.Intersection(o.bits)}
}

func (ps PackageSet) Difference(o PackageSet) PackageSet {
	return PackageSet{s: ps.s, bits: ps.bits.Difference(o.bits)}
}

// PackageList is an ordered sequence of package handles in insertion order.
type PackageList struct {
	s    *Sack
	pkgs []Package
}

// NewPackageList returns an empty PackageList bound to s.
func NewPackageList(s *Sack) *PackageList { return &PackageList{s: s} }

func (l *PackageList) Add(p Package)      { l.pkgs = append(l.pkgs, p) }
func (l *PackageList) Len() int           { return len(l.pkgs) }
func (l *PackageList) Get(i int) Package  { return l.pkgs[i] }
func (l *PackageList) All() []Package     { return l.pkgs }
