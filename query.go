package sack

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Keyname identifies which solvable field a filter tests.
type Keyname int

const (
	PKGNAME Keyname = iota
	ARCH
	EVR
	VERSION
	RELEASE
	SUMMARY
	DESCRIPTION
	URL
	NEVRAKEY
	LOCATION
	SOURCERPM
	FILE
	REPONAME
	EPOCH
	PKG
	OBSOLETES
	REQUIRES
	CONFLICTS
	PROVIDES
	RECOMMENDS
	SUGGESTS
	ENHANCES
	SUPPLEMENTS
)

type matchKind int

const (
	matchStr matchKind = iota
	matchNum
	matchPkg
	matchReldep
)

func (k Keyname) matchKind() matchKind {
	switch k {
	case EPOCH:
		return matchNum
	case PKG, OBSOLETES:
		return matchPkg
	case REQUIRES, CONFLICTS, PROVIDES, RECOMMENDS, SUGGESTS, ENHANCES, SUPPLEMENTS:
		return matchReldep
	default:
		return matchStr
	}
}

// filter is one algebraic plan element: (keyname, cmp_flags, match_type,
// matches). It is stored verbatim until Apply compiles it to a bitmap.
type filter struct {
	key     Keyname
	cmp     CmpFlag
	strs    []string
	nums    []int64
	pkgs    PackageSet
	reldeps ReldepList
}

// QueryFlags toggle whole-query behaviour independent of any one filter.
type QueryFlags uint8

const (
	IgnoreExcludes QueryFlags = 1 << iota
)

// Query is a lazy, compositional filter over every package solvable in a
// sack. Apply is idempotent; filters accumulate as an algebraic plan and
// are compiled to a bitmap only when the query is actually evaluated.
type Query struct {
	s       *Sack
	flags   QueryFlags
	result  *bitset.BitSet
	filters []filter

	downgradable, downgrades     bool
	updatable, updates           bool
	latest, latestPerArch        bool

	applied bool
}

// NewQuery returns an empty query over s.
func NewQuery(s *Sack, flags QueryFlags) *Query {
	return &Query{s: s, flags: flags}
}

func (q *Query) invalidate() {
	q.applied = false
}

// validKeyCmp rejects illegal (key, cmp) combinations at filter-add time,
// per the spec's four keyname families.
func validKeyCmp(key Keyname, cmp CmpFlag) error {
	base := cmp.base()
	switch key {
	case LOCATION, SOURCERPM:
		if base != EQ {
			return fmt.Errorf("%v only accepts EQ", key)
		}
	case EPOCH:
		if base&(EQ|LT|GT) == 0 {
			return fmt.Errorf("EPOCH accepts EQ/LT/GT only")
		}
	case PKG, OBSOLETES:
		// OBSOLETES may also be used as a reldep key (EQ with Reldep); the
		// PKG-set form additionally requires EQ.
		if base != EQ {
			return fmt.Errorf("%v accepts EQ only", key)
		}
	case REQUIRES, CONFLICTS, PROVIDES, RECOMMENDS, SUGGESTS, ENHANCES, SUPPLEMENTS:
		if base != EQ && base != GLOB {
			return fmt.Errorf("%v accepts EQ or GLOB only", key)
		}
	}
	return nil
}

// Filter appends a string-keyed filter. Sets applied=false.
func (q *Query) Filter(key Keyname, cmp CmpFlag, matches ...string) error {
	if err := validKeyCmp(key, cmp); err != nil {
		return newErr("Query.Filter", KindQuery, err)
	}
	q.filters = append(q.filters, filter{key: key, cmp: cmp, strs: matches})
	q.invalidate()
	return nil
}

// FilterNum appends a numeric-keyed filter (EPOCH).
func (q *Query) FilterNum(key Keyname, cmp CmpFlag, matches ...int64) error {
	if err := validKeyCmp(key, cmp); err != nil {
		return newErr("Query.FilterNum", KindQuery, err)
	}
	q.filters = append(q.filters, filter{key: key, cmp: cmp, nums: matches})
	q.invalidate()
	return nil
}

// FilterPkg appends a PackageSet-keyed filter (PKG, OBSOLETES).
func (q *Query) FilterPkg(key Keyname, cmp CmpFlag, matches PackageSet) error {
	if err := validKeyCmp(key, cmp); err != nil {
		return newErr("Query.FilterPkg", KindQuery, err)
	}
	q.filters = append(q.filters, filter{key: key, cmp: cmp, pkgs: matches})
	q.invalidate()
	return nil
}

// FilterReldep appends a Reldep/ReldepList-keyed filter.
func (q *Query) FilterReldep(key Keyname, cmp CmpFlag, matches ReldepList) error {
	if err := validKeyCmp(key, cmp); err != nil {
		return newErr("Query.FilterReldep", KindQuery, err)
	}
	q.filters = append(q.filters, filter{key: key, cmp: cmp, reldeps: matches})
	q.invalidate()
	return nil
}

// Downgradable, Downgrades, Updatable, Updates, Latest, LatestPerArch set
// the query's scalar modifiers.
func (q *Query) Downgradable(v bool)  { q.downgradable = v; q.invalidate() }
func (q *Query) Downgrades(v bool)    { q.downgrades = v; q.invalidate() }
func (q *Query) Updatable(v bool)     { q.updatable = v; q.invalidate() }
func (q *Query) Updates(v bool)       { q.updates = v; q.invalidate() }
func (q *Query) Latest(v bool)        { q.latest = v; q.invalidate() }
func (q *Query) LatestPerArch(v bool) { q.latestPerArch = v; q.invalidate() }

// Clear drops the accumulated result and modifiers alike.
func (q *Query) Clear() {
	*q = Query{s: q.s, flags: q.flags}
}

// Apply evaluates the query if it is not already applied. Idempotent:
// calling Apply twice in a row is identical to calling it once.
func (q *Query) Apply() error {
	if q.applied {
		return nil
	}
	n := uint(len(q.s.pool.solvables))
	result := bitset.New(n)
	for _, id := range q.s.pool.allIDs() {
		result.Set(uint(id))
	}
	if q.flags&IgnoreExcludes == 0 {
		result.InPlaceIntersection(q.s.consideredMap())
	}

	for _, f := range q.filters {
		m, err := q.evalFilter(f)
		if err != nil {
			return err
		}
		if f.cmp.hasNOT() {
			result.InPlaceDifference(m)
		} else {
			result.InPlaceIntersection(m)
		}
	}

	q.applyScalarModifiers(result)

	q.result = result
	q.filters = nil
	q.applied = true
	return nil
}

func (q *Query) evalFilter(f filter) (*bitset.BitSet, error) {
	n := uint(len(q.s.pool.solvables))
	m := bitset.New(n)
	switch f.key.matchKind() {
	case matchPkg:
		if f.key != OBSOLETES {
			m = f.pkgs.bits.Clone()
			break
		}
		names := map[string]bool{}
		if f.pkgs.bits != nil {
			for _, p := range f.pkgs.Packages() {
				names[p.Name()] = true
			}
		}
		for _, id := range q.s.pool.allIDs() {
			for _, obs := range q.s.pool.get(id).obsoletes.All() {
				if names[obs.Name()] || (f.reldeps.Len() > 0 && q.solvableMatchesReldep(id, f)) {
					m.Set(uint(id))
				}
			}
		}
	case matchReldep:
		for _, id := range q.s.pool.allIDs() {
			if q.solvableMatchesReldep(id, f) {
				m.Set(uint(id))
			}
		}
	case matchNum:
		for _, id := range q.s.pool.allIDs() {
			if q.solvableMatchesNum(id, f) {
				m.Set(uint(id))
			}
		}
	default:
		for _, id := range q.s.pool.allIDs() {
			if q.solvableMatchesStr(id, f) {
				m.Set(uint(id))
			}
		}
	}
	return m, nil
}

func (q *Query) solvableMatchesStr(id SolvableID, f filter) bool {
	sv := q.s.pool.get(id)
	if sv == nil {
		return false
	}
	icase := f.cmp.hasICASE()
	base := f.cmp.base()

	field := func() string {
		switch f.key {
		case PKGNAME:
			return sv.name
		case ARCH:
			return sv.arch
		case EVR:
			return sv.evrString()
		case VERSION:
			return sv.version
		case RELEASE:
			return sv.release
		case SUMMARY:
			return sv.summary
		case DESCRIPTION:
			return sv.description
		case URL:
			return sv.url
		case NEVRAKEY:
			return sv.nevraString()
		case LOCATION:
			return sv.location
		case SOURCERPM:
			return sv.sourcerpm
		case REPONAME:
			if sv.repo == nil {
				return ""
			}
			return sv.repo.name
		}
		return ""
	}

	if f.key == FILE {
		for _, path := range sv.files {
			if matchOne(path, f.strs, base, icase) {
				return true
			}
		}
		return false
	}
	return matchOne(field(), f.strs, base, icase)
}

func matchOne(value string, matches []string, base CmpFlag, icase bool) bool {
	for _, m := range matches {
		switch {
		case base.is(SUBSTR):
			v, p := value, m
			if icase {
				v, p = lower(v), lower(p)
			}
			if contains(v, p) {
				return true
			}
		case base.is(GLOB):
			if matchString(value, m, true, icase) {
				return true
			}
		default: // EQ
			if matchString(value, m, false, icase) {
				return true
			}
		}
	}
	return false
}

func (q *Query) solvableMatchesNum(id SolvableID, f filter) bool {
	sv := q.s.pool.get(id)
	if sv == nil {
		return false
	}
	if f.key != EPOCH {
		return false
	}
	epoch := sv.epoch
	if epoch == -1 {
		epoch = 0
	}
	base := f.cmp.base()
	for _, want := range f.nums {
		switch {
		case base.is(LT) && epoch < want, base.is(GT) && epoch > want, base.is(EQ) && epoch == want:
			return true
		}
	}
	return false
}

func (q *Query) solvableMatchesReldep(id SolvableID, f filter) bool {
	sv := q.s.pool.get(id)
	if sv == nil {
		return false
	}
	list := func() []Reldep {
		switch f.key {
		case REQUIRES:
			return sv.requires.All()
		case CONFLICTS:
			return sv.conflicts.All()
		case PROVIDES:
			return sv.provides.All()
		case OBSOLETES:
			return sv.obsoletes.All()
		case RECOMMENDS:
			return sv.recommends.All()
		case SUGGESTS:
			return sv.suggests.All()
		case ENHANCES:
			return sv.enhances.All()
		case SUPPLEMENTS:
			return sv.supplements.All()
		}
		return nil
	}()

	for _, rd := range f.reldeps.All() {
		for _, have := range list {
			if reldepMatches(have, rd, f.cmp) {
				return true
			}
		}
	}
	return false
}

func reldepMatches(have, want Reldep, cmp CmpFlag) bool {
	if cmp.base().is(GLOB) {
		ok, _ := fnmatch(want.Name(), have.Name())
		if !ok {
			return false
		}
	} else if have.Name() != want.Name() {
		return false
	}
	if want.EVR() == "" {
		return true
	}
	return have.EVR() == want.EVR() && have.cmp == want.cmp
}

func (q *Query) applyScalarModifiers(result *bitset.BitSet) {
	if q.downgradable {
		q.filterDowngrade(result, true)
	}
	if q.downgrades {
		q.filterDowngrade(result, false)
	}
	if q.updatable {
		q.filterUpgrade(result, true)
	}
	if q.updates {
		q.filterUpgrade(result, false)
	}
	if q.latest || q.latestPerArch {
		q.filterLatest(result, q.latestPerArch)
	}
}

func (q *Query) filterDowngrade(result *bitset.BitSet, installedSide bool) {
	byName := q.groupByName(result)
	keep := bitset.New(result.Len())
	for _, ids := range byName {
		for _, a := range ids {
			asv := q.s.pool.get(a)
			for _, b := range ids {
				if a == b {
					continue
				}
				bsv := q.s.pool.get(b)
				lower := evrCmpNEVRA(withoutArch(asv), withoutArch(bsv)) < 0
				if installedSide && !asv.installed && bsv.installed && lower {
					keep.Set(uint(b))
				}
				if !installedSide && !asv.installed && bsv.installed && lower {
					keep.Set(uint(a))
				}
			}
		}
	}
	result.InPlaceIntersection(keep)
}

func (q *Query) filterUpgrade(result *bitset.BitSet, installedSide bool) {
	byName := q.groupByName(result)
	keep := bitset.New(result.Len())
	for _, ids := range byName {
		for _, a := range ids {
			asv := q.s.pool.get(a)
			for _, b := range ids {
				if a == b {
					continue
				}
				bsv := q.s.pool.get(b)
				higher := evrCmpNEVRA(withoutArch(asv), withoutArch(bsv)) > 0
				if installedSide && !asv.installed && bsv.installed && higher {
					keep.Set(uint(b))
				}
				if !installedSide && !asv.installed && bsv.installed && higher {
					keep.Set(uint(a))
				}
			}
		}
	}
	result.InPlaceIntersection(keep)
}

func (q *Query) filterLatest(result *bitset.BitSet, perArch bool) {
	type key struct{ name, arch string }
	best := map[key]SolvableID{}
	for i, ok := result.NextSet(0); ok; i, ok = result.NextSet(i + 1) {
		id := SolvableID(i)
		sv := q.s.pool.get(id)
		k := key{sv.name, ""}
		if perArch {
			k.arch = sv.arch
		}
		cur, has := best[k]
		if !has || evrCmpNEVRA(withoutArch(sv), withoutArch(q.s.pool.get(cur))) > 0 {
			best[k] = id
		}
	}
	keep := bitset.New(result.Len())
	for _, id := range best {
		keep.Set(uint(id))
	}
	result.InPlaceIntersection(keep)
}

func (q *Query) groupByName(result *bitset.BitSet) map[string][]SolvableID {
	out := map[string][]SolvableID{}
	for i, ok := result.NextSet(0); ok; i, ok = result.NextSet(i + 1) {
		id := SolvableID(i)
		sv := q.s.pool.get(id)
		out[sv.name] = append(out[sv.name], id)
	}
	return out
}

func withoutArch(sv *solvable) NEVRA {
	return NEVRA{Name: sv.name, Epoch: sv.epoch, Version: sv.version, Release: sv.release}
}

// Union, Intersection, Difference operate on two applied queries' result
// bitmaps. Both queries must share a sack.
func (q *Query) Union(o *Query) (PackageSet, error) {
	return q.combine(o, func(a, b *bitset.BitSet) *bitset.BitSet { return a.Union(b) })
}

func (q *Query) Intersection(o *Query) (PackageSet, error) {
	return q.combine(o, func(a, b *bitset.BitSet) *bitset.BitSet { return a.Intersection(b) })
}

func (q *Query) Difference(o *Query) (PackageSet, error) {
	return q.combine(o, func(a, b *bitset.BitSet) *bitset.BitSet { return a.Difference(b) })
}

func (q *Query) combine(o *Query, fn func(a, b *bitset.BitSet) *bitset.BitSet) (PackageSet, error) {
	if q.s != o.s {
		return PackageSet{}, newErr("Query.combine", KindQuery, fmt.Errorf("queries do not share a sack"))
	}
	if !q.applied || !o.applied {
		return PackageSet{}, newErr("Query.combine", KindOp, fmt.Errorf("both queries must be applied"))
	}
	return PackageSet{s: q.s, bits: fn(q.result, o.result)}, nil
}

// Contains tests whether p's solvable id is in the (applied) result.
func (q *Query) Contains(p Package) bool {
	return q.applied && uint(p.id) < q.result.Len() && q.result.Test(uint(p.id))
}

// Len returns the popcount of the applied result.
func (q *Query) Len() int {
	if !q.applied {
		return 0
	}
	return int(q.result.Count())
}

// Run returns a PackageList in ascending solvable-id order, applying the
// query first if needed.
func (q *Query) Run() (*PackageList, error) {
	if err := q.Apply(); err != nil {
		return nil, err
	}
	list := NewPackageList(q.s)
	for i, ok := q.result.NextSet(0); ok; i, ok = q.result.NextSet(i + 1) {
		list.Add(Package{s: q.s, id: SolvableID(i)})
	}
	return list, nil
}

// RunSet is like Run but returns a PackageSet.
func (q *Query) RunSet() (PackageSet, error) {
	if err := q.Apply(); err != nil {
		return PackageSet{}, err
	}
	return PackageSet{s: q.s, bits: q.result.Clone()}, nil
}

// Get requires exactly one match and otherwise fails with KindQuery.
func (q *Query) Get() (Package, error) {
	list, err := q.Run()
	if err != nil {
		return Package{}, err
	}
	if list.Len() != 1 {
		return Package{}, newErr("Query.Get", KindQuery, fmt.Errorf("expected exactly one match, got %d", list.Len()))
	}
	return list.Get(0), nil
}

func lower(s string) string { return strings.ToLower(s) }

func contains(haystack, needle string) bool { return strings.Contains(haystack, needle) }
