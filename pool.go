package sack

import (
	"sort"

	"github.com/armon/go-radix"
)

// SolvableID identifies one solvable (package occurrence) within a pool.
// Id 0 is never assigned; it is used as a sentinel for "no such solvable".
type SolvableID uint32

// internTrie is a typed wrapper around github.com/armon/go-radix: a
// thin type-assertion shim that lets the rest of the package work in terms
// of concrete ids instead of interface{}.
type internTrie struct {
	t *radix.Tree
}

func newInternTrie() internTrie {
	return internTrie{t: radix.New()}
}

func (t internTrie) get(s string) (uint32, bool) {
	if v, ok := t.t.Get(s); ok {
		return v.(uint32), true
	}
	return 0, false
}

func (t internTrie) insert(s string, id uint32) {
	t.t.Insert(s, id)
}

func (t internTrie) longestPrefix(s string) (string, uint32, bool) {
	if p, v, ok := t.t.LongestPrefix(s); ok {
		return p, v.(uint32), true
	}
	return "", 0, false
}

func (t internTrie) len() int { return t.t.Len() }

// pool is the in-process analogue of libsolv's Pool: it interns strings
// (package names, arches, capability names) and owns the dense array of
// solvables that every SolvableID indexes into.
type pool struct {
	strings    []string
	internedBy internTrie

	solvables []*solvable // index 0 unused; solvables[0] is a nil sentinel

	archs      []string
	archSet    map[string]bool
	installed  *repoHandle // the @System repo, if loaded

	reldeps []reldepRecord
}

type reldepRecord struct {
	name    uint32
	cmp     CmpFlag
	evr     uint32 // 0 == no EVR
	cmpHash uint64
}

func newPool() *pool {
	p := &pool{
		internedBy: newInternTrie(),
		solvables:  make([]*solvable, 1, 256),
		archSet:    map[string]bool{},
	}
	p.intern("") // id 0 reserved, keeps string ids 1-based like solvable ids
	return p
}

// intern returns the stable id for s, assigning a new one if s is unseen.
func (p *pool) intern(s string) uint32 {
	if id, ok := p.internedBy.get(s); ok {
		return id
	}
	id := uint32(len(p.strings))
	p.strings = append(p.strings, s)
	p.internedBy.insert(s, id)
	return id
}

func (p *pool) str(id uint32) string {
	if int(id) >= len(p.strings) {
		return ""
	}
	return p.strings[id]
}

// setArch applies the detected/configured architecture plus the pool's
// known-compatible list. Construction fails with KindArch if fewer than two
// archs end up known, mirroring hawkey's pool_setarch failure mode.
func (p *pool) setArch(arch string) error {
	p.archs = append([]string{arch}, archList...)
	seen := map[string]bool{}
	uniq := p.archs[:0]
	for _, a := range p.archs {
		if seen[a] {
			continue
		}
		seen[a] = true
		uniq = append(uniq, a)
	}
	p.archs = uniq
	p.archSet = seen
	if len(p.archSet) < 2 {
		return newErr("Sack.New", KindArch, nil)
	}
	return nil
}

func (p *pool) addSolvable(s *solvable) SolvableID {
	id := SolvableID(len(p.solvables))
	s.id = id
	p.solvables = append(p.solvables, s)
	return id
}

func (p *pool) get(id SolvableID) *solvable {
	if int(id) >= len(p.solvables) {
		return nil
	}
	return p.solvables[id]
}

// allIDs returns every assigned solvable id in ascending order.
func (p *pool) allIDs() []SolvableID {
	ids := make([]SolvableID, 0, len(p.solvables)-1)
	for i := 1; i < len(p.solvables); i++ {
		if p.solvables[i] != nil {
			ids = append(ids, SolvableID(i))
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
