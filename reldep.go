package sack

import (
	"fmt"
	"regexp"
)

// CmpFlag carries both the base comparison operator and optional modifier
// bits for a Query filter or a Reldep's version constraint. Bits below 1<<8
// are base operators; bits at 1<<8 and above are modifiers, so a caller can
// freely OR ICASE/NOT onto any base operator.
type CmpFlag uint16

const (
	EQ CmpFlag = 1 << iota
	LT
	GT
	SUBSTR
	GLOB
	NEQ

	ICASE CmpFlag = 1 << (iota + 8)
	NOT
)

func (f CmpFlag) base() CmpFlag     { return f &^ (ICASE | NOT) }
func (f CmpFlag) hasICASE() bool    { return f&ICASE != 0 }
func (f CmpFlag) hasNOT() bool      { return f&NOT != 0 }
func (f CmpFlag) is(b CmpFlag) bool { return f.base()&b != 0 }

func (f CmpFlag) String() string {
	var s string
	switch {
	case f.base()&(EQ|LT) == EQ|LT:
		s = "<="
	case f.base()&(EQ|GT) == EQ|GT:
		s = ">="
	case f.is(NEQ):
		s = "!="
	case f.is(LT):
		s = "<"
	case f.is(GT):
		s = ">"
	case f.is(EQ):
		s = "="
	}
	return s
}

// Reldep is an interned relational dependency: a capability name with an
// optional comparison against an EVR, e.g. "libc >= 2.17".
type Reldep struct {
	p    *pool
	name uint32
	cmp  CmpFlag
	evr  uint32 // 0 == no EVR component
}

// NewReldep builds a Reldep within the given sack. name must be non-empty.
// If evr is "", cmp is ignored and the Reldep carries no version constraint.
func NewReldep(s *Sack, name string, cmp CmpFlag, evr string) (Reldep, error) {
	if name == "" {
		return Reldep{}, newErr("NewReldep", KindFailed, fmt.Errorf("empty reldep name"))
	}
	r := Reldep{p: s.pool, name: s.pool.intern(name)}
	if evr != "" {
		r.cmp = cmp
		r.evr = s.pool.intern(evr)
	}
	return r, nil
}

func (r Reldep) Name() string { return r.p.str(r.name) }

func (r Reldep) EVR() string {
	if r.evr == 0 {
		return ""
	}
	return r.p.str(r.evr)
}

func (r Reldep) CmpFlag() CmpFlag { return r.cmp }

// String renders "name [op evr]", matching the C source's dep2str.
func (r Reldep) String() string {
	if r.evr == 0 {
		return r.Name()
	}
	return fmt.Sprintf("%s %s %s", r.Name(), r.cmp.String(), r.EVR())
}

// ReldepList is an ordered, appendable sequence of reldep ids.
type ReldepList struct {
	deps []Reldep
}

func (l *ReldepList) Add(r Reldep)                  { l.deps = append(l.deps, r) }
func (l *ReldepList) Extend(o ReldepList)            { l.deps = append(l.deps, o.deps...) }
func (l ReldepList) Len() int                        { return len(l.deps) }
func (l ReldepList) Get(i int) Reldep                { return l.deps[i] }
func (l ReldepList) All() []Reldep                   { return l.deps }

var reldepStrRe = regexp.MustCompile(`^(\S*)\s*(<=|>=|!=|<|>|=)?\s*(.*)$`)

// ParseReldepString parses "name [op evr]" into its components, using the
// exact regex and operator-mapping rules of hawkey's reldep_from_str.
func ParseReldepString(s string) (name string, cmp CmpFlag, evr string, err error) {
	m := reldepStrRe.FindStringSubmatch(s)
	if m == nil {
		return "", 0, "", newErr("ParseReldepString", KindFailed, fmt.Errorf("unparseable reldep %q", s))
	}
	name, op, evr := m[1], m[2], m[3]
	switch op {
	case "":
		cmp = 0
	case "<=":
		cmp = LT | EQ
	case ">=":
		cmp = GT | EQ
	case "!=":
		cmp = NEQ
	case "<":
		cmp = LT
	case ">":
		cmp = GT
	case "=":
		cmp = EQ
	}
	return name, cmp, evr, nil
}

// NewReldepFromString builds a Reldep by parsing s with ParseReldepString.
func NewReldepFromString(s *Sack, str string) (Reldep, error) {
	name, cmp, evr, err := ParseReldepString(str)
	if err != nil {
		return Reldep{}, err
	}
	return NewReldep(s, name, cmp, evr)
}
