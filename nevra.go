package sack

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NEVRA is a fully or partially parsed name-epoch-version-release-arch
// package identity. Epoch == -1 means "no epoch was present in the source
// string", a legal and distinct state from epoch 0.
type NEVRA struct {
	Name    string
	Epoch   int64
	Version string
	Release string
	Arch    string
}

// EvrString renders "[epoch:]version-release", omitting the epoch prefix
// when epoch == -1.
func EvrString(epoch int64, version, release string) string {
	var b strings.Builder
	if epoch != -1 {
		fmt.Fprintf(&b, "%d:", epoch)
	}
	b.WriteString(version)
	if release != "" {
		b.WriteByte('-')
		b.WriteString(release)
	}
	return b.String()
}

// EvrString renders n's EVR component.
func (n NEVRA) EvrString() string { return EvrString(n.Epoch, n.Version, n.Release) }

// String renders the canonical "name-[epoch:]version-release.arch" form.
func (n NEVRA) String() string {
	s := n.Name
	if n.Version != "" {
		s += "-" + n.EvrString()
	}
	if n.Arch != "" {
		s += "." + n.Arch
	}
	return s
}

func cmpLess(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// NevraCmp orders first by epoch (absent, i.e. -1, sorts before any
// explicit value), then by name, version, release and arch
// lexicographically, treating an absent string as less than any present
// string.
//
// The C source's hy_nevra_cmp returns from inside its comparison loop
// before the string-field comparisons ever run, making that code
// unreachable. This implements the full epoch-then-strings behaviour the
// unreachable code was evidently meant to express.
func NevraCmp(a, b NEVRA) int {
	if a.Epoch != b.Epoch {
		if a.Epoch < b.Epoch {
			return -1
		}
		return 1
	}
	if c := cmpLess(a.Name, b.Name); c != 0 {
		return c
	}
	if c := cmpLess(a.Version, b.Version); c != 0 {
		return c
	}
	if c := cmpLess(a.Release, b.Release); c != 0 {
		return c
	}
	return cmpLess(a.Arch, b.Arch)
}

// Form identifies which of the five NEVRA parse grammars produced a
// candidate.
type Form int

const (
	FormNEVRA Form = iota
	FormNEVR
	FormNEV
	FormNA
	FormNAME
)

// mostSpecificFirst is the default form order when a caller does not
// constrain Subject.NevraPossibilities.
var mostSpecificFirst = []Form{FormNEVRA, FormNEVR, FormNEV, FormNA, FormNAME}

// realIntentOrder is the order Subject.NevraPossibilitiesReal tries forms
// in, biased toward what a human typically means by a bare string.
var realIntentOrder = []Form{FormNA, FormNAME, FormNEVRA, FormNEV, FormNEVR}

var (
	reNEVRA = regexp.MustCompile(`^([^:]+)-(?:(\d+):)?([^-:]+)-([^-:]+)\.([^.]+)$`)
	reNEVR  = regexp.MustCompile(`^([^:]+)-(?:(\d+):)?([^-:]+)-([^-:]+)$`)
	reNEV   = regexp.MustCompile(`^([^:]+)-(?:(\d+):)?([^-:]+)$`)
	reNA    = regexp.MustCompile(`^([^.]+)\.([^.]+)$`)
)

// parseForm parses s under the given form's grammar. ok is false if s does
// not match that grammar at all.
func parseForm(s string, f Form) (NEVRA, bool) {
	switch f {
	case FormNEVRA:
		m := reNEVRA.FindStringSubmatch(s)
		if m == nil {
			return NEVRA{}, false
		}
		return NEVRA{Name: m[1], Epoch: parseEpoch(m[2]), Version: m[3], Release: m[4], Arch: m[5]}, true
	case FormNEVR:
		m := reNEVR.FindStringSubmatch(s)
		if m == nil {
			return NEVRA{}, false
		}
		return NEVRA{Name: m[1], Epoch: parseEpoch(m[2]), Version: m[3], Release: m[4]}, true
	case FormNEV:
		m := reNEV.FindStringSubmatch(s)
		if m == nil {
			return NEVRA{}, false
		}
		return NEVRA{Name: m[1], Epoch: parseEpoch(m[2]), Version: m[3]}, true
	case FormNA:
		m := reNA.FindStringSubmatch(s)
		if m == nil {
			return NEVRA{}, false
		}
		return NEVRA{Name: m[1], Epoch: -1, Arch: m[2]}, true
	case FormNAME:
		if s == "" {
			return NEVRA{}, false
		}
		return NEVRA{Name: s, Epoch: -1}, true
	}
	return NEVRA{}, false
}

func parseEpoch(s string) int64 {
	if s == "" {
		return -1
	}
	e, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return -1
	}
	return e
}
