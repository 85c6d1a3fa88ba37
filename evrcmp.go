package sack

import "strings"

// rpmvercmp compares two version or release strings using RPM's
// segment-wise comparison algorithm (the same one `_examples/
// original_source/hawkey/src/package.c`'s package_evr_cmp reaches via
// libsolv's pool_evrcmp): the string is split into alternating runs of
// digits and letters, separators (anything else) are skipped, a `~`
// segment sorts before anything else including end-of-string, a `^`
// segment sorts after end-of-string but before any real segment, numeric
// runs compare numerically (leading zeros stripped), and whichever side
// still has characters left once the other is exhausted is newer.
func rpmvercmp(a, b string) int {
	if a == b {
		return 0
	}
	var i, j int
	for i < len(a) || j < len(b) {
		for i < len(a) && !isVerSegStart(a[i]) {
			i++
		}
		for j < len(b) && !isVerSegStart(b[j]) {
			j++
		}

		aTilde, bTilde := i < len(a) && a[i] == '~', j < len(b) && b[j] == '~'
		if aTilde || bTilde {
			switch {
			case aTilde && bTilde:
				i++
				j++
				continue
			case aTilde:
				return -1
			default:
				return 1
			}
		}

		aCaret, bCaret := i < len(a) && a[i] == '^', j < len(b) && b[j] == '^'
		if aCaret || bCaret {
			switch {
			case aCaret && bCaret:
				i++
				j++
				continue
			case aCaret:
				if j >= len(b) {
					return 1
				}
				return -1
			default:
				if i >= len(a) {
					return -1
				}
				return 1
			}
		}

		if i >= len(a) || j >= len(b) {
			break
		}

		aStart, bStart := i, j
		if isDigitByte(a[i]) {
			for i < len(a) && isDigitByte(a[i]) {
				i++
			}
		} else {
			for i < len(a) && isAlphaByte(a[i]) {
				i++
			}
		}
		if isDigitByte(b[j]) {
			for j < len(b) && isDigitByte(b[j]) {
				j++
			}
		} else {
			for j < len(b) && isAlphaByte(b[j]) {
				j++
			}
		}
		aSeg, bSeg := a[aStart:i], b[bStart:j]

		aNum, bNum := isDigitByte(aSeg[0]), isDigitByte(bSeg[0])
		if aNum != bNum {
			// A numeric segment is always newer than an alphabetic one.
			if aNum {
				return 1
			}
			return -1
		}
		if aNum {
			aSeg = strings.TrimLeft(aSeg, "0")
			bSeg = strings.TrimLeft(bSeg, "0")
			if len(aSeg) != len(bSeg) {
				if len(aSeg) > len(bSeg) {
					return 1
				}
				return -1
			}
		}
		if aSeg != bSeg {
			if aSeg < bSeg {
				return -1
			}
			return 1
		}
	}

	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	default:
		return 0
	}
}

func isVerSegStart(c byte) bool { return isDigitByte(c) || isAlphaByte(c) || c == '~' || c == '^' }
func isDigitByte(c byte) bool   { return c >= '0' && c <= '9' }
func isAlphaByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// evrCmp implements RPM-EVR comparison: epoch compared numerically
// (absent epoch, -1, treated as 0 per rpm's own convention), then
// version and release compared segment-wise via rpmvercmp. This is the
// real algorithm SPEC_FULL.md §3 calls for, distinct from NevraCmp's
// plain lexicographic ordering over a raw, possibly-partial NEVRA
// struct (see DESIGN.md's Open Question (a) resolution).
func evrCmp(aEpoch int64, aVer, aRel string, bEpoch int64, bVer, bRel string) int {
	ae, be := aEpoch, bEpoch
	if ae == -1 {
		ae = 0
	}
	if be == -1 {
		be = 0
	}
	if ae != be {
		if ae < be {
			return -1
		}
		return 1
	}
	if c := rpmvercmp(aVer, bVer); c != 0 {
		return c
	}
	return rpmvercmp(aRel, bRel)
}

// evrCmpNEVRA compares a and b's epoch/version/release components with
// evrCmp, ignoring name and arch.
func evrCmpNEVRA(a, b NEVRA) int {
	return evrCmp(a.Epoch, a.Version, a.Release, b.Epoch, b.Version, b.Release)
}
