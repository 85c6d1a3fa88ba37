package sack

import (
	"bytes"
	"os"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// archList is the set of architectures the pool recognizes besides the
// detected/configured one; mirrors the compatible-arch list libsolv wires
// up via pool_setarch, narrowed to the families this package cares about.
var archList = []string{
	"x86_64", "i686", "i586", "i486", "i386",
	"aarch64", "armv7hnl", "armv7hl", "armv7l", "armv6hl", "armv6l",
	"ppc64le", "ppc64", "s390x", "mips64el", "mipsel", "mips",
	"noarch", "src",
}

func isKnownArch(a string) bool {
	for _, k := range archList {
		if k == a {
			return true
		}
	}
	return false
}

// detectArch mirrors hawkey's sack construction: uname -m, with the same ARM
// feature-sniffing promotions (armv6l+vfp -> armv6hl, armv7l+neon+vfp3 ->
// armv7hnl, armv7l+vfp3 -> armv7hl) and a mipsel promotion on little-endian
// hosts. Feature sniffing reads /proc/cpuinfo; a missing or unreadable file
// just means no promotion happens, which is a legal outcome.
func detectArch() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", newErr("detectArch", KindArch, err)
	}
	machine := cstr(uts.Machine[:])

	switch {
	case strings.HasPrefix(machine, "armv6l"):
		if cpuinfoHasAll("vfp") {
			return "armv6hl", nil
		}
	case strings.HasPrefix(machine, "armv7l"):
		if cpuinfoHasAll("neon", "vfpv3") {
			return "armv7hnl", nil
		}
		if cpuinfoHasAll("vfpv3") {
			return "armv7hl", nil
		}
	case machine == "mips":
		if isLittleEndian() {
			return "mipsel", nil
		}
	}
	return machine, nil
}

func cstr(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

func isLittleEndian() bool {
	var i uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&i))
	return b[0] == 1
}

// statDevIno extracts the device and inode numbers backing fi, the two
// fields (besides size and mtime) the rpmdb content checksum is keyed on.
func statDevIno(fi os.FileInfo) (dev, ino uint64) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	return uint64(st.Dev), uint64(st.Ino)
}

// cpuinfoHasAll reports whether every feature name appears in the "Features"
// line of /proc/cpuinfo. Absence of the file (non-Linux hosts, containers
// without procfs) is treated as "no features", not an error.
func cpuinfoHasAll(features ...string) bool {
	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return false
	}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if !bytes.HasPrefix(line, []byte("Features")) && !bytes.HasPrefix(line, []byte("features")) {
			continue
		}
		ok := true
		for _, f := range features {
			if !bytes.Contains(line, []byte(f)) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
