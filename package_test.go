package sack

import "testing"

func TestRpmvercmpDigitRuns(t *testing.T) {
	cases := []struct{ a, b string; want int }{
		{"9", "10", -1},
		{"10", "9", 1},
		{"1.0.0", "1.0.0", 0},
		{"1.0010", "1.9", 1}, // leading zeros stripped, 10 > 9
		{"1.05", "1.5", 0},
	}
	for _, c := range cases {
		if got := sign(rpmvercmp(c.a, c.b)); got != sign(c.want) {
			t.Errorf("rpmvercmp(%q, %q) sign = %d, want %d", c.a, c.b, got, sign(c.want))
		}
	}
}

func TestRpmvercmpTildeSortsBeforeAnything(t *testing.T) {
	if sign(rpmvercmp("1.0~rc1", "1.0")) != -1 {
		t.Error("1.0~rc1 should sort before 1.0")
	}
	if sign(rpmvercmp("1.0~rc1", "1.0~rc2")) != -1 {
		t.Error("1.0~rc1 should sort before 1.0~rc2")
	}
	if sign(rpmvercmp("1.0~~", "1.0~")) != -1 {
		t.Error("an extra tilde segment should sort lower still")
	}
}

func TestRpmvercmpCaretSortsAfterEndOfString(t *testing.T) {
	if sign(rpmvercmp("1.0^git1", "1.0")) != 1 {
		t.Error("1.0^git1 should sort after 1.0")
	}
	if sign(rpmvercmp("1.0^git1", "1.0.1")) != -1 {
		t.Error("1.0^git1 should sort before the real next release 1.0.1")
	}
}

func TestRpmvercmpAlphaVsNumeric(t *testing.T) {
	if sign(rpmvercmp("1.0a", "1.0")) != 1 {
		t.Error("a trailing alpha segment with more characters sorts higher")
	}
	if sign(rpmvercmp("1.0", "1.0.1")) != -1 {
		t.Error("fewer segments sorts lower than more segments")
	}
}

func TestPackageCmpUsesRealEVRNotStringOrder(t *testing.T) {
	s := testSack(t)
	nine := addTestPkg(t, s, testPkgSpec{name: "foo", version: "9", release: "1", arch: "x86_64"})
	ten := addTestPkg(t, s, testPkgSpec{name: "foo", version: "10", release: "1", arch: "x86_64"})

	// Plain string comparison would put "10" before "9"; RPM-EVR
	// comparison must not.
	if Cmp(nine, ten) >= 0 {
		t.Fatalf("Cmp(foo-9, foo-10) >= 0, want foo-9 < foo-10 under RPM-EVR ordering")
	}
	if Cmp(ten, nine) <= 0 {
		t.Fatalf("Cmp(foo-10, foo-9) <= 0, want foo-10 > foo-9 under RPM-EVR ordering")
	}
}

func TestPackageCmpNameBeforeEVR(t *testing.T) {
	s := testSack(t)
	a := addTestPkg(t, s, testPkgSpec{name: "aaa", version: "9", release: "1", arch: "x86_64"})
	b := addTestPkg(t, s, testPkgSpec{name: "zzz", version: "1", release: "1", arch: "x86_64"})
	if Cmp(a, b) >= 0 {
		t.Fatalf("Cmp(aaa, zzz) >= 0, want name ordering to dominate EVR")
	}
}
