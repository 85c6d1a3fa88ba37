package sack

import "testing"

func TestQueryFilterEQByName(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{name: "bash", version: "5.1", release: "1", arch: "x86_64"})
	addTestPkg(t, s, testPkgSpec{name: "zsh", version: "5.8", release: "1", arch: "x86_64"})

	q := NewQuery(s, 0)
	if err := q.Filter(PKGNAME, EQ, "bash"); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	list, err := q.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if list.Len() != 1 || list.Get(0).Name() != "bash" {
		t.Fatalf("expected exactly [bash], got %d results", list.Len())
	}
}

func TestQueryFilterGlobAndSubstr(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{name: "python3-requests", version: "2.0", release: "1", arch: "noarch"})
	addTestPkg(t, s, testPkgSpec{name: "python3-urllib3", version: "1.0", release: "1", arch: "noarch"})
	addTestPkg(t, s, testPkgSpec{name: "bash", version: "5.1", release: "1", arch: "x86_64"})

	q := NewQuery(s, 0)
	if err := q.Filter(PKGNAME, GLOB, "python3-*"); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	list, err := q.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("glob: expected 2 matches, got %d", list.Len())
	}

	q2 := NewQuery(s, 0)
	if err := q2.Filter(PKGNAME, SUBSTR, "requests"); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	list2, err := q2.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if list2.Len() != 1 || list2.Get(0).Name() != "python3-requests" {
		t.Fatalf("substr: expected [python3-requests], got %d", list2.Len())
	}
}

func TestQueryFilterNOT(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{name: "bash", version: "5.1", release: "1", arch: "x86_64"})
	addTestPkg(t, s, testPkgSpec{name: "zsh", version: "5.8", release: "1", arch: "x86_64"})

	q := NewQuery(s, 0)
	if err := q.Filter(PKGNAME, EQ|NOT, "bash"); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	list, err := q.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if list.Len() != 1 || list.Get(0).Name() != "zsh" {
		t.Fatalf("expected [zsh], got %d results", list.Len())
	}
}

func TestQueryLatestPerArch(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{name: "foo", version: "1.0", release: "1", arch: "x86_64"})
	addTestPkg(t, s, testPkgSpec{name: "foo", version: "2.0", release: "1", arch: "x86_64"})
	addTestPkg(t, s, testPkgSpec{name: "foo", version: "1.5", release: "1", arch: "i686"})

	q := NewQuery(s, 0)
	if err := q.Filter(PKGNAME, EQ, "foo"); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	q.LatestPerArch(true)
	list, err := q.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("expected 2 latest-per-arch results, got %d", list.Len())
	}
	for _, p := range list.All() {
		if p.Arch() == "x86_64" && p.Version() != "2.0" {
			t.Errorf("x86_64 latest should be 2.0, got %s", p.Version())
		}
	}
}

func TestQueryUpdatesAndDowngrades(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{name: "foo", version: "1.0", release: "1", arch: "x86_64", installed: true})
	addTestPkg(t, s, testPkgSpec{name: "foo", version: "2.0", release: "1", arch: "x86_64"})
	addTestPkg(t, s, testPkgSpec{name: "foo", version: "0.5", release: "1", arch: "x86_64"})

	updates := NewQuery(s, 0)
	updates.Updates(true)
	ulist, err := updates.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ulist.Len() != 1 || ulist.Get(0).Version() != "2.0" {
		t.Fatalf("expected update candidate 2.0, got %d results", ulist.Len())
	}

	downgrades := NewQuery(s, 0)
	downgrades.Downgrades(true)
	dlist, err := downgrades.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if dlist.Len() != 1 || dlist.Get(0).Version() != "0.5" {
		t.Fatalf("expected downgrade candidate 0.5, got %d results", dlist.Len())
	}
}

func TestQueryFilterReldepProvides(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{name: "webserver", version: "1.0", release: "1", arch: "x86_64",
		provides: []string{"httpd"}})
	addTestPkg(t, s, testPkgSpec{name: "other", version: "1.0", release: "1", arch: "x86_64"})

	rd, err := NewReldep(s, "httpd", 0, "")
	if err != nil {
		t.Fatalf("NewReldep: %v", err)
	}
	var rl ReldepList
	rl.Add(rd)

	q := NewQuery(s, 0)
	if err := q.FilterReldep(PROVIDES, EQ, rl); err != nil {
		t.Fatalf("FilterReldep: %v", err)
	}
	list, err := q.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if list.Len() != 1 || list.Get(0).Name() != "webserver" {
		t.Fatalf("expected [webserver], got %d", list.Len())
	}
}

func TestQueryGetRequiresExactlyOne(t *testing.T) {
	s := testSack(t)
	addTestPkg(t, s, testPkgSpec{name: "bash", version: "5.1", release: "1", arch: "x86_64"})
	addTestPkg(t, s, testPkgSpec{name: "bash", version: "5.0", release: "1", arch: "x86_64"})

	q := NewQuery(s, 0)
	_ = q.Filter(PKGNAME, EQ, "bash")
	if _, err := q.Get(); err == nil {
		t.Fatal("expected error: two bash matches, Get requires exactly one")
	}
}
