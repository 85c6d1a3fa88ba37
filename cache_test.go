package sack

import (
	"path/filepath"
	"testing"
)

func TestCacheWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fedora.solv")
	checksum := repomdChecksum([]byte("<repomd/>"))

	payload := cachePayload{Solvables: []cacheSolvable{
		{Name: "bash", Version: "5.1", Release: "1", Arch: "x86_64", Epoch: -1,
			Requires: []cacheReldep{{Name: "libc", Cmp: GT | EQ, EVR: "2.17"}},
			Provides: []cacheReldep{{Name: "bash"}},
		},
	}}

	if err := writeCache(path, payload, checksum); err != nil {
		t.Fatalf("writeCache: %v", err)
	}

	got, ok := readCache(path, checksum)
	if !ok {
		t.Fatal("readCache: expected cache hit")
	}
	if len(got.Solvables) != 1 || got.Solvables[0].Name != "bash" {
		t.Fatalf("round-tripped payload mismatch: %+v", got)
	}
	if len(got.Solvables[0].Requires) != 1 || got.Solvables[0].Requires[0].Name != "libc" {
		t.Fatalf("requires not preserved: %+v", got.Solvables[0].Requires)
	}
}

func TestCacheReadRejectsChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fedora.solv")
	checksum := repomdChecksum([]byte("<repomd/>"))
	other := repomdChecksum([]byte("<repomd-changed/>"))

	if err := writeCache(path, cachePayload{}, checksum); err != nil {
		t.Fatalf("writeCache: %v", err)
	}
	if _, ok := readCache(path, other); ok {
		t.Fatal("expected cache miss on checksum mismatch")
	}
}

func TestCacheReadMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, ok := readCache(filepath.Join(dir, "absent.solv"), [32]byte{}); ok {
		t.Fatal("expected cache miss for a nonexistent file")
	}
}
