package sack

import (
	"compress/gzip"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"time"
)

// primaryXML mirrors just enough of the repodata/primary.xml schema to
// build solvables; this package has no dependency in the example corpus
// for RPM-primary-XML parsing specifically, so it is parsed with the
// standard library's encoding/xml (see DESIGN.md for why no pack library
// covers this concern).
type primaryXML struct {
	Packages []primaryPackageXML `xml:"package"`
}

type primaryPackageXML struct {
	Name    string `xml:"name"`
	Arch    string `xml:"arch"`
	Version struct {
		Epoch   string `xml:"epoch,attr"`
		Ver     string `xml:"ver,attr"`
		Rel     string `xml:"rel,attr"`
	} `xml:"version"`
	Summary     string `xml:"summary"`
	Description string `xml:"description"`
	URL         string `xml:"url"`
	Location    struct {
		Href string `xml:"href,attr"`
	} `xml:"location"`
	Format struct {
		SourceRPM string `xml:"sourcerpm"`
		Requires  struct {
			Entry []primaryEntryXML `xml:"entry"`
		} `xml:"requires"`
		Provides struct {
			Entry []primaryEntryXML `xml:"entry"`
		} `xml:"provides"`
		Conflicts struct {
			Entry []primaryEntryXML `xml:"entry"`
		} `xml:"conflicts"`
		Obsoletes struct {
			Entry []primaryEntryXML `xml:"entry"`
		} `xml:"obsoletes"`
	} `xml:"format"`
}

type primaryEntryXML struct {
	Name  string `xml:"name,attr"`
	Flags string `xml:"flags,attr"`
	Ver   string `xml:"ver,attr"`
}

func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return struct {
			io.Reader
			io.Closer
		}{gz, f}, nil
	}
	return f, nil
}

func entryFlagsToCmp(flags string) CmpFlag {
	switch flags {
	case "EQ":
		return EQ
	case "LT":
		return LT
	case "GT":
		return GT
	case "LE":
		return LT | EQ
	case "GE":
		return GT | EQ
	default:
		return 0
	}
}

// LoadRepo loads one regular repository into the sack: if a valid cache
// exists for the main extension, it is used; otherwise files.Primary is
// parsed and, when buildCache is set, a fresh cache is written atomically.
// files.Filelists and files.Updateinfo, when set, are loaded the same way
// as independently cached extensions that enrich the main solvables
// (filelists fills in Package.Files; updateinfo attaches Advisory records).
// files.Presto is accepted for RepoFiles/Extension completeness but its
// prestodelta XML is deliberately not parsed: nothing in this package
// consumes delta-RPM metadata, which exists to optimize the downloading of
// repositories — explicitly out of this package's scope (see DESIGN.md).
// Every successful load clears providesReady and consideredUpToDate.
func (s *Sack) LoadRepo(name string, files RepoFiles, buildCache bool) (Repo, error) {
	const op = "Sack.LoadRepo"
	if name == SystemRepoName || name == CommandlineRepoName {
		return Repo{}, newErr(op, KindFailed, nil)
	}

	repomdBytes, err := os.ReadFile(files.Repomd)
	if err != nil {
		return Repo{}, newErr(op, KindIO, err)
	}
	checksum := repomdChecksum(repomdBytes)

	h := newRepoHandle(name)
	h.files = files
	h.checksum = checksum
	s.repos[name] = h
	s.repoOrder = append(s.repoOrder, name)

	cp := cachePath(s.cacheDir, name, ExtMain)
	if payload, ok := readCache(cp, checksum); ok {
		s.materialize(h, payload)
		h.states[ExtMain] = StateLoadedCache
	} else {
		payload, err := s.parsePrimary(files.Primary)
		if err != nil {
			return Repo{}, newErr(op, KindIO, err)
		}
		s.materialize(h, payload)
		h.states[ExtMain] = StateLoadedFetch
		if buildCache {
			if err := writeCache(cp, payload, checksum); err != nil {
				return Repo{}, err
			}
			h.states[ExtMain] = StateWritten
		}
	}

	if err := s.loadFilelistsExt(h, files, buildCache); err != nil {
		return Repo{}, newErr(op, KindIO, err)
	}
	if err := s.loadUpdateinfoExt(h, files, buildCache); err != nil {
		return Repo{}, newErr(op, KindIO, err)
	}

	s.providesReady = false
	s.consideredUpToDate = false
	return Repo{h: h}, nil
}

func (s *Sack) parsePrimary(path string) (cachePayload, error) {
	rc, err := openMaybeGzip(path)
	if err != nil {
		return cachePayload{}, err
	}
	defer rc.Close()

	var px primaryXML
	if err := xml.NewDecoder(rc).Decode(&px); err != nil {
		return cachePayload{}, err
	}

	var payload cachePayload
	for _, p := range px.Packages {
		payload.Solvables = append(payload.Solvables, cacheSolvable{
			Name:        p.Name,
			Version:     p.Version.Ver,
			Release:     p.Version.Rel,
			Arch:        p.Arch,
			Epoch:       parseEpoch(p.Version.Epoch),
			Summary:     p.Summary,
			Description: p.Description,
			URL:         p.URL,
			Location:    p.Location.Href,
			SourceRPM:   p.Format.SourceRPM,
			Requires:    entriesToCache(p.Format.Requires.Entry),
			Provides:    entriesToCache(p.Format.Provides.Entry),
			Conflicts:   entriesToCache(p.Format.Conflicts.Entry),
			Obsoletes:   entriesToCache(p.Format.Obsoletes.Entry),
		})
	}
	return payload, nil
}

func entriesToCache(entries []primaryEntryXML) []cacheReldep {
	out := make([]cacheReldep, 0, len(entries))
	for _, e := range entries {
		out = append(out, cacheReldep{Name: e.Name, EVR: e.Ver, Cmp: entryFlagsToCmp(e.Flags)})
	}
	return out
}

// materialize turns a cachePayload into live solvables owned by repo h,
// used both on a cache hit and right after a fresh XML parse so the cache
// round-trip invariant (load -> write -> reload == original) holds by
// construction.
func (s *Sack) materialize(h *repoHandle, payload cachePayload) {
	h.mainNSolvables = len(payload.Solvables)
	for _, cs := range payload.Solvables {
		sv := &solvable{
			repo: h, name: cs.Name, epoch: cs.Epoch, version: cs.Version, release: cs.Release, arch: cs.Arch,
			summary: cs.Summary, description: cs.Description, url: cs.URL,
			location: cs.Location, sourcerpm: cs.SourceRPM, checksum: cs.Checksum, files: cs.Files,
			requires:    fromCacheReldeps(s, cs.Requires),
			provides:    fromCacheReldeps(s, cs.Provides),
			conflicts:   fromCacheReldeps(s, cs.Conflicts),
			obsoletes:   fromCacheReldeps(s, cs.Obsoletes),
			recommends:  fromCacheReldeps(s, cs.Recommends),
			suggests:    fromCacheReldeps(s, cs.Suggests),
			enhances:    fromCacheReldeps(s, cs.Enhances),
			supplements: fromCacheReldeps(s, cs.Supplements),
		}
		s.pool.addSolvable(sv)
	}
}

func fromCacheReldeps(s *Sack, crs []cacheReldep) ReldepList {
	var rl ReldepList
	for _, cr := range crs {
		rd, err := NewReldep(s, cr.Name, cr.Cmp, cr.EVR)
		if err != nil {
			continue
		}
		rl.Add(rd)
	}
	return rl
}

// findSolvable locates the solvable belonging to repo h whose identity
// matches the given NEVR+arch, used to attach filelists/updateinfo data
// parsed from a separate extension file onto the right main solvable.
// findSolvable matches by h when h is non-nil, and across every repo in the
// sack when h is nil (the updateinfo case: an advisory can list packages
// shipped by a different repo than the one its own updateinfo.xml came
// from, mirroring hawkey's own cross-repo advisory attachment).
func (s *Sack) findSolvable(h *repoHandle, name string, epoch int64, version, release, arch string) *solvable {
	for _, id := range s.pool.allIDs() {
		sv := s.pool.get(id)
		if sv == nil || (h != nil && sv.repo != h) {
			continue
		}
		if sv.name == name && sv.epoch == epoch && sv.version == version && sv.release == release && sv.arch == arch {
			return sv
		}
	}
	return nil
}

// filelistsXML mirrors just enough of repodata/filelists.xml to recover
// each package's file list, keyed by the same name/epoch/version/release/
// arch tuple primary.xml uses.
type filelistsXML struct {
	Packages []filelistsPackageXML `xml:"package"`
}

type filelistsPackageXML struct {
	Name    string `xml:"name,attr"`
	Arch    string `xml:"arch,attr"`
	Version struct {
		Epoch string `xml:"epoch,attr"`
		Ver   string `xml:"ver,attr"`
		Rel   string `xml:"rel,attr"`
	} `xml:"version"`
	Files []string `xml:"file"`
}

type cacheFileEntry struct {
	Name, Version, Release, Arch string
	Epoch                        int64
	Files                        []string
}

type filelistsPayload struct {
	Entries []cacheFileEntry
}

func (s *Sack) parseFilelists(path string) (filelistsPayload, error) {
	rc, err := openMaybeGzip(path)
	if err != nil {
		return filelistsPayload{}, err
	}
	defer rc.Close()

	var fx filelistsXML
	if err := xml.NewDecoder(rc).Decode(&fx); err != nil {
		return filelistsPayload{}, err
	}
	var payload filelistsPayload
	for _, p := range fx.Packages {
		payload.Entries = append(payload.Entries, cacheFileEntry{
			Name: p.Name, Epoch: parseEpoch(p.Version.Epoch), Version: p.Version.Ver, Release: p.Version.Rel,
			Arch: p.Arch, Files: p.Files,
		})
	}
	return payload, nil
}

// loadFilelistsExt loads files.Filelists, if set, filling in the Files of
// every matching solvable already materialized under h from primary.xml.
// A no-op when files.Filelists is empty.
func (s *Sack) loadFilelistsExt(h *repoHandle, files RepoFiles, buildCache bool) error {
	if files.Filelists == "" {
		return nil
	}
	cp := cachePath(s.cacheDir, h.name, ExtFilenames)
	var payload filelistsPayload
	if readCacheInto(cp, h.checksum, &payload) {
		h.states[ExtFilenames] = StateLoadedCache
	} else {
		p, err := s.parseFilelists(files.Filelists)
		if err != nil {
			return err
		}
		payload = p
		h.states[ExtFilenames] = StateLoadedFetch
		if buildCache {
			if err := writeCacheValue(cp, payload, h.checksum); err != nil {
				return err
			}
			h.states[ExtFilenames] = StateWritten
		}
	}
	for _, e := range payload.Entries {
		if sv := s.findSolvable(h, e.Name, e.Epoch, e.Version, e.Release, e.Arch); sv != nil {
			sv.files = e.Files
		}
	}
	return nil
}

// updateinfoXML mirrors just enough of repodata/updateinfo.xml to build
// Advisory records and the name/EVR/arch keys needed to attach them to
// solvables.
type updateinfoXML struct {
	Updates []updateXML `xml:"update"`
}

type updateXML struct {
	Type        string `xml:"type,attr"`
	ID          string `xml:"id"`
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Rights      string `xml:"rights"`
	Updated     struct {
		Date string `xml:"date,attr"`
	} `xml:"updated"`
	References struct {
		Reference []updateRefXML `xml:"reference"`
	} `xml:"references"`
	Pkglist struct {
		Collections []updateCollectionXML `xml:"collection"`
	} `xml:"pkglist"`
}

type updateRefXML struct {
	Type  string `xml:"type,attr"`
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
	Href  string `xml:"href,attr"`
}

type updateCollectionXML struct {
	Name     string         `xml:"name"`
	Packages []updatePkgXML `xml:"package"`
}

type updatePkgXML struct {
	Name     string `xml:"name,attr"`
	Epoch    string `xml:"epoch,attr"`
	Version  string `xml:"version,attr"`
	Release  string `xml:"release,attr"`
	Arch     string `xml:"arch,attr"`
	Filename string `xml:"filename"`
}

type cacheAdvisoryPkg struct {
	Name, EVR, Arch, Filename string
	Epoch                     int64
	Version, Release          string
}

type cacheAdvisoryRef struct {
	Type           int
	ID, Title, URL string
}

type cacheAdvisory struct {
	ID, Title, Description, Rights string
	Type                           int
	Updated                        int64
	Collections                    []string
	Packages                       []cacheAdvisoryPkg
	References                     []cacheAdvisoryRef
}

type updateinfoPayload struct {
	Advisories []cacheAdvisory
}

// updateinfoDateLayouts are the date formats repodata/updateinfo.xml has
// been observed to use across distributions; the first one that parses
// wins, and a date that matches none of them leaves Updated at its zero
// value rather than failing the whole load.
var updateinfoDateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func parseUpdateinfoDate(s string) time.Time {
	for _, layout := range updateinfoDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func advisoryTypeFromString(s string) AdvisoryType {
	switch s {
	case "security":
		return AdvisorySecurity
	case "bugfix":
		return AdvisoryBugfix
	case "enhancement":
		return AdvisoryEnhancement
	default:
		return AdvisoryUnknown
	}
}

func advisoryRefTypeFromString(s string) AdvisoryRefType {
	switch s {
	case "bugzilla":
		return AdvisoryRefBugzilla
	case "cve":
		return AdvisoryRefCVE
	case "vendor":
		return AdvisoryRefVendor
	default:
		return AdvisoryRefUnknown
	}
}

func (s *Sack) parseUpdateinfo(path string) (updateinfoPayload, error) {
	rc, err := openMaybeGzip(path)
	if err != nil {
		return updateinfoPayload{}, err
	}
	defer rc.Close()

	var ux updateinfoXML
	if err := xml.NewDecoder(rc).Decode(&ux); err != nil {
		return updateinfoPayload{}, err
	}

	var payload updateinfoPayload
	for _, u := range ux.Updates {
		ca := cacheAdvisory{
			ID: u.ID, Title: u.Title, Description: u.Description, Rights: u.Rights,
			Type:    int(advisoryTypeFromString(u.Type)),
			Updated: parseUpdateinfoDate(u.Updated.Date).Unix(),
		}
		for _, col := range u.Pkglist.Collections {
			if col.Name != "" {
				ca.Collections = append(ca.Collections, col.Name)
			}
			for _, p := range col.Packages {
				ca.Packages = append(ca.Packages, cacheAdvisoryPkg{
					Name: p.Name, Arch: p.Arch, Filename: p.Filename,
					Epoch: parseEpoch(p.Epoch), Version: p.Version, Release: p.Release,
					EVR: EvrString(parseEpoch(p.Epoch), p.Version, p.Release),
				})
			}
		}
		for _, r := range u.References.Reference {
			ca.References = append(ca.References, cacheAdvisoryRef{
				Type: int(advisoryRefTypeFromString(r.Type)), ID: r.ID, Title: r.Title, URL: r.Href,
			})
		}
		payload.Advisories = append(payload.Advisories, ca)
	}
	return payload, nil
}

// loadUpdateinfoExt loads files.Updateinfo, if set, attaching an *Advisory
// to every already-loaded solvable in the sack (not just repo h: an
// advisory can reference packages shipped by a different repo, matching
// hawkey's own cross-repo advisory attachment) whose name/EVR/arch match
// one of its listed packages. A no-op when files.Updateinfo is empty.
func (s *Sack) loadUpdateinfoExt(h *repoHandle, files RepoFiles, buildCache bool) error {
	if files.Updateinfo == "" {
		return nil
	}
	cp := cachePath(s.cacheDir, h.name, ExtUpdateinfo)
	var payload updateinfoPayload
	if readCacheInto(cp, h.checksum, &payload) {
		h.states[ExtUpdateinfo] = StateLoadedCache
	} else {
		p, err := s.parseUpdateinfo(files.Updateinfo)
		if err != nil {
			return err
		}
		payload = p
		h.states[ExtUpdateinfo] = StateLoadedFetch
		if buildCache {
			if err := writeCacheValue(cp, payload, h.checksum); err != nil {
				return err
			}
			h.states[ExtUpdateinfo] = StateWritten
		}
	}

	for _, ca := range payload.Advisories {
		adv := &Advisory{
			ID: ca.ID, Title: ca.Title, Type: AdvisoryType(ca.Type), Description: ca.Description,
			Rights: ca.Rights, Updated: time.Unix(ca.Updated, 0).UTC(), Collections: ca.Collections,
		}
		for _, p := range ca.Packages {
			adv.Packages = append(adv.Packages, AdvisoryPkg{Name: p.Name, EVR: p.EVR, Arch: p.Arch, Filename: p.Filename})
		}
		for _, r := range ca.References {
			adv.References = append(adv.References, AdvisoryRef{Type: AdvisoryRefType(r.Type), ID: r.ID, Title: r.Title, URL: r.URL})
		}
		for _, p := range ca.Packages {
			if sv := s.findSolvable(nil, p.Name, p.Epoch, p.Version, p.Release, p.Arch); sv != nil {
				sv.advisories = append(sv.advisories, adv)
			}
		}
	}
	return nil
}
