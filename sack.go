package sack

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/karrick/godirwalk"
)

// Sack owns the solver pool, every loaded repo, the on-disk cache
// directory, and the exclude/include/installonly configuration that
// together determine which solvables are "considered" by queries and the
// solver.
type Sack struct {
	pool *pool

	cacheDir string
	rootDir  string
	logFile  string

	repos     map[string]*repoHandle
	repoOrder []string

	repoExcludes *bitset.BitSet
	pkgExcludes  *bitset.BitSet
	pkgIncludes  *bitset.BitSet // nil == unset, meaning "no include restriction"

	considered        *bitset.BitSet
	consideredUpToDate bool
	providesReady      bool

	installonlyNames []string
	installonlyLimit int

	runningKernel  SolvableID // runningKernelNone until computed, or when no package owns it
	kernelComputed bool
	unameReleaseFn func() (string, error)
}

// runningKernelNone is the "-1" sentinel from the spec, represented as a
// SolvableID since 0 is otherwise the pool's "no solvable" id.
const runningKernelNone SolvableID = ^SolvableID(0)

// SackOptions configures Sack construction. Every field is optional.
type SackOptions struct {
	CacheDir string
	Arch     string
	RootDir  string
	LogFile  string
	// BuildCache is not read by NewSack; LoadRepo and LoadSystemRepo each
	// take their own buildCache argument.
	BuildCache bool
	// RunningKernelFn overrides how RunningKernel obtains the running
	// kernel's uname release, analogous to hawkey's mockable
	// running_kernel_fn (see `_examples/original_source/hawkey/tests/
	// test_goal.c`'s mock_running_kernel). Nil uses the real
	// /proc/sys/kernel/osrelease read.
	RunningKernelFn func() (string, error)
}

// NewSack constructs a Sack, detecting an architecture and a default cache
// directory when the caller leaves those options empty.
func NewSack(opts SackOptions) (*Sack, error) {
	const op = "Sack.New"

	arch := opts.Arch
	if arch == "" {
		a, err := detectArch()
		if err != nil {
			return nil, err
		}
		arch = a
	}

	p := newPool()
	if err := p.setArch(arch); err != nil {
		return nil, err
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, newErr(op, KindIO, err)
		}
		cacheDir = d
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, newErr(op, KindIO, err)
	}

	root := opts.RootDir
	if root == "" {
		root = "/"
	}

	unameReleaseFn := opts.RunningKernelFn
	if unameReleaseFn == nil {
		unameReleaseFn = unameRelease
	}

	return &Sack{
		pool:           p,
		cacheDir:       cacheDir,
		rootDir:        root,
		logFile:        opts.LogFile,
		repos:          map[string]*repoHandle{},
		runningKernel:  runningKernelNone,
		unameReleaseFn: unameReleaseFn,
	}, nil
}

func defaultCacheDir() (string, error) {
	if os.Geteuid() == 0 {
		return "/var/cache/sackd", nil
	}
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp(os.TempDir(), "sackd-"+u.Username+"-")
	if err != nil {
		return "", err
	}
	return dir, nil
}

// knowsName reports whether any loaded solvable, considered or not, has the
// given name; glob honours shell glob metacharacters, icase folds case.
func (s *Sack) knowsName(name string, glob, icase bool) bool {
	for _, id := range s.pool.allIDs() {
		sv := s.pool.get(id)
		if sv == nil {
			continue
		}
		if matchString(sv.name, name, glob, icase) {
			return true
		}
	}
	return false
}

// consideredMap recomputes and returns the sack's considered bitmap:
// (all − repoExcludes − pkgExcludes) ∩ pkgIncludes (if set). The
// computation is idempotent and memoised behind consideredUpToDate.
func (s *Sack) consideredMap() *bitset.BitSet {
	if s.consideredUpToDate && s.considered != nil {
		return s.considered
	}
	n := uint(len(s.pool.solvables))
	all := bitset.New(n)
	for _, id := range s.pool.allIDs() {
		all.Set(uint(id))
	}
	if s.repoExcludes != nil {
		all.InPlaceDifference(s.repoExcludes)
	}
	if s.pkgExcludes != nil {
		all.InPlaceDifference(s.pkgExcludes)
	}
	if s.pkgIncludes != nil {
		all.InPlaceIntersection(s.pkgIncludes)
	}
	s.considered = all
	s.consideredUpToDate = true
	return s.considered
}

// AddExcludes restricts the considered map by removing every solvable in P,
// strictly shrinking the results of every future non-IgnoreExcludes query.
func (s *Sack) AddExcludes(p PackageSet) {
	if s.pkgExcludes == nil {
		s.pkgExcludes = bitset.New(uint(len(s.pool.solvables)))
	}
	s.pkgExcludes.InPlaceUnion(p.bits)
	s.consideredUpToDate = false
}

// AddIncludes restricts the considered map to exactly the solvables in P.
func (s *Sack) AddIncludes(p PackageSet) {
	if s.pkgIncludes == nil {
		s.pkgIncludes = bitset.New(uint(len(s.pool.solvables)))
	}
	s.pkgIncludes.InPlaceUnion(p.bits)
	s.consideredUpToDate = false
}

// SetInstallonly configures the installonly capability-name list and the GC
// limit applied after a successful Goal.Run. limit == 0 disables the pass.
func (s *Sack) SetInstallonly(names []string, limit int) {
	s.installonlyNames = names
	s.installonlyLimit = limit
}

// RunningKernel returns the installed package that owns
// /boot/vmlinuz-<uname.release>, computing and memoising it on first call.
// ok is false when no installed package owns that file, which is a legal
// outcome, not an error.
func (s *Sack) RunningKernel() (pkg Package, ok bool) {
	if s.kernelComputed {
		if s.runningKernel == runningKernelNone {
			return Package{}, false
		}
		return Package{s: s, id: s.runningKernel}, true
	}
	s.kernelComputed = true

	rel, err := s.unameReleaseFn()
	if err != nil {
		s.runningKernel = runningKernelNone
		return Package{}, false
	}
	target := "/boot/vmlinuz-" + rel

	for _, id := range s.pool.allIDs() {
		sv := s.pool.get(id)
		if sv == nil || !sv.installed {
			continue
		}
		for _, f := range sv.files {
			if f == target {
				s.runningKernel = id
				return Package{s: s, id: id}, true
			}
		}
	}
	s.runningKernel = runningKernelNone
	return Package{}, false
}

// PruneCache removes cache files under the sack's cache directory whose
// repo-name prefix is not in keep. This is an explicit, caller-invoked
// operation; the Sack never prunes implicitly.
func (s *Sack) PruneCache(keep []string) error {
	keepSet := map[string]bool{}
	for _, k := range keep {
		keepSet[k] = true
	}
	return godirwalk.Walk(s.cacheDir, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			base := filepath.Base(path)
			name := base
			for _, ext := range []Extension{ExtFilenames, ExtPresto, ExtUpdateinfo, ExtMain} {
				if strings.HasSuffix(base, ext.cacheSuffix()) {
					name = strings.TrimSuffix(base, ext.cacheSuffix())
					break
				}
			}
			if keepSet[name] {
				return nil
			}
			return os.Remove(path)
		},
		Unsorted: true,
	})
}

func unameRelease() (string, error) {
	data, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func matchString(value, pattern string, glob, icase bool) bool {
	v, p := value, pattern
	if icase {
		v, p = strings.ToLower(v), strings.ToLower(p)
	}
	if glob {
		ok, _ := filepathMatch(p, v)
		return ok
	}
	return v == p
}

func filepathMatch(pattern, name string) (bool, error) {
	return fnmatch(pattern, name)
}

// fnmatch matches name against a shell glob (*, ?, and [...] classes) by
// delegating to path/filepath.Match, so '*' and '?' never match a '/' and
// no extended-glob syntax is recognised.
func fnmatch(pattern, name string) (bool, error) {
	return filepath.Match(pattern, name)
}
