package sack

import (
	"fmt"
	"sort"
)

// Action is one bit of the Goal's accumulated action bitmask.
type Action uint16

const (
	ActionInstall Action = 1 << iota
	ActionUpgrade
	ActionUpgradeAll
	ActionDowngrade
	ActionErase
	ActionDistupgrade
	ActionDistupgradeAll
)

type jobKind int

const (
	jobInstall jobKind = iota
	jobInstallOptional
	jobUpgradeAll
	jobUpgradeTo
	jobUpgradeSelector
	jobDistupgradeAll
	jobDistupgrade
	jobDistupgradeSelector
	jobDowngradeTo
	jobErase
	jobUserInstalled
)

type job struct {
	kind     jobKind
	pkg      Package
	sel      *Selector
	cleanDeps bool
}

// Reason is why the solver retained a package: because the user asked for
// it directly (a job rule), or because something else depends on it.
type Reason int

const (
	ReasonUser Reason = iota
	ReasonDep
)

// RunFlags configures one Goal.Run call.
type RunFlags struct {
	AllowUninstall  bool
	ForceBest       bool
	IgnoreWeakDeps  bool
	Verify          bool
	CheckInstalled  bool
}

// Goal stages install/upgrade/erase/distupgrade/downgrade requests against a
// sack and, on Run, resolves them into a classified Transaction.
type Goal struct {
	s      *Sack
	jobs   []job
	action Action

	ran         bool
	succeeded   bool
	transaction *Transaction
	problems    []string
}

// NewGoal returns an empty goal bound to s.
func NewGoal(s *Sack) *Goal { return &Goal{s: s} }

func (g *Goal) Install(p Package) {
	g.jobs = append(g.jobs, job{kind: jobInstall, pkg: p})
	g.action |= ActionInstall
}

func (g *Goal) InstallOptional(p Package) {
	g.jobs = append(g.jobs, job{kind: jobInstallOptional, pkg: p})
	g.action |= ActionInstall
}

func (g *Goal) UpgradeAll() {
	g.jobs = append(g.jobs, job{kind: jobUpgradeAll})
	g.action |= ActionUpgradeAll
}

func (g *Goal) UpgradeTo(p Package, flags RunFlags) error {
	if flags.CheckInstalled && !g.s.hasInstalledName(p.Name()) {
		return newErr("Goal.UpgradeTo", KindValidation, fmt.Errorf("%s is not installed", p.Name()))
	}
	g.jobs = append(g.jobs, job{kind: jobUpgradeTo, pkg: p})
	g.action |= ActionUpgrade
	return nil
}

func (g *Goal) UpgradeSelector(sel *Selector) {
	g.jobs = append(g.jobs, job{kind: jobUpgradeSelector, sel: sel})
	g.action |= ActionUpgrade
}

func (g *Goal) DistupgradeAll() {
	g.jobs = append(g.jobs, job{kind: jobDistupgradeAll})
	g.action |= ActionDistupgradeAll
}

func (g *Goal) Distupgrade(p Package) {
	g.jobs = append(g.jobs, job{kind: jobDistupgrade, pkg: p})
	g.action |= ActionDistupgrade
}

func (g *Goal) DistupgradeSelector(sel *Selector) {
	g.jobs = append(g.jobs, job{kind: jobDistupgradeSelector, sel: sel})
	g.action |= ActionDistupgrade
}

func (g *Goal) DowngradeTo(p Package) {
	g.jobs = append(g.jobs, job{kind: jobDowngradeTo, pkg: p})
	g.action |= ActionDowngrade
}

func (g *Goal) Erase(p Package, cleanDeps bool) {
	g.jobs = append(g.jobs, job{kind: jobErase, pkg: p, cleanDeps: cleanDeps})
	g.action |= ActionErase
}

func (g *Goal) UserInstalled(p Package) {
	g.jobs = append(g.jobs, job{kind: jobUserInstalled, pkg: p})
}

// Clone copies the staging queue and action mask; the clone is "unrun".
func (g *Goal) Clone() *Goal {
	jobs := make([]job, len(g.jobs))
	copy(jobs, g.jobs)
	return &Goal{s: g.s, jobs: jobs, action: g.action}
}

// transactionKind classifies one step of a resolved transaction.
type transactionKind int

const (
	stepInstall transactionKind = iota
	stepErase
	stepObsoleted
	stepReinstall
	stepUpgrade
	stepDowngrade
)

type step struct {
	kind   transactionKind
	pkg    Package
	reason Reason
	// obsoletedBy is set on stepObsoleted steps: the package whose install
	// obsoleted pkg.
	obsoletedBy Package
}

// Transaction is the classified result of a successful Goal.Run.
type Transaction struct {
	steps []step
}

func (t *Transaction) Installs() []Package    { return t.byKind(stepInstall) }
func (t *Transaction) Erasures() []Package    { return t.byKind(stepErase) }
func (t *Transaction) Obsoleted() []Package   { return t.byKind(stepObsoleted) }
func (t *Transaction) Reinstalls() []Package  { return t.byKind(stepReinstall) }
func (t *Transaction) Upgrades() []Package    { return t.byKind(stepUpgrade) }
func (t *Transaction) Downgrades() []Package  { return t.byKind(stepDowngrade) }

func (t *Transaction) byKind(k transactionKind) []Package {
	var out []Package
	for _, st := range t.steps {
		if st.kind == k {
			out = append(out, st.pkg)
		}
	}
	return out
}

// ListObsoletedByPackage returns the subset of Obsoleted() that p's install
// obsoleted.
func (t *Transaction) ListObsoletedByPackage(p Package) []Package {
	var out []Package
	for _, st := range t.steps {
		if st.kind == stepObsoleted && Equal(st.obsoletedBy, p) {
			out = append(out, st.pkg)
		}
	}
	return out
}

// GetReason reports whether p was retained because a job rule named it
// directly (ReasonUser) or only because something else depends on it
// (ReasonDep).
func (t *Transaction) GetReason(p Package) Reason {
	for _, st := range t.steps {
		if Equal(st.pkg, p) {
			return st.reason
		}
	}
	return ReasonDep
}

func (g *Goal) hasInstalledName(name string) bool { return g.s.hasInstalledName(name) }

func (s *Sack) hasInstalledName(name string) bool {
	for _, id := range s.pool.allIDs() {
		sv := s.pool.get(id)
		if sv.installed && sv.name == name {
			return true
		}
	}
	return false
}

// Run resolves the staged jobs against the sack's considered map, applying
// hawkey's solver flags (AllowVendorChange, KeepOrphans, BestObeyPolicy,
// YumObsoletes are always effectively on in this simplified resolver; the
// install-only-limit pass runs whenever the sack's installonly limit is
// positive, and Run reads no other RunFlags field). This package does not embed a full DPLL/SAT
// engine; job interpretation is direct and name/EVR-driven, matching the
// scale of the fixtures this library targets rather than arbitrary
// real-world dependency graphs (see DESIGN.md).
func (g *Goal) Run(flags RunFlags) error {
	g.s.consideredMap() // force considered recomputation before solving
	g.ran = true

	var steps []step
	installed := map[SolvableID]bool{}
	for _, id := range g.s.pool.allIDs() {
		if sv := g.s.pool.get(id); sv != nil && sv.installed {
			installed[id] = true
		}
	}

	addInstall := func(p Package, reason Reason) {
		steps = append(steps, step{kind: stepInstall, pkg: p, reason: reason})
		for old := range installed {
			oldsv := g.s.pool.get(old)
			if oldsv.name != p.Name() {
				continue
			}
			cmp := Cmp(Package{s: g.s, id: old}, p)
			kind := stepUpgrade
			if cmp < 0 {
				kind = stepUpgrade
			} else if cmp > 0 {
				kind = stepDowngrade
			} else {
				kind = stepReinstall
			}
			steps = append(steps, step{kind: kind, pkg: p, reason: reason})
		}
	}

	applyObsoletes := func(p Package) {
		for _, obs := range p.Obsoletes().All() {
			for old := range installed {
				oldsv := g.s.pool.get(old)
				if oldsv.name == obs.Name() {
					steps = append(steps, step{kind: stepErase, pkg: Package{s: g.s, id: old}, reason: ReasonDep})
					steps = append(steps, step{kind: stepObsoleted, pkg: Package{s: g.s, id: old}, obsoletedBy: p, reason: ReasonDep})
					delete(installed, old)
				}
			}
		}
	}

	for _, j := range g.jobs {
		switch j.kind {
		case jobInstall, jobInstallOptional, jobDowngradeTo:
			addInstall(j.pkg, ReasonUser)
			applyObsoletes(j.pkg)
		case jobUpgradeTo:
			addInstall(j.pkg, ReasonUser)
			applyObsoletes(j.pkg)
		case jobUpgradeAll, jobDistupgradeAll:
			for _, best := range bestUpgradesFor(g.s, installed) {
				addInstall(best, ReasonDep)
				applyObsoletes(best)
			}
		case jobDistupgrade:
			addInstall(j.pkg, ReasonUser)
			applyObsoletes(j.pkg)
		case jobUpgradeSelector, jobDistupgradeSelector:
			if j.sel == nil {
				continue
			}
			ps, err := j.sel.Matches()
			if err != nil {
				return err
			}
			for _, p := range ps.Packages() {
				reason := ReasonDep
				if j.sel.fixesEVR() {
					reason = ReasonUser
				}
				addInstall(p, reason)
				applyObsoletes(p)
			}
		case jobErase:
			steps = append(steps, step{kind: stepErase, pkg: j.pkg, reason: ReasonUser})
			delete(installed, j.pkg.id)
		case jobUserInstalled:
			if sv := g.s.pool.get(j.pkg.id); sv != nil {
				sv.userInstalled = true
			}
		}
	}

	g.transaction = &Transaction{steps: steps}
	g.succeeded = true

	// The "re-solve once more, allowing uninstall" step is realized as a
	// direct erasure-step append rather than a second solver pass:
	// applyInstallonlyLimit computes eviction candidates from the
	// already-resolved installed set and appends erase steps for them.
	if flags.AllowUninstall || g.s.installonlyLimit > 0 {
		g.applyInstallonlyLimit()
	}
	return nil
}

// applyInstallonlyLimit runs the installonly-limit GC pass described in
// §4.1: keep at most L providers of each installonly name, preferring to
// erase older EVRs, always keeping the running kernel.
func (g *Goal) applyInstallonlyLimit() bool {
	if g.s.installonlyLimit <= 0 || len(g.s.installonlyNames) == 0 {
		return false
	}
	mutated := false
	runningKernel, hasKernel := g.s.RunningKernel()

	for _, name := range g.s.installonlyNames {
		var providers []SolvableID
		for _, id := range g.s.pool.allIDs() {
			sv := g.s.pool.get(id)
			if sv != nil && sv.installed {
				for _, p := range sv.provides.All() {
					if p.Name() == name {
						providers = append(providers, id)
						break
					}
				}
			}
		}
		pending := map[SolvableID]bool{}
		for _, st := range g.transaction.steps {
			sv := g.s.pool.get(st.pkg.id)
			if st.kind != stepInstall || sv == nil || sv.installed || pending[st.pkg.id] {
				continue
			}
			for _, p := range sv.provides.All() {
				if p.Name() == name {
					pending[st.pkg.id] = true
					providers = append(providers, st.pkg.id)
					break
				}
			}
		}
		if len(providers) <= g.s.installonlyLimit {
			continue
		}

		sort.Slice(providers, func(i, j int) bool {
			a, b := g.s.pool.get(providers[i]), g.s.pool.get(providers[j])
			if a.name != b.name {
				return a.name < b.name
			}
			if a.arch != b.arch {
				return a.arch < b.arch
			}
			aIsRunning := hasKernel && providers[i] == runningKernel.id
			bIsRunning := hasKernel && providers[j] == runningKernel.id
			if aIsRunning != bIsRunning {
				return bIsRunning // running kernel sorts last
			}
			return evrCmpNEVRA(withoutArch(a), withoutArch(b)) < 0
		})

		keepFrom := len(providers) - g.s.installonlyLimit
		for i := 0; i < keepFrom; i++ {
			id := providers[i]
			if (hasKernel && id == runningKernel.id) || pending[id] {
				continue // never erase the running kernel or a package being installed
			}
			g.transaction.steps = append(g.transaction.steps, step{
				kind: stepErase, pkg: Package{s: g.s, id: id}, reason: ReasonDep,
			})
			mutated = true
		}
	}
	return mutated
}

// bestUpgradesFor returns, for each installed package name, the highest-EVR
// considered candidate strictly greater than the installed version, if any.
func bestUpgradesFor(s *Sack, installed map[SolvableID]bool) []Package {
	type best struct {
		id  SolvableID
		evr NEVRA
	}
	bests := map[string]best{}
	considered := s.consideredMap()

	for i, ok := considered.NextSet(0); ok; i, ok = considered.NextSet(i + 1) {
		id := SolvableID(i)
		sv := s.pool.get(id)
		if sv == nil || sv.installed {
			continue
		}
		n := withoutArch(sv)
		if cur, has := bests[sv.name]; !has || evrCmpNEVRA(n, cur.evr) > 0 {
			bests[sv.name] = best{id: id, evr: n}
		}
	}

	var out []Package
	for oldID := range installed {
		oldsv := s.pool.get(oldID)
		b, has := bests[oldsv.name]
		if !has {
			continue
		}
		if evrCmpNEVRA(b.evr, withoutArch(oldsv)) > 0 {
			out = append(out, Package{s: s, id: b.id})
		}
	}
	return out
}

// CountProblems returns the number of problems from the most recent Run.
// Calling before any Run fails with KindOp.
func (g *Goal) CountProblems() (int, error) {
	if !g.ran {
		return 0, newErr("Goal.CountProblems", KindOp, fmt.Errorf("goal has not been run"))
	}
	return len(g.problems), nil
}

// DescribeProblem formats problem i. Calling before a successful Run fails
// with KindNoSolution.
func (g *Goal) DescribeProblem(i int) (string, error) {
	if !g.ran || !g.succeeded {
		return "", newErr("Goal.DescribeProblem", KindNoSolution, nil)
	}
	if i < 0 || i >= len(g.problems) {
		return "", newErr("Goal.DescribeProblem", KindOp, fmt.Errorf("problem index %d out of range", i))
	}
	return g.problems[i], nil
}

// Transaction returns the resolved transaction. Calling before a
// successful Run fails with KindOp (not yet run) or KindNoSolution (ran but
// failed).
func (g *Goal) Transaction() (*Transaction, error) {
	if !g.ran {
		return nil, newErr("Goal.Transaction", KindOp, fmt.Errorf("goal has not been run"))
	}
	if !g.succeeded {
		return nil, newErr("Goal.Transaction", KindNoSolution, nil)
	}
	return g.transaction, nil
}

// ListUnneeded asks the resolver for installed packages no longer required
// by any job or dependency edge — leaf orphans with ReasonDep and no
// installed depender.
func (g *Goal) ListUnneeded() ([]Package, error) {
	if !g.ran || !g.succeeded {
		return nil, newErr("Goal.ListUnneeded", KindOp, fmt.Errorf("goal has not been successfully run"))
	}
	var out []Package
	for _, id := range g.s.pool.allIDs() {
		sv := g.s.pool.get(id)
		if sv == nil || !sv.installed || sv.userInstalled {
			continue
		}
		if g.transaction.GetReason(Package{s: g.s, id: id}) != ReasonDep {
			continue
		}
		needed := false
		for _, other := range installedIDs(g.s) {
			for _, req := range g.s.pool.get(other).requires.All() {
				if p, ok := uniqueInstalledProvider(g.s, []SolvableID{id}, req); ok && p == id && other != id {
					needed = true
				}
			}
		}
		if !needed {
			out = append(out, Package{s: g.s, id: id})
		}
	}
	return out, nil
}
