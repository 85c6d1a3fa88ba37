package sack

import "sort"

// Leaves builds the installed-package Requires graph (an edge a -> b exists
// when a Requires a capability and exactly one installed package b provides
// it), computes its strongly connected components, and returns every SCC
// that has no incoming edge from outside the SCC. Each returned group is
// sorted by solvable id ascending; the list of groups is sorted by each
// group's first member's id ascending.
func Leaves(s *Sack) ([][]Package, error) {
	installed := installedIDs(s)
	index := map[SolvableID]int{}
	for i, id := range installed {
		index[id] = i
	}

	adj := make([][]int, len(installed))
	for i, id := range installed {
		sv := s.pool.get(id)
		for _, req := range sv.requires.All() {
			provider, ok := uniqueInstalledProvider(s, installed, req)
			if !ok {
				continue
			}
			if j, ok := index[provider]; ok && j != i {
				adj[i] = append(adj[i], j)
			}
		}
	}

	sccs := tarjanSCC(adj)

	hasExternalIncoming := make([]bool, len(sccs))
	memberOf := map[int]int{}
	for gi, grp := range sccs {
		for _, node := range grp {
			memberOf[node] = gi
		}
	}
	for gi, grp := range sccs {
		members := map[int]bool{}
		for _, n := range grp {
			members[n] = true
		}
		for _, n := range grp {
			for _, to := range adj[n] {
				if !members[to] && memberOf[to] != gi {
					// an edge FROM this group TO another group means the
					// other group has an incoming edge from outside itself.
					hasExternalIncoming[memberOf[to]] = true
				}
			}
		}
	}

	var out [][]Package
	for gi, grp := range sccs {
		if hasExternalIncoming[gi] {
			continue
		}
		ids := make([]SolvableID, len(grp))
		for i, node := range grp {
			ids[i] = installed[node]
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		pkgs := make([]Package, len(ids))
		for i, id := range ids {
			pkgs[i] = Package{s: s, id: id}
		}
		out = append(out, pkgs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0].id < out[j][0].id })
	return out, nil
}

func installedIDs(s *Sack) []SolvableID {
	var out []SolvableID
	for _, id := range s.pool.allIDs() {
		if sv := s.pool.get(id); sv != nil && sv.installed {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// uniqueInstalledProvider returns the single installed package among
// `installed` that provides req, if exactly one does.
func uniqueInstalledProvider(s *Sack, installed []SolvableID, req Reldep) (SolvableID, bool) {
	var found SolvableID
	count := 0
	for _, id := range installed {
		sv := s.pool.get(id)
		for _, p := range sv.provides.All() {
			if p.Name() == req.Name() {
				count++
				found = id
				break
			}
		}
		if count > 1 {
			return 0, false
		}
	}
	if count == 1 {
		return found, true
	}
	return 0, false
}

// tarjanSCC returns the strongly connected components of the graph given by
// adjacency list adj, in the order Tarjan's algorithm discovers them.
func tarjanSCC(adj [][]int) [][]int {
	n := len(adj)
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	var sccs [][]int
	counter := 0

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if index[w] == -1 {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var grp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				grp = append(grp, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, grp)
		}
	}

	for v := 0; v < n; v++ {
		if index[v] == -1 {
			strongconnect(v)
		}
	}
	return sccs
}
