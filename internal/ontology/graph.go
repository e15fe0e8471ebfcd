package ontology

import (
	"sort"
	"sync"
)

// Term is a single ontology term: an identifier, the namespace it belongs to,
// and its direct is_a parents. A term may have multiple parents and multiple
// paths to the namespace root; the graph is a DAG, not a tree.
type Term struct {
	ID        string
	Name      string
	Namespace Namespace
	Parents   []string
}

// Graph holds the term adjacency for all three namespaces and answers
// ancestor-closure, child, and root-level queries. The graph is read-only once
// built; Ancestors results are memoized so that shared ancestors are never
// re-walked across genes.
type Graph struct {
	terms    map[string]*Term
	children map[string][]string

	mu        sync.Mutex
	ancestors map[string]map[string]bool
}

// NewGraph builds a Graph from a set of terms. The child adjacency is derived
// from the parent lists.
func NewGraph(terms []*Term) *Graph {
	g := &Graph{
		terms:     make(map[string]*Term, len(terms)),
		children:  make(map[string][]string),
		ancestors: make(map[string]map[string]bool),
	}
	for _, t := range terms {
		g.terms[t.ID] = t
	}
	for _, t := range terms {
		for _, p := range t.Parents {
			g.children[p] = append(g.children[p], t.ID)
		}
	}
	return g
}

// Term returns the term for an identifier, or nil if the identifier is not in
// the graph.
func (g *Graph) Term(id string) *Term {
	return g.terms[id]
}

// Has reports whether the identifier is present in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.terms[id]
	return ok
}

// NamespaceOf returns the namespace a term belongs to. The second return is
// false for identifiers absent from the graph.
func (g *Graph) NamespaceOf(id string) (Namespace, bool) {
	t, ok := g.terms[id]
	if !ok {
		return "", false
	}
	return t.Namespace, true
}

// TermCount returns the number of terms in the graph.
func (g *Graph) TermCount() int {
	return len(g.terms)
}

// Children returns the direct children of a term, sorted by identifier.
func (g *Graph) Children(id string) []string {
	c := g.children[id]
	if len(c) == 0 {
		return nil
	}
	out := make([]string, len(c))
	copy(out, c)
	sort.Strings(out)
	return out
}

// Ancestors returns the complete set of strict ancestors of a term: every term
// on every path from the term to its namespace root, the root included, the
// term itself excluded. Unknown identifiers yield an empty set. Results are
// memoized; the returned map must not be mutated.
func (g *Graph) Ancestors(id string) map[string]bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ancestorsLocked(id)
}

func (g *Graph) ancestorsLocked(id string) map[string]bool {
	if anc, ok := g.ancestors[id]; ok {
		return anc
	}
	t, ok := g.terms[id]
	if !ok {
		return nil
	}

	anc := make(map[string]bool)
	// Mark before recursing so a malformed cycle cannot loop forever.
	g.ancestors[id] = anc
	for _, p := range t.Parents {
		if _, ok := g.terms[p]; !ok {
			continue
		}
		anc[p] = true
		for a := range g.ancestorsLocked(p) {
			anc[a] = true
		}
	}
	return anc
}

// LevelSet returns the set of terms within maxDepth ancestor-steps of the
// namespace root, the root included. It expands iteratively: level k+1 is the
// union of level k with the children of every term in level k; terms without
// children contribute nothing.
func (g *Graph) LevelSet(ns Namespace, maxDepth int) map[string]bool {
	root := RootOf(ns)
	level := map[string]bool{root: true}
	for range maxDepth {
		next := make(map[string]bool, len(level))
		for id := range level {
			next[id] = true
			for _, c := range g.children[id] {
				next[c] = true
			}
		}
		level = next
	}
	return level
}

// ShallowTerms returns the union over all three namespaces of the terms within
// maxDepth edges of each namespace root. These terms are too generic to be
// informative in enrichment testing.
func (g *Graph) ShallowTerms(maxDepth int) map[string]bool {
	shallow := make(map[string]bool)
	for _, ns := range Namespaces() {
		for id := range g.LevelSet(ns, maxDepth) {
			shallow[id] = true
		}
	}
	return shallow
}
