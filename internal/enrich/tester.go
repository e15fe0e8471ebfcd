// Package enrich tests candidate gene sets for Gene Ontology term enrichment
// against a background set, using a two-sided Fisher exact test per term and
// a Benjamini-Hochberg correction across all tested terms.
package enrich

import (
	"sort"

	fet "github.com/glycerine/golang-fisher-exact"
	"go.uber.org/zap"

	"github.com/varfield/snpenrich/internal/closure"
)

// Result is one tested term's outcome. Expected is the count the candidate
// set would show if it shared the background's term prevalence.
type Result struct {
	TermID   string
	Expected float64
	Observed int
	P        float64
	FDR      float64
}

// Tester runs enrichment tests over a fixed closure table. The table is
// shared read-only state; a single Tester serves every window.
type Tester struct {
	table    *closure.Table
	excluded map[string]bool
	logger   *zap.Logger
}

// NewTester creates a tester over the closure table.
func NewTester(table *closure.Table) *Tester {
	return &Tester{
		table:    table,
		excluded: make(map[string]bool),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger.
func (t *Tester) SetLogger(l *zap.Logger) {
	t.logger = l
}

// Exclude adds term sets to the exclusion filter. The standard exclusions are
// the shallow terms (within three edges of a namespace root, too generic to
// be informative) and the single-gene terms (no enrichment detectable).
func (t *Tester) Exclude(sets ...map[string]bool) {
	for _, set := range sets {
		for term := range set {
			t.excluded[term] = true
		}
	}
}

// Test runs the enrichment procedure for one window: candidate is the set of
// genes near significant variants, background the genes near non-significant
// variants. Any gene present in both is removed from the background so the
// two sets partition "all genes near any variant". Results cover every term
// appearing in the candidate genes' closures minus the exclusions, are
// FDR-corrected in one batch, and come back sorted by ascending raw p-value.
func (t *Tester) Test(candidate, background []string) []Result {
	cand := dedup(candidate)
	bg := dedup(background)
	for g := range cand {
		delete(bg, g)
	}

	nCand := len(cand)
	nBg := len(bg)

	candList := sortedKeys(cand)
	terms := t.table.TermsOfGenes(candList)

	results := make([]Result, 0, len(terms))
	for _, term := range terms {
		if t.excluded[term] {
			continue
		}

		a := t.countWithTerm(cand, term)
		b := t.countWithTerm(bg, term)

		results = append(results, Result{
			TermID:   term,
			Expected: expectedCount(nCand, b, nBg),
			Observed: a,
			P:        fisherTwoSided(b, nBg-b, a, nCand-a),
		})
	}

	ps := make([]float64, len(results))
	for i, r := range results {
		ps[i] = r.P
	}
	for i, adj := range BenjaminiHochberg(ps) {
		results[i].FDR = adj
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].P != results[j].P {
			return results[i].P < results[j].P
		}
		return results[i].TermID < results[j].TermID
	})

	t.logger.Debug("enrichment batch tested",
		zap.Int("candidate_genes", nCand),
		zap.Int("background_genes", nBg),
		zap.Int("terms", len(results)))

	return results
}

// Enriched filters results to those meeting the reporting thresholds. The
// thresholds are analysis parameters: the reference run uses maxFDR 0.05 with
// no observed-count floor at the narrower window and maxFDR 0.10 with
// minObserved 3 at the wider one.
func Enriched(results []Result, maxFDR float64, minObserved int) []Result {
	var out []Result
	for _, r := range results {
		if r.FDR < maxFDR && r.Observed >= minObserved {
			out = append(out, r)
		}
	}
	return out
}

func (t *Tester) countWithTerm(genes map[string]bool, term string) int {
	n := 0
	for g := range genes {
		if t.table.Has(g, term) {
			n++
		}
	}
	return n
}

// expectedCount is the proportional null expectation nCand * b / nBg. An
// empty background yields 0: with no background genes there is no prevalence
// to extrapolate.
func expectedCount(nCand, b, nBg int) float64 {
	if nBg == 0 {
		return 0
	}
	return float64(nCand) * float64(b) / float64(nBg)
}

// fisherTwoSided runs the two-sided Fisher exact test on the table
// [[n11, n12], [n21, n22]], rows background then candidate, columns has-term
// then lacks-term. A count vector that collapses to a single group simply
// carries zeros in the other row; a fully empty table is degenerate and
// scores 1.
func fisherTwoSided(n11, n12, n21, n22 int) float64 {
	if n11+n12 == 0 || n21+n22 == 0 {
		return 1
	}
	_, _, _, twop := fet.FisherExactTest(n11, n12, n21, n22)
	return twop
}

func dedup(genes []string) map[string]bool {
	set := make(map[string]bool, len(genes))
	for _, g := range genes {
		set[g] = true
	}
	return set
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
