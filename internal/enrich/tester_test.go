package enrich

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/varfield/snpenrich/internal/closure"
)

// hyperProb is the hypergeometric point probability of drawing x term-bearing
// genes in a sample of n from a population of size total containing k
// term-bearing genes.
func hyperProb(x, k, n, total int) float64 {
	return math.Exp(combin.LogGeneralizedBinomial(float64(k), float64(x)) +
		combin.LogGeneralizedBinomial(float64(total-k), float64(n-x)) -
		combin.LogGeneralizedBinomial(float64(total), float64(n)))
}

// hyperTwoSided is the standard two-sided exact test: the sum of all point
// probabilities no larger than the observed table's.
func hyperTwoSided(x, k, n, total int) float64 {
	pObs := hyperProb(x, k, n, total)
	lo := n - (total - k)
	if lo < 0 {
		lo = 0
	}
	hi := n
	if k < hi {
		hi = k
	}
	var p float64
	for i := lo; i <= hi; i++ {
		if pi := hyperProb(i, k, n, total); pi <= pObs*(1+1e-7) {
			p += pi
		}
	}
	return p
}

// Table from the reference scenario: background 100 genes of which 10 carry
// the term, candidate 10 genes of which 5 carry it.
func TestFisherTwoSided_MatchesHypergeometric(t *testing.T) {
	got := fisherTwoSided(10, 90, 5, 5)
	want := hyperTwoSided(5, 15, 10, 110)
	assert.InDelta(t, want, got, 1e-9)
}

func TestFisherTwoSided_DegenerateTables(t *testing.T) {
	assert.Equal(t, 1.0, fisherTwoSided(0, 0, 5, 5), "empty background row scores 1")
	assert.Equal(t, 1.0, fisherTwoSided(5, 5, 0, 0), "empty candidate row scores 1")
}

// closureFixture builds a closure table over nBg background and nCand
// candidate genes where bgWith background genes and candWith candidate genes
// carry the term.
func closureFixture(term string, nCand, candWith, nBg, bgWith int) (*closure.Table, []string, []string) {
	genes := make(map[string]map[string]bool)
	var cand, bg []string
	for i := range nCand {
		id := fmt.Sprintf("cand%03d", i)
		cand = append(cand, id)
		genes[id] = map[string]bool{"GO:common": true}
		if i < candWith {
			genes[id][term] = true
		}
	}
	for i := range nBg {
		id := fmt.Sprintf("bg%03d", i)
		bg = append(bg, id)
		genes[id] = map[string]bool{"GO:common": true}
		if i < bgWith {
			genes[id][term] = true
		}
	}
	return closure.NewTable(genes), cand, bg
}

func TestTest_ReferenceScenario(t *testing.T) {
	table, cand, bg := closureFixture("GO:0006091", 10, 5, 100, 10)
	tester := NewTester(table)

	results := tester.Test(cand, bg)

	var r *Result
	for i := range results {
		if results[i].TermID == "GO:0006091" {
			r = &results[i]
		}
	}
	require.NotNil(t, r)

	assert.Equal(t, 5, r.Observed)
	assert.InDelta(t, 1.0, r.Expected, 1e-12, "10 * 10/100")
	assert.InDelta(t, hyperTwoSided(5, 15, 10, 110), r.P, 1e-9)
}

func TestTest_RowSumsExact(t *testing.T) {
	table, cand, bg := closureFixture("GO:0006091", 8, 3, 40, 12)
	tester := NewTester(table)

	// The counts behind the table must partition each gene set exactly;
	// verified here through the expected count, which exposes b and the
	// set sizes.
	results := tester.Test(cand, bg)
	for _, r := range results {
		if r.TermID == "GO:0006091" {
			assert.InDelta(t, float64(8)*12/40, r.Expected, 1e-12)
			assert.Equal(t, 3, r.Observed)
		}
	}
}

func TestTest_BackgroundDisjointFromCandidate(t *testing.T) {
	table := closure.NewTable(map[string]map[string]bool{
		"g1": {"GO:a": true},
		"g2": {"GO:a": true},
		"g3": {"GO:b": true},
	})
	tester := NewTester(table)

	// g1 appears in both input sets; it must count only as candidate.
	results := tester.Test([]string{"g1"}, []string{"g1", "g2", "g3"})

	for _, r := range results {
		if r.TermID == "GO:a" {
			// background is {g2, g3}: one with the term of two.
			assert.InDelta(t, float64(1)*1/2, r.Expected, 1e-12)
		}
	}
}

func TestTest_ExclusionsNeverTested(t *testing.T) {
	table, cand, bg := closureFixture("GO:0006091", 10, 5, 100, 10)
	tester := NewTester(table)
	tester.Exclude(
		map[string]bool{"GO:common": true},   // shallow
		map[string]bool{"GO:0006091": true}, // single-gene
	)

	results := tester.Test(cand, bg)
	assert.Empty(t, results, "both terms excluded leaves nothing to test")
}

func TestTest_CandidateOnlyTermZeroPadded(t *testing.T) {
	// Term carried only by candidate genes: the background count vector
	// collapses to a single cell and must be padded with zero, not error.
	table := closure.NewTable(map[string]map[string]bool{
		"c1": {"GO:rare": true},
		"c2": {"GO:rare": true},
		"b1": {"GO:other": true},
		"b2": {"GO:other": true},
	})
	tester := NewTester(table)

	results := tester.Test([]string{"c1", "c2"}, []string{"b1", "b2"})

	var found bool
	for _, r := range results {
		if r.TermID == "GO:rare" {
			found = true
			assert.Equal(t, 2, r.Observed)
			assert.Zero(t, r.Expected, "b = 0")
			assert.Greater(t, r.P, 0.0)
			assert.LessOrEqual(t, r.P, 1.0)
		}
	}
	assert.True(t, found)
}

func TestTest_SortedByRawP(t *testing.T) {
	genes := map[string]map[string]bool{}
	// Strongly enriched term on all candidates, weakly on background.
	for i := range 10 {
		genes[fmt.Sprintf("c%d", i)] = map[string]bool{"GO:strong": true, "GO:weak": true}
	}
	for i := range 100 {
		set := map[string]bool{"GO:weak": true}
		if i < 2 {
			set["GO:strong"] = true
		}
		genes[fmt.Sprintf("b%d", i)] = set
	}
	var cand, bg []string
	for i := range 10 {
		cand = append(cand, fmt.Sprintf("c%d", i))
	}
	for i := range 100 {
		bg = append(bg, fmt.Sprintf("b%d", i))
	}

	tester := NewTester(closure.NewTable(genes))
	results := tester.Test(cand, bg)

	require.Len(t, results, 2)
	assert.Equal(t, "GO:strong", results[0].TermID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].P, results[i-1].P)
	}
}

func TestEnriched_Thresholds(t *testing.T) {
	results := []Result{
		{TermID: "a", Observed: 5, FDR: 0.01},
		{TermID: "b", Observed: 2, FDR: 0.01},
		{TermID: "c", Observed: 5, FDR: 0.2},
	}

	strict := Enriched(results, 0.05, 0)
	assert.Len(t, strict, 2)

	withFloor := Enriched(results, 0.10, 3)
	require.Len(t, withFloor, 1)
	assert.Equal(t, "a", withFloor[0].TermID)
}
