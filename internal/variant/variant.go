// Package variant provides the SNP model, per-procedure statistical results
// and the significance classification.
package variant

import "strings"

// TestResult holds one statistical test procedure's scores for a variant.
type TestResult struct {
	P   float64 // raw p-value
	FDR float64 // Benjamini-Hochberg adjusted p-value
}

// Variant is a point-located SNP with per-procedure test results. A variant
// missing from one procedure's table simply has no entry in Results for that
// procedure.
type Variant struct {
	ID      string
	Chrom   string
	Pos     int
	Results map[string]TestResult // procedure name -> scores
}

// SignificanceCutoffs maps each test procedure to the adjusted-p-value
// threshold below which the procedure calls a variant significant. The
// thresholds are procedure-specific analysis parameters; the reference
// analysis uses 0.05 for the allele-frequency test and 0.10 for the genotype
// test.
type SignificanceCutoffs map[string]float64

// Significant reports whether any procedure's FDR falls under that
// procedure's cutoff. Procedures without a result for this variant do not
// contribute.
func (v *Variant) Significant(cutoffs SignificanceCutoffs) bool {
	for proc, cut := range cutoffs {
		r, ok := v.Results[proc]
		if !ok {
			continue
		}
		if r.FDR < cut {
			return true
		}
	}
	return false
}

// MinP returns the smallest raw p-value across all procedures, or 1 when the
// variant has no results at all.
func (v *Variant) MinP() float64 {
	min := 1.0
	for _, r := range v.Results {
		if r.P < min {
			min = r.P
		}
	}
	return min
}

// LocusKey derives the locus grouping key by stripping the trailing numeric
// suffix from the variant identifier, along with any separator left dangling
// before it.
func (v *Variant) LocusKey() string {
	key := strings.TrimRight(v.ID, "0123456789")
	return strings.TrimRight(key, "_.-")
}

// Partition splits variants into significant and non-significant sets under
// the given cutoffs, preserving input order.
func Partition(variants []*Variant, cutoffs SignificanceCutoffs) (sig, notSig []*Variant) {
	for _, v := range variants {
		if v.Significant(cutoffs) {
			sig = append(sig, v)
		} else {
			notSig = append(notSig, v)
		}
	}
	return sig, notSig
}
