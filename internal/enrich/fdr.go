package enrich

import "sort"

// BenjaminiHochberg returns the FDR-adjusted p-values for a batch of raw
// p-values, in the same order as the input. The correction must run over the
// full tested-term list in one batch; adjusting per term understates the
// multiplicity.
func BenjaminiHochberg(ps []float64) []float64 {
	n := len(ps)
	if n == 0 {
		return nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return ps[order[i]] < ps[order[j]] })

	adjusted := make([]float64, n)
	min := 1.0
	for rank := n - 1; rank >= 0; rank-- {
		idx := order[rank]
		adj := ps[idx] * float64(n) / float64(rank+1)
		if adj < min {
			min = adj
		}
		adjusted[idx] = min
	}
	return adjusted
}
