package genome

import "sort"

// Site is a point location on a reference sequence.
type Site struct {
	Chrom string
	Pos   int
}

// GenesWithin returns the distinct set of genes whose interval intersects the
// symmetric window of the given total width centered on any of the sites. The
// width is expected to be odd (the window spans (width-1)/2 bases either side
// of the site); window starts are truncated at the first base of the sequence.
// A gene within range of several sites counts once. The result is sorted by
// gene identifier.
func (x *Index) GenesWithin(sites []Site, width int) []*Gene {
	half := (width - 1) / 2
	seen := make(map[string]*Gene)
	for _, s := range sites {
		start := s.Pos - half
		if start < 1 {
			start = 1
		}
		for _, g := range x.Overlapping(s.Chrom, start, s.Pos+half) {
			seen[g.ID] = g
		}
	}
	return sortedGenes(seen)
}

// Nearest returns the gene closest to the site among the candidates, with its
// distance. Candidates on another sequence are ignored. Ties resolve to the
// lexically smaller gene identifier so results are deterministic.
func Nearest(s Site, candidates []*Gene) (*Gene, int) {
	var (
		best *Gene
		dist int
	)
	sorted := make([]*Gene, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, g := range sorted {
		if g.Chrom != s.Chrom {
			continue
		}
		d := Distance(s.Pos, g)
		if best == nil || d < dist {
			best, dist = g, d
		}
	}
	return best, dist
}
