package genome

import (
	"fmt"
	"sort"

	"github.com/biogo/store/interval"
)

// featureInterval adapts a gene (or an exon carrying its parent gene) to the
// biogo interval tree. Intervals are closed on both ends.
type featureInterval struct {
	start, end int
	uid        uintptr
	gene       *Gene
}

func (i featureInterval) Overlap(b interval.IntRange) bool {
	return i.end >= b.Start && i.start <= b.End
}

func (i featureInterval) ID() uintptr { return i.uid }

func (i featureInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.start, End: i.end}
}

// query is a payload-free interval used for tree lookups.
type query struct {
	start, end int
}

func (q query) Overlap(b interval.IntRange) bool {
	return q.end >= b.Start && q.start <= b.End
}

func (q query) ID() uintptr { return 0 }

func (q query) Range() interval.IntRange {
	return interval.IntRange{Start: q.start, End: q.end}
}

// Index answers interval overlap queries over a fixed set of gene (or exon)
// intervals, one tree per reference sequence. Cross-sequence pairs never
// overlap. The index is read-only after construction.
type Index struct {
	trees map[string]*interval.IntTree
}

// NewIndex builds an index over gene intervals.
func NewIndex(genes []*Gene) (*Index, error) {
	x := &Index{trees: make(map[string]*interval.IntTree)}
	var uid uintptr
	for _, g := range genes {
		if g.End < g.Start {
			return nil, fmt.Errorf("gene %s: end %d before start %d", g.ID, g.End, g.Start)
		}
		uid++
		if err := x.insert(g.Chrom, featureInterval{start: g.Start, end: g.End, uid: uid, gene: g}); err != nil {
			return nil, fmt.Errorf("index gene %s: %w", g.ID, err)
		}
	}
	return x, nil
}

// NewExonIndex builds an index over exon intervals. Each exon interval carries
// its parent gene, so containment queries resolve directly to genes. Exons
// whose parent gene is absent from genesByID are skipped.
func NewExonIndex(exons []*Exon, genesByID map[string]*Gene) (*Index, error) {
	x := &Index{trees: make(map[string]*interval.IntTree)}
	var uid uintptr
	for _, e := range exons {
		g, ok := genesByID[e.GeneID]
		if !ok {
			continue
		}
		if e.End < e.Start {
			return nil, fmt.Errorf("exon of gene %s: end %d before start %d", e.GeneID, e.End, e.Start)
		}
		uid++
		if err := x.insert(e.Chrom, featureInterval{start: e.Start, end: e.End, uid: uid, gene: g}); err != nil {
			return nil, fmt.Errorf("index exon of gene %s: %w", e.GeneID, err)
		}
	}
	return x, nil
}

func (x *Index) insert(chrom string, itv featureInterval) error {
	tree, ok := x.trees[chrom]
	if !ok {
		tree = &interval.IntTree{}
		x.trees[chrom] = tree
	}
	return tree.Insert(itv, false)
}

// Overlapping returns the distinct genes whose interval intersects
// [start, end] on the given sequence, sorted by gene identifier.
func (x *Index) Overlapping(chrom string, start, end int) []*Gene {
	tree, ok := x.trees[chrom]
	if !ok {
		return nil
	}

	seen := make(map[string]*Gene)
	for _, hit := range tree.Get(query{start: start, end: end}) {
		g := hit.(featureInterval).gene
		seen[g.ID] = g
	}
	return sortedGenes(seen)
}

// Containing returns the distinct genes whose interval contains the position.
func (x *Index) Containing(chrom string, pos int) []*Gene {
	return x.Overlapping(chrom, pos, pos)
}

func sortedGenes(set map[string]*Gene) []*Gene {
	if len(set) == 0 {
		return nil
	}
	out := make([]*Gene, 0, len(set))
	for _, g := range set {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
