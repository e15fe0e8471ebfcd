// Package genome provides gene and exon models and genomic proximity queries.
package genome

// Gene represents a gene interval on a reference sequence.
// Coordinates are 1-based and the interval is closed: [Start, End], End >= Start.
// Genes are immutable once loaded.
type Gene struct {
	ID     string // stable gene identifier
	Name   string // display name, may be empty
	Chrom  string // reference sequence name
	Start  int
	End    int
	Strand int8 // +1 (forward) or -1 (reverse)
}

// Contains returns true if the given position falls within the gene body.
func (g *Gene) Contains(pos int) bool {
	return pos >= g.Start && pos <= g.End
}

// Width returns the number of bases the gene spans.
func (g *Gene) Width() int {
	return g.End - g.Start + 1
}

// StrandString returns "+" or "-" for export.
func (g *Gene) StrandString() string {
	if g.Strand < 0 {
		return "-"
	}
	return "+"
}

// Exon is a coding interval subordinate to a parent gene. Exons are used only
// for coding-region containment, not for GO mapping.
type Exon struct {
	GeneID string
	Chrom  string
	Start  int
	End    int
}

// Contains returns true if the given position falls within the exon.
func (e *Exon) Contains(pos int) bool {
	return pos >= e.Start && pos <= e.End
}

// Distance returns the distance from a position to a gene: 0 if the position
// lies within the gene body, otherwise the smaller of the distances to the two
// gene ends.
func Distance(pos int, g *Gene) int {
	if g.Contains(pos) {
		return 0
	}
	ds := pos - g.Start
	if ds < 0 {
		ds = -ds
	}
	de := pos - g.End
	if de < 0 {
		de = -de
	}
	if ds < de {
		return ds
	}
	return de
}
