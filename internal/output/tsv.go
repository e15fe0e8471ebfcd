// Package output provides tab-separated writers for enrichment results and
// the final variant annotation export.
package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/varfield/snpenrich/internal/enrich"
	"github.com/varfield/snpenrich/internal/genome"
	"github.com/varfield/snpenrich/internal/variant"
)

// EnrichmentWriter writes one window's enrichment results, sorted by the
// caller (ascending raw p-value).
type EnrichmentWriter struct {
	w *bufio.Writer
}

// NewEnrichmentWriter creates a writer for enrichment result rows.
func NewEnrichmentWriter(w io.Writer) *EnrichmentWriter {
	return &EnrichmentWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (ew *EnrichmentWriter) WriteHeader() error {
	_, err := ew.w.WriteString("term\texpected\tobserved\tp\tfdr\n")
	return err
}

// Write writes a single result row.
func (ew *EnrichmentWriter) Write(r enrich.Result) error {
	_, err := fmt.Fprintf(ew.w, "%s\t%g\t%d\t%g\t%g\n",
		r.TermID, r.Expected, r.Observed, r.P, r.FDR)
	return err
}

// WriteAll writes every result followed by a flush.
func (ew *EnrichmentWriter) WriteAll(results []enrich.Result) error {
	if err := ew.WriteHeader(); err != nil {
		return err
	}
	for _, r := range results {
		if err := ew.Write(r); err != nil {
			return err
		}
	}
	return ew.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (ew *EnrichmentWriter) Flush() error {
	return ew.w.Flush()
}

// AnnotationRow is one (significant variant, nearby gene) pair for the final
// export.
type AnnotationRow struct {
	Variant  *variant.Variant
	Gene     *genome.Gene
	Distance int
}

// AnnotationRows assembles the final export rows: for each significant
// variant, one row per gene within the window of the given total width. Rows
// are sorted by the variant's minimum p-value across procedures, then by
// variant and gene identifier for determinism.
func AnnotationRows(sig []*variant.Variant, idx *genome.Index, width int) []AnnotationRow {
	var rows []AnnotationRow
	for _, v := range sig {
		site := genome.Site{Chrom: v.Chrom, Pos: v.Pos}
		for _, g := range idx.GenesWithin([]genome.Site{site}, width) {
			rows = append(rows, AnnotationRow{
				Variant:  v,
				Gene:     g,
				Distance: genome.Distance(v.Pos, g),
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		pi, pj := rows[i].Variant.MinP(), rows[j].Variant.MinP()
		if pi != pj {
			return pi < pj
		}
		if rows[i].Variant.ID != rows[j].Variant.ID {
			return rows[i].Variant.ID < rows[j].Variant.ID
		}
		return rows[i].Gene.ID < rows[j].Gene.ID
	})
	return rows
}

// AnnotationWriter writes the final annotation export. The procedure list
// fixes the per-procedure p-value column order.
type AnnotationWriter struct {
	w          *bufio.Writer
	procedures []string
}

// NewAnnotationWriter creates an annotation writer with the given procedure
// column order.
func NewAnnotationWriter(w io.Writer, procedures []string) *AnnotationWriter {
	return &AnnotationWriter{w: bufio.NewWriter(w), procedures: procedures}
}

// WriteHeader writes the header line.
func (aw *AnnotationWriter) WriteHeader() error {
	cols := []string{
		"locus", "variant", "chrom", "pos",
		"gene", "gene_name", "strand", "gene_start", "gene_end", "gene_width",
		"distance",
	}
	for _, proc := range aw.procedures {
		cols = append(cols, "p_"+proc, "fdr_"+proc)
	}
	_, err := aw.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// Write writes a single annotation row. Procedures without a result for the
// variant get "NA" columns.
func (aw *AnnotationWriter) Write(row AnnotationRow) error {
	v, g := row.Variant, row.Gene

	name := g.Name
	if name == "" {
		name = "-"
	}

	cols := []string{
		v.LocusKey(),
		v.ID,
		v.Chrom,
		strconv.Itoa(v.Pos),
		g.ID,
		name,
		g.StrandString(),
		strconv.Itoa(g.Start),
		strconv.Itoa(g.End),
		strconv.Itoa(g.Width()),
		strconv.Itoa(row.Distance),
	}
	for _, proc := range aw.procedures {
		r, ok := v.Results[proc]
		if !ok {
			cols = append(cols, "NA", "NA")
			continue
		}
		cols = append(cols,
			strconv.FormatFloat(r.P, 'g', -1, 64),
			strconv.FormatFloat(r.FDR, 'g', -1, 64))
	}

	_, err := aw.w.WriteString(strings.Join(cols, "\t") + "\n")
	return err
}

// WriteAll writes every row followed by a flush.
func (aw *AnnotationWriter) WriteAll(rows []AnnotationRow) error {
	if err := aw.WriteHeader(); err != nil {
		return err
	}
	for _, row := range rows {
		if err := aw.Write(row); err != nil {
			return err
		}
	}
	return aw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (aw *AnnotationWriter) Flush() error {
	return aw.w.Flush()
}
