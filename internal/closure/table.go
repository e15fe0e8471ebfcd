// Package closure builds and serves the gene-to-GO closure table: for every
// gene, the complete set of GO terms implied by its raw annotations (each
// directly-associated term plus all of that term's ancestors). The table is
// built once per ontology release and is read-only afterwards; every
// enrichment run reads from it.
package closure

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/varfield/snpenrich/internal/ontology"
)

// Table maps each gene to its full GO term closure. Instances are immutable
// once built.
type Table struct {
	genes map[string]map[string]bool
}

// NewTable builds a table directly from gene -> term-set data.
func NewTable(genes map[string]map[string]bool) *Table {
	return &Table{genes: genes}
}

// Has reports whether the term is in the gene's closure.
func (t *Table) Has(gene, term string) bool {
	return t.genes[gene][term]
}

// TermsOf returns the closure of one gene. The returned map must not be
// mutated.
func (t *Table) TermsOf(gene string) map[string]bool {
	return t.genes[gene]
}

// GeneCount returns the number of genes with at least one closure term.
func (t *Table) GeneCount() int {
	return len(t.genes)
}

// Genes returns all gene identifiers, sorted.
func (t *Table) Genes() []string {
	ids := make([]string, 0, len(t.genes))
	for g := range t.genes {
		ids = append(ids, g)
	}
	sort.Strings(ids)
	return ids
}

// SingleGeneTerms returns the set of terms associated with exactly one gene
// across the whole table. No enrichment is statistically detectable for such
// terms, so they are excluded from testing.
func (t *Table) SingleGeneTerms() map[string]bool {
	counts := make(map[string]int)
	for _, terms := range t.genes {
		for term := range terms {
			counts[term]++
		}
	}
	single := make(map[string]bool)
	for term, n := range counts {
		if n == 1 {
			single[term] = true
		}
	}
	return single
}

// TermsOfGenes returns the union of the closures of the given genes, sorted.
func (t *Table) TermsOfGenes(genes []string) []string {
	set := make(map[string]bool)
	for _, g := range genes {
		for term := range t.genes[g] {
			set[term] = true
		}
	}
	terms := make([]string, 0, len(set))
	for term := range set {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// WriteTSV writes the table as tab-separated (gene, term, namespace) rows,
// one per gene/term pair, sorted by gene then term. The namespace column is
// re-derived from the term via the graph so it stays authoritative; terms
// absent from the graph get an empty namespace.
func (t *Table) WriteTSV(w io.Writer, g *ontology.Graph) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("gene\tterm\tnamespace\n"); err != nil {
		return err
	}
	for _, gene := range t.Genes() {
		terms := make([]string, 0, len(t.genes[gene]))
		for term := range t.genes[gene] {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			ns, _ := g.NamespaceOf(term)
			if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n", gene, term, ns); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadTSV reads a table previously written by WriteTSV. The namespace column
// is ignored on load; it is derivable from the term.
func ReadTSV(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	genes := make(map[string]map[string]bool)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if lineNo == 1 && strings.HasPrefix(line, "gene\t") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("closure line %d: expected at least 2 columns, got %d", lineNo, len(fields))
		}
		gene, term := fields[0], fields[1]
		if genes[gene] == nil {
			genes[gene] = make(map[string]bool)
		}
		genes[gene][term] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan closure content: %w", err)
	}
	return &Table{genes: genes}, nil
}

// LoadTSV reads a closure table from a file, gzip-transparently.
func LoadTSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open closure file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}
	return ReadTSV(reader)
}
