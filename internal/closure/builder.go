package closure

import (
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/varfield/snpenrich/internal/ontology"
)

// RootSentinel is the synthetic top-level term some annotation sources place
// above the three namespace roots. It carries no information and is filtered
// from every closure.
const RootSentinel = "all"

// maxWorkers caps the closure worker pool; beyond this the computation is
// memory-bound rather than CPU-bound.
const maxWorkers = 12

// Association is one raw gene/term pair as retrieved from the annotation
// service. Duplicates are expected.
type Association struct {
	GeneID    string
	TermID    string
	Namespace ontology.Namespace
}

// Stats reports what the builder dropped. Raw term identifiers absent from
// the ontology graph (stale or malformed) are dropped per gene rather than
// failing the build, but the drops are counted and logged so the tolerance
// stays observable.
type Stats struct {
	Genes        int            // genes with a non-empty closure
	Rows         int            // (gene, term) closure rows produced
	UnknownTerms map[string]int // dropped term id -> occurrences
}

// Builder computes gene closures against an ontology graph.
type Builder struct {
	graph   *ontology.Graph
	workers int
	logger  *zap.Logger
}

// NewBuilder creates a builder over the given graph.
func NewBuilder(g *ontology.Graph) *Builder {
	return &Builder{
		graph:  g,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for drop warnings.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// SetWorkers overrides the worker pool size. Zero or negative selects
// min(NumCPU, 12).
func (b *Builder) SetWorkers(n int) {
	b.workers = n
}

// Build computes the full closure table from raw associations. This is the
// single most expensive step of the pipeline; run it once per ontology build
// and persist the result. Genes are processed in parallel; the aggregation is
// keyed by gene identifier, so the result is independent of scheduling order.
func (b *Builder) Build(assocs []Association) (*Table, Stats) {
	direct := partitionByGene(assocs)

	geneIDs := make([]string, 0, len(direct))
	for g := range direct {
		geneIDs = append(geneIDs, g)
	}
	sort.Strings(geneIDs)

	workers := b.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > maxWorkers {
			workers = maxWorkers
		}
	}

	type geneResult struct {
		geneID  string
		terms   map[string]bool
		unknown []string
	}

	work := make(chan string)
	results := make(chan geneResult, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for geneID := range work {
				terms, unknown := b.closureOf(direct[geneID])
				results <- geneResult{geneID: geneID, terms: terms, unknown: unknown}
			}
		}()
	}

	go func() {
		for _, g := range geneIDs {
			work <- g
		}
		close(work)
		wg.Wait()
		close(results)
	}()

	genes := make(map[string]map[string]bool, len(direct))
	stats := Stats{UnknownTerms: make(map[string]int)}
	for r := range results {
		for _, term := range r.unknown {
			if stats.UnknownTerms[term] == 0 {
				b.logger.Warn("term not in ontology graph, dropped",
					zap.String("term", term),
					zap.String("gene", r.geneID))
			}
			stats.UnknownTerms[term]++
		}
		if len(r.terms) == 0 {
			continue
		}
		genes[r.geneID] = r.terms
		stats.Rows += len(r.terms)
	}
	stats.Genes = len(genes)

	return &Table{genes: genes}, stats
}

// closureOf computes one gene's closure: every direct term plus all of its
// ancestors, deduplicated across namespaces, root sentinel removed.
func (b *Builder) closureOf(directTerms []string) (terms map[string]bool, unknown []string) {
	terms = make(map[string]bool)
	for _, id := range directTerms {
		if !b.graph.Has(id) {
			unknown = append(unknown, id)
			continue
		}
		terms[id] = true
		for anc := range b.graph.Ancestors(id) {
			terms[anc] = true
		}
	}
	delete(terms, RootSentinel)
	return terms, unknown
}

// partitionByGene groups the deduplicated direct term identifiers per gene.
func partitionByGene(assocs []Association) map[string][]string {
	sets := make(map[string]map[string]bool)
	for _, a := range assocs {
		if a.TermID == "" {
			continue
		}
		if sets[a.GeneID] == nil {
			sets[a.GeneID] = make(map[string]bool)
		}
		sets[a.GeneID][a.TermID] = true
	}

	direct := make(map[string][]string, len(sets))
	for g, set := range sets {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		direct[g] = ids
	}
	return direct
}
