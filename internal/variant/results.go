package variant

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Record is one row of a single procedure's statistical results table.
type Record struct {
	ID    string
	Chrom string
	Pos   int
	P     float64
	FDR   float64
}

// LoadResults reads one test procedure's results table: tab-separated with a
// header, columns (id, chrom, pos, p, fdr). The statistical method that
// produced the scores is outside this tool. Gzipped files are handled
// transparently.
func LoadResults(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
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

	return ParseResults(reader)
}

// ParseResults parses a single procedure's results content.
func ParseResults(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		records []Record
		lineNo  int
	)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if lineNo == 1 {
			// Header row.
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			return nil, fmt.Errorf("results line %d: expected 5 columns, got %d", lineNo, len(fields))
		}
		pos, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("results line %d: bad position %q", lineNo, fields[2])
		}
		p, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("results line %d: bad p-value %q", lineNo, fields[3])
		}
		fdr, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("results line %d: bad fdr %q", lineNo, fields[4])
		}

		records = append(records, Record{
			ID:    fields[0],
			Chrom: fields[1],
			Pos:   pos,
			P:     p,
			FDR:   fdr,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan results content: %w", err)
	}
	return records, nil
}

type variantKey struct {
	id    string
	chrom string
	pos   int
}

// Merge outer-joins per-procedure result tables on (id, chrom, pos) into the
// unified variant set. A variant absent from one procedure's table has no
// entry in its Results map for that procedure; the mismatch is not an error.
// The result is sorted by (chrom, pos, id) so downstream work is
// deterministic.
func Merge(tables map[string][]Record) []*Variant {
	byKey := make(map[variantKey]*Variant)
	for proc, records := range tables {
		for _, rec := range records {
			key := variantKey{id: rec.ID, chrom: rec.Chrom, pos: rec.Pos}
			v, ok := byKey[key]
			if !ok {
				v = &Variant{
					ID:      rec.ID,
					Chrom:   rec.Chrom,
					Pos:     rec.Pos,
					Results: make(map[string]TestResult),
				}
				byKey[key] = v
			}
			v.Results[proc] = TestResult{P: rec.P, FDR: rec.FDR}
		}
	}

	variants := make([]*Variant, 0, len(byKey))
	for _, v := range byKey {
		variants = append(variants, v)
	}
	sort.Slice(variants, func(i, j int) bool {
		a, b := variants[i], variants[j]
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		return a.ID < b.ID
	})
	return variants
}
