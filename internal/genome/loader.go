package genome

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadFeatures reads a gene/exon model table. The producer of this table (a
// genome annotation source) is outside this tool; only the format is fixed
// here: tab-separated with a header, columns
//
//	feature_type  id  name  chrom  start  end  strand
//
// where feature_type is "gene" or "exon" (for exons, id is the parent gene
// identifier and name is ignored), coordinates are 1-based closed, and strand
// is "+" or "-". Gzipped files are handled transparently.
func LoadFeatures(path string) ([]*Gene, []*Exon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open feature file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return ParseFeatures(reader)
}

// ParseFeatures parses gene/exon model content.
func ParseFeatures(r io.Reader) ([]*Gene, []*Exon, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		genes  []*Gene
		exons  []*Exon
		lineNo int
	)

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if lineNo == 1 && strings.HasPrefix(line, "feature_type") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			return nil, nil, fmt.Errorf("feature line %d: expected 7 columns, got %d", lineNo, len(fields))
		}

		start, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, nil, fmt.Errorf("feature line %d: bad start %q", lineNo, fields[4])
		}
		end, err := strconv.Atoi(fields[5])
		if err != nil {
			return nil, nil, fmt.Errorf("feature line %d: bad end %q", lineNo, fields[5])
		}
		if end < start {
			return nil, nil, fmt.Errorf("feature line %d: end %d before start %d", lineNo, end, start)
		}

		var strand int8 = 1
		if fields[6] == "-" {
			strand = -1
		}

		switch fields[0] {
		case "gene":
			genes = append(genes, &Gene{
				ID:     fields[1],
				Name:   fields[2],
				Chrom:  fields[3],
				Start:  start,
				End:    end,
				Strand: strand,
			})
		case "exon":
			exons = append(exons, &Exon{
				GeneID: fields[1],
				Chrom:  fields[3],
				Start:  start,
				End:    end,
			})
		default:
			return nil, nil, fmt.Errorf("feature line %d: unknown feature type %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan feature content: %w", err)
	}

	return genes, exons, nil
}

// ByID indexes genes by identifier.
func ByID(genes []*Gene) map[string]*Gene {
	m := make(map[string]*Gene, len(genes))
	for _, g := range genes {
		m[g.ID] = g
	}
	return m
}
