package closure

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/varfield/snpenrich/internal/ontology"
)

// LoadAssociations reads the raw gene/term association table as retrieved
// from the annotation service: tab-separated with a header, columns
// (gene, term, namespace) where namespace uses the long-form labels
// (biological_process, cellular_component, molecular_function). Rows with an
// empty term are discarded on load. Gzipped files are handled transparently.
func LoadAssociations(path string) ([]Association, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open association file: %w", err)
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
	return ParseAssociations(reader)
}

// ParseAssociations parses raw association content.
func ParseAssociations(r io.Reader) ([]Association, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		assocs []Association
		lineNo int
	)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if lineNo == 1 && strings.HasPrefix(line, "gene\t") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("association line %d: expected 3 columns, got %d", lineNo, len(fields))
		}
		if fields[1] == "" {
			// Annotation services emit gene rows without a term; skip them.
			continue
		}
		ns, err := ontology.ParseNamespace(fields[2])
		if err != nil {
			return nil, fmt.Errorf("association line %d: %w", lineNo, err)
		}
		assocs = append(assocs, Association{
			GeneID:    fields[0],
			TermID:    fields[1],
			Namespace: ns,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan association content: %w", err)
	}
	return assocs, nil
}
