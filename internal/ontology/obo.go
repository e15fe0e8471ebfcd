package ontology

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadOBO reads an OBO-format ontology file and returns the term graph.
// Only the fields the graph needs are parsed: id, name, namespace and is_a.
// Obsolete terms are skipped. Gzipped files are handled transparently.
func LoadOBO(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open OBO file: %w", err)
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

	return ParseOBO(reader)
}

// ParseOBO parses OBO-format ontology content.
func ParseOBO(r io.Reader) (*Graph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		terms   []*Term
		current *Term
		inTerm  bool
	)

	flush := func() {
		if current != nil {
			terms = append(terms, current)
			current = nil
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			flush()
			inTerm = line == "[Term]"
			if inTerm {
				current = &Term{}
			}
			continue
		}
		if !inTerm || current == nil {
			continue
		}

		key, val, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		switch key {
		case "id":
			current.ID = val
		case "name":
			current.Name = val
		case "namespace":
			ns, err := ParseNamespace(val)
			if err != nil {
				// Unknown namespaces (e.g. external subsets) are skipped.
				current = nil
				inTerm = false
				continue
			}
			current.Namespace = ns
		case "is_a":
			// "GO:0008152 ! metabolic process"
			parent, _, _ := strings.Cut(val, " ")
			if parent != "" {
				current.Parents = append(current.Parents, parent)
			}
		case "is_obsolete":
			if val == "true" {
				current = nil
				inTerm = false
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan OBO content: %w", err)
	}

	return NewGraph(terms), nil
}
