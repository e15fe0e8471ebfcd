package closure

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/varfield/snpenrich/internal/ontology"
)

// Store persists the closure table in a DuckDB database so the expensive
// build runs at most once per ontology release; every later run reloads the
// table from here.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens or creates a DuckDB database at the given path. Use an
// empty string for an in-memory database.
func OpenStore(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS gene_go_closure (
		gene VARCHAR,
		term VARCHAR,
		namespace VARCHAR,
		PRIMARY KEY (gene, term)
	)`)
	return err
}

// WriteTable replaces the stored closure with the given table. The namespace
// column is re-derived from the term via the graph.
func (s *Store) WriteTable(t *Table, g *ontology.Graph) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM gene_go_closure`); err != nil {
		return fmt.Errorf("clear closure table: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO gene_go_closure (gene, term, namespace) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, gene := range t.Genes() {
		for term := range t.TermsOf(gene) {
			ns, _ := g.NamespaceOf(term)
			if _, err := stmt.Exec(gene, term, string(ns)); err != nil {
				return fmt.Errorf("insert closure row %s/%s: %w", gene, term, err)
			}
		}
	}

	return tx.Commit()
}

// ReadTable loads the stored closure table.
func (s *Store) ReadTable() (*Table, error) {
	rows, err := s.db.Query(`SELECT gene, term FROM gene_go_closure`)
	if err != nil {
		return nil, fmt.Errorf("query closure table: %w", err)
	}
	defer rows.Close()

	genes := make(map[string]map[string]bool)
	for rows.Next() {
		var gene, term string
		if err := rows.Scan(&gene, &term); err != nil {
			return nil, fmt.Errorf("scan closure row: %w", err)
		}
		if genes[gene] == nil {
			genes[gene] = make(map[string]bool)
		}
		genes[gene][term] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closure rows: %w", err)
	}
	return &Table{genes: genes}, nil
}

// RowCount returns the number of stored (gene, term) pairs.
func (s *Store) RowCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM gene_go_closure`).Scan(&n)
	return n, err
}
