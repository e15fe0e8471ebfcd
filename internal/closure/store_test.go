package closure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_WriteAndReadTable(t *testing.T) {
	s := openInMemory(t)
	g := testGraph()

	table := NewTable(map[string]map[string]bool{
		"geneA": {"GO:0008152": true, "GO:0044237": true},
		"geneB": {"GO:0003824": true},
	})

	require.NoError(t, s.WriteTable(table, g))

	n, err := s.RowCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	loaded, err := s.ReadTable()
	require.NoError(t, err)
	assert.Equal(t, table.Genes(), loaded.Genes())
	for _, gene := range table.Genes() {
		assert.Equal(t, table.TermsOf(gene), loaded.TermsOf(gene))
	}
}

func TestStore_WriteReplacesPrevious(t *testing.T) {
	s := openInMemory(t)
	g := testGraph()

	first := NewTable(map[string]map[string]bool{"geneA": {"GO:0008152": true}})
	require.NoError(t, s.WriteTable(first, g))

	second := NewTable(map[string]map[string]bool{"geneB": {"GO:0003824": true}})
	require.NoError(t, s.WriteTable(second, g))

	loaded, err := s.ReadTable()
	require.NoError(t, err)
	assert.Equal(t, []string{"geneB"}, loaded.Genes(), "rebuild replaces, never appends")
}

func TestStore_EmptyTable(t *testing.T) {
	s := openInMemory(t)

	loaded, err := s.ReadTable()
	require.NoError(t, err)
	assert.Zero(t, loaded.GeneCount())
}
