package ontology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGraph builds a small BP DAG with a diamond:
//
//	        GO:0008150 (root)
//	         /        \
//	GO:0008152      GO:0009987
//	         \        /
//	        GO:0044237
//	             |
//	        GO:0006091
func testGraph() *Graph {
	return NewGraph([]*Term{
		{ID: RootBP, Namespace: BiologicalProcess},
		{ID: "GO:0008152", Namespace: BiologicalProcess, Parents: []string{RootBP}},
		{ID: "GO:0009987", Namespace: BiologicalProcess, Parents: []string{RootBP}},
		{ID: "GO:0044237", Namespace: BiologicalProcess, Parents: []string{"GO:0008152", "GO:0009987"}},
		{ID: "GO:0006091", Namespace: BiologicalProcess, Parents: []string{"GO:0044237"}},
		{ID: RootMF, Namespace: MolecularFunction},
		{ID: "GO:0003824", Namespace: MolecularFunction, Parents: []string{RootMF}},
	})
}

func TestAncestors_DiamondFanOut(t *testing.T) {
	g := testGraph()

	anc := g.Ancestors("GO:0006091")
	assert.Equal(t, map[string]bool{
		"GO:0044237": true,
		"GO:0008152": true,
		"GO:0009987": true,
		RootBP:       true,
	}, anc, "both diamond paths must be present")

	assert.False(t, anc["GO:0006091"], "ancestors are strict: the term itself is excluded")
}

func TestAncestors_RootHasNone(t *testing.T) {
	g := testGraph()
	assert.Empty(t, g.Ancestors(RootBP))
}

func TestAncestors_UnknownTerm(t *testing.T) {
	g := testGraph()
	assert.Empty(t, g.Ancestors("GO:9999999"))
}

func TestAncestors_Memoized(t *testing.T) {
	g := testGraph()
	first := g.Ancestors("GO:0044237")
	second := g.Ancestors("GO:0044237")
	assert.Equal(t, first, second)
}

func TestChildren_Sorted(t *testing.T) {
	g := testGraph()
	assert.Equal(t, []string{"GO:0008152", "GO:0009987"}, g.Children(RootBP))
	assert.Nil(t, g.Children("GO:0006091"), "leaf has no children")
}

func TestNamespaceOf(t *testing.T) {
	g := testGraph()

	ns, ok := g.NamespaceOf("GO:0003824")
	assert.True(t, ok)
	assert.Equal(t, MolecularFunction, ns)

	_, ok = g.NamespaceOf("GO:9999999")
	assert.False(t, ok)
}

func TestLevelSet_IterativeExpansion(t *testing.T) {
	g := testGraph()

	assert.Equal(t, map[string]bool{RootBP: true}, g.LevelSet(BiologicalProcess, 0))

	level1 := g.LevelSet(BiologicalProcess, 1)
	assert.Equal(t, map[string]bool{
		RootBP:       true,
		"GO:0008152": true,
		"GO:0009987": true,
	}, level1)

	level2 := g.LevelSet(BiologicalProcess, 2)
	assert.True(t, level2["GO:0044237"])
	assert.False(t, level2["GO:0006091"], "depth-3 term is outside level 2")

	level3 := g.LevelSet(BiologicalProcess, 3)
	assert.True(t, level3["GO:0006091"])

	for id := range level2 {
		assert.True(t, level3[id], "each level contains the previous one: %s", id)
	}
}

func TestShallowTerms_UnionAcrossNamespaces(t *testing.T) {
	g := testGraph()
	shallow := g.ShallowTerms(3)

	assert.True(t, shallow[RootBP])
	assert.True(t, shallow[RootMF])
	assert.True(t, shallow["GO:0003824"])
	assert.True(t, shallow["GO:0006091"], "depth 3 is still shallow")

	deep := NewGraph([]*Term{
		{ID: RootBP, Namespace: BiologicalProcess},
		{ID: "a", Namespace: BiologicalProcess, Parents: []string{RootBP}},
		{ID: "b", Namespace: BiologicalProcess, Parents: []string{"a"}},
		{ID: "c", Namespace: BiologicalProcess, Parents: []string{"b"}},
		{ID: "d", Namespace: BiologicalProcess, Parents: []string{"c"}},
	})
	assert.False(t, deep.ShallowTerms(3)["d"], "depth 4 is not shallow")
}

func TestParseNamespace(t *testing.T) {
	for label, want := range map[string]Namespace{
		"biological_process": BiologicalProcess,
		"cellular_component": CellularComponent,
		"molecular_function": MolecularFunction,
		"BP":                 BiologicalProcess,
	} {
		ns, err := ParseNamespace(label)
		require.NoError(t, err)
		assert.Equal(t, want, ns)
	}

	_, err := ParseNamespace("karyotype")
	assert.Error(t, err)
}

const oboSample = `format-version: 1.2
ontology: go

[Term]
id: GO:0008150
name: biological_process
namespace: biological_process

[Term]
id: GO:0008152
name: metabolic process
namespace: biological_process
is_a: GO:0008150 ! biological_process

[Term]
id: GO:0000005
name: obsolete ribosomal chaperone activity
namespace: molecular_function
is_obsolete: true

[Typedef]
id: part_of
name: part of
`

func TestParseOBO(t *testing.T) {
	g, err := ParseOBO(strings.NewReader(oboSample))
	require.NoError(t, err)

	assert.Equal(t, 2, g.TermCount(), "obsolete term and typedef are skipped")

	tm := g.Term("GO:0008152")
	require.NotNil(t, tm)
	assert.Equal(t, "metabolic process", tm.Name)
	assert.Equal(t, BiologicalProcess, tm.Namespace)
	assert.Equal(t, []string{"GO:0008150"}, tm.Parents)

	assert.True(t, g.Ancestors("GO:0008152")[RootBP])
	assert.Nil(t, g.Term("GO:0000005"))
}
