package variant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cutoffs = SignificanceCutoffs{"af": 0.05, "geno": 0.10}

func TestSignificant(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]TestResult
		want    bool
	}{
		{"af under its cutoff", map[string]TestResult{"af": {P: 0.001, FDR: 0.04}}, true},
		{"af over its cutoff", map[string]TestResult{"af": {P: 0.01, FDR: 0.06}}, false},
		{"geno under its looser cutoff", map[string]TestResult{"geno": {P: 0.02, FDR: 0.09}}, true},
		{"geno at 0.06 passes only the geno cutoff", map[string]TestResult{"geno": {P: 0.02, FDR: 0.06}}, true},
		{"either procedure suffices", map[string]TestResult{
			"af":   {P: 0.5, FDR: 0.9},
			"geno": {P: 0.01, FDR: 0.05},
		}, true},
		{"no results", nil, false},
		{"unknown procedure ignored", map[string]TestResult{"other": {P: 0.0001, FDR: 0.0001}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{ID: "v", Results: tt.results}
			assert.Equal(t, tt.want, v.Significant(cutoffs))
		})
	}
}

func TestMinP(t *testing.T) {
	v := &Variant{Results: map[string]TestResult{
		"af":   {P: 0.2},
		"geno": {P: 0.03},
	}}
	assert.Equal(t, 0.03, v.MinP())

	assert.Equal(t, 1.0, (&Variant{}).MinP(), "no results defaults to 1")
}

func TestLocusKey(t *testing.T) {
	tests := []struct{ id, want string }{
		{"AX-07501238", "AX"},
		{"scaffold12_45213", "scaffold12"},
		{"rs42", "rs"},
		{"noDigits", "noDigits"},
	}
	for _, tt := range tests {
		v := &Variant{ID: tt.id}
		assert.Equal(t, tt.want, v.LocusKey(), "id=%s", tt.id)
	}
}

func TestPartition(t *testing.T) {
	sig := &Variant{ID: "s", Results: map[string]TestResult{"af": {FDR: 0.01}}}
	not := &Variant{ID: "n", Results: map[string]TestResult{"af": {FDR: 0.5}}}

	s, ns := Partition([]*Variant{sig, not}, cutoffs)
	require.Len(t, s, 1)
	require.Len(t, ns, 1)
	assert.Equal(t, "s", s[0].ID)
	assert.Equal(t, "n", ns[0].ID)
}

func TestParseResults(t *testing.T) {
	const table = "id\tchrom\tpos\tp\tfdr\n" +
		"v1\t1\t1500\t0.001\t0.02\n" +
		"v2\t2\t9000\t0.8\t0.95\n"

	records, err := ParseResults(strings.NewReader(table))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Record{ID: "v1", Chrom: "1", Pos: 1500, P: 0.001, FDR: 0.02}, records[0])
}

func TestParseResults_Malformed(t *testing.T) {
	_, err := ParseResults(strings.NewReader("id\tchrom\tpos\tp\tfdr\nv1\t1\tabc\t0.1\t0.2\n"))
	assert.Error(t, err, "bad position")

	_, err = ParseResults(strings.NewReader("id\tchrom\tpos\tp\tfdr\nv1\t1\t100\n"))
	assert.Error(t, err, "short row")
}

func TestMerge_OuterJoin(t *testing.T) {
	tables := map[string][]Record{
		"af": {
			{ID: "v1", Chrom: "1", Pos: 100, P: 0.01, FDR: 0.02},
			{ID: "v2", Chrom: "1", Pos: 200, P: 0.5, FDR: 0.6},
		},
		"geno": {
			{ID: "v1", Chrom: "1", Pos: 100, P: 0.03, FDR: 0.04},
			{ID: "v3", Chrom: "2", Pos: 50, P: 0.9, FDR: 0.95},
		},
	}

	variants := Merge(tables)
	require.Len(t, variants, 3)

	byID := make(map[string]*Variant)
	for _, v := range variants {
		byID[v.ID] = v
	}

	require.Len(t, byID["v1"].Results, 2, "present in both tables")
	assert.Equal(t, 0.02, byID["v1"].Results["af"].FDR)
	assert.Equal(t, 0.04, byID["v1"].Results["geno"].FDR)

	_, ok := byID["v2"].Results["geno"]
	assert.False(t, ok, "v2 missing from geno: null-filled, not an error")
	_, ok = byID["v3"].Results["af"]
	assert.False(t, ok, "v3 missing from af")

	assert.Equal(t, []string{"v1", "v2", "v3"},
		[]string{variants[0].ID, variants[1].ID, variants[2].ID},
		"sorted by (chrom, pos, id)")
}
