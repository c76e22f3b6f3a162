package entrez

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cguth7/open-targets-cancer-mesh/internal/crosswalk"
)

const sampleGene2Ensembl = `#tax_id	GeneID	Ensembl_gene_identifier	RNA_nucleotide_accession.version	Ensembl_rna_identifier	protein_accession.version	Ensembl_protein_identifier
9606	7157	ENSG00000141510	NM_000546.6	ENST00000269305.9	NP_000537.3	ENSP00000269305.4
9606	7157	ENSG00000141510	NM_001126112.3	ENST00000445888.6	NP_001119584.1	ENSP00000391127.2
9606	672	ENSG00000012048	NM_007294.4	ENST00000357654.9	NP_009225.1	ENSP00000350283.3
10090	22059	ENSMUSG00000059552	NM_011640.3	ENSMUST00000108658.10	NP_035770.2	ENSMUSP00000104298.4
`

func TestLoadMapping_TaxFilterAndDedup(t *testing.T) {
	m, err := LoadMapping(strings.NewReader(sampleGene2Ensembl), HumanTaxID)
	require.NoError(t, err)

	// Mouse row filtered out; duplicate TP53 rows collapse to one mapping.
	assert.Equal(t, 2, m.Len())

	id, ok := m.Lookup("ENSG00000141510")
	require.True(t, ok)
	assert.Equal(t, int64(7157), id)

	_, ok = m.Lookup("ENSMUSG00000059552")
	assert.False(t, ok)
}

func TestLoadMapping_FirstSeenWins(t *testing.T) {
	input := "#tax_id\tGeneID\tEnsembl_gene_identifier\n" +
		"9606\t100\tENSG00000000001\n" +
		"9606\t200\tENSG00000000001\n"

	m, err := LoadMapping(strings.NewReader(input), HumanTaxID)
	require.NoError(t, err)

	id, ok := m.Lookup("ENSG00000000001")
	require.True(t, ok)
	assert.Equal(t, int64(100), id)
}

func TestLoadMappingFile_Gzipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gene2ensembl.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(sampleGene2Ensembl))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	m, err := LoadMappingFile(path, HumanTaxID)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
}

func TestLoadMappingFile_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gene2ensembl")
	require.NoError(t, os.WriteFile(path, []byte(sampleGene2Ensembl), 0644))

	m, err := LoadMappingFile(path, HumanTaxID)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
}

func TestMapping_EachPreservesFileOrder(t *testing.T) {
	m, err := LoadMapping(strings.NewReader(sampleGene2Ensembl), HumanTaxID)
	require.NoError(t, err)

	var order []string
	m.Each(func(ensemblID string, entrezID int64) {
		order = append(order, ensemblID)
	})
	assert.Equal(t, []string{"ENSG00000141510", "ENSG00000012048"}, order)
}

func TestRemap_DropsUnmapped(t *testing.T) {
	m, err := LoadMapping(strings.NewReader(sampleGene2Ensembl), HumanTaxID)
	require.NoError(t, err)

	rows := []crosswalk.GeneMesh{
		{TargetID: "ENSG00000141510", MeshID: "D001943", Score: 0.9, EvidenceCount: 4},
		{TargetID: "ENSG00000999999", MeshID: "D001943", Score: 0.99, EvidenceCount: 9},
	}

	finals, dropped := Remap(rows, m)
	require.Len(t, finals, 1)
	assert.Equal(t, 1, dropped)

	assert.Equal(t, "D001943", finals[0].MeshID)
	assert.Equal(t, int64(7157), finals[0].EntrezID)
	assert.Equal(t, 0.9, finals[0].Score)
	assert.Equal(t, int64(4), finals[0].EvidenceCount)
}

func TestRemap_SortedByScoreDescending(t *testing.T) {
	m, err := LoadMapping(strings.NewReader(sampleGene2Ensembl), HumanTaxID)
	require.NoError(t, err)

	rows := []crosswalk.GeneMesh{
		{TargetID: "ENSG00000012048", MeshID: "D001943", Score: 0.5, EvidenceCount: 1},
		{TargetID: "ENSG00000141510", MeshID: "D008545", Score: 0.9, EvidenceCount: 2},
		{TargetID: "ENSG00000141510", MeshID: "D001943", Score: 0.5, EvidenceCount: 3},
	}

	finals, dropped := Remap(rows, m)
	require.Len(t, finals, 3)
	assert.Equal(t, 0, dropped)

	assert.Equal(t, 0.9, finals[0].Score)
	// Equal scores fall back to (MeshID, EntrezID) for a stable order.
	assert.Equal(t, "D001943", finals[1].MeshID)
	assert.Equal(t, int64(672), finals[1].EntrezID)
	assert.Equal(t, int64(7157), finals[2].EntrezID)
}
