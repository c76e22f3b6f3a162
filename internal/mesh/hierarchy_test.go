package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, 1, Level("A"))
	assert.Equal(t, 3, Level("A.B.C"))
	assert.Equal(t, 2, Level("C04.588"))
}

func TestExtractHierarchy_PrefixMatch(t *testing.T) {
	records := []*Record{
		{UI: "D001943", Name: "Breast Neoplasms", TreeNumbers: []string{"C04.588.443", "C17.800.090.500"}},
		{UI: "D002277", Name: "Carcinoma", TreeNumbers: []string{"C05.100"}},
	}

	entries := ExtractHierarchy(records, "C04")
	require.Len(t, entries, 1)

	assert.Equal(t, "D001943", entries[0].MeshID)
	assert.Equal(t, "C04.588.443", entries[0].TreeNumber)
	assert.Equal(t, 3, entries[0].Level)
}

func TestExtractHierarchy_OneRowPerTreeNumber(t *testing.T) {
	// A polyhierarchic descriptor contributes one entry per qualifying path.
	records := []*Record{
		{UI: "D008545", Name: "Melanoma", TreeNumbers: []string{"C04.557.465.625.650", "C04.588.805"}},
	}

	entries := ExtractHierarchy(records, "C04")
	require.Len(t, entries, 2)
	assert.Equal(t, 5, entries[0].Level)
	assert.Equal(t, 3, entries[1].Level)
}

func TestExtractHierarchy_SortedByTreeNumberThenID(t *testing.T) {
	records := []*Record{
		{UI: "D000002", Name: "B", TreeNumbers: []string{"C04.200"}},
		{UI: "D000001", Name: "A", TreeNumbers: []string{"C04.100"}},
		{UI: "D000003", Name: "C", TreeNumbers: []string{"C04.100"}},
	}

	entries := ExtractHierarchy(records, "C04")
	require.Len(t, entries, 3)

	assert.Equal(t, "C04.100", entries[0].TreeNumber)
	assert.Equal(t, "D000001", entries[0].MeshID)
	assert.Equal(t, "C04.100", entries[1].TreeNumber)
	assert.Equal(t, "D000003", entries[1].MeshID)
	assert.Equal(t, "C04.200", entries[2].TreeNumber)
}

func TestExtractHierarchy_DottedPrefix(t *testing.T) {
	records := []*Record{
		{UI: "D001943", TreeNumbers: []string{"C04.588.443"}},
		{UI: "D009369", TreeNumbers: []string{"C04"}},
		{UI: "D009385", TreeNumbers: []string{"C04.557.435"}},
	}

	entries := ExtractHierarchy(records, "C04.588")
	require.Len(t, entries, 1)
	assert.Equal(t, "D001943", entries[0].MeshID)
}

func TestUniqueTerms(t *testing.T) {
	entries := []Entry{
		{MeshID: "D000001", TreeNumber: "C04.100"},
		{MeshID: "D000001", TreeNumber: "C04.200"},
		{MeshID: "D000002", TreeNumber: "C04.300"},
	}
	assert.Equal(t, 2, UniqueTerms(entries))
}
