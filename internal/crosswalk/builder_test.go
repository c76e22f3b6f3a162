package crosswalk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cguth7/open-targets-cancer-mesh/internal/mesh"
	"github.com/cguth7/open-targets-cancer-mesh/internal/opentargets"
)

func TestBuildPairs_DedupKeepsLowestLevel(t *testing.T) {
	diseases := []opentargets.CancerDisease{
		{DiseaseID: "EFO_1", DiseaseName: "breast carcinoma", MeshIDs: []string{"D001943"}},
	}
	// Polyhierarchic term: levels 5 and 3 under the same subtree.
	entries := []mesh.Entry{
		{MeshID: "D001943", TreeNumber: "C04.588.180.260.500", Level: 5},
		{MeshID: "D001943", TreeNumber: "C04.588.180", Level: 3},
	}

	pairs := BuildPairs(diseases, entries)
	require.Len(t, pairs, 1)

	assert.Equal(t, "EFO_1", pairs[0].DiseaseID)
	assert.Equal(t, "D001943", pairs[0].MeshID)
	assert.Equal(t, 3, pairs[0].Level)
	assert.Equal(t, "C04.588.180", pairs[0].TreeNumber)
}

func TestBuildPairs_LevelTieBreaksOnTreeNumber(t *testing.T) {
	diseases := []opentargets.CancerDisease{
		{DiseaseID: "EFO_1", MeshIDs: []string{"D008545"}},
	}
	entries := []mesh.Entry{
		{MeshID: "D008545", TreeNumber: "C04.588.805", Level: 3},
		{MeshID: "D008545", TreeNumber: "C04.588.443", Level: 3},
	}

	pairs := BuildPairs(diseases, entries)
	require.Len(t, pairs, 1)
	assert.Equal(t, "C04.588.443", pairs[0].TreeNumber)
}

func TestBuildPairs_DropsTermsOutsideHierarchy(t *testing.T) {
	diseases := []opentargets.CancerDisease{
		{DiseaseID: "EFO_1", MeshIDs: []string{"D001943", "D999999"}},
	}
	entries := []mesh.Entry{
		{MeshID: "D001943", TreeNumber: "C04.588.180", Level: 3},
	}

	pairs := BuildPairs(diseases, entries)
	require.Len(t, pairs, 1)
	assert.Equal(t, "D001943", pairs[0].MeshID)
}

func TestBuildPairs_FansOutMeshIDList(t *testing.T) {
	diseases := []opentargets.CancerDisease{
		{DiseaseID: "EFO_1", MeshIDs: []string{"D001943", "D008545"}},
		{DiseaseID: "EFO_2", MeshIDs: nil}, // no mapping, drops out
	}
	entries := []mesh.Entry{
		{MeshID: "D001943", TreeNumber: "C04.588.180", Level: 3},
		{MeshID: "D008545", TreeNumber: "C04.588.805", Level: 3},
	}

	pairs := BuildPairs(diseases, entries)
	require.Len(t, pairs, 2)
	assert.Equal(t, 1, CountDiseases(pairs))
	assert.Equal(t, 2, CountTerms(pairs))
}

func TestBuildPairs_SortedByDiseaseThenLevel(t *testing.T) {
	diseases := []opentargets.CancerDisease{
		{DiseaseID: "EFO_2", MeshIDs: []string{"D000002"}},
		{DiseaseID: "EFO_1", MeshIDs: []string{"D000001", "D000003"}},
	}
	entries := []mesh.Entry{
		{MeshID: "D000001", TreeNumber: "C04.588.100.200", Level: 4},
		{MeshID: "D000002", TreeNumber: "C04.588.200", Level: 3},
		{MeshID: "D000003", TreeNumber: "C04.588", Level: 2},
	}

	pairs := BuildPairs(diseases, entries)
	require.Len(t, pairs, 3)

	assert.Equal(t, "EFO_1", pairs[0].DiseaseID)
	assert.Equal(t, 2, pairs[0].Level)
	assert.Equal(t, "EFO_1", pairs[1].DiseaseID)
	assert.Equal(t, 4, pairs[1].Level)
	assert.Equal(t, "EFO_2", pairs[2].DiseaseID)
}
