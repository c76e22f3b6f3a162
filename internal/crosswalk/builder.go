// Package crosswalk builds the disease→MeSH pair table and aggregates
// gene-disease associations onto MeSH terms.
package crosswalk

import (
	"sort"

	"github.com/cguth7/open-targets-cancer-mesh/internal/mesh"
	"github.com/cguth7/open-targets-cancer-mesh/internal/opentargets"
)

// Pair links a disease to one MeSH term inside the target subtree.
// After deduplication there is exactly one pair per (DiseaseID, MeshID),
// carrying the most specific tree position (lowest Level).
type Pair struct {
	DiseaseID   string
	DiseaseName string
	MeshID      string
	TreeNumber  string
	Level       int
}

// BuildPairs explodes each disease's MeSH ID list into disease-term rows,
// inner-joins them against the hierarchy, and dedupes to one pair per
// (disease, term).
//
// Terms with no hierarchy entry fall outside the subtree and are dropped.
// The surviving pair for a (disease, term) is the minimum-Level entry,
// selected explicitly; ties on Level are broken by the lexicographically
// smallest tree number so reruns are reproducible. Output is sorted by
// (DiseaseID, Level, MeshID).
func BuildPairs(diseases []opentargets.CancerDisease, entries []mesh.Entry) []Pair {
	byMeshID := make(map[string][]mesh.Entry)
	for _, e := range entries {
		byMeshID[e.MeshID] = append(byMeshID[e.MeshID], e)
	}

	type pairKey struct {
		diseaseID string
		meshID    string
	}
	best := make(map[pairKey]Pair)
	var order []pairKey

	for _, d := range diseases {
		for _, meshID := range d.MeshIDs {
			for _, e := range byMeshID[meshID] {
				key := pairKey{d.DiseaseID, meshID}
				cand := Pair{
					DiseaseID:   d.DiseaseID,
					DiseaseName: d.DiseaseName,
					MeshID:      meshID,
					TreeNumber:  e.TreeNumber,
					Level:       e.Level,
				}
				cur, seen := best[key]
				if !seen {
					best[key] = cand
					order = append(order, key)
					continue
				}
				if cand.Level < cur.Level ||
					(cand.Level == cur.Level && cand.TreeNumber < cur.TreeNumber) {
					best[key] = cand
				}
			}
		}
	}

	pairs := make([]Pair, 0, len(order))
	for _, key := range order {
		pairs = append(pairs, best[key])
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].DiseaseID != pairs[j].DiseaseID {
			return pairs[i].DiseaseID < pairs[j].DiseaseID
		}
		if pairs[i].Level != pairs[j].Level {
			return pairs[i].Level < pairs[j].Level
		}
		return pairs[i].MeshID < pairs[j].MeshID
	})

	return pairs
}

// CountDiseases returns the number of distinct diseases in the pair table.
func CountDiseases(pairs []Pair) int {
	seen := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		seen[p.DiseaseID] = struct{}{}
	}
	return len(seen)
}

// CountTerms returns the number of distinct MeSH terms in the pair table.
func CountTerms(pairs []Pair) int {
	seen := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		seen[p.MeshID] = struct{}{}
	}
	return len(seen)
}
