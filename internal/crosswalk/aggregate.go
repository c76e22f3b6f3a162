package crosswalk

import (
	"sort"

	"github.com/cguth7/open-targets-cancer-mesh/internal/opentargets"
)

// GeneMesh is an aggregated gene-term row. Score is the maximum association
// score over every contributing (disease, term) row; EvidenceCount is the
// sum over the same rows. The score reflects the single best-supported
// source disease while the evidence count reflects combined support, so the
// count is not attached to the score's source disease.
type GeneMesh struct {
	TargetID      string
	MeshID        string
	Score         float64
	EvidenceCount int64
}

type geneMeshKey struct {
	targetID string
	meshID   string
}

// Aggregator folds streamed associations onto MeSH terms via the pair
// table. Associations whose disease is not in the pair table are ignored;
// a disease mapped to several terms fans one association out into several
// gene-term contributions.
type Aggregator struct {
	termsByDisease map[string][]string
	acc            map[geneMeshKey]*GeneMesh
	seen           int64
	matched        int64
}

// NewAggregator creates an aggregator over the given disease-term pairs.
func NewAggregator(pairs []Pair) *Aggregator {
	termsByDisease := make(map[string][]string)
	for _, p := range pairs {
		termsByDisease[p.DiseaseID] = append(termsByDisease[p.DiseaseID], p.MeshID)
	}
	return &Aggregator{
		termsByDisease: termsByDisease,
		acc:            make(map[geneMeshKey]*GeneMesh),
	}
}

// Add folds one association into the aggregation.
func (a *Aggregator) Add(assoc opentargets.Association) {
	a.seen++
	terms, ok := a.termsByDisease[assoc.DiseaseID]
	if !ok {
		return
	}
	a.matched++

	for _, meshID := range terms {
		key := geneMeshKey{assoc.TargetID, meshID}
		gm, ok := a.acc[key]
		if !ok {
			a.acc[key] = &GeneMesh{
				TargetID:      assoc.TargetID,
				MeshID:        meshID,
				Score:         assoc.Score,
				EvidenceCount: assoc.EvidenceCount,
			}
			continue
		}
		if assoc.Score > gm.Score {
			gm.Score = assoc.Score
		}
		gm.EvidenceCount += assoc.EvidenceCount
	}
}

// Results returns the aggregated gene-term rows, sorted by
// (TargetID, MeshID) so runs over the same input are identical regardless
// of streaming order.
func (a *Aggregator) Results() []GeneMesh {
	results := make([]GeneMesh, 0, len(a.acc))
	for _, gm := range a.acc {
		results = append(results, *gm)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].TargetID != results[j].TargetID {
			return results[i].TargetID < results[j].TargetID
		}
		return results[i].MeshID < results[j].MeshID
	})
	return results
}

// Seen returns the number of associations offered to Add.
func (a *Aggregator) Seen() int64 {
	return a.seen
}

// Matched returns the number of associations whose disease was in scope.
func (a *Aggregator) Matched() int64 {
	return a.matched
}
