// Package opentargets provides readers and filters for Open Targets platform
// snapshots: the disease index and the overall-direct association table.
package opentargets

import (
	"strings"
)

// meshPrefix tags MeSH cross-references inside the dbXRefs field.
// Matching is case-insensitive: snapshots carry both "MeSH:" and "MESH:".
const meshPrefix = "mesh:"

// Disease is a row of the Open Targets disease index. Ancestors and DBXRefs
// are nil when the source field is null; a nil list is "absent", which is
// distinct from an empty list everywhere in this pipeline.
type Disease struct {
	ID        string
	Name      string
	Ancestors []string
	DBXRefs   []string
}

// CancerDisease is a disease restricted to the cancer subtree, with its
// extracted MeSH identifiers. MeshIDs is nil when no dbXRef matched; the
// extraction never produces an empty non-nil list.
type CancerDisease struct {
	DiseaseID   string
	DiseaseName string
	MeshIDs     []string
}

// Association is a scored gene-disease link from the overall-direct
// association table.
type Association struct {
	DiseaseID     string
	TargetID      string
	Score         float64
	EvidenceCount int64
}

// FilterCancer keeps diseases whose ancestor list contains rootID, excluding
// the root's own row. A nil ancestor list is a non-member, not an error.
func FilterCancer(diseases []Disease, rootID string) []Disease {
	var filtered []Disease
	for _, d := range diseases {
		if d.ID == rootID {
			continue
		}
		if hasAncestor(d.Ancestors, rootID) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func hasAncestor(ancestors []string, id string) bool {
	for _, a := range ancestors {
		if a == id {
			return true
		}
	}
	return false
}

// ExtractMeshIDs collects MeSH identifiers from a dbXRefs list, stripping
// the source-system prefix and preserving order. Returns nil when no
// reference matches.
func ExtractMeshIDs(xrefs []string) []string {
	var meshIDs []string
	for _, ref := range xrefs {
		if len(ref) >= len(meshPrefix) && strings.EqualFold(ref[:len(meshPrefix)], meshPrefix) {
			meshIDs = append(meshIDs, ref[len(meshPrefix):])
		}
	}
	return meshIDs
}

// MeshCrosswalkRows projects filtered diseases onto (id, name, meshIds)
// rows, the step 1 intermediate shape. Diseases without a MeSH mapping are
// kept with nil MeshIDs; they drop out of later inner joins.
func MeshCrosswalkRows(diseases []Disease) []CancerDisease {
	rows := make([]CancerDisease, 0, len(diseases))
	for _, d := range diseases {
		rows = append(rows, CancerDisease{
			DiseaseID:   d.ID,
			DiseaseName: d.Name,
			MeshIDs:     ExtractMeshIDs(d.DBXRefs),
		})
	}
	return rows
}
