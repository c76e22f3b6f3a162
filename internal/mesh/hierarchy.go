package mesh

import (
	"sort"
	"strings"
)

// Entry is one position of a descriptor inside a tree subtree. A
// polyhierarchic descriptor contributes one entry per qualifying tree number.
type Entry struct {
	MeshID     string
	Name       string
	TreeNumber string
	Level      int
}

// Level returns the depth of a tree number: dot count + 1.
// "C04.588.443" is level 3, "C04" is level 1.
func Level(treeNumber string) int {
	return strings.Count(treeNumber, ".") + 1
}

// ExtractHierarchy filters parsed descriptors to the subtree under prefix
// and returns one entry per (descriptor, tree number) match.
//
// The match is a plain string prefix: "C04" matches "C04.588" but also a
// hypothetical "C040". Callers needing strict subtree semantics should pass
// a prefix ending at a full path segment. The result is sorted by
// (TreeNumber, MeshID) and is not deduplicated.
func ExtractHierarchy(records []*Record, prefix string) []Entry {
	var entries []Entry

	for _, rec := range records {
		for _, tn := range rec.TreeNumbers {
			if strings.HasPrefix(tn, prefix) {
				entries = append(entries, Entry{
					MeshID:     rec.UI,
					Name:       rec.Name,
					TreeNumber: tn,
					Level:      Level(tn),
				})
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TreeNumber != entries[j].TreeNumber {
			return entries[i].TreeNumber < entries[j].TreeNumber
		}
		return entries[i].MeshID < entries[j].MeshID
	})

	return entries
}

// UniqueTerms returns the number of distinct descriptor IDs in the hierarchy.
func UniqueTerms(entries []Entry) int {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.MeshID] = struct{}{}
	}
	return len(seen)
}
