// Package output writes the pipeline's delivered artifacts: the final
// four-column TSV and the inspection crosswalk CSVs.
package output

import (
	"bufio"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/cguth7/open-targets-cancer-mesh/internal/crosswalk"
	"github.com/cguth7/open-targets-cancer-mesh/internal/entrez"
	"github.com/cguth7/open-targets-cancer-mesh/internal/mesh"
)

// FinalWriter writes the final gene-disease table in tab-delimited format.
// Column order and naming are the published contract of this pipeline.
type FinalWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewFinalWriter creates a writer for the final four-column table.
func NewFinalWriter(w io.Writer) *FinalWriter {
	return &FinalWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"disease_mesh_id",
			"gene_entrez_id",
			"ot_score",
			"evidence_count",
		},
	}
}

// WriteHeader writes the header line.
func (fw *FinalWriter) WriteHeader() error {
	_, err := fw.w.WriteString(strings.Join(fw.columns, "\t") + "\n")
	return err
}

// Write writes a single final record.
func (fw *FinalWriter) Write(f entrez.Final) error {
	values := []string{
		f.MeshID,
		strconv.FormatInt(f.EntrezID, 10),
		FormatScore(f.Score),
		strconv.FormatInt(f.EvidenceCount, 10),
	}
	_, err := fw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (fw *FinalWriter) Flush() error {
	return fw.w.Flush()
}

// FormatScore renders a score with the shortest representation that
// round-trips, so identical inputs always serialize identically.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'g', -1, 64)
}

// WriteHierarchyCSV writes extracted hierarchy entries as CSV.
func WriteHierarchyCSV(w io.Writer, entries []mesh.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"mesh_id", "mesh_name", "tree_number", "level"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.MeshID, e.Name, e.TreeNumber, strconv.Itoa(e.Level)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePairsCSV writes the disease→MeSH crosswalk as CSV.
func WritePairsCSV(w io.Writer, pairs []crosswalk.Pair) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"diseaseId", "diseaseName", "meshId", "tree_number", "level"}); err != nil {
		return err
	}
	for _, p := range pairs {
		row := []string{p.DiseaseID, p.DiseaseName, p.MeshID, p.TreeNumber, strconv.Itoa(p.Level)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMappingCSV writes the Ensembl→Entrez crosswalk as CSV in first-seen
// file order.
func WriteMappingCSV(w io.Writer, m *entrez.Mapping) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"entrezGeneId", "ensemblGeneId"}); err != nil {
		return err
	}
	var writeErr error
	m.Each(func(ensemblID string, entrezID int64) {
		if writeErr != nil {
			return
		}
		writeErr = cw.Write([]string{strconv.FormatInt(entrezID, 10), ensemblID})
	})
	if writeErr != nil {
		return writeErr
	}
	cw.Flush()
	return cw.Error()
}
