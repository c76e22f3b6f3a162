// Package entrez maps Ensembl gene identifiers to NCBI Entrez Gene IDs
// using the gene2ensembl cross-reference table.
package entrez

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cguth7/open-targets-cancer-mesh/internal/crosswalk"
)

// HumanTaxID is the NCBI taxon identifier for Homo sapiens.
const HumanTaxID = 9606

// gene2ensembl column layout (tab-separated):
//
//	#tax_id  GeneID  Ensembl_gene_identifier  RNA_nucleotide_accession.version  ...
const (
	colTaxID       = 0
	colGeneID      = 1
	colEnsemblGene = 2
	minColumns     = 3
)

// Mapping holds Ensembl→Entrez gene mappings for a single taxon.
type Mapping struct {
	byEnsembl map[string]int64
	ensembls  []string // insertion order, for deterministic dumps
}

// Len returns the number of Ensembl gene IDs with a mapping.
func (m *Mapping) Len() int {
	return len(m.byEnsembl)
}

// Lookup returns the Entrez Gene ID for an Ensembl gene ID.
func (m *Mapping) Lookup(ensemblID string) (int64, bool) {
	id, ok := m.byEnsembl[ensemblID]
	return id, ok
}

// Each calls fn for every (ensembl, entrez) mapping in first-seen file order.
func (m *Mapping) Each(fn func(ensemblID string, entrezID int64)) {
	for _, e := range m.ensembls {
		fn(e, m.byEnsembl[e])
	}
}

// LoadMappingFile loads gene2ensembl from a plain or gzipped TSV file,
// filtered to the given taxon.
func LoadMappingFile(path string, taxID int) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gene2ensembl: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 2)
	if _, err := f.Read(buf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read gene2ensembl: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("seek gene2ensembl: %w", err)
	}

	var r io.Reader = f
	if buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return LoadMapping(r, taxID)
}

// LoadMapping parses gene2ensembl rows from a reader, keeping rows for the
// given taxon. A duplicate Ensembl gene ID keeps its first-seen Entrez
// mapping; the file order is the tie-break, which is why this reader is
// sequential.
func LoadMapping(r io.Reader, taxID int) (*Mapping, error) {
	taxStr := strconv.Itoa(taxID)
	m := &Mapping{byEnsembl: make(map[string]int64)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) < minColumns {
			return nil, fmt.Errorf("gene2ensembl line %d: expected at least %d columns, found %d",
				lineNumber, minColumns, len(cols))
		}
		if cols[colTaxID] != taxStr {
			continue
		}

		ensemblID := cols[colEnsemblGene]
		if _, seen := m.byEnsembl[ensemblID]; seen {
			continue
		}

		entrezID, err := strconv.ParseInt(cols[colGeneID], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("gene2ensembl line %d: invalid GeneID %q", lineNumber, cols[colGeneID])
		}

		m.byEnsembl[ensemblID] = entrezID
		m.ensembls = append(m.ensembls, ensemblID)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read gene2ensembl at line %d: %w", lineNumber, err)
	}

	return m, nil
}

// Final is a row of the final four-column output: a gene-term pair with the
// gene remapped into the Entrez namespace.
type Final struct {
	MeshID        string
	EntrezID      int64
	Score         float64
	EvidenceCount int64
}

// Remap translates aggregated gene-term rows into the Entrez namespace.
// Rows whose Ensembl gene has no mapping are dropped entirely, not kept
// with a null. Returns the remapped rows sorted by Score descending (ties:
// MeshID, then EntrezID ascending) and the count of dropped rows.
func Remap(rows []crosswalk.GeneMesh, m *Mapping) ([]Final, int) {
	finals := make([]Final, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		entrezID, ok := m.Lookup(row.TargetID)
		if !ok {
			dropped++
			continue
		}
		finals = append(finals, Final{
			MeshID:        row.MeshID,
			EntrezID:      entrezID,
			Score:         row.Score,
			EvidenceCount: row.EvidenceCount,
		})
	}

	sort.Slice(finals, func(i, j int) bool {
		if finals[i].Score != finals[j].Score {
			return finals[i].Score > finals[j].Score
		}
		if finals[i].MeshID != finals[j].MeshID {
			return finals[i].MeshID < finals[j].MeshID
		}
		return finals[i].EntrezID < finals[j].EntrezID
	})

	return finals, dropped
}
