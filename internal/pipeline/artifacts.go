// Package pipeline orchestrates the batch stages: extract diseases, build
// the crosswalk, and remap to Entrez. Each stage materializes its output
// to disk and later stages fail fatally when a prerequisite is missing.
package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cguth7/open-targets-cancer-mesh/internal/crosswalk"
	"github.com/cguth7/open-targets-cancer-mesh/internal/opentargets"
	"github.com/cguth7/open-targets-cancer-mesh/internal/output"
)

// meshIDSep joins MeSH ID lists inside the intermediate TSV. An empty field
// round-trips to nil: extraction never produces an empty non-absent list,
// so the encoding is unambiguous.
const meshIDSep = "|"

// requireArtifact verifies a prior stage's output exists, failing with a
// message naming the path and the stage to run first.
func requireArtifact(path, stage string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("missing %s: run %q first", path, stage)
	}
	return nil
}

// createFile creates a file, making parent directories as needed.
func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

// WriteCancerDiseases writes the step 1 intermediate table.
func WriteCancerDiseases(path string, rows []opentargets.CancerDisease) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString("diseaseId\tdiseaseName\tmeshIds\n"); err != nil {
		return err
	}
	for _, row := range rows {
		line := row.DiseaseID + "\t" + row.DiseaseName + "\t" + strings.Join(row.MeshIDs, meshIDSep) + "\n"
		if _, err := w.WriteString(line); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadCancerDiseases reads the step 1 intermediate table back.
func ReadCancerDiseases(path string) ([]opentargets.CancerDisease, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := readTSV(f, 3, func(cols []string) (opentargets.CancerDisease, error) {
		row := opentargets.CancerDisease{DiseaseID: cols[0], DiseaseName: cols[1]}
		if cols[2] != "" {
			row.MeshIDs = strings.Split(cols[2], meshIDSep)
		}
		return row, nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// WriteGeneMesh writes the step 2 aggregated gene-term table.
func WriteGeneMesh(path string, rows []crosswalk.GeneMesh) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString("targetId\tmeshId\tscore\tevidenceCount\n"); err != nil {
		return err
	}
	for _, row := range rows {
		line := row.TargetID + "\t" + row.MeshID + "\t" +
			output.FormatScore(row.Score) + "\t" +
			strconv.FormatInt(row.EvidenceCount, 10) + "\n"
		if _, err := w.WriteString(line); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadGeneMesh reads the step 2 aggregated gene-term table back.
func ReadGeneMesh(path string) ([]crosswalk.GeneMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := readTSV(f, 4, func(cols []string) (crosswalk.GeneMesh, error) {
		score, err := strconv.ParseFloat(cols[2], 64)
		if err != nil {
			return crosswalk.GeneMesh{}, fmt.Errorf("invalid score %q", cols[2])
		}
		count, err := strconv.ParseInt(cols[3], 10, 64)
		if err != nil {
			return crosswalk.GeneMesh{}, fmt.Errorf("invalid evidenceCount %q", cols[3])
		}
		return crosswalk.GeneMesh{TargetID: cols[0], MeshID: cols[1], Score: score, EvidenceCount: count}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// readTSV reads a headered TSV, applying parse to each data row.
func readTSV[T any](r io.Reader, columns int, parse func([]string) (T, error)) ([]T, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rows []T
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if lineNumber == 1 || line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != columns {
			return nil, fmt.Errorf("line %d: expected %d columns, found %d", lineNumber, columns, len(cols))
		}
		row, err := parse(cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
