package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cguth7/open-targets-cancer-mesh/internal/config"
	"github.com/cguth7/open-targets-cancer-mesh/internal/crosswalk"
	"github.com/cguth7/open-targets-cancer-mesh/internal/entrez"
	"github.com/cguth7/open-targets-cancer-mesh/internal/mesh"
	"github.com/cguth7/open-targets-cancer-mesh/internal/opentargets"
	"github.com/cguth7/open-targets-cancer-mesh/internal/output"
)

// Stage names as the user runs them, used in missing-prerequisite errors.
const (
	StageDownload        = "cancer-mesh download"
	StageExtractDiseases = "cancer-mesh extract-diseases"
	StageBuildCrosswalk  = "cancer-mesh build-crosswalk"
)

// ExtractDiseases is step 1: filter the disease index to the cancer subtree
// and extract MeSH cross-references.
func ExtractDiseases(cfg config.Config, logger *zap.Logger) error {
	glob := cfg.DiseaseGlob()
	if err := requireSnapshot(glob); err != nil {
		return err
	}

	store, err := opentargets.OpenStore("")
	if err != nil {
		return err
	}
	defer store.Close()

	diseases, err := store.ReadDiseases(glob)
	if err != nil {
		return err
	}
	logger.Info("loaded disease index", zap.Int("diseases", len(diseases)))

	cancerTA := cfg.OpenTargets.CancerTherapeuticArea
	filtered := opentargets.FilterCancer(diseases, cancerTA)
	logger.Info("filtered to cancer diseases",
		zap.String("root", cancerTA),
		zap.Int("diseases", len(filtered)))

	rows := opentargets.MeshCrosswalkRows(filtered)
	withMesh := 0
	for _, row := range rows {
		if row.MeshIDs != nil {
			withMesh++
		}
	}
	logger.Info("extracted MeSH cross-references",
		zap.Int("with_mesh", withMesh),
		zap.Int("without_mesh", len(rows)-withMesh))

	path := cfg.CancerDiseasesPath()
	if err := WriteCancerDiseases(path, rows); err != nil {
		return err
	}
	logger.Info("wrote cancer diseases", zap.String("path", path))
	return nil
}

// ExtractMeshHierarchy parses the MeSH descriptor file and extracts the
// subtree under prefix, writing the hierarchy CSV next to the source file.
func ExtractMeshHierarchy(cfg config.Config, prefix string, logger *zap.Logger) ([]mesh.Entry, error) {
	meshPath := cfg.MeshPath()
	if _, err := os.Stat(meshPath); err != nil {
		return nil, fmt.Errorf("missing MeSH descriptor file %s: run %q first", meshPath, StageDownload)
	}

	records, err := mesh.ParseFile(meshPath)
	if err != nil {
		return nil, err
	}
	logger.Info("parsed MeSH descriptors", zap.Int("descriptors", len(records)))

	entries := mesh.ExtractHierarchy(records, prefix)
	logger.Info("extracted hierarchy",
		zap.String("prefix", prefix),
		zap.Int("tree_paths", len(entries)),
		zap.Int("unique_terms", mesh.UniqueTerms(entries)))

	csvPath := hierarchyCSVPath(cfg, prefix)
	f, err := createFile(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := output.WriteHierarchyCSV(f, entries); err != nil {
		return nil, fmt.Errorf("write %s: %w", csvPath, err)
	}
	logger.Info("wrote hierarchy", zap.String("path", csvPath))

	return entries, nil
}

// hierarchyCSVPath names the hierarchy CSV after the extracted branch.
func hierarchyCSVPath(cfg config.Config, prefix string) string {
	var name string
	switch prefix {
	case "C04":
		name = "mesh_c04_complete.csv"
	case "C04.588":
		name = "mesh_c04_588_site.csv"
	default:
		name = "mesh_" + strings.ToLower(strings.ReplaceAll(prefix, ".", "_")) + ".csv"
	}
	return filepath.Join(cfg.Paths.MeshDir, name)
}

// BuildCrosswalk is step 2: join cancer diseases against the MeSH hierarchy
// and aggregate associations by (gene, term).
func BuildCrosswalk(cfg config.Config, logger *zap.Logger) error {
	if err := requireArtifact(cfg.CancerDiseasesPath(), StageExtractDiseases); err != nil {
		return err
	}
	cancerDiseases, err := ReadCancerDiseases(cfg.CancerDiseasesPath())
	if err != nil {
		return err
	}
	logger.Info("loaded cancer diseases", zap.Int("diseases", len(cancerDiseases)))

	// The hierarchy is extracted live from the descriptor file on every run.
	entries, err := ExtractMeshHierarchy(cfg, cfg.Mesh.Prefix, logger)
	if err != nil {
		return err
	}

	pairs := crosswalk.BuildPairs(cancerDiseases, entries)
	logger.Info("built disease-mesh crosswalk",
		zap.Int("pairs", len(pairs)),
		zap.Int("diseases", crosswalk.CountDiseases(pairs)),
		zap.Int("terms", crosswalk.CountTerms(pairs)))

	pairsPath := filepath.Join(cfg.CrosswalksDir(), "disease_mesh_crosswalk.csv")
	f, err := createFile(pairsPath)
	if err != nil {
		return err
	}
	if err := output.WritePairsCSV(f, pairs); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", pairsPath, err)
	}
	f.Close()

	assocGlob := cfg.AssociationGlob()
	if err := requireSnapshot(assocGlob); err != nil {
		return err
	}

	store, err := opentargets.OpenStore("")
	if err != nil {
		return err
	}
	defer store.Close()

	agg := crosswalk.NewAggregator(pairs)
	err = store.StreamAssociations(assocGlob, func(a opentargets.Association) error {
		agg.Add(a)
		return nil
	})
	if err != nil {
		return err
	}

	results := agg.Results()
	logger.Info("aggregated associations",
		zap.Int64("seen", agg.Seen()),
		zap.Int64("matched", agg.Matched()),
		zap.Int("gene_mesh_pairs", len(results)))

	path := cfg.GeneMeshPath()
	if err := WriteGeneMesh(path, results); err != nil {
		return err
	}
	logger.Info("wrote gene-mesh dataset", zap.String("path", path))
	return nil
}

// AddEntrez is step 3: remap Ensembl gene IDs to Entrez and emit the final
// four-column table.
func AddEntrez(cfg config.Config, logger *zap.Logger) error {
	if err := requireArtifact(cfg.GeneMeshPath(), StageBuildCrosswalk); err != nil {
		return err
	}
	rows, err := ReadGeneMesh(cfg.GeneMeshPath())
	if err != nil {
		return err
	}
	logger.Info("loaded gene-mesh dataset", zap.Int("rows", len(rows)))

	g2ePath := cfg.Gene2EnsemblPath()
	if _, err := os.Stat(g2ePath); err != nil {
		return fmt.Errorf("missing gene2ensembl file %s: run %q first", g2ePath, StageDownload)
	}
	mapping, err := entrez.LoadMappingFile(g2ePath, cfg.NCBI.TaxID)
	if err != nil {
		return err
	}
	logger.Info("loaded gene2ensembl mapping",
		zap.Int("tax_id", cfg.NCBI.TaxID),
		zap.Int("mappings", mapping.Len()))

	mappingPath := filepath.Join(cfg.CrosswalksDir(), "ensembl_entrez.csv")
	mf, err := createFile(mappingPath)
	if err != nil {
		return err
	}
	if err := output.WriteMappingCSV(mf, mapping); err != nil {
		mf.Close()
		return fmt.Errorf("write %s: %w", mappingPath, err)
	}
	mf.Close()

	finals, dropped := entrez.Remap(rows, mapping)
	retained := 0.0
	if len(rows) > 0 {
		retained = float64(len(finals)) / float64(len(rows))
	}
	logger.Info("remapped to Entrez",
		zap.Int("retained", len(finals)),
		zap.Int("dropped", dropped),
		zap.Float64("retained_fraction", retained))

	finalPath := cfg.FinalPath()
	out, err := createFile(finalPath)
	if err != nil {
		return err
	}
	defer out.Close()

	fw := output.NewFinalWriter(out)
	if err := fw.WriteHeader(); err != nil {
		return fmt.Errorf("write %s: %w", finalPath, err)
	}
	for _, f := range finals {
		if err := fw.Write(f); err != nil {
			return fmt.Errorf("write %s: %w", finalPath, err)
		}
	}
	if err := fw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", finalPath, err)
	}

	logger.Info("wrote final output",
		zap.String("path", finalPath),
		zap.Int("rows", len(finals)))
	return nil
}

// RunAll executes steps 1-3 in order, stopping at the first failure.
func RunAll(cfg config.Config, logger *zap.Logger) error {
	if err := ExtractDiseases(cfg, logger); err != nil {
		return fmt.Errorf("extract diseases: %w", err)
	}
	if err := BuildCrosswalk(cfg, logger); err != nil {
		return fmt.Errorf("build crosswalk: %w", err)
	}
	if err := AddEntrez(cfg, logger); err != nil {
		return fmt.Errorf("add entrez: %w", err)
	}
	return nil
}

// requireSnapshot verifies a parquet glob matches at least one file.
func requireSnapshot(glob string) error {
	matches, err := filepath.Glob(glob)
	if err != nil {
		return fmt.Errorf("bad snapshot glob %s: %w", glob, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no snapshot files match %s: run %q first", glob, StageDownload)
	}
	return nil
}
