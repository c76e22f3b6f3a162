// Package config loads pipeline configuration from a YAML file with viper.
// The resulting Config is an immutable value threaded through each stage
// entry point; no stage reads ambient global state.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Defaults for the external reference sources.
const (
	DefaultMeshURL         = "https://nlmpubs.nlm.nih.gov/projects/mesh/MESH_FILES/asciimesh/d2025.bin"
	DefaultGene2EnsemblURL = "https://ftp.ncbi.nlm.nih.gov/gene/DATA/gene2ensembl.gz"

	// EFO therapeutic-area identifier for neoplasm.
	DefaultCancerTherapeuticArea = "EFO_0000616"

	// C04.588 is the site-only neoplasm branch; C04 is all neoplasms.
	DefaultMeshPrefix = "C04.588"

	DefaultTaxID = 9606
)

// Paths holds the data directory layout. All paths are used as given;
// relative paths resolve against the working directory.
type Paths struct {
	DataDir        string `mapstructure:"data_dir"`
	MeshDir        string `mapstructure:"mesh_dir"`
	OpenTargetsDir string `mapstructure:"opentargets_dir"`
	ProcessedDir   string `mapstructure:"processed_dir"`
}

// OpenTargets holds the disease/association snapshot settings. The URL
// lists enumerate the parquet part files of a platform release; they are
// release-specific, so there is no default and the download command skips
// snapshots with no URLs configured.
type OpenTargets struct {
	CancerTherapeuticArea string   `mapstructure:"cancer_therapeutic_area"`
	DiseaseURLs           []string `mapstructure:"disease_urls"`
	AssociationURLs       []string `mapstructure:"association_urls"`
}

// Mesh holds MeSH descriptor settings.
type Mesh struct {
	URL    string `mapstructure:"url"`
	File   string `mapstructure:"file"`
	Prefix string `mapstructure:"prefix"`
}

// NCBI holds gene2ensembl settings.
type NCBI struct {
	Gene2EnsemblURL string `mapstructure:"gene2ensembl_url"`
	TaxID           int    `mapstructure:"tax_id"`
}

// Config is the process-wide pipeline configuration.
type Config struct {
	Paths       Paths       `mapstructure:"paths"`
	OpenTargets OpenTargets `mapstructure:"opentargets"`
	Mesh        Mesh        `mapstructure:"mesh"`
	NCBI        NCBI        `mapstructure:"ncbi"`
}

// setDefaults registers the default configuration on a viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("paths.data_dir", "data")
	v.SetDefault("paths.mesh_dir", filepath.Join("data", "mesh"))
	v.SetDefault("paths.opentargets_dir", filepath.Join("data", "opentargets"))
	v.SetDefault("paths.processed_dir", filepath.Join("data", "processed"))
	v.SetDefault("opentargets.cancer_therapeutic_area", DefaultCancerTherapeuticArea)
	v.SetDefault("mesh.url", DefaultMeshURL)
	v.SetDefault("mesh.file", "d2025.bin")
	v.SetDefault("mesh.prefix", DefaultMeshPrefix)
	v.SetDefault("ncbi.gene2ensembl_url", DefaultGene2EnsemblURL)
	v.SetDefault("ncbi.tax_id", DefaultTaxID)
}

// Load reads configuration from the given file, or from config.yaml in the
// working directory when cfgFile is empty. A missing default config file is
// not an error: defaults apply.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// MeshPath returns the local MeSH descriptor file path.
func (c Config) MeshPath() string {
	return filepath.Join(c.Paths.MeshDir, c.Mesh.File)
}

// DiseaseGlob returns the parquet glob for the disease index snapshot.
func (c Config) DiseaseGlob() string {
	return filepath.Join(c.Paths.OpenTargetsDir, "disease", "*.parquet")
}

// AssociationGlob returns the parquet glob for the overall-direct
// association snapshot.
func (c Config) AssociationGlob() string {
	return filepath.Join(c.Paths.OpenTargetsDir, "association_overall_direct", "*.parquet")
}

// Gene2EnsemblPath returns the local gene2ensembl.gz path.
func (c Config) Gene2EnsemblPath() string {
	return filepath.Join(c.Paths.DataDir, "ncbi", "gene2ensembl.gz")
}

// IntermediateDir returns the directory for per-stage intermediate tables.
func (c Config) IntermediateDir() string {
	return filepath.Join(c.Paths.ProcessedDir, "intermediate")
}

// CrosswalksDir returns the directory for inspection crosswalk CSVs.
func (c Config) CrosswalksDir() string {
	return filepath.Join(c.Paths.ProcessedDir, "crosswalks")
}

// CancerDiseasesPath returns the step 1 intermediate artifact path.
func (c Config) CancerDiseasesPath() string {
	return filepath.Join(c.IntermediateDir(), "cancer_diseases.tsv")
}

// GeneMeshPath returns the step 2 intermediate artifact path.
func (c Config) GeneMeshPath() string {
	return filepath.Join(c.IntermediateDir(), "gene_mesh_pre_entrez.tsv")
}

// FinalPath returns the final four-column output path.
func (c Config) FinalPath() string {
	return filepath.Join(c.Paths.ProcessedDir, "gene_disease_mesh_final.tsv")
}
