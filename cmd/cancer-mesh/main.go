// Package main provides the cancer-mesh command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cguth7/open-targets-cancer-mesh/internal/config"
	"github.com/cguth7/open-targets-cancer-mesh/internal/pipeline"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	cfgFile string
	verbose bool
}

// load builds the immutable config and the logger for a command run.
func (o *rootOptions) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}

	logCfg := zap.NewDevelopmentConfig()
	if !o.verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}

	return cfg, logger, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "cancer-mesh",
		Short: "Build the Open Targets cancer gene to MeSH term dataset",
		Long: `cancer-mesh builds a crosswalk dataset linking cancer-associated genes to
MeSH disease terms for patent-landscape matching.

The pipeline runs in three batch steps over static snapshot files:
  1. extract-diseases  filter the Open Targets disease index to the cancer
                       subtree and extract MeSH cross-references
  2. build-crosswalk   join diseases against the MeSH tree and aggregate
                       gene-disease associations by (gene, MeSH term)
  3. add-entrez        remap Ensembl gene IDs to Entrez and emit the final
                       four-column table

Final output: gene_disease_mesh_final.tsv with columns
disease_mesh_id, gene_entrez_id, ot_score, evidence_count.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: ./config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newExtractDiseasesCmd(opts))
	root.AddCommand(newBuildCrosswalkCmd(opts))
	root.AddCommand(newAddEntrezCmd(opts))
	root.AddCommand(newMeshCmd(opts))
	root.AddCommand(newDownloadCmd(opts))
	root.AddCommand(newConfigCmd(opts))

	return root
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the complete pipeline (steps 1-3)",
		Example: `  cancer-mesh download       # one-time setup
  cancer-mesh run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := pipeline.RunAll(cfg, logger); err != nil {
				return err
			}
			logger.Info("pipeline complete", zap.String("output", cfg.FinalPath()))
			return nil
		},
	}
}

func newExtractDiseasesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract-diseases",
		Short: "Step 1: extract cancer diseases from the Open Targets disease index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return pipeline.ExtractDiseases(cfg, logger)
		},
	}
}

func newBuildCrosswalkCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build-crosswalk",
		Short: "Step 2: build the disease-MeSH crosswalk and aggregate associations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return pipeline.BuildCrosswalk(cfg, logger)
		},
	}
}

func newAddEntrezCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-entrez",
		Short: "Step 3: remap genes to Entrez IDs and write the final table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return pipeline.AddEntrez(cfg, logger)
		},
	}
}

func newMeshCmd(opts *rootOptions) *cobra.Command {
	var (
		prefix string
		full   bool
	)

	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "Extract a MeSH tree branch to CSV",
		Long: `Parse the MeSH ASCII descriptor file and extract the hierarchy under a
tree prefix. C04 is all neoplasms; C04.588 is the site-only branch.`,
		Example: `  cancer-mesh mesh                    # site-only branch (C04.588)
  cancer-mesh mesh --full             # all neoplasms (C04)
  cancer-mesh mesh --prefix C04.557   # a specific subtree`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			p := prefix
			if p == "" {
				p = cfg.Mesh.Prefix
			}
			if full {
				p = "C04"
			}
			_, err = pipeline.ExtractMeshHierarchy(cfg, p, logger)
			return err
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "tree prefix to extract (default: configured mesh.prefix)")
	cmd.Flags().BoolVar(&full, "full", false, "extract the full C04 branch, not just the site branch")

	return cmd
}
