package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cguth7/open-targets-cancer-mesh/internal/config"
)

func newDownloadCmd(opts *rootOptions) *cobra.Command {
	var (
		meshOnly  bool
		skipGenes bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download reference files (MeSH descriptors, gene2ensembl, snapshots)",
		Long: `Download the static reference files the pipeline reads:

  - the NLM MeSH ASCII descriptor file (~30 MB)
  - NCBI gene2ensembl.gz (~280 MB)
  - Open Targets disease/association parquet files, when their part-file
    URLs are listed under opentargets.disease_urls / association_urls in
    the config (the part names are release-specific)

Files that already exist locally are reused; downloads are not retried.`,
		Example: `  cancer-mesh download
  cancer-mesh download --mesh-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runDownload(cfg, meshOnly, skipGenes)
		},
	}

	cmd.Flags().BoolVar(&meshOnly, "mesh-only", false, "only download the MeSH descriptor file")
	cmd.Flags().BoolVar(&skipGenes, "skip-genes", false, "skip the gene2ensembl download")

	return cmd
}

func runDownload(cfg config.Config, meshOnly, skipGenes bool) error {
	fmt.Printf("Downloading reference files...\n\n")

	if err := downloadFile(cfg.Mesh.URL, cfg.MeshPath()); err != nil {
		return fmt.Errorf("download MeSH descriptors: %w", err)
	}

	if meshOnly {
		return nil
	}

	if !skipGenes {
		if err := downloadFile(cfg.NCBI.Gene2EnsemblURL, cfg.Gene2EnsemblPath()); err != nil {
			return fmt.Errorf("download gene2ensembl: %w", err)
		}
	}

	diseaseDir := filepath.Join(cfg.Paths.OpenTargetsDir, "disease")
	if err := downloadSnapshot(cfg.OpenTargets.DiseaseURLs, diseaseDir, "disease index"); err != nil {
		return err
	}

	assocDir := filepath.Join(cfg.Paths.OpenTargetsDir, "association_overall_direct")
	if err := downloadSnapshot(cfg.OpenTargets.AssociationURLs, assocDir, "associations"); err != nil {
		return err
	}

	fmt.Printf("\nDownload complete!\n")
	fmt.Printf("To build the dataset, run:\n")
	fmt.Printf("  cancer-mesh run\n")
	return nil
}

// downloadSnapshot fetches each part file of an Open Targets snapshot.
func downloadSnapshot(urls []string, destDir, label string) error {
	if len(urls) == 0 {
		fmt.Printf("  No %s URLs configured, skipping (place parquet files in %s)\n", label, destDir)
		return nil
	}
	for _, url := range urls {
		dest := filepath.Join(destDir, filepath.Base(url))
		if err := downloadFile(url, dest); err != nil {
			return fmt.Errorf("download %s: %w", label, err)
		}
	}
	return nil
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(url, destPath string) error {
	// Check if file already exists
	if info, err := os.Stat(destPath); err == nil {
		fmt.Printf("  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	fmt.Printf("  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{
		Timeout: 30 * time.Minute, // Long timeout for large files
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	// Download into a temp file first so a failed transfer never leaves a
	// partial file at the destination path.
	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var downloaded int64
	pw := &progressWriter{
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Printf("    Done: %s\n", formatSize(downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	total      int64
	downloaded *int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			fmt.Printf("\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(*pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Printf("\r    Progress: %s  ", formatSize(*pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
