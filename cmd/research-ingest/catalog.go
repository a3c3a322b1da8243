// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-ingest/internal/catalog"
	"github.com/pdiddy/research-ingest/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Index, search and export the produced JSON documents",
	Long: `Catalog keeps a local SQLite index of every record and metadata file
written by the pdf, metadata and podcast commands.`,
}

// --- index subcommand ---

var catalogIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the output folders into the catalog",
	Long: `Index reads every .json file in the publication, podcast and metadata
output folders and stores it in catalog.db. Unchanged files are skipped on
subsequent runs. export.yaml is rewritten when anything changed.`,
	Args: cobra.NoArgs,
	RunE: runCatalogIndex,
}

func runCatalogIndex(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cfg, store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	dirs := []string{
		cfg.Conversion.OutputDir,
		cfg.Transcription.OutputDir,
		cfg.Metadata.OutputDir,
	}
	summary, err := store.Index(context.Background(), dirs, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog by substring and source",
	Args:  cobra.ArbitraryArgs,
	RunE:  runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	_, store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	source, _ := cmd.Flags().GetString("source")
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")

	entries, err := store.Search(context.Background(), catalog.QueryOptions{
		Query:      strings.Join(args, " "),
		Source:     source,
		Kind:       catalog.Kind(kind),
		MaxResults: limit,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(os.Stdout, entries, jsonOutput)
}

func formatSearchOutput(w io.Writer, entries []catalog.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-8s  %-10s  %-24s  %s\n", "Rank", "Kind", "Source", "Name", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for i, e := range entries {
		fmt.Fprintf(w, "%-4d  %-8s  %-10s  %-24s  %s\n",
			i+1, e.Kind, truncate(e.Source, 10), truncate(e.Name, 24), truncate(e.Title, 48))
	}
	fmt.Fprintf(w, "\n%d results\n", len(entries))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to export.yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		_, store, err := openCatalog()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.ExportYAML(context.Background()); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", store.ExportPath())
		return nil
	},
}

// --- shared helpers ---

func openCatalog() (types.Config, *catalog.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return types.Config{}, nil, err
	}
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return types.Config{}, nil, err
	}
	return cfg, store, nil
}

func init() {
	catalogCmd.PersistentFlags().String("dir", "", "catalog directory (default output/catalog)")
	bindPersistentFlag(catalogCmd, "catalog.dir", "dir")

	catalogSearchCmd.Flags().String("source", "", "filter by record source: PDF, YouTube or \"Audio File\"")
	catalogSearchCmd.Flags().String("kind", "", "filter by document kind: record or metadata")
	catalogSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	catalogCmd.AddCommand(catalogIndexCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
