// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-ingest/internal/metadata"
	"github.com/pdiddy/research-ingest/pkg/types"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata (--folder <dir> | --file <path.md>)",
	Short: "Extract bibliographic metadata from Markdown with a hosted model",
	Long: `Metadata sends each Markdown file to a hosted language model that is
instructed to call a single extract_metadata function. The function
arguments are written as <name>_metadata.json in the output folder. When
the model makes no call the file contains null.

The OpenAI key is read from OPENAI_API_KEY (environment, .env or
.secrets/openai-api-key); --provider gemini uses GEMINI_API_KEY instead.`,
	Args: cobra.NoArgs,
	RunE: runMetadata,
}

func init() {
	metadataCmd.Flags().String("folder", "", "folder of .md files")
	metadataCmd.Flags().String("file", "", "a single .md file")
	metadataCmd.Flags().String("output", "", "output folder (default output/metadata)")
	metadataCmd.Flags().String("provider", "", "hosted model API: openai or gemini (default openai)")
	metadataCmd.Flags().String("model", "", "model identifier (default gpt-4o-mini)")
	metadataCmd.Flags().Bool("force", false, "re-extract files whose output already exists")
	metadataCmd.Flags().Bool("strict", false, "exit non-zero when any file fails")

	metadataCmd.MarkFlagsMutuallyExclusive("folder", "file")
	metadataCmd.MarkFlagsOneRequired("folder", "file")

	bindFlag(metadataCmd, "metadata.output_dir", "output")
	bindFlag(metadataCmd, "metadata.provider", "provider")
	bindFlag(metadataCmd, "metadata.model", "model")

	rootCmd.AddCommand(metadataCmd)
}

func runMetadata(cmd *cobra.Command, args []string) error {
	folder, _ := cmd.Flags().GetString("folder")
	file, _ := cmd.Flags().GetString("file")
	force, _ := cmd.Flags().GetBool("force")

	if file != "" {
		if err := metadata.ValidateMarkdownFile(file); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Please provide a valid Markdown file.")
			return err
		}
	}
	cmd.SilenceUsage = true
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	aiCfg := cfg.Metadata.AIConfig
	aiCfg.APIKey = apiKey(aiCfg)

	backend, err := metadata.NewBackend(ctx, aiCfg)
	if err != nil {
		return err
	}

	var result types.BatchResult
	if file != "" {
		result, err = metadata.ExtractSingle(ctx, backend, file, cfg.Metadata.OutputDir, force, cmd.OutOrStdout())
	} else {
		result, err = metadata.ExtractFolder(ctx, backend, folder, cfg.Metadata.OutputDir, force, cmd.OutOrStdout())
	}
	if errors.Is(err, metadata.ErrInvalidMarkdown) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Please provide a valid Markdown file.")
	}
	if err != nil {
		return err
	}

	strict, _ := cmd.Flags().GetBool("strict")
	if strict && result.HasFailures() {
		return fmt.Errorf("%d file(s) failed metadata extraction", result.Failed)
	}
	return nil
}
