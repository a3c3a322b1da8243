// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-ingest/internal/command"
	"github.com/pdiddy/research-ingest/internal/container"
	"github.com/pdiddy/research-ingest/internal/convert"
	"github.com/pdiddy/research-ingest/pkg/types"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf <input-folder>",
	Short: "Convert a folder of PDFs to Markdown and JSON records",
	Long: `PDF converts every *.pdf in the input folder with nougat, keeping the
<name>.mmd Markdown and writing a <name>.json record next to it in the
output folder. PDFs whose .mmd already exists are skipped.

Use --container to run nougat from a docker or podman image, or
--backend native to read the PDF text layer without nougat.

Per-file failures are reported but do not change the exit status unless
--strict is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runPDF,
}

func init() {
	pdfCmd.Flags().String("backend", "", "conversion backend: nougat or native (default nougat)")
	pdfCmd.Flags().String("output", "", "output folder (default output/publications)")
	pdfCmd.Flags().Bool("container", false, "run nougat from a container image")
	pdfCmd.Flags().String("image", "", "container image providing nougat (default nougat:latest)")
	pdfCmd.Flags().Bool("strict", false, "exit non-zero when any file fails")

	bindFlag(pdfCmd, "conversion.backend", "backend")
	bindFlag(pdfCmd, "conversion.output_dir", "output")
	bindFlag(pdfCmd, "conversion.container", "container")
	bindFlag(pdfCmd, "conversion.image", "image")

	rootCmd.AddCommand(pdfCmd)
}

func runPDF(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	converter, err := newConverter(ctx, cfg.Conversion)
	if err != nil {
		return err
	}

	result, err := convert.ConvertFolder(ctx, converter, args[0], cfg.Conversion.OutputDir, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	strict, _ := cmd.Flags().GetBool("strict")
	if strict && result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}

func newConverter(ctx context.Context, cfg types.ConversionConfig) (convert.Converter, error) {
	switch cfg.Backend {
	case types.BackendNative:
		return convert.NativeConverter{}, nil
	case types.BackendNougat, "":
	default:
		return nil, fmt.Errorf("unknown conversion backend %q (want nougat or native)", cfg.Backend)
	}

	runner := command.OSRunner{}
	if !cfg.Container {
		return convert.NewNougatConverter(runner, cfg.NougatBin), nil
	}

	rt, err := container.DetectRuntime(ctx, runner)
	if err != nil {
		return nil, err
	}
	return convert.NewContainerNougatConverter(ctx, rt, cfg.Image)
}
