// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-ingest CLI. Each ingest
// pipeline is a subcommand: pdf, metadata and podcast write JSON documents to
// their output folders, and catalog indexes those documents for search.
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-ingest/internal/logger"
	"github.com/pdiddy/research-ingest/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	secretsDir = ".secrets/"
	dotEnvFile = ".env"
)

// loadedSecrets resolves API keys; it is populated before any subcommand runs.
var loadedSecrets *secrets.Store

// rootCmd is the base command for the research-ingest CLI.
var rootCmd = &cobra.Command{
	Use:   "research-ingest",
	Short: "Turn papers, Markdown and podcasts into structured JSON",
	Long: `research-ingest runs documents and media through external tools and
writes one JSON document per input item.

  pdf       convert a folder of PDFs with nougat into records
  metadata  extract bibliographic metadata from Markdown with a hosted model
  podcast   transcribe an audio file or YouTube video
  catalog   index, search and export everything produced so far

Items whose output already exists are skipped, so every command can be
re-run safely after a partial failure.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger.SetVerbose(verbose)

		s, err := secrets.Open(secretsDir, dotEnvFile)
		if err != nil {
			return err
		}
		loadedSecrets = s

		if keys := s.Keys(); len(keys) > 0 {
			logger.Info("loaded secrets: %v", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-ingest.yaml or ~/.config/research-ingest/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print progress and external commands to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-ingest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-ingest"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("RESEARCH_INGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Info("using config file: %s", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
