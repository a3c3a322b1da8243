// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-ingest/internal/secrets"
	"github.com/pdiddy/research-ingest/pkg/types"
)

// setDefaults registers every configuration key so that environment
// variables and config files can override it.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("conversion.backend", string(d.Conversion.Backend))
	v.SetDefault("conversion.output_dir", d.Conversion.OutputDir)
	v.SetDefault("conversion.nougat_bin", d.Conversion.NougatBin)
	v.SetDefault("conversion.container", d.Conversion.Container)
	v.SetDefault("conversion.image", d.Conversion.Image)

	v.SetDefault("metadata.provider", string(d.Metadata.Provider))
	v.SetDefault("metadata.model", d.Metadata.Model)
	v.SetDefault("metadata.api_key", "")
	v.SetDefault("metadata.base_url", "")
	v.SetDefault("metadata.timeout", d.Metadata.Timeout)
	v.SetDefault("metadata.output_dir", d.Metadata.OutputDir)

	v.SetDefault("transcription.timeout", d.Transcription.Timeout)
	v.SetDefault("transcription.user_agent", d.Transcription.UserAgent)
	v.SetDefault("transcription.output_dir", d.Transcription.OutputDir)
	v.SetDefault("transcription.ytdlp_bin", d.Transcription.YTDLPBin)
	v.SetDefault("transcription.audio_format", d.Transcription.AudioFormat)
	v.SetDefault("transcription.audio_quality", d.Transcription.AudioQuality)
	v.SetDefault("transcription.whisper_bin", d.Transcription.WhisperBin)
	v.SetDefault("transcription.whisper_model", d.Transcription.WhisperModel)
	v.SetDefault("transcription.device", "")

	v.SetDefault("catalog.dir", d.Catalog.Dir)
	v.SetDefault("catalog.max_results", d.Catalog.MaxResults)
}

// loadConfig decodes the merged defaults, config file, environment and
// bound flags into a Config.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// bindFlag ties a command flag to a configuration key. Only flags set on
// the command line override the config file and environment.
func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag, err))
	}
}

// apiKey returns the configured key, falling back to the provider's
// secret.
func apiKey(cfg types.AIConfig) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	if loadedSecrets == nil {
		return ""
	}
	switch cfg.Provider {
	case types.ProviderGemini:
		return loadedSecrets.Get(secrets.GeminiKey)
	default:
		return loadedSecrets.Get(secrets.OpenAIKey)
	}
}

func bindPersistentFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag, err))
	}
}
