// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-ingest/internal/command"
	"github.com/pdiddy/research-ingest/internal/transcribe"
)

var podcastCmd = &cobra.Command{
	Use:   "podcast <audio-file-or-youtube-url>",
	Short: "Transcribe an audio file or a YouTube video",
	Long: `Podcast writes a timed transcript record to the output folder.

For a YouTube URL the published captions are used when the video has any;
otherwise the audio is downloaded with yt-dlp, transcribed with whisper and
the downloaded file is removed. The record is named <video-id>.json.

A local audio file is transcribed with whisper directly and the record is
named after the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runPodcast,
}

func init() {
	podcastCmd.Flags().String("output", "", "output folder (default output/podcasts)")
	podcastCmd.Flags().String("model", "", "whisper model size (default small)")
	podcastCmd.Flags().String("device", "", "whisper device: cuda or cpu (default: detect)")
	podcastCmd.Flags().Bool("force", false, "re-transcribe when the record already exists")

	bindFlag(podcastCmd, "transcription.output_dir", "output")
	bindFlag(podcastCmd, "transcription.whisper_model", "model")
	bindFlag(podcastCmd, "transcription.device", "device")

	rootCmd.AddCommand(podcastCmd)
}

func runPodcast(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tc := cfg.Transcription
	force, _ := cmd.Flags().GetBool("force")

	runner := command.OSRunner{}
	device := tc.Device
	if device == "" {
		device = transcribe.DetectDevice(ctx, runner)
	}

	svc := &transcribe.Service{
		Captions:   transcribe.NewCaptionsClient(tc.HTTPConfig, ""),
		Downloader: transcribe.NewYTDLP(runner, tc.YTDLPBin, tc.AudioFormat, tc.AudioQuality),
		Recognizer: transcribe.NewWhisper(runner, tc.WhisperBin, tc.WhisperModel, device),
		OutputDir:  tc.OutputDir,
		Force:      force,
	}

	result := svc.Run(ctx, args[0], os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("transcription of %s failed", args[0])
	}
	return nil
}
