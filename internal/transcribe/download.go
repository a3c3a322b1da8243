// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/research-ingest/internal/command"
	"github.com/pdiddy/research-ingest/internal/logger"
	"github.com/pdiddy/research-ingest/internal/pipeline"
)

// tempAudioBase is the file name, without extension, of downloaded audio.
const tempAudioBase = "temp_audio"

// Downloader fetches the audio track of a remote video into dir and returns
// the path of the audio file.
type Downloader interface {
	Download(ctx context.Context, videoURL, dir string) (string, error)
}

// YTDLP downloads audio by invoking yt-dlp with an audio post-processor.
type YTDLP struct {
	runner  command.Runner
	bin     string
	format  string
	quality string
}

// NewYTDLP returns a downloader that runs bin and converts to format at
// quality (e.g. "mp3", "192K").
func NewYTDLP(runner command.Runner, bin, format, quality string) *YTDLP {
	return &YTDLP{runner: runner, bin: bin, format: format, quality: quality}
}

// Download implements Downloader.
func (y *YTDLP) Download(ctx context.Context, videoURL, dir string) (string, error) {
	args := []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", y.format,
		"--audio-quality", y.quality,
		"-o", filepath.Join(dir, tempAudioBase+".%(ext)s"),
		videoURL,
	}
	if _, err := y.runner.Run(ctx, y.bin, args...); err != nil {
		return "", fmt.Errorf("downloading audio: %w", err)
	}

	audio := filepath.Join(dir, tempAudioBase+"."+y.format)
	ok, err := pipeline.Exists(audio)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("downloading audio: %s did not produce %s", y.bin, audio)
	}
	return audio, nil
}

// removeTempAudio deletes every temp_audio.* file in dir, including
// intermediate and partial downloads left by a failed yt-dlp run.
func removeTempAudio(dir string) {
	matches, err := filepath.Glob(filepath.Join(dir, tempAudioBase+".*"))
	if err != nil {
		logger.Warn("listing temporary audio in %s: %v", dir, err)
		return
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("removing %s: %v", m, err)
		}
	}
}
