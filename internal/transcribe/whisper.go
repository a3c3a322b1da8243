// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/research-ingest/internal/command"
	"github.com/pdiddy/research-ingest/internal/logger"
	"github.com/pdiddy/research-ingest/internal/pipeline"
	"github.com/pdiddy/research-ingest/pkg/types"
)

const (
	DeviceCUDA = "cuda"
	DeviceCPU  = "cpu"
)

// Recognizer turns an audio file into text and timed segments.
type Recognizer interface {
	Transcribe(ctx context.Context, audioPath string) (string, []types.Segment, error)
}

// Whisper runs the whisper command-line tool with JSON output.
type Whisper struct {
	runner command.Runner
	bin    string
	model  string
	device string
}

// NewWhisper returns a recognizer that runs bin with the given model size
// on device.
func NewWhisper(runner command.Runner, bin, model, device string) *Whisper {
	return &Whisper{runner: runner, bin: bin, model: model, device: device}
}

// DetectDevice returns "cuda" when nvidia-smi is on PATH and runs cleanly,
// otherwise "cpu".
func DetectDevice(ctx context.Context, runner command.Runner) string {
	if command.Available(ctx, runner, "nvidia-smi") {
		return DeviceCUDA
	}
	return DeviceCPU
}

type whisperOutput struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe implements Recognizer. Whisper writes <base>.json into a
// scratch directory that is removed before returning.
func (w *Whisper) Transcribe(ctx context.Context, audioPath string) (string, []types.Segment, error) {
	tmp, err := os.MkdirTemp("", "research-ingest-whisper-")
	if err != nil {
		return "", nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	logger.Info("transcribing %s with whisper %s on %s", filepath.Base(audioPath), w.model, w.device)

	args := []string{
		audioPath,
		"--model", w.model,
		"--device", w.device,
		"--output_format", "json",
		"--output_dir", tmp,
	}
	if _, err := w.runner.Run(ctx, w.bin, args...); err != nil {
		return "", nil, fmt.Errorf("transcribing %s: %w", audioPath, err)
	}

	data, err := os.ReadFile(pipeline.OutputPath(tmp, audioPath, ".json"))
	if err != nil {
		return "", nil, fmt.Errorf("reading whisper output: %w", err)
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return "", nil, fmt.Errorf("decoding whisper output: %w", err)
	}

	segments := make([]types.Segment, len(out.Segments))
	for i, s := range out.Segments {
		segments[i] = types.Segment{Text: s.Text, Start: s.Start, End: s.End}
	}
	return out.Text, segments, nil
}
