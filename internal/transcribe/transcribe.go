// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcribe produces timed transcripts for local audio files and
// YouTube videos. Published captions are used when available; otherwise the
// audio is downloaded and run through a speech recognizer.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/research-ingest/internal/logger"
	"github.com/pdiddy/research-ingest/internal/pipeline"
	"github.com/pdiddy/research-ingest/pkg/types"
)

// Service wires the caption source, downloader and recognizer together.
type Service struct {
	Captions   CaptionSource
	Downloader Downloader
	Recognizer Recognizer

	// OutputDir receives the records and the temporary audio download.
	OutputDir string

	// Force re-processes inputs whose record already exists.
	Force bool
}

// OutputPath returns the record path for input: <videoID>.json for URLs and
// <base>.json for local files.
func (s *Service) OutputPath(input string) (string, error) {
	if IsURL(input) {
		id, err := ParseVideoID(input)
		if err != nil {
			return "", err
		}
		return filepath.Join(s.OutputDir, id+".json"), nil
	}
	return pipeline.OutputPath(s.OutputDir, input, ".json"), nil
}

// Process transcribes one input and writes its record.
func (s *Service) Process(ctx context.Context, input string) types.ItemResult {
	outPath, err := s.OutputPath(input)
	if err != nil {
		return types.Failed(input, err)
	}

	if !s.Force {
		done, err := pipeline.Exists(outPath)
		if err != nil {
			return types.Failed(input, err)
		}
		if done {
			return types.Skipped(input, outPath)
		}
	}

	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return types.Failed(input, fmt.Errorf("creating output directory: %w", err))
	}

	var rec *types.ConversionRecord
	if IsURL(input) {
		rec, err = s.processVideo(ctx, input)
	} else {
		rec, err = s.processFile(ctx, input)
	}
	if err != nil {
		return types.Failed(input, err)
	}

	if err := pipeline.WriteJSON(outPath, rec); err != nil {
		return types.Failed(input, err)
	}
	return types.Converted(input, outPath)
}

// Run processes input and reports the outcome to w.
func (s *Service) Run(ctx context.Context, input string, w io.Writer) types.BatchResult {
	return pipeline.Run(ctx, pipeline.Single(input), s.Process, w)
}

func (s *Service) processFile(ctx context.Context, path string) (*types.ConversionRecord, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading audio file: %w", err)
	}
	text, segments, err := s.Recognizer.Transcribe(ctx, path)
	if err != nil {
		return nil, err
	}
	return &types.ConversionRecord{
		Title:    filepath.Base(path),
		Source:   types.SourceAudioFile,
		Content:  text,
		Segments: segments,
	}, nil
}

func (s *Service) processVideo(ctx context.Context, videoURL string) (*types.ConversionRecord, error) {
	id, err := ParseVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	rec := &types.ConversionRecord{Title: videoURL, Source: types.SourceYouTube}

	if s.Captions != nil {
		segments, err := s.Captions.Fetch(ctx, id)
		switch {
		case err == nil && len(segments) > 0:
			logger.Info("using published captions for %s", id)
			rec.Content = joinSegments(segments)
			rec.Segments = segments
			return rec, nil
		case err != nil && !errors.Is(err, ErrNoCaptions):
			logger.Warn("fetching captions for %s: %v", id, err)
		default:
			logger.Info("no captions for %s, falling back to speech recognition", id)
		}
	}

	text, segments, err := s.transcribeDownload(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	rec.Content = text
	rec.Segments = segments
	return rec, nil
}

// transcribeDownload downloads the audio of videoURL into OutputDir and
// transcribes it. Every temp_audio.* file is removed afterwards, whether the
// download or the recognition failed or not.
func (s *Service) transcribeDownload(ctx context.Context, videoURL string) (string, []types.Segment, error) {
	defer removeTempAudio(s.OutputDir)

	audio, err := s.Downloader.Download(ctx, videoURL, s.OutputDir)
	if err != nil {
		return "", nil, err
	}
	return s.Recognizer.Transcribe(ctx, audio)
}
