// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Source tags the provenance of a ConversionRecord.
type Source string

const (
	SourcePDF       Source = "PDF"
	SourceYouTube   Source = "YouTube"
	SourceAudioFile Source = "Audio File"
)

// Segment is one timed span of a transcript. Start and End are seconds from
// the beginning of the media. Duration is set for caption entries, which
// carry it natively, including a zero duration; recognizer segments leave
// it nil.
type Segment struct {
	Text     string  `json:"text" yaml:"text"`
	Start    float64 `json:"start" yaml:"start"`
	End      float64 `json:"end" yaml:"end"`
	Duration *float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// ConversionRecord is the uniform JSON document every pipeline produces for
// one input item. Records are written once and never updated.
type ConversionRecord struct {
	// Title is the display name of the source item (file name or URL).
	Title string `json:"title" yaml:"title"`

	// Source tags where the content came from.
	Source Source `json:"source" yaml:"source"`

	// Content is the converted or transcribed text.
	Content string `json:"content" yaml:"content"`

	// Segments holds the timed transcript for audio and video sources.
	Segments []Segment `json:"segments,omitempty" yaml:"segments,omitempty"`
}
