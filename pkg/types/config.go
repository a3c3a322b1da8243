package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ConversionBackend identifies the PDF conversion tool.
type ConversionBackend string

const (
	BackendNougat ConversionBackend = "nougat"
	BackendNative ConversionBackend = "native"
)

// ConversionConfig holds settings for the PDF pipeline.
type ConversionConfig struct {
	// Backend selects the converter: nougat (external OCR) or native (pure Go text layer).
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// OutputDir receives the .mmd intermediates and the .json records.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// NougatBin is the nougat executable name or path.
	NougatBin string `json:"nougat_bin" yaml:"nougat_bin" mapstructure:"nougat_bin"`

	// Container runs nougat from Image through docker or podman instead of
	// the local binary.
	Container bool `json:"container" yaml:"container" mapstructure:"container"`

	// Image is the container image that provides the nougat entrypoint.
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// AIProvider identifies the hosted language-model API.
type AIProvider string

const (
	ProviderOpenAI AIProvider = "openai"
	ProviderGemini AIProvider = "gemini"
)

// AIConfig holds shared settings for stages that call a hosted language model.
type AIConfig struct {
	// Provider selects the hosted API.
	Provider AIProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the API endpoint, for compatible gateways.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Timeout bounds a single API call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// MetadataConfig holds settings for the metadata pipeline.
type MetadataConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// OutputDir receives the <name>_metadata.json files.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// TranscriptionConfig holds settings for the podcast pipeline.
type TranscriptionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// OutputDir receives the transcript records and the temporary audio file.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// YTDLPBin is the yt-dlp executable name or path.
	YTDLPBin string `json:"ytdlp_bin" yaml:"ytdlp_bin" mapstructure:"ytdlp_bin"`

	// AudioFormat and AudioQuality configure the yt-dlp audio post-processor.
	AudioFormat  string `json:"audio_format" yaml:"audio_format" mapstructure:"audio_format"`
	AudioQuality string `json:"audio_quality" yaml:"audio_quality" mapstructure:"audio_quality"`

	// WhisperBin is the whisper executable name or path.
	WhisperBin string `json:"whisper_bin" yaml:"whisper_bin" mapstructure:"whisper_bin"`

	// WhisperModel is the speech-recognition model size tier.
	WhisperModel string `json:"whisper_model" yaml:"whisper_model" mapstructure:"whisper_model"`

	// Device forces "cuda" or "cpu"; empty means detect.
	Device string `json:"device,omitempty" yaml:"device,omitempty" mapstructure:"device"`
}

// CatalogConfig holds settings for the record catalog.
type CatalogConfig struct {
	// Dir holds catalog.db and export.yaml.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default search limit (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// Config groups all pipeline configurations. It is built once at start-up
// and passed to each pipeline explicitly.
type Config struct {
	Conversion    ConversionConfig    `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Metadata      MetadataConfig      `json:"metadata" yaml:"metadata" mapstructure:"metadata"`
	Transcription TranscriptionConfig `json:"transcription" yaml:"transcription" mapstructure:"transcription"`
	Catalog       CatalogConfig       `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() Config {
	return Config{
		Conversion: ConversionConfig{
			Backend:   BackendNougat,
			OutputDir: "output/publications",
			NougatBin: "nougat",
			Image:     "nougat:latest",
		},
		Metadata: MetadataConfig{
			AIConfig: AIConfig{
				Provider: ProviderOpenAI,
				Model:    "gpt-4o-mini",
				Timeout:  120 * time.Second,
			},
			OutputDir: "output/metadata",
		},
		Transcription: TranscriptionConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "research-ingest/0.1",
			},
			OutputDir:    "output/podcasts",
			YTDLPBin:     "yt-dlp",
			AudioFormat:  "mp3",
			AudioQuality: "192K",
			WhisperBin:   "whisper",
			WhisperModel: "small",
		},
		Catalog: CatalogConfig{
			Dir:        "output/catalog",
			MaxResults: 20,
		},
	}
}
