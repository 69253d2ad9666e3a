package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/speakerlens/quote-radar/internal/chunk"
)

// Pipeline validation errors.
var (
	ErrNoDumps              = errors.New("at least one dump source is required")
	ErrNoEnabledDumps       = errors.New("at least one dump source must be enabled")
	ErrDumpMissingFile      = errors.New("file is required")
	ErrDumpMissingYear      = errors.New("year is required")
	ErrInvalidChunkSize     = errors.New("chunk_size must be at least 1")
	ErrMissingOutputDir     = errors.New("output.dir is required")
	ErrInvalidCompression   = errors.New("output.compression_level must be between 1 and 9")
	ErrInvalidPipelineLevel = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Pipeline is the chunker's file-based configuration.
type Pipeline struct {
	Output    OutputSpec   `yaml:"output"`
	Sources   []DumpSource `yaml:"sources"`
	ChunkSize int          `yaml:"chunk_size"`
	Logging   LoggingSpec  `yaml:"logging"`
}

// OutputSpec defines where chunk files land and how hard to compress them.
type OutputSpec struct {
	Dir              string `yaml:"dir"`
	CompressionLevel int    `yaml:"compression_level"`
}

// DumpSource describes one yearly Quotebank dump.
type DumpSource struct {
	Year    int    `yaml:"year"`
	File    string `yaml:"file"`
	Prefix  string `yaml:"prefix"`
	Enabled bool   `yaml:"enabled"`
}

// LoggingSpec defines chunker logging behavior.
type LoggingSpec struct {
	Level string `yaml:"level"`
}

// ChunkPrefix returns the configured prefix, defaulting to the standard
// quotes-<year> naming the extractor discovers.
func (s *DumpSource) ChunkPrefix() string {
	if s.Prefix != "" {
		return s.Prefix
	}
	return chunk.YearPrefix(s.Year)
}

// LoadPipeline loads and validates the chunker configuration from YAML.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}

	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse pipeline config: %w", err)
	}

	if p.Output.CompressionLevel == 0 {
		p.Output.CompressionLevel = chunk.DefaultCompressionLevel
	}
	if p.Logging.Level == "" {
		p.Logging.Level = "info"
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config invalid: %w", err)
	}

	return &p, nil
}

// Validate checks the pipeline configuration.
func (p *Pipeline) Validate() error {
	if len(p.Sources) == 0 {
		return ErrNoDumps
	}

	enabled := 0
	for i, src := range p.Sources {
		if src.File == "" {
			return fmt.Errorf("%w: sources[%d]", ErrDumpMissingFile, i)
		}
		if src.Year == 0 {
			return fmt.Errorf("%w: sources[%d]", ErrDumpMissingYear, i)
		}
		if src.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return ErrNoEnabledDumps
	}

	if p.ChunkSize < 1 {
		return ErrInvalidChunkSize
	}
	if p.Output.Dir == "" {
		return ErrMissingOutputDir
	}
	if p.Output.CompressionLevel < 1 || p.Output.CompressionLevel > 9 {
		return ErrInvalidCompression
	}

	switch p.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidPipelineLevel
	}

	return nil
}

// EnabledSources returns only the sources the chunker should run.
func (p *Pipeline) EnabledSources() []DumpSource {
	var out []DumpSource
	for _, src := range p.Sources {
		if src.Enabled {
			out = append(out, src)
		}
	}
	return out
}
