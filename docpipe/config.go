// CLAUDE:SUMMARY Configuration struct and defaults for the docpipe import pipeline (size caps, timeout, PDF layout thresholds).
package docpipe

import (
	"log/slog"
	"time"
)

// Default limits.
const (
	DefaultMaxFileSize         int64 = 10 * 1024 * 1024
	DefaultMaxDecompressedSize int64 = 64 * 1024 * 1024
	DefaultTimeout                   = 30 * time.Second
)

// Default PDF layout heuristics, in PDF user-space units.
const (
	DefaultParagraphGap = 20.0
	DefaultLineRounding = 1.0
)

// Config configures the document pipeline.
type Config struct {
	// MaxFileSize is the maximum input size in bytes (default: 10 MiB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// MaxDecompressedSize caps the XML part read out of a zip container
	// (default: 64 MiB).
	MaxDecompressedSize int64 `json:"max_decompressed_size" yaml:"max_decompressed_size"`

	// Timeout bounds one import (default: 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// FileRoot confines path-based imports requested over MCP. Empty
	// disables them; content-based imports always work.
	FileRoot string `json:"file_root" yaml:"file_root"`

	// PDF layout heuristics.
	PDF PDFConfig `json:"pdf" yaml:"pdf"`

	// OnStage, if set, is called on every import stage transition.
	OnStage func(Stage) `json:"-" yaml:"-"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// PDFConfig tunes paragraph reconstruction from positioned text.
type PDFConfig struct {
	// ParagraphGap is the vertical distance between two baselines above
	// which a new paragraph starts (default: 20).
	ParagraphGap float64 `json:"paragraph_gap" yaml:"paragraph_gap"`

	// LineRounding is the bucket size used to group fragments into lines.
	// 1 means integer rounding of the y coordinate (default: 1).
	LineRounding float64 `json:"line_rounding" yaml:"line_rounding"`

	// GapFontRatio, when > 0, raises the paragraph threshold to
	// GapFontRatio × font size for large fonts. 0 keeps the fixed gap.
	GapFontRatio float64 `json:"gap_font_ratio" yaml:"gap_font_ratio"`

	// Password opens encrypted PDFs.
	Password string `json:"-" yaml:"password"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.MaxDecompressedSize <= 0 {
		c.MaxDecompressedSize = DefaultMaxDecompressedSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.PDF.defaults()
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

func (c *PDFConfig) defaults() {
	if c.ParagraphGap <= 0 {
		c.ParagraphGap = DefaultParagraphGap
	}
	if c.LineRounding <= 0 {
		c.LineRounding = DefaultLineRounding
	}
	if c.GapFontRatio < 0 {
		c.GapFontRatio = 0
	}
}
