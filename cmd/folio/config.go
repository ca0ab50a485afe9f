package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/folio/dbopen"
	"github.com/hazyhaar/folio/docpipe"
)

// Config holds the folio server configuration.
type Config struct {
	Listen string         `yaml:"listen"`
	DBPath string         `yaml:"db_path"`
	DB     DBConfig       `yaml:"db"`
	Import docpipe.Config `yaml:"import"`
}

// DBConfig tunes the SQLite connection of the article store.
type DBConfig struct {
	BusyTimeout time.Duration `yaml:"busy_timeout"`
	CacheSize   int           `yaml:"cache_size"` // pages, or KiB when negative
	Synchronous string        `yaml:"synchronous"`
}

// options returns the dbopen options for path-based opening.
func (c DBConfig) options() []dbopen.Option {
	opts := []dbopen.Option{
		dbopen.WithBusyTimeout(int(c.BusyTimeout / time.Millisecond)),
		dbopen.WithSynchronous(c.Synchronous),
	}
	if c.CacheSize != 0 {
		opts = append(opts, dbopen.WithCacheSize(c.CacheSize))
	}
	return opts
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen: ":8090",
		DBPath: "data/folio.db",
		DB: DBConfig{
			BusyTimeout: 10 * time.Second,
			Synchronous: "NORMAL",
		},
		Import: docpipe.Config{
			MaxFileSize:         docpipe.DefaultMaxFileSize,
			MaxDecompressedSize: docpipe.DefaultMaxDecompressedSize,
			Timeout:             docpipe.DefaultTimeout,
			PDF: docpipe.PDFConfig{
				ParagraphGap: docpipe.DefaultParagraphGap,
				LineRounding: docpipe.DefaultLineRounding,
			},
		},
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.DB.BusyTimeout < 0 {
		return fmt.Errorf("db.busy_timeout must be >= 0")
	}
	switch strings.ToUpper(c.DB.Synchronous) {
	case "OFF", "NORMAL", "FULL", "EXTRA":
	default:
		return fmt.Errorf("db.synchronous %q: want OFF, NORMAL, FULL or EXTRA", c.DB.Synchronous)
	}
	if c.Import.MaxFileSize <= 0 {
		return fmt.Errorf("import.max_file_size must be > 0")
	}
	if c.Import.Timeout < 0 {
		return fmt.Errorf("import.timeout must be >= 0")
	}
	if c.Import.PDF.ParagraphGap < 0 || c.Import.PDF.LineRounding < 0 || c.Import.PDF.GapFontRatio < 0 {
		return fmt.Errorf("import.pdf thresholds must be >= 0")
	}
	if c.Import.FileRoot != "" {
		info, err := os.Stat(c.Import.FileRoot)
		if err != nil {
			return fmt.Errorf("import.file_root: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("import.file_root %s is not a directory", c.Import.FileRoot)
		}
	}
	return nil
}
