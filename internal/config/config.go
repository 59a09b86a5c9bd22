package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPath        = "lyricsync.yaml"
	DefaultSessionPath = ".lyricsync/session.json"

	DefaultPollIntervalMS = 80
	MinPollIntervalMS     = 20
	MaxPollIntervalMS     = 1000

	DefaultProvider    = "gemini"
	DefaultConcurrency = 3
	DefaultBatchSize   = 50

	DefaultPreviewWidth = 60
)

type Config struct {
	SessionPath    string `yaml:"session_path"`
	DefaultVideoID string `yaml:"default_video_id"`
	PollIntervalMS int    `yaml:"poll_interval_ms"`

	Translate TranslateConfig `yaml:"translate"`
	Preview   PreviewConfig   `yaml:"preview"`

	path string
}

type TranslateConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Concurrency int    `yaml:"concurrency"`
	BatchSize   int    `yaml:"batch_size"`
}

type PreviewConfig struct {
	Width int `yaml:"width"`
}

func Default() *Config {
	return &Config{
		SessionPath:    DefaultSessionPath,
		PollIntervalMS: DefaultPollIntervalMS,
		Translate: TranslateConfig{
			Provider:    DefaultProvider,
			Concurrency: DefaultConcurrency,
			BatchSize:   DefaultBatchSize,
		},
		Preview: PreviewConfig{Width: DefaultPreviewWidth},
	}
}

// Load reads the YAML config at path over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.normalize()

	return cfg, nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) normalize() {
	c.SessionPath = strings.TrimSpace(c.SessionPath)
	if c.SessionPath == "" {
		c.SessionPath = DefaultSessionPath
	}
	c.SessionPath = filepath.Clean(c.SessionPath)
	c.DefaultVideoID = strings.TrimSpace(c.DefaultVideoID)

	switch {
	case c.PollIntervalMS <= 0:
		c.PollIntervalMS = DefaultPollIntervalMS
	case c.PollIntervalMS < MinPollIntervalMS:
		c.PollIntervalMS = MinPollIntervalMS
	case c.PollIntervalMS > MaxPollIntervalMS:
		c.PollIntervalMS = MaxPollIntervalMS
	}

	c.Translate.Provider = strings.ToLower(strings.TrimSpace(c.Translate.Provider))
	if c.Translate.Provider == "" {
		c.Translate.Provider = DefaultProvider
	}
	c.Translate.Model = strings.TrimSpace(c.Translate.Model)
	if c.Translate.Concurrency <= 0 {
		c.Translate.Concurrency = DefaultConcurrency
	}
	if c.Translate.BatchSize <= 0 {
		c.Translate.BatchSize = DefaultBatchSize
	}

	if c.Preview.Width <= 0 {
		c.Preview.Width = DefaultPreviewWidth
	}
}
