package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding/htmlindex"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAnalysis() error {
	if _, err := htmlindex.Get(c.Analysis.ID3v1Encoding); err != nil {
		return fmt.Errorf("analysis.id3v1_encoding %q is not a known encoding", c.Analysis.ID3v1Encoding)
	}
	if c.Analysis.MaxPictureBytes < 0 {
		return errors.New("analysis.max_picture_bytes must not be negative")
	}
	if c.Analysis.Workers < 0 {
		return errors.New("analysis.workers must not be negative")
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.Path == "" {
		return errors.New("store.path must be set")
	}
	if c.Store.HistoryLimit < 0 {
		return errors.New("store.history_limit must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
