package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/simonhull/mediameta"
	"github.com/simonhull/mediameta/internal/config"
	"github.com/simonhull/mediameta/internal/logging"
	"github.com/simonhull/mediameta/internal/store"
)

type commandContext struct {
	configFlag *string
	levelFlag  *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, levelFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		levelFlag:  levelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// logger builds the command logger from the configured format and level,
// writing to w.
func (c *commandContext) logger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if c.levelFlag != nil && strings.TrimSpace(*c.levelFlag) != "" {
		level = strings.TrimSpace(*c.levelFlag)
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: w,
	})
}

// analysisOptions maps the [analysis] section onto library options.
func (c *commandContext) analysisOptions(cmd *cobra.Command) ([]mediameta.Option, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	a := cfg.Analysis
	opts := []mediameta.Option{
		mediameta.WithLogger(logger),
		mediameta.WithID3v1(a.ParseID3v1),
		mediameta.WithID3v2(a.ParseID3v2),
		mediameta.WithID3v1Encoding(a.ID3v1Encoding),
		mediameta.WithWorkers(a.Workers),
	}
	if a.Strict {
		opts = append(opts, mediameta.WithStrictParsing())
	}
	if a.IgnoreWarnings {
		opts = append(opts, mediameta.WithIgnoreWarnings())
	}
	if a.PictureData {
		opts = append(opts, mediameta.WithPictureData(a.MaxPictureBytes))
	}
	return opts, nil
}

func (c *commandContext) withStore(ctx context.Context, fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(st)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
