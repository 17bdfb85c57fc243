package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateComposition(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateComposition() error {
	if c.Composition.FrameRate < 1 || c.Composition.FrameRate > 120 {
		return fmt.Errorf("composition.frame_rate must be between 1 and 120, got %d", c.Composition.FrameRate)
	}
	if c.Composition.DefaultSceneSeconds <= 0 {
		return errors.New("composition.default_scene_seconds must be positive")
	}
	if c.Composition.ProgressTickMS < 10 || c.Composition.ProgressTickMS > 1000 {
		return fmt.Errorf("composition.progress_tick_ms must be between 10 and 1000, got %d", c.Composition.ProgressTickMS)
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	if c.Assets.RequestTimeout <= 0 {
		return errors.New("assets.request_timeout must be positive")
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
