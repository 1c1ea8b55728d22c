package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"autovideo/internal/config"
)

// skipConfigAnnotation marks commands that load (or write) configuration
// themselves.
const skipConfigAnnotation = "skipConfigLoad"

type commandContext struct {
	configFlag string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

// preRun loads configuration once for every command that needs it.
func (c *commandContext) preRun(cmd *cobra.Command, _ []string) error {
	if shouldSkipConfig(cmd) {
		return nil
	}
	_, err := c.ensureConfig()
	return err
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.flagPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) flagPath() string {
	return strings.TrimSpace(c.configFlag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
