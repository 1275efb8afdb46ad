package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vk/zregistry/internal/hcl"
	"github.com/vk/zregistry/internal/plan"
	"github.com/vk/zregistry/internal/registry"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Root    string // discovery root
	Pattern string // registration script glob

	Kind        string // "" selects every kind
	NamePattern string
	Tests       []string
	Output      string

	LogFormat string
	LogLevel  string

	PublishURL       string
	PublishNamespace string
	PublishEvent     string
	PublishAckEvent  string
	PublishTimeout   time.Duration
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Root == "" {
		return nil, errors.New("Root is a required configuration field and cannot be empty")
	}
	if cfg.Pattern == "" {
		cfg.Pattern = hcl.DefaultPattern
	}
	if cfg.Output == "" {
		cfg.Output = plan.FormatText
	}
	if !slices.Contains(plan.Formats, cfg.Output) {
		return nil, fmt.Errorf("invalid output format %q: must be one of %s", cfg.Output, strings.Join(plan.Formats, ", "))
	}
	if cfg.Kind != "" {
		if _, err := registry.ParseKind(cfg.Kind); err != nil {
			return nil, err
		}
	}
	if err := (plan.Filter{NamePattern: cfg.NamePattern}).Validate(); err != nil {
		return nil, err
	}
	if cfg.PublishURL != "" && cfg.PublishEvent == "" {
		cfg.PublishEvent = "plan"
	}
	return &cfg, nil
}

// filter converts the selection settings into a plan.Filter. NewConfig has
// already validated them.
func (c *Config) filter() plan.Filter {
	f := plan.Filter{NamePattern: c.NamePattern, Names: c.Tests}
	if c.Kind != "" {
		f.Kind, _ = registry.ParseKind(c.Kind)
	}
	return f
}
