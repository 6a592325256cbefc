// Package config provides configuration management for ThreadStead using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with a THREADSTEAD_ prefix, and validation. It manages the
// compiler limits and allow-lists, template scan paths, preview server
// settings, and development options like hot reload.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/threadstead/threadstead/internal/errors"
	"github.com/threadstead/threadstead/internal/types"
)

type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Compiler    CompilerConfig    `yaml:"compiler" mapstructure:"compiler"`
	Templates   TemplatesConfig   `yaml:"templates" mapstructure:"templates"`
	Development DevelopmentConfig `yaml:"development" mapstructure:"development"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	Host           string   `yaml:"host" mapstructure:"host"`
	Open           bool     `yaml:"open" mapstructure:"open"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

type CompilerConfig struct {
	// MaxNodes bounds the parsed tree size of one template.
	MaxNodes int `yaml:"max_nodes" mapstructure:"max_nodes"`
	// MaxIslands bounds the interactive component count of one template.
	MaxIslands  int    `yaml:"max_islands" mapstructure:"max_islands"`
	DefaultMode string `yaml:"default_mode" mapstructure:"default_mode"`
	Optimize    bool   `yaml:"optimize" mapstructure:"optimize"`
	SEOMetadata bool   `yaml:"seo_metadata" mapstructure:"seo_metadata"`
	// The allow-lists below are configuration ported from the platform,
	// not derived rules. Override with care.
	DisallowedTags      []string `yaml:"disallowed_tags" mapstructure:"disallowed_tags"`
	ContainerTags       []string `yaml:"container_tags" mapstructure:"container_tags"`
	UniversalAttributes []string `yaml:"universal_attributes" mapstructure:"universal_attributes"`
}

type TemplatesConfig struct {
	ScanPaths       []string `yaml:"scan_paths" mapstructure:"scan_paths"`
	ExcludePatterns []string `yaml:"exclude_patterns" mapstructure:"exclude_patterns"`
}

type DevelopmentConfig struct {
	HotReload    bool `yaml:"hot_reload" mapstructure:"hot_reload"`
	ErrorOverlay bool `yaml:"error_overlay" mapstructure:"error_overlay"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultMaxNodes is the node-count ceiling applied when none is configured.
const DefaultMaxNodes = 200

// DefaultMaxIslands is the island-count ceiling applied when none is configured.
const DefaultMaxIslands = 50

// DefaultDisallowedTags returns tags rejected outright by the parser.
func DefaultDisallowedTags() []string {
	return []string{"script", "iframe", "object", "embed", "link", "meta", "base"}
}

// DefaultContainerTags returns the plain HTML tags templates may use
// directly without matching a registered component.
func DefaultContainerTags() []string {
	return []string{
		"div", "span", "section", "article", "header", "footer", "nav",
		"main", "aside", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "a", "img", "br", "hr", "strong", "em", "b", "i",
		"blockquote", "pre", "code", "table", "thead", "tbody", "tr", "th", "td",
	}
}

// DefaultUniversalAttributes returns attribute names passed through to any
// component without schema validation. Prefixes ending in "-" match any
// attribute with that prefix.
func DefaultUniversalAttributes() []string {
	return []string{"class", "style", "id", "title", "data-", "aria-"}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8930,
			Host:           "localhost",
			AllowedOrigins: []string{},
		},
		Compiler: CompilerConfig{
			MaxNodes:            DefaultMaxNodes,
			MaxIslands:          DefaultMaxIslands,
			DefaultMode:         string(types.ModeDefault),
			Optimize:            true,
			SEOMetadata:         false,
			DisallowedTags:      DefaultDisallowedTags(),
			ContainerTags:       DefaultContainerTags(),
			UniversalAttributes: DefaultUniversalAttributes(),
		},
		Templates: TemplatesConfig{
			ScanPaths:       []string{"./templates"},
			ExcludePatterns: []string{"*.bak", "*_draft*"},
		},
		Development: DevelopmentConfig{
			HotReload:    true,
			ErrorOverlay: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the effective configuration from viper's merged sources,
// filling unset values from the defaults.
func Load() (*Config, error) {
	config := Default()
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Viper leaves zero values for unset slices and ints; restore defaults.
	if config.Compiler.MaxNodes <= 0 {
		config.Compiler.MaxNodes = DefaultMaxNodes
	}
	if config.Compiler.MaxIslands <= 0 {
		config.Compiler.MaxIslands = DefaultMaxIslands
	}
	if len(config.Compiler.DisallowedTags) == 0 {
		config.Compiler.DisallowedTags = DefaultDisallowedTags()
	}
	if len(config.Compiler.ContainerTags) == 0 {
		config.Compiler.ContainerTags = DefaultContainerTags()
	}
	if len(config.Compiler.UniversalAttributes) == 0 {
		config.Compiler.UniversalAttributes = DefaultUniversalAttributes()
	}
	if len(config.Templates.ScanPaths) == 0 {
		config.Templates.ScanPaths = []string{"./templates"}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the pipeline cannot run
// with. Failures come back as structured *errors.SteadError values so
// callers can distinguish a bad mode from other configuration problems.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("server port %d out of range", c.Server.Port))
	}
	if !types.Mode(c.Compiler.DefaultMode).Valid() {
		return errors.NewConfigError(errors.CodeUnknownMode,
			fmt.Sprintf("unknown default mode %q", c.Compiler.DefaultMode))
	}
	if c.Compiler.MaxNodes < 1 {
		return errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("compiler max_nodes must be positive, got %d", c.Compiler.MaxNodes))
	}
	if c.Compiler.MaxIslands < 1 {
		return errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("compiler max_islands must be positive, got %d", c.Compiler.MaxIslands))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("unknown log format %q", c.Log.Format))
	}
	return nil
}
