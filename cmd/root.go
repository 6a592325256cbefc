// Package cmd provides the command-line interface for ThreadStead with
// configuration from multiple sources in clear precedence order:
//
//  1. Command-line flags (--config, --port, etc.) — highest priority
//  2. Individual environment variables (THREADSTEAD_SERVER_PORT, etc.)
//  3. Configuration files (.threadstead.yml) — lowest priority
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/threadstead/threadstead/internal/compiler"
	"github.com/threadstead/threadstead/internal/components"
	"github.com/threadstead/threadstead/internal/config"
	"github.com/threadstead/threadstead/internal/logging"
	"github.com/threadstead/threadstead/internal/registry"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "threadstead",
	Short: "Compile and preview ThreadStead profile templates",
	Long: `ThreadStead compiles pixel-home profile templates: a constrained
XML-like markup language with interactive component islands and a
graceful-degradation fallback chain across rendering modes.

Key Features:
  • Template compilation with island identification
  • Component catalog with property schemas
  • Three rendering modes: default, enhanced, advanced
  • Live-preview server with hot reload

Quick Start:
  threadstead init                Initialize a template workspace
  threadstead serve               Start the preview server
  threadstead compile home.html   Compile one template
  threadstead list                List registered components`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Accept underscore spellings (--log_level) alongside the dashed ones.
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .threadstead.yml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in the config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".threadstead")
	}

	viper.SetEnvPrefix("THREADSTEAD")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// buildPipeline assembles the shared pieces every command needs: the
// effective configuration, a logger, the populated component registry, and
// a compiler over them.
func buildPipeline() (*config.Config, logging.Logger, *registry.Registry, *compiler.Compiler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(&logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	reg := registry.New()
	if err := components.RegisterBuiltins(reg); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("registering components: %w", err)
	}

	comp := compiler.New(reg, cfg.Compiler, logger)
	return cfg, logger, reg, comp, nil
}
