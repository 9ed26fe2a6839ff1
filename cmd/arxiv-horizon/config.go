// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/arxiv-horizon/internal/arxiv"
	"github.com/pdiddy/arxiv-horizon/pkg/types"
)

const (
	defaultTimeout         = 60 * time.Second
	defaultDelay           = 3 * time.Second
	defaultMinWindow       = 100
	defaultMaxRetries      = 5
	defaultMaxEmptyRetries = 10
	defaultMaxElapsed      = 2 * time.Minute
	defaultHistoryDir      = ".arxiv-horizon"
)

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("arxiv-horizon")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "arxiv-horizon"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("ARXIV_HORIZON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so AutomaticEnv can see it during
// Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("arxiv.timeout", defaultTimeout)
	v.SetDefault("arxiv.user_agent", "arxiv-horizon/"+version)
	v.SetDefault("arxiv.base_url", arxiv.DefaultBaseURL)
	v.SetDefault("arxiv.max_retries", defaultMaxRetries)
	v.SetDefault("arxiv.prune", true)

	v.SetDefault("boundary.delay", defaultDelay)
	v.SetDefault("boundary.min_window", defaultMinWindow)
	v.SetDefault("boundary.max_empty_retries", defaultMaxEmptyRetries)
	v.SetDefault("boundary.max_elapsed", defaultMaxElapsed)

	v.SetDefault("history.dir", defaultHistoryDir)
	v.SetDefault("history.disabled", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// loadConfig decodes the merged flag, env, file and default settings.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger used for progress and warnings.
func newLogger(cfg types.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level := logrus.InfoLevel
	if cfg.Level != "" {
		l, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("log format %q: want text or json", cfg.Format)
	}
	return log, nil
}

// setup loads the config and logger every command starts from.
func setup() (types.Config, *logrus.Logger, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return cfg, nil, err
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

// bindFlag ties a command flag to a config key; an explicitly set flag
// overrides env and file values.
func bindFlag(cmd *cobra.Command, key, flag string) {
	_ = viper.BindPFlag(key, cmd.Flags().Lookup(flag))
}
