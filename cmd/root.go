package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/mise/internal/config"
	"github.com/zjrosen/mise/internal/log"
)

var (
	version     = "dev"
	cfgFile     string
	debugFlag   bool
	metricsFile string
	cfg         config.Config

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "mise",
	Short: "Derive and render recipes",
	Long: `mise reads recipe documents, works out which products each step
creates, and renders the method with the technique catalog.

Configuration is read from --config, .mise/config.yaml or
~/.config/mise/config.yaml, in that order. Run 'mise config:init' to
write a commented default.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .mise/config.yaml or ~/.config/mise/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also MISE_DEBUG=1)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "",
		"write Prometheus metrics to this file when the command finishes")
}

// setup loads the configuration and starts logging.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = loaded

	if metricsFile != "" {
		cfg.Metrics.File = metricsFile
	}

	// Initialize logging if debug mode enabled (via flag, env var or config)
	if debugFlag || os.Getenv("MISE_DEBUG") != "" || cfg.Log.Enabled {
		logPath := os.Getenv("MISE_LOG")
		if logPath == "" {
			logPath = cfg.Log.File
		}
		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		log.SetMinLevel(log.ParseLevel(cfg.Log.Level))
		logCleanup = cleanup
		log.Info(log.CatCLI, "command started", "command", cmd.CommandPath(), "config", viper.ConfigFileUsed())
	}
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	if logCleanup != nil {
		log.Debug(log.CatCLI, "command finished", "command", cmd.CommandPath())
		logCleanup()
		logCleanup = nil
	}
	return nil
}

// loadConfig reads the config file, if any, over the defaults.
func loadConfig() (config.Config, error) {
	viper.Reset()
	viper.SetConfigType("yaml")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .mise/config.yaml (current directory)
		// 2. ~/.config/mise/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "mise"))
			viper.SetConfigName("config")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing file means defaults; an explicit --config must exist.
		if !errors.As(err, &notFound) || cfgFile != "" {
			return config.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	loaded, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return loaded, nil
}

const localConfigPath = ".mise/config.yaml"

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
