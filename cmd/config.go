package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/mise/internal/config"
)

var (
	configInitPath  string
	configInitForce bool
)

var configInitCmd = &cobra.Command{
	Use:   "config:init",
	Short: "Write a commented default config file",
	Long: `Write the default configuration, with comments, to --path
(default: .mise/config.yaml). An existing file is kept unless --force.`,
	Args: cobra.NoArgs,
	// The file being written may not exist or may not validate yet.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configInitPath
		if path == "" {
			path = localConfigPath
		}
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "config:set <key> <value>",
	Short: "Set one config value, keeping the file's comments",
	Long: `Set a dotted key such as derivation.conflict_policy in the config file
in use (--config, .mise/config.yaml or ~/.config/mise/config.yaml). The
file is only written if the result is a valid configuration.

Examples:
  mise config:set derivation.conflict_policy reject
  mise config:set render.format markdown
  mise config:set blob.s3.bucket my-recipes`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFilePath()
		if err := config.Set(path, args[0], args[1]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", args[0], args[1], path)
		return err
	},
}

func init() {
	configInitCmd.Flags().StringVarP(&configInitPath, "path", "p", "", "where to write the file (default: .mise/config.yaml)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(configInitCmd, configSetCmd)
}

// configFilePath is the file the current command read, or where a new one
// belongs.
func configFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return localConfigPath
}
