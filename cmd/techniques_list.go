package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mise/internal/presentation"
	technique "github.com/zjrosen/mise/internal/technique/domain"
)

var (
	techLabels []string
	techJSON   bool
)

var techniquesListCmd = &cobra.Command{
	Use:   "techniques:list",
	Short: "List the technique catalog",
	Long: `List the built-in and user techniques.

User techniques are read from <catalog.user_dir>/techniques and replace
built-ins with the same key. Use --label to filter (repeatable, AND logic).

Examples:
  # List all techniques
  mise techniques:list

  # Filter by multiple labels (AND logic - must match ALL)
  mise techniques:list -l prep -l cold

  # Parse specific fields with jq
  mise techniques:list --json | jq '.[].key'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, appOptions{}, func(_ context.Context, a *app) error {
			var techniques []*technique.Technique
			if len(techLabels) > 0 {
				techniques = a.catalog.GetByLabels(techLabels...)
			} else {
				techniques = a.catalog.List()
			}

			formatter := presentation.NewFormatter(cmd.OutOrStdout(), presentation.WithPretty(true))
			dtos := presentation.FromTechniques(techniques)
			if techJSON {
				return formatter.FormatJSON(dtos)
			}
			return formatter.FormatTechniques(dtos)
		})
	},
}

func init() {
	techniquesListCmd.Flags().StringArrayVarP(&techLabels, "label", "l", nil, "Filter by label (can be repeated, e.g., --label prep)")
	techniquesListCmd.Flags().BoolVar(&techJSON, "json", false, "print JSON")
	rootCmd.AddCommand(techniquesListCmd)
}
