package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mise/internal/cookbook"
	"github.com/zjrosen/mise/internal/presentation"
)

var recipesJSON bool

var recipesSaveCmd = &cobra.Command{
	Use:   "recipes:save <file>",
	Short: "Derive a recipe document and save it to the store",
	Long: `Derive a recipe document and save it, with its derived JSON, under
the recipe id. Saving an id that already exists replaces it.

The store is SQLite by default (store.path) or Postgres (store.driver: postgres).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, appOptions{store: true}, func(ctx context.Context, a *app) error {
			loaded, err := a.cookbook.LoadFile(ctx, args[0])
			if err != nil {
				return err
			}
			stored, err := a.cookbook.Save(ctx, loaded)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", stored.ID, stored.Name)
			return err
		})
	},
}

var recipesListCmd = &cobra.Command{
	Use:   "recipes:list",
	Short: "List saved recipes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, appOptions{store: true}, func(ctx context.Context, a *app) error {
			stored, err := a.cookbook.StoredAll(ctx)
			if err != nil {
				return err
			}

			dtos := storedRecipeDTOs(stored)
			formatter := presentation.NewFormatter(cmd.OutOrStdout(), presentation.WithPretty(true))
			if recipesJSON {
				return formatter.FormatJSON(dtos)
			}
			return formatter.FormatStoredRecipes(dtos)
		})
	},
}

var recipesShowCmd = &cobra.Command{
	Use:   "recipes:show <id>",
	Short: "Re-derive a saved recipe and print it",
	Long: `Rebuild a saved recipe from its stored document with the current
technique catalog and print it. Takes the same output flags as render.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, opts, err := renderSettings(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, appOptions{store: true}, func(ctx context.Context, a *app) error {
			loaded, err := a.cookbook.Reload(ctx, args[0])
			if err != nil {
				return err
			}
			return a.cookbook.Render(ctx, cmd.OutOrStdout(), loaded.Recipe, format, opts...)
		})
	},
}

var recipesDeleteCmd = &cobra.Command{
	Use:   "recipes:delete <id>",
	Short: "Delete a saved recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, appOptions{store: true}, func(ctx context.Context, a *app) error {
			if err := a.cookbook.Delete(ctx, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		})
	},
}

func init() {
	recipesListCmd.Flags().BoolVar(&recipesJSON, "json", false, "print JSON")

	recipesShowCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "output format: text, json or markdown (default from config)")
	recipesShowCmd.Flags().BoolVar(&renderPretty, "pretty", false, "indent JSON output")
	recipesShowCmd.Flags().BoolVar(&renderStyled, "styled", false, "style markdown for the terminal")
	recipesShowCmd.Flags().IntVarP(&renderWidth, "width", "w", 0, "wrap width (default from config)")

	rootCmd.AddCommand(recipesSaveCmd, recipesListCmd, recipesShowCmd, recipesDeleteCmd)
}

func storedRecipeDTOs(stored []*cookbook.StoredRecipe) []presentation.StoredRecipeDTO {
	dtos := make([]presentation.StoredRecipeDTO, len(stored))
	for i, s := range stored {
		dtos[i] = presentation.StoredRecipeDTO{
			ID:        s.ID,
			Name:      s.Name,
			Author:    s.Author,
			UpdatedAt: s.UpdatedAt,
		}
	}
	return dtos
}
