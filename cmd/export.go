package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportDriver string

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Derive a recipe document and export it as JSON",
	Long: `Derive a recipe document and write the derived recipe as JSON to the
export store under recipes/<id>.json. An existing export is replaced.

Drivers:
  fs      files under blob.root (default)
  s3      objects in blob.s3.bucket
  memory  discarded when the command exits; useful to check a document

Examples:
  mise export pancakes.yaml
  mise export pancakes.yaml --driver s3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := appOptions{blobs: true, blobDriver: exportDriver}
		return withApp(cmd, opts, func(ctx context.Context, a *app) error {
			loaded, err := a.cookbook.LoadFile(ctx, args[0])
			if err != nil {
				return err
			}
			info, err := a.cookbook.Export(ctx, loaded)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %s (%d bytes)\n", info.Key, info.Size)
			return err
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDriver, "driver", "", "export driver: fs, s3 or memory (default from config)")
	rootCmd.AddCommand(exportCmd)
}
