package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mise/internal/cookbook"
	"github.com/zjrosen/mise/internal/log"
	"github.com/zjrosen/mise/internal/presentation"
	"github.com/zjrosen/mise/internal/watcher"
)

var (
	renderFormat string
	renderPretty bool
	renderStyled bool
	renderWidth  int
	renderWatch  bool
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Derive a recipe document and print it",
	Long: `Load a recipe document, derive its products and print the recipe
with every method step rendered from its technique.

Formats:
  text      ingredients, equipment and numbered steps (default)
  json      the derived recipe as JSON
  markdown  a markdown document; --styled renders it for the terminal

With --watch the document and the user technique catalog are watched.
Each change re-renders the recipe and prints a line diff against the
previous render.

Examples:
  mise render pancakes.yaml
  mise render pancakes.yaml --format json --pretty | jq '.steps[].text'
  mise render pancakes.yaml -f markdown --styled
  mise render pancakes.yaml --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "output format: text, json or markdown (default from config)")
	renderCmd.Flags().BoolVar(&renderPretty, "pretty", false, "indent JSON output")
	renderCmd.Flags().BoolVar(&renderStyled, "styled", false, "style markdown for the terminal")
	renderCmd.Flags().IntVarP(&renderWidth, "width", "w", 0, "wrap width (default from config)")
	renderCmd.Flags().BoolVar(&renderWatch, "watch", false, "re-render when the document or user techniques change")
	rootCmd.AddCommand(renderCmd)
}

// renderSettings merges the render flags over the render config.
func renderSettings(cmd *cobra.Command) (string, []presentation.Option, error) {
	format := cfg.Render.Format
	if cmd.Flags().Changed("format") {
		format = renderFormat
	}
	format, err := presentation.ParseFormat(format)
	if err != nil {
		return "", nil, err
	}

	width := cfg.Render.Width
	if cmd.Flags().Changed("width") {
		width = renderWidth
	}
	opts := []presentation.Option{
		presentation.WithWidth(width),
		presentation.WithPretty(cfg.Render.Pretty || renderPretty),
		presentation.WithStyled(cfg.Render.Styled || renderStyled, cfg.Render.Theme),
	}
	return format, opts, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	format, opts, err := renderSettings(cmd)
	if err != nil {
		return err
	}

	return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
		path := args[0]
		render := func() (string, error) {
			loaded, err := a.cookbook.LoadFile(ctx, path)
			if err != nil {
				return "", err
			}
			return a.cookbook.RenderString(ctx, loaded.Recipe, format, opts...)
		}

		if !renderWatch {
			out, err := render()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		}

		watchCfg := watcher.DefaultConfig(path)
		techniquesDir := userTechniquesDir()
		if techniquesDir != "" {
			watchCfg.Dirs = []string{techniquesDir}
		}
		w, err := watcher.New(watchCfg)
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		defer func() { _ = w.Stop() }()

		changes, err := w.Start()
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		reload := func(paths []string) error {
			for _, p := range paths {
				if techniquesDir != "" && strings.HasPrefix(p, techniquesDir+string(filepath.Separator)) {
					return a.catalog.Reload(ctx)
				}
			}
			return nil
		}
		return watchRender(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), changes, render, reload)
	})
}

// userTechniquesDir returns the absolute user techniques directory if it exists.
func userTechniquesDir() string {
	if cfg.Catalog.UserDir == "" {
		return ""
	}
	dir, err := filepath.Abs(filepath.Join(cfg.Catalog.UserDir, "techniques"))
	if err != nil {
		return ""
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return ""
	}
	return dir
}

// watchRender prints a full render, then a diff after every change batch
// until ctx is done or changes closes. Render errors are reported and the
// loop keeps watching.
func watchRender(ctx context.Context, out, errOut io.Writer, changes <-chan []string,
	render func() (string, error), reload func([]string) error) error {
	previous, err := render()
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "error: %v\n", err)
	} else {
		_, _ = io.WriteString(out, previous)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths, ok := <-changes:
			if !ok {
				return nil
			}
			log.Debug(log.CatWatch, "re-rendering", "changed", strings.Join(paths, ","))

			if err := reload(paths); err != nil {
				_, _ = fmt.Fprintf(errOut, "error: reload techniques: %v\n", err)
				continue
			}
			next, err := render()
			if err != nil {
				_, _ = fmt.Fprintf(errOut, "error: %v\n", err)
				continue
			}
			if diff := cookbook.Diff(previous, next); diff != "" {
				_, _ = fmt.Fprintf(out, "--- %s\n%s", strings.Join(paths, ", "), diff)
			}
			previous = next
		}
	}
}
