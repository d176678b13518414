package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mj1618/fiberscope/internal/inspect"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/output"
	"github.com/mj1618/fiberscope/internal/platform"
	"github.com/mj1618/fiberscope/internal/shots"
	"github.com/spf13/cobra"
)

// browserOptions builds backend options from the root flags, falling back
// to FIBERSCOPE_CHROME_URL and FIBERSCOPE_CHROME_BIN.
func browserOptions(headless bool) platform.Options {
	controlURL, _ := rootCmd.PersistentFlags().GetString("chrome-url")
	if controlURL == "" {
		controlURL = os.Getenv("FIBERSCOPE_CHROME_URL")
	}
	bin, _ := rootCmd.PersistentFlags().GetString("chrome-bin")
	if bin == "" {
		bin = os.Getenv("FIBERSCOPE_CHROME_BIN")
	}
	return platform.Options{
		ControlURL: controlURL,
		Bin:        bin,
		Headless:   headless,
		Logger:     slog.Default(),
	}
}

// addPageFlags adds the viewport flags shared by page commands.
func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("width", 0, "Viewport width in CSS pixels (0 = browser default)")
	cmd.Flags().Int("height", 0, "Viewport height in CSS pixels (0 = browser default)")
}

// openPage starts the browser and opens url. The returned cleanup closes
// both.
func openPage(ctx context.Context, cmd *cobra.Command, url string, headless bool) (platform.Page, func(), error) {
	provider, err := platform.NewProvider(browserOptions(headless))
	if err != nil {
		return nil, nil, err
	}
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	page, err := provider.Browser.Open(ctx, platform.OpenOptions{URL: url, Width: width, Height: height})
	if err != nil {
		provider.Browser.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := page.Close(); err != nil {
			slog.Debug("close page", "error", err)
		}
		if err := provider.Browser.Close(); err != nil {
			slog.Debug("close browser", "error", err)
		}
	}
	return page, cleanup, nil
}

// newSession opens the inspection session for page in registry.
func newSession(registry *inspect.Registry, page platform.Page, store *shots.Store) (*inspect.Session, bool, error) {
	return registry.Open(page.TargetID(), func() (*inspect.Session, error) {
		return inspect.NewSession(page.TargetID(), page, appConfig, store), nil
	})
}

// addExtractionFlags adds the flags controlling where an extraction goes.
func addExtractionFlags(cmd *cobra.Command) {
	cmd.Flags().String("output", "", "Write the extraction to this JSON file, screenshots alongside (default: print)")
	cmd.Flags().String("language", "", "Language recorded in the extraction (default from config)")
	cmd.Flags().Int("max-bytes", output.DefaultMaxDocumentBytes, "Size cap for the written extraction document")
	cmd.Flags().Bool("no-screenshots", false, "Skip screenshot capture")
}

// applyExtractionFlags copies extraction flags into appConfig.
func applyExtractionFlags(cmd *cobra.Command) {
	if lang, _ := cmd.Flags().GetString("language"); lang != "" {
		appConfig.Language = lang
	}
	if skip, _ := cmd.Flags().GetBool("no-screenshots"); skip {
		appConfig.NoScreenshots = true
	}
}

// emitExtraction writes ex to --output or prints it.
func emitExtraction(cmd *cobra.Command, ex *model.Extraction, store *shots.Store) error {
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		return output.Print(ex)
	}
	maxBytes, _ := cmd.Flags().GetInt("max-bytes")
	err := output.WriteExtraction(path, ex, store, maxBytes)
	if errors.Is(err, output.ErrDocumentTooLarge) {
		slog.Warn("extraction written above size cap", "path", path, "error", err)
		err = nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d elements)\n", path, len(ex.Extractions))
	return nil
}
