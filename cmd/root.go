package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mj1618/fiberscope/internal/inspect"
	"github.com/mj1618/fiberscope/internal/output"
	"github.com/mj1618/fiberscope/internal/version"
	"github.com/spf13/cobra"
)

// defaultConfigFile is read when --config is not given and the file exists.
const defaultConfigFile = "fiberscope.yaml"

// appConfig is the extraction config loaded by the root command.
var appConfig = inspect.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "fiberscope",
	Short: "Inspect rendered web UI and attribute it to component source",
	Long: `Select elements in a running web app and extract what produced them: the component
tree, the authoring file and line, markup, computed styles and a screenshot.

Component data comes from the renderer's instance graph when the page runs a
development build, and from server-rendering stream payloads otherwise.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("config", "", "YAML config file (default: ./"+defaultConfigFile+" if present)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().String("chrome-url", "", "DevTools URL of a running Chrome (env FIBERSCOPE_CHROME_URL)")
	rootCmd.PersistentFlags().String("chrome-bin", "", "Chrome binary to launch (env FIBERSCOPE_CHROME_BIN)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		envFile, _ := rootCmd.PersistentFlags().GetString("env-file")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}

		levelName, _ := rootCmd.PersistentFlags().GetString("log-level")
		level, err := parseLogLevel(levelName)
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		configPath, _ := rootCmd.PersistentFlags().GetString("config")
		optional := configPath == ""
		if optional {
			configPath = defaultConfigFile
		}
		cfg, err := inspect.LoadConfig(configPath, optional)
		if err != nil {
			return err
		}
		cfg.Logger = logger
		appConfig = cfg

		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")
		return nil
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unsupported log level: %s (use debug, info, warn or error)", s)
}
