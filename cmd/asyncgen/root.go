package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/asyncgen/asyncgen/internal/config"
	"github.com/asyncgen/asyncgen/internal/logging"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "asyncgen",
		Short: "Generate C# models and handler stubs from AsyncAPI documents",
		Long: `asyncgen reads an AsyncAPI 2.x document (JSON or YAML) and writes one C#
file per named schema plus a Handlers.cs with a stub per subscribed channel.

Quick start:
  asyncgen generate --input asyncapi.yaml --output Generated
  asyncgen watch    # regenerate on every save
  asyncgen validate # check the document without writing

Configuration is read from asyncgen.config.json, .yaml or .yml in the
working directory, overridden by ASYNCGEN_* environment variables and
then by flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default: discovered in the working directory)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: console or json")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newWatchCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// configResult is a loaded config and where it came from.
type configResult struct {
	Config *config.Config
	Path   string // empty when no config file was found
}

// loadConfig resolves the effective config: defaults, then the config file,
// then the environment, then flags. Relative paths from the config file are
// taken relative to the file's directory.
func (o *rootOptions) loadConfig(cmd *cobra.Command, gen *generateFlags) (*configResult, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	path := o.configPath
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	cfg, path, err := config.LoadOrDefault(path, cwd)
	if err != nil {
		return nil, err
	}
	if path != "" {
		dir := filepath.Dir(path)
		cfg.Input = resolveFrom(dir, cfg.Input)
		cfg.Output = resolveFrom(dir, cfg.Output)
	}

	if gen != nil {
		gen.apply(cmd, cfg)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &configResult{Config: cfg, Path: path}, nil
}

func (o *rootOptions) logger(cfg *config.Config) (zerolog.Logger, error) {
	return logging.New(o.stderr, cfg.Log.Level, cfg.Log.Format)
}

func resolveFrom(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
