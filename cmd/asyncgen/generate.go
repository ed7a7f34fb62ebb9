package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/asyncgen/asyncgen/internal/config"
	"github.com/asyncgen/asyncgen/internal/generator"
)

// generateFlags are the flags shared by generate and watch.
type generateFlags struct {
	input     string
	output    string
	namespace string
	handlers  bool
	strict    bool
	quiet     bool
	force     bool
}

func (f *generateFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.input, "input", "i", "", "AsyncAPI document (.json, .yaml or .yml)")
	fs.StringVarP(&f.output, "output", "o", "", "output directory for generated .cs files")
	fs.StringVarP(&f.namespace, "namespace", "n", "", "C# namespace (default: derived from info.title)")
	fs.BoolVar(&f.handlers, "handlers", true, "generate the handlers file")
	fs.BoolVar(&f.strict, "strict", false, "treat warnings as errors")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "suppress warnings")
	fs.BoolVar(&f.force, "force", false, "regenerate even when the build cache is valid")
}

// apply copies every flag the user set onto cfg.
func (f *generateFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("input") {
		cfg.Input = f.input
	}
	if fs.Changed("output") {
		cfg.Output = f.output
	}
	if fs.Changed("namespace") {
		cfg.Namespace = f.namespace
	}
	if fs.Changed("handlers") {
		cfg.Handlers.Enabled = f.handlers
	}
	if fs.Changed("strict") {
		cfg.Diagnostics.Strict = f.strict
	}
	if fs.Changed("quiet") {
		cfg.Diagnostics.Quiet = f.quiet
	}
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate C# sources from an AsyncAPI document",
		Long: `Generate one C# file per named schema and a handlers file for the
subscribed channels.

Examples:
  asyncgen generate --input asyncapi.yaml --output src/Events
  asyncgen generate --namespace Shop.Orders --handlers=false
  asyncgen generate --strict --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := root.loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			logger, err := root.logger(loaded.Config)
			if err != nil {
				return err
			}
			if loaded.Path != "" {
				logger.Debug().Str("path", loaded.Path).Msg("using config file")
			}
			return runGenerate(cmd, loaded.Config, flags.force, logger)
		},
	}
	flags.bind(cmd)
	return cmd
}

// runGenerate runs one generation and reports its diagnostics. It returns
// an *exitError when the diagnostics contain errors.
func runGenerate(cmd *cobra.Command, cfg *config.Config, force bool, logger zerolog.Logger) error {
	res, err := generator.Run(cmd.Context(), generator.Options{
		Config: *cfg,
		Force:  force,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	diags := res.Diagnostics
	diags.Log(logger)
	if diags.HasErrors() {
		logger.Error().Str("summary", diags.Summary()).Msg("generation finished with errors")
		return &exitError{code: 1}
	}
	if len(diags.Diagnostics()) > 0 {
		logger.Info().Str("summary", diags.Summary()).Msg("diagnostics")
	}
	return nil
}
