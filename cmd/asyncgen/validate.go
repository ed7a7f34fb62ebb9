package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asyncgen/asyncgen/internal/diagnostic"
	"github.com/asyncgen/asyncgen/internal/generator"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a document and configuration without writing files",
		Long: `Load the configuration and the AsyncAPI document, run the full synthesis
and print every diagnostic. Nothing is written to the output directory.

Exit status is 1 when any error is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := root.loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			cfg := loaded.Config
			out := cmd.OutOrStdout()

			check := cfg.ValidateDetailed()
			configDiags := diagnostic.NewCollector(false, cfg.Diagnostics.Quiet)
			for _, w := range check.Warnings {
				configDiags.Warn(diagnostic.CategoryConfigInvalid, "config", w)
			}
			for _, e := range check.Errors {
				configDiags.Error(diagnostic.CategoryConfigInvalid, "config", e)
			}
			fmt.Fprint(out, configDiags.FormatAll())
			if configDiags.HasErrors() {
				return &exitError{code: 1}
			}

			logger, err := root.logger(cfg)
			if err != nil {
				return err
			}
			res, err := generator.Run(cmd.Context(), generator.Options{
				Config: *cfg,
				DryRun: true,
				Logger: logger,
			})
			if err != nil {
				fmt.Fprintf(out, "document error: %v\n", err)
				return &exitError{code: 1}
			}

			fmt.Fprint(out, res.Diagnostics.FormatAll())
			fmt.Fprintf(out, "%s: %d file(s) in namespace %s; %s\n",
				cfg.Input, len(res.Files), res.Namespace, res.Diagnostics.Summary())
			if res.Diagnostics.HasErrors() {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().MarkHidden("force")
	return cmd
}
