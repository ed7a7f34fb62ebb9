package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/asyncgen/asyncgen/internal/runner"
	"github.com/asyncgen/asyncgen/internal/watcher"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	flags := &generateFlags{}
	var execLine string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the document or config changes",
		Long: `Generate once, then watch the AsyncAPI document and the config file and
regenerate after each change until interrupted (Ctrl-C).

Generation errors are reported and the watch continues. With --exec, the
given command is (re)started after every successful generation.

Examples:
  asyncgen watch --input asyncapi.yaml --output src/Events
  asyncgen watch --exec "dotnet build"`,
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

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			hook, err := runner.Parse(execLine, cwd, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if hook != nil {
				defer hook.Stop()
			}

			generate := func(force bool) {
				current, err := root.loadConfig(cmd, flags)
				if err != nil {
					logger.Error().Err(err).Msg("reloading config")
					return
				}
				err = runGenerate(cmd, current.Config, force, logger)
				var exit *exitError
				if err != nil {
					if !errors.As(err, &exit) {
						logger.Error().Err(err).Msg("generation failed")
					}
					return
				}
				if hook != nil {
					logger.Info().Str("command", hook.String()).Msg("running")
					if err := hook.Restart(); err != nil {
						logger.Error().Err(err).Str("command", hook.String()).Msg("could not start command")
					}
				}
			}
			generate(flags.force)

			trigger := make(chan struct{}, 1)
			w := watcher.New([]string{loaded.Config.Input, loaded.Path}, watcher.DefaultDebounce,
				func(events []watcher.Event) {
					for _, ev := range events {
						logger.Info().Str("file", ev.Path).Str("op", ev.Op).Msg("change detected")
					}
					select {
					case trigger <- struct{}{}:
					default:
					}
				}, logger)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return w.Watch(ctx) })
			g.Go(func() error {
				logger.Info().Strs("dirs", w.Dirs()).Msg("watching for changes")
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-trigger:
						generate(false)
					}
				}
			})
			return g.Wait()
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&execLine, "exec", "", "command to (re)start after each successful generation; quoted shell-style, no variable expansion")
	return cmd
}
