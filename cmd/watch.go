package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docwriter/pkg/combine"
	"docwriter/pkg/render"
	"docwriter/pkg/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce string

	cmd := &cobra.Command{
		Use:     "watch <folder> <output>",
		Short:   "Rewrite the document whenever the folder changes",
		Example: "docwriter watch ./project project.md --debounce 1s",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			directory, output := args[0], args[1]
			absRoot, err := combine.ResolveRoot(directory)
			if err != nil {
				return err
			}
			if _, err := render.ForPath(output); err != nil {
				reportUnsupported(cmd)
				return nil
			}

			runArgs := a.arguments(directory, output)
			rules, err := combine.LoadRules(runArgs, absRoot, a.logger)
			if err != nil {
				return err
			}

			interval := a.cfg.Watch.Debounce
			if debounce != "" {
				if interval, err = parseDebounce(debounce); err != nil {
					return err
				}
			}

			w, err := watch.New(watch.Options{
				Root:     absRoot,
				Output:   output,
				Rules:    rules,
				Debounce: interval,
				Render: func() error {
					return combine.Run(runArgs, render.ForPath, a.logger)
				},
				IgnoreFiles: combine.IgnoreFiles(runArgs, absRoot),
				LoadRules: func() (combine.IgnoreParser, error) {
					rules, err := combine.LoadRules(runArgs, absRoot, a.logger)
					if err != nil {
						return nil, err
					}
					return rules, nil
				},
			}, a.logger)
			if err != nil {
				return err
			}

			err = w.Start(cmd.Context())
			if errors.Is(err, context.Canceled) {
				a.logger.Info("Stopped watching", zap.String("root", absRoot))
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&debounce, "debounce", "", "quiet period before re-rendering, e.g. 250ms (default from config)")
	return cmd
}

func parseDebounce(s string) (d time.Duration, err error) {
	d, err = time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid --debounce %q: want a positive duration", s)
	}
	return d, nil
}
