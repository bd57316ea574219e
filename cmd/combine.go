package cmd

import (
	"errors"
	"fmt"
	"strings"

	"docwriter/pkg/combine"
	"docwriter/pkg/render"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// arguments merges config and flags into the arguments of one run.
func (a *app) arguments(directory, output string) combine.Arguments {
	patterns := append([]string{}, a.cfg.Ignore...)
	patterns = append(patterns, a.opts.ignore...)
	return combine.Arguments{
		Directory:        directory,
		Output:           output,
		IgnoreFile:       a.cfg.IgnoreFile,
		GlobalIgnoreFile: a.cfg.GlobalIgnoreFile,
		IgnorePatterns:   patterns,
		TextExtensions:   a.cfg.TextExtensions,
	}
}

// runCombine writes one document. An unsupported output type is reported
// but is not a failure.
func (a *app) runCombine(cmd *cobra.Command, directory, output string) error {
	err := combine.Run(a.arguments(directory, output), render.ForPath, a.logger)
	switch {
	case errors.Is(err, render.ErrUnsupportedFormat):
		reportUnsupported(cmd)
		return nil
	case err != nil:
		a.logger.Error("docwriter execution failed", zap.Error(err))
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Document '%s' created successfully.\n", output)
	return nil
}

func reportUnsupported(cmd *cobra.Command) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Unsupported output file type. Please use one of: %s\n", strings.Join(render.Extensions(), ", "))
}
