// Package cmd wires the docwriter command line.
package cmd

import (
	"context"
	"fmt"

	"docwriter/pkg/config"
	"docwriter/pkg/logging"
	"docwriter/pkg/version"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options holds the persistent flags shared by every command.
type options struct {
	configPath   string
	debug        bool
	logFile      string
	ignore       []string
	globalIgnore string
}

// app is the state built once flags are parsed.
type app struct {
	opts   options
	cfg    config.Config
	logger *zap.Logger
}

// NewRootCmd returns the docwriter command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "docwriter <folder> <output>",
		Short: "Document a folder tree into a single file",
		Long: `docwriter walks a folder, honouring .docignore rules, and writes one document
containing the folder structure followed by the path and text of every file.
The output format follows the output extension: .docx, .pdf, .pptx, .ipynb,
.md or .html.`,
		Example:       "docwriter ./project project.docx",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCombine(cmd, args[0], args[1])
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/docwriter/config.yaml)")
	flags.BoolVar(&a.opts.debug, "debug", false, "enable debug logging")
	flags.StringVar(&a.opts.logFile, "log-file", "", "also write JSON logs to this rotating file")
	flags.StringArrayVar(&a.opts.ignore, "ignore", nil, "extra ignore pattern (repeatable)")
	flags.StringVar(&a.opts.globalIgnore, "global-ignore", "", "global ignore file applied before the folder's own")

	root.AddCommand(newWatchCmd(a), newVersionCmd())
	return root
}

// Execute runs the command tree with fang's styled help and errors.
func Execute(ctx context.Context) error {
	return fang.Execute(
		ctx,
		NewRootCmd(),
		fang.WithVersion(version.Get().Version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	)
}

// setup loads the config file and builds the logger. Flags override config.
func (a *app) setup() error {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.opts.globalIgnore != "" {
		cfg.GlobalIgnoreFile = a.opts.globalIgnore
	}
	if a.opts.logFile != "" {
		cfg.Log.File = a.opts.logFile
	}
	a.cfg = cfg

	logger, err := logging.Setup(logging.Options{
		Debug:      a.opts.debug,
		Level:      cfg.Log.Level,
		AppName:    "docwriter",
		AppVersion: version.Get().Version,
		FilePath:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}
