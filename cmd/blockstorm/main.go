// Package main is the entry point for the blockstorm CLI.
//
// blockstorm loads a Markdown outline as a block document, applies a
// structural edit (lift, move or a Lua script) through the block plugin,
// and prints the resulting tree together with the identifier delta.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/blockstorm/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// cli holds the state shared by all commands.
type cli struct {
	// Flags
	configPath string
	verbose    bool
	idFormat   string
	showIDs    bool

	cfg *config.Config

	// logger is built in PersistentPreRunE unless preset.
	logger      *zap.Logger
	ownedLogger bool
}

func main() {
	if err := newRootCmd(&cli{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "blockstorm",
		Short: "Structural block editing with stable identifiers",
		Long: `blockstorm edits block documents built from Markdown outlines.

Lifting or moving a block gives it, and every block and text inside it,
fresh identifiers, so no identifier is ever shared by two nodes.

Paths are dot-separated child indexes from the document root, as printed
by the tree command. Index 0 of every block is its text.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.ownedLogger && c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to configuration file (TOML or YAML)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&c.idFormat, "id-format", "", "Identifier format (uuid, compact)")
	root.PersistentFlags().BoolVar(&c.showIDs, "ids", true, "Show block IDs in tree output")

	root.AddCommand(
		newTreeCmd(c),
		newLiftCmd(c),
		newMoveCmd(c),
		newRunCmd(c),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	c.cfg = config.New(config.WithFile(c.configPath))
	if c.idFormat != "" {
		if err := c.cfg.Set("blocks.idFormat", c.idFormat); err != nil {
			return err
		}
	}
	if err := c.cfg.Load(cmd.Context()); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if c.logger == nil {
		level, err := c.cfg.Logging().ZapLevel()
		if err != nil {
			return err
		}
		if c.verbose {
			level = zapcore.DebugLevel
		}
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		logger, err := zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		c.logger = logger
		c.ownedLogger = true
	}

	for path, err := range c.cfg.ConfigErrors() {
		c.logger.Warn("config value ignored", zap.String("path", path), zap.Error(err))
	}
	c.logger.Debug("config loaded",
		zap.String("file", c.cfg.File()),
		zap.String("idFormat", c.cfg.Blocks().IDFormat),
		zap.String("idFormatSource", c.cfg.Source("blocks.idFormat")),
	)
	return nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
