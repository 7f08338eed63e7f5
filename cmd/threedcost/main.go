package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/threedcost/internal/app"
	"github.com/Simplici0/threedcost/internal/config"
	"github.com/Simplici0/threedcost/internal/logger"
)

// cli carries state shared by every subcommand once setup has run.
type cli struct {
	memory   bool
	logLevel string
	envFile  string

	cfg config.Config
	log *zap.Logger
	app *app.App
}

func main() {
	root, c := newRootCmd()
	err := root.ExecuteContext(context.Background())
	c.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:   "threedcost",
		Short: "Estimate 3D printing job costs and manage material profiles",
		Long: `threedcost prices a print job from material, machine time, energy,
post-processing and optional design labor, then applies a margin to suggest a
selling price. Settings and material profiles are stored locally.`,
		SilenceUsage:       true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: func(*cobra.Command, []string) error { c.close(); return nil },
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&c.memory, "memory", false, "keep settings and profiles in memory only")
	flags.StringVar(&c.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file to read before the environment")

	root.AddCommand(
		newServeCmd(c),
		newCalcCmd(c),
		newSettingsCmd(c),
		newProfilesCmd(c),
	)
	return root, c
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	c.cfg = cfg

	c.log, err = logger.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	c.app, err = app.New(cmd.Context(), cfg, c.log, app.Options{InMemory: c.memory})
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	return nil
}

// close is safe to call more than once.
func (c *cli) close() {
	if c.app != nil {
		if err := c.app.Close(); err != nil {
			c.log.Warn("close app", zap.Error(err))
		}
		c.app = nil
	}
	if c.log != nil {
		_ = c.log.Sync()
	}
}

// flagName turns a camelCase field name into a kebab-case flag name.
func flagName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
