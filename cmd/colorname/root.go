package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dokzlo13/colorname/internal/app"
	"github.com/dokzlo13/colorname/internal/config"
)

const defaultConfigPath = "config.yaml"

// cli carries state shared by subcommands.
type cli struct {
	configPath string
	logLevel   string

	cfg *config.Config
	app *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "colorname",
		Short: "Resolve colours and colour temperatures to device option names",
		Long: `colorname maps free-form colour input (names, hex codes, Kelvin values)
onto the closed set of named options a device accepts.

Names are matched exactly first, ignoring case and punctuation. Anything else
is matched to the perceptually closest option with a known value (CIEDE2000).`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.app != nil {
				c.app.Stop()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", defaultConfigPath, "path to configuration file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		newColorCmd(c),
		newTemperatureCmd(c),
		newListCmd(c),
		newBatchCmd(c),
		newRunCmd(c),
	)
	return root
}

// setup loads configuration, configures logging and builds the catalogs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	setupLogging(cfg.Log.GetLevel(), cfg.Log.UseJSON, cfg.Log.Colors)
	c.cfg = cfg

	c.app, err = app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to build catalogs: %w", err)
	}
	return nil
}

// loadConfig falls back to built-in defaults when the default config file is absent.
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		log.Debug().Str("config", c.configPath).Msg("No configuration file, using defaults")
		return config.Default()
	}
	return nil, fmt.Errorf("failed to load configuration: %w", err)
}
