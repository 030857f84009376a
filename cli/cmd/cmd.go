package cmd

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	currency "github.com/malusev998/currency-crawler"
)

const defaultConfigFile = "./config.yml"

var (
	debug      bool
	configFile string
)

type (
	ServiceFactory func() (currency.Service, error)
	StorageFactory func() ([]currency.Storage, error)

	// Config is shared by every command. The factories build fresh storages
	// for every run because a run closes the storages it used.
	Config struct {
		Ctx        context.Context
		Fs         afero.Fs
		Logger     zerolog.Logger
		Settings   *Settings
		NewService ServiceFactory
		NewStorage StorageFactory
		debug      *bool
	}
)

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel

	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// load reads the settings and wires the factories unless a caller already
// injected them.
func (c *Config) load(cmd *cobra.Command) error {
	if c.Fs == nil {
		c.Fs = afero.NewOsFs()
	}

	c.debug = &debug
	c.Logger = newLogger(debug)

	settings, err := LoadSettings(viper.New(), c.Fs, configFile, cmd.Flags().Changed("config"))

	if err != nil {
		return err
	}

	c.Settings = settings

	if c.NewStorage == nil {
		c.NewStorage = func() ([]currency.Storage, error) {
			return createStorages(settings)
		}
	}

	if c.NewService == nil {
		c.NewService = func() (currency.Service, error) {
			return createService(settings, c.Fs, c.Logger)
		}
	}

	return nil
}

func newRootCmd(config *Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "currency-crawler",
		Short:         "Bank of Taiwan exchange rate crawler",
		Version:       "v2.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.load(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug flag")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", defaultConfigFile, "Path to config file")

	rootCmd.AddCommand(fetch(config), convert(config), rates(config))

	return rootCmd
}

func Execute(config *Config) error {
	return newRootCmd(config).ExecuteContext(config.Ctx)
}
