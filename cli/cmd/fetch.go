package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	currency "github.com/malusev998/currency-crawler"
)

func handleCurrencySave(ctx context.Context, config *Config) error {
	service, err := config.NewService()

	if err != nil {
		return err
	}

	currenciesMap, err := service.Save(ctx)

	if err != nil {
		return err
	}

	if config.debug == nil || !*config.debug {
		return nil
	}

	for storage, currencies := range currenciesMap {
		for i, rate := range currencies {
			config.Logger.Debug().
				Int("index", i).
				Str("storage", storage).
				Str("currency", rate.Currency).
				Float64("rate", rate.Rate).
				Msg("currency saved")
		}
	}

	return nil
}

func fetchCobraCommand(standalone *bool, after *time.Duration, provider *currency.Provider, config *Config) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if *provider != currency.EmptyProvider && config.Settings != nil {
			if err := validateProvider(*provider, config.Settings.FeedFile); err != nil {
				return err
			}

			config.Settings.Provider = *provider
		}

		if err := handleCurrencySave(ctx, config); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Done!")

		if !*standalone {
			return nil
		}

		ticker := time.NewTicker(*after)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := handleCurrencySave(ctx, config); err != nil {
					config.Logger.Error().Err(err).Msg("fetch failed")
					continue
				}

				fmt.Fprintln(cmd.OutOrStdout(), "Done!")
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func fetch(config *Config) *cobra.Command {
	var standalone bool
	var after time.Duration
	var provider currency.Provider

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch today's rates and reload every storage",
		Args:  cobra.NoArgs,
	}

	fetchCmd.RunE = fetchCobraCommand(&standalone, &after, &provider, config)
	fetchCmd.Flags().BoolVar(&standalone, "standalone", false, "Start up a long running fetching service")
	fetchCmd.Flags().DurationVar(&after, "after", 24*time.Hour, "Fetching interval for standalone process")
	fetchCmd.Flags().Var(&provider, "provider", "Feed provider overriding the config (BankOfTaiwan, File)")

	return fetchCmd
}
