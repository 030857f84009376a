package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	currency "github.com/malusev998/currency-crawler"
	"github.com/malusev998/currency-crawler/services"
)

func closeStorages(ctx context.Context, config *Config, storages []currency.Storage) {
	for _, storage := range storages {
		if err := storage.Close(context.WithoutCancel(ctx)); err != nil {
			config.Logger.Warn().Err(err).Str("storage", storage.GetStorageProviderName()).Msg("cannot close storage")
		}
	}
}

func baseCurrency(config *Config) string {
	if config.Settings == nil || config.Settings.BaseCurrency == "" {
		return services.DefaultBaseCurrency
	}

	return config.Settings.BaseCurrency
}

func convert(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "convert FROM TO AMOUNT",
		Short: "Convert an amount between two stored currencies",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[2], 64)

			if err != nil {
				return fmt.Errorf("amount %q is not a number: %w", args[2], err)
			}

			storages, err := config.NewStorage()

			if err != nil {
				return err
			}

			defer closeStorages(cmd.Context(), config, storages)

			service := services.ConversionService{
				Storages:     storages,
				BaseCurrency: baseCurrency(config),
			}

			value, err := service.Convert(cmd.Context(), args[0], args[1], amount)

			if err != nil {
				return err
			}

			fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s %s = %s %s\n",
				strconv.FormatFloat(amount, 'f', -1, 64),
				strings.ToUpper(args[0]),
				strconv.FormatFloat(value, 'f', -1, 64),
				strings.ToUpper(args[1]),
			)

			return nil
		},
	}
}
