package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/malusev998/currency-crawler/services"
)

func rates(config *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "List the rates held by the first configured storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storages, err := config.NewStorage()

			if err != nil {
				return err
			}

			defer closeStorages(cmd.Context(), config, storages)

			if len(storages) == 0 {
				return services.ErrNoStorageProvided
			}

			data, err := storages[0].GetAll(cmd.Context())

			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CURRENCY\tRATE\tCREATED_AT")

			for _, rate := range data {
				fmt.Fprintf(w, "%s\t%s\t%s\n", rate.Currency, strconv.FormatFloat(rate.Rate, 'f', -1, 64), rate.CreatedAt.Format(time.RFC3339))
			}

			return w.Flush()
		},
	}
}
