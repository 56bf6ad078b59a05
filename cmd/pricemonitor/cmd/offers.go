package cmd

import (
	"context"
	"time"

	"pricemonitor/services/reconciler"

	"github.com/spf13/cobra"
)

var offersLimit int64

func init() {
	offersCmd.Flags().Int64Var(&offersLimit, "limit", 25, "Number of offers to show.")
	rootCmd.AddCommand(offersCmd)
}

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "List the most recent offers in the catalog, newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := readConfig()
		if err != nil {
			return err
		}
		storage, closeStorage, err := reconciler.NewMongoStorage(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer closeStorage(context.Background())

		offers, err := storage.RecentOffers(ctx, offersLimit)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader([]any{"Seen", "Store", "Sold by", "Amount", "Currency", "Availability", "Product"})
		for _, offer := range offers {
			t.AppendRow([]any{
				offer.Time.Format(time.RFC3339),
				offer.StoreID,
				offer.SoldBy,
				offer.Amount,
				offer.Currency,
				offer.Availability,
				offer.ProductID.Hex(),
			})
		}
		t.Render()
		return nil
	},
}
