package cmd

import (
	"context"
	"time"

	"pricemonitor/services/reconciler"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(storesCmd)
}

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List the stores the catalog has seen.",
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

		stores, err := storage.ListStores(ctx)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader([]any{"Store", "Name", "Domain", "Region", "First seen"})
		for _, store := range stores {
			t.AppendRow([]any{
				store.ID,
				store.Name,
				store.Domain,
				store.Region,
				store.Created.Format(time.DateOnly),
			})
		}
		t.Render()
		return nil
	},
}
