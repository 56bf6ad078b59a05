package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"pricemonitor/lib/fetch"
	"pricemonitor/lib/fetch/sitemap"
	"pricemonitor/lib/scrapers"
	"pricemonitor/lib/telemetry"
	"pricemonitor/services/reconciler"

	"github.com/spf13/cobra"
)

var dryRun bool

func init() {
	scrapeCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Run the pipeline against an in-memory store and print what would be written.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [store-id ...]",
	Short: "Crawl the configured stores and reconcile their products into the catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := readConfig()
		if err != nil {
			return err
		}

		tel, err := telemetry.SetupFromEnv(ctx, "pricemonitor")
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		defer tel.Shutdown(context.Background())
		if verbose {
			telemetry.InstrumentPerfStats(ctx)
		}

		var storage reconciler.Storage
		var memory *reconciler.MemStorage
		if dryRun {
			memory = reconciler.NewMemStorage()
			storage = memory
		} else {
			mongoStorage, closeStorage, err := reconciler.NewMongoStorage(ctx, cfg.Mongo)
			if err != nil {
				return err
			}
			defer closeStorage(context.Background())
			storage = mongoStorage
		}
		service := reconciler.NewService(storage)

		storeIDs := args
		if len(storeIDs) == 0 {
			for id := range cfg.Stores {
				storeIDs = append(storeIDs, id)
			}
		}

		for _, storeID := range storeIDs {
			storeCfg, ok := cfg.Stores[storeID]
			if !ok || !storeCfg.Enabled {
				slog.Info("skipping store", "store", storeID, "configured", ok)
				continue
			}
			site, ok := scrapers.Sites[storeID]
			if !ok {
				return fmt.Errorf("no scraper registered for store %q", storeID)
			}
			if err := scrapeStore(ctx, service, site, storeCfg); err != nil {
				return fmt.Errorf("scrape %s: %w", storeID, err)
			}
		}

		if memory != nil {
			printDryRunSummary(memory)
		}
		return nil
	},
}

func scrapeStore(ctx context.Context, service *reconciler.Service, site scrapers.Site, cfg StoreConfig) error {
	client, err := fetch.NewClient(fetch.ClientOptions{
		StateVariable:     site.StateVariable,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if err != nil {
		return err
	}

	urls := append([]string(nil), cfg.StartURLs...)
	if cfg.UseSitemap {
		pattern := site.URLPattern
		if cfg.URLPattern != "" {
			pattern = cfg.URLPattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("url pattern: %w", err)
		}
		found, err := sitemap.Traverse(ctx, client.HTTP(), site.Robots, re)
		if err != nil {
			return err
		}
		urls = append(urls, found...)
	}
	if cfg.MaxPages > 0 && len(urls) > cfg.MaxPages {
		urls = urls[:cfg.MaxPages]
	}

	slog.Info("scraping store", "store", site.StoreID, "pages", len(urls))

	var processed, dropped int
	for _, pageURL := range urls {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		page, err := client.Get(ctx, pageURL)
		if err != nil {
			slog.Warn("fetch failed", "store", site.StoreID, "url", pageURL, "err", err)
			dropped++
			continue
		}
		rec, err := site.Extract(ctx, page)
		if err != nil {
			// a page missing its mandatory fields is dropped, not fatal
			slog.Warn("extraction failed", "store", site.StoreID, "url", pageURL, "err", err)
			dropped++
			continue
		}
		result, err := service.Process(ctx, rec)
		if err != nil {
			return err
		}
		slog.Debug("processed page",
			"store", site.StoreID,
			"url", pageURL,
			"outcome", result.Outcome,
		)
		processed++
	}

	slog.Info("store done", "store", site.StoreID, "processed", processed, "dropped", dropped)
	return nil
}

func printDryRunSummary(memory *reconciler.MemStorage) {
	products, offers, stores := memory.Snapshot()

	t := newTable()
	t.AppendHeader([]any{"Store", "Product", "Brand", "Amount", "Currency", "Availability"})
	for _, offer := range offers {
		name, brand := "", ""
		for _, p := range products {
			if p.ID == offer.ProductID {
				if len(p.Name) > 0 {
					name = p.Name[0]
				}
				if len(p.Brand) > 0 {
					brand = p.Brand[0]
				}
				break
			}
		}
		t.AppendRow([]any{offer.StoreID, name, brand, offer.Amount, offer.Currency, offer.Availability})
	}
	t.Render()

	slog.Info("dry run complete",
		"products", len(products),
		"offers", len(offers),
		"stores", len(stores),
	)
}
