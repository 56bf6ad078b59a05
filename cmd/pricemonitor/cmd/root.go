package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pricemonitor/lib/configutil"
	"pricemonitor/lib/telemetry"
	"pricemonitor/services/reconciler"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// StoreConfig controls one store's crawl.
type StoreConfig struct {
	Enabled bool `json:"enabled"`
	// explicit product page urls to scrape
	StartURLs []string `json:"start_urls"`
	// when true, product urls are discovered through the site's
	// sitemaps as well
	UseSitemap bool `json:"use_sitemap"`
	// overrides the store's default product-page pattern
	URLPattern        string  `json:"url_pattern"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	// safety valve for sitemap crawls; zero means no cap
	MaxPages int `json:"max_pages"`
}

type Config struct {
	Mongo  reconciler.MongoConfig `json:"mongo"`
	Stores map[string]StoreConfig `json:"stores"`
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "pricemonitor",
	Short: "pricemonitor scrapes product and pricing data from retail sites into a document store.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging/instrumentation.")
}

// signalContext returns a context that lives until Ctrl+C is pressed.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	return ctx
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadRecursively[Config]("config.json5")
	if os.IsNotExist(err) {
		return cfg, fmt.Errorf("no config.json5 found in this directory or any parent")
	}
	return cfg, err
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func Execute() {
	if err := rootCmd.ExecuteContext(signalContext()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
