// Package scrapers indexes the per-store extractors so the pipeline
// can be pointed at a store by its id.
package scrapers

import (
	"context"

	"pricemonitor/lib/catalog"
	"pricemonitor/lib/fetch"
	"pricemonitor/lib/scrapers/iga"
	"pricemonitor/lib/scrapers/metro"
	"pricemonitor/lib/scrapers/toysrus"
	"pricemonitor/lib/scrapers/walmart"
)

// ExtractFunc turns one fetched page into a normalized record.
type ExtractFunc func(ctx context.Context, page *fetch.Page) (catalog.Record, error)

// Site describes one scrapable store: how to find its product pages
// and how to extract them.
type Site struct {
	StoreID string
	// robots.txt location, the root of sitemap discovery
	Robots string
	// default product-page url pattern for sitemap filtering
	URLPattern string
	// javascript global holding embedded page state, if the site has one
	StateVariable string
	Extract       ExtractFunc
}

var Sites = map[string]Site{
	walmart.StoreID: {
		StoreID:       walmart.StoreID,
		Robots:        "https://www.walmart.ca/robots.txt",
		URLPattern:    `/ip/`,
		StateVariable: walmart.StateVariable,
		Extract:       walmart.Extract,
	},
	toysrus.StoreID: {
		StoreID:    toysrus.StoreID,
		Robots:     "https://www.toysrus.ca/robots.txt",
		URLPattern: `/en/.+\.html`,
		Extract:    toysrus.Extract,
	},
	iga.StoreID: {
		StoreID:    iga.StoreID,
		Robots:     "https://www.iga.net/robots.txt",
		URLPattern: `/en/product/`,
		Extract:    iga.Extract,
	},
	metro.StoreID: {
		StoreID:    metro.StoreID,
		Robots:     "https://www.metro.ca/robots.txt",
		URLPattern: `/online-grocery/.+/p/`,
		Extract:    metro.Extract,
	},
}
