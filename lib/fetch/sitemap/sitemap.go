// Package sitemap discovers product page URLs the way the crawlers
// do: read robots.txt for sitemap locations, walk sitemap indexes into
// url sets, and keep the URLs matching a product-page pattern.
package sitemap

import (
	"context"
	"encoding/xml"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/go-resty/resty/v2"
)

var tracer = otel.Tracer("lib/fetch/sitemap")

type urlSet struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

type sitemapIndex struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// ParseRobots returns the sitemap URLs declared in a robots.txt body.
func ParseRobots(body string) []string {
	var sitemaps []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, ":")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			continue
		}
		if loc := strings.TrimSpace(value); loc != "" {
			sitemaps = append(sitemaps, loc)
		}
	}
	return sitemaps
}

// Parse reads one sitemap document. A <sitemapindex> yields child
// sitemap locations, a <urlset> yields page locations.
func Parse(body []byte) (children []string, pages []string, err error) {
	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		for _, s := range index.Sitemaps {
			children = append(children, strings.TrimSpace(s.Loc))
		}
		return children, nil, nil
	}

	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, nil, err
	}
	for _, u := range set.URLs {
		pages = append(pages, strings.TrimSpace(u.Loc))
	}
	return nil, pages, nil
}

// Traverse walks a site's sitemaps starting from its robots.txt and
// returns every page URL matching pattern. A nil pattern keeps all.
func Traverse(ctx context.Context, client *resty.Client, robotsURL string, pattern *regexp.Regexp) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Traverse")
	defer span.End()
	span.SetAttributes(attribute.String("robots", robotsURL))

	res, err := client.R().SetContext(ctx).Get(robotsURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch robots.txt")
		return nil, err
	}

	queue := ParseRobots(res.String())
	var pages []string

	for len(queue) > 0 {
		loc := queue[0]
		queue = queue[1:]

		res, err := client.R().SetContext(ctx).Get(loc)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch sitemap")
			return nil, err
		}
		children, locs, err := Parse(res.Body())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to parse sitemap")
			return nil, err
		}
		queue = append(queue, children...)
		for _, l := range locs {
			if pattern == nil || pattern.MatchString(l) {
				pages = append(pages, l)
			}
		}
	}

	span.SetAttributes(attribute.Int("pages", len(pages)))
	return pages, nil
}
