// Package fetch retrieves product pages and hands them to the store
// scrapers as parsed documents. It owns the HTTP client setup
// (cookies, user agent, cloudflare bypass, politeness rate limiting)
// so the scrapers only deal with content.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"time"

	"pricemonitor/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("lib/fetch")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Page is a fetched product page: the parsed markup plus, when the
// site embeds its state as a javascript global, that state as parsed
// JSON. Scrapers prefer State and fall back to selectors on Doc.
type Page struct {
	URL   *url.URL
	Doc   *goquery.Document
	State map[string]any
}

type ClientOptions struct {
	// javascript global to lift embedded page state from, e.g.
	// "window.__PRELOADED_STATE__"; empty disables state extraction
	StateVariable string
	// sustained request rate against the site; zero means unlimited
	RequestsPerSecond float64
	Timeout           time.Duration
	UserAgent         string
}

type Client struct {
	http     *resty.Client
	limiter  *rate.Limiter
	stateVar *regexp.Regexp
}

func NewClient(opts ClientOptions) (*Client, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "fetch/http")

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	var stateVar *regexp.Regexp
	if opts.StateVariable != "" {
		stateVar = regexp.MustCompile(
			`(?s)` + regexp.QuoteMeta(opts.StateVariable) + `\s*=\s*(\{.*?\});`,
		)
	}

	return &Client{
		http:     client,
		limiter:  limiter,
		stateVar: stateVar,
	}, nil
}

// HTTP exposes the underlying resty client, for collaborators like
// sitemap traversal that fetch non-product resources with the same
// cookies and headers.
func (c *Client) HTTP() *resty.Client {
	return c.http
}

// Get fetches one page, waiting on the rate limiter first.
func (c *Client) Get(ctx context.Context, link string) (*Page, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	res, err := c.http.R().SetContext(ctx).Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, err
	}
	if res.StatusCode() != 200 {
		err := fmt.Errorf("fetch %s: status %d", link, res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected status")
		return nil, err
	}

	pageURL := res.RawResponse.Request.URL

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}

	return &Page{
		URL:   pageURL,
		Doc:   doc,
		State: c.extractState(doc),
	}, nil
}

// extractState scans inline scripts for the configured state global
// and parses its object literal. Sites assign plain JSON here, so
// json.Unmarshal is enough.
func (c *Client) extractState(doc *goquery.Document) map[string]any {
	if c.stateVar == nil {
		return nil
	}
	var state map[string]any
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		groups := c.stateVar.FindStringSubmatch(sel.Text())
		if len(groups) < 2 {
			return true
		}
		if err := json.Unmarshal([]byte(groups[1]), &state); err != nil {
			return true
		}
		return false
	})
	return state
}

// ParsePage builds a Page from already-fetched markup. Used by tests
// and by anything replaying stored pages through the extractors.
func ParsePage(link string, body []byte, state map[string]any) (*Page, error) {
	pageURL, err := url.Parse(link)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &Page{URL: pageURL, Doc: doc, State: state}, nil
}
