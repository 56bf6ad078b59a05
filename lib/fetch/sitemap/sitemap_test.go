package sitemap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRobots(t *testing.T) {
	robots := `User-agent: *
Disallow: /checkout
Sitemap: https://www.walmart.ca/sitemap.xml

sitemap: https://www.walmart.ca/sitemap-fr.xml
Crawl-delay: 2
`
	require.Equal(t, []string{
		"https://www.walmart.ca/sitemap.xml",
		"https://www.walmart.ca/sitemap-fr.xml",
	}, ParseRobots(robots))
}

func TestParseRobotsWithoutSitemaps(t *testing.T) {
	require.Nil(t, ParseRobots("User-agent: *\nDisallow: /\n"))
}

func TestParseURLSet(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://www.walmart.ca/en/ip/widget/600019</loc></url>
  <url><loc>https://www.walmart.ca/en/ip/gadget/600020</loc></url>
</urlset>`

	children, pages, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Nil(t, children)
	require.Equal(t, []string{
		"https://www.walmart.ca/en/ip/widget/600019",
		"https://www.walmart.ca/en/ip/gadget/600020",
	}, pages)
}

func TestParseSitemapIndex(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://www.walmart.ca/sitemap-1.xml</loc></sitemap>
  <sitemap><loc>https://www.walmart.ca/sitemap-2.xml</loc></sitemap>
</sitemapindex>`

	children, pages, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Nil(t, pages)
	require.Equal(t, []string{
		"https://www.walmart.ca/sitemap-1.xml",
		"https://www.walmart.ca/sitemap-2.xml",
	}, children)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, _, err := Parse([]byte("not xml at all"))
	require.Error(t, err)
}
