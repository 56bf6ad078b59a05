// Package htmlutil provides goquery helpers shared by the store
// scrapers, most importantly the first-match-wins selector chains the
// extractors use for field fallbacks.
package htmlutil

import (
	"bytes"
	"strings"

	"pricemonitor/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText returns the concatenated text content of a node and its
// descendants.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// Text returns the cleaned text of the first node a selection matches.
func Text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return textutil.Clean(sel.First().Text())
}

// FirstText tries each selector in order and returns the cleaned text
// of the first one that yields a non-empty result. This is the fallback
// chain primitive: once a selector produces a value, no further
// selectors are consulted.
func FirstText(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if text := Text(doc.Find(selector)); text != "" {
			return text
		}
	}
	return ""
}

// FirstAttr tries each selector in order and returns the named
// attribute of the first match that carries it.
func FirstAttr(doc *goquery.Document, attr string, selectors ...string) string {
	for _, selector := range selectors {
		value, ok := doc.Find(selector).First().Attr(attr)
		if ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
