// Package textutil holds the text cleanup transforms applied to
// extracted fields before they enter the reconciler. Every transform
// is idempotent: cleaning an already-clean string is a no-op.
package textutil

import (
	"html"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// non-breaking and narrow no-break spaces, common in French price and
// name markup, are not matched by \s
var nbspReplacer = strings.NewReplacer(" ", " ", " ", " ")

// StripTags removes HTML markup, keeping only text content.
func StripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	tokenizer := xhtml.NewTokenizer(strings.NewReader(s))
	var out strings.Builder
	for {
		tt := tokenizer.Next()
		if tt == xhtml.ErrorToken {
			return out.String()
		}
		if tt == xhtml.TextToken {
			out.Write(tokenizer.Text())
		}
	}
}

// DecodeEntities replaces HTML entities ("&amp;", "&#233;", ...) with
// the characters they stand for.
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}

// CollapseWhitespace folds runs of whitespace (including no-break
// spaces) into a single space and trims the ends.
func CollapseWhitespace(s string) string {
	s = nbspReplacer.Replace(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Clean applies the full normalization chain used for name, brand and
// description fields.
func Clean(s string) string {
	return CollapseWhitespace(DecodeEntities(StripTags(s)))
}
