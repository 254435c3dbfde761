package goji

import (
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

var (
	minifier *minify.M
	once     sync.Once
)

// getMinifier returns the shared HTML minifier. Document tags, end tags and default
// attribute values are kept so minified output parses to the same tree.
func getMinifier() *minify.M {
	once.Do(func() {
		minifier = minify.New()
		minifier.Add("text/html", &html.Minifier{
			KeepDocumentTags:    true,
			KeepEndTags:         true,
			KeepDefaultAttrVals: true,
			KeepQuotes:          true,
		})
	})
	return minifier
}

// minifyHTML collapses insignificant whitespace in rendered output.
func minifyHTML(htmlContent string) string {
	if !strings.Contains(htmlContent, "<") {
		return strings.Join(strings.Fields(htmlContent), " ")
	}

	minified, err := getMinifier().String("text/html", htmlContent)
	if err != nil {
		// fall back to the unminified output
		return htmlContent
	}
	return minified
}
