// -----------------------------------------------------------------------
// Content Extractor - Main-content extraction from documentation pages
// -----------------------------------------------------------------------

package crawler

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// Content-region selectors in priority order. The first selector whose text
// is non-trivial wins; documentation generators (Docusaurus, MkDocs, Sphinx)
// are all covered by one of these.
var contentSelectors = []string{
	"article",
	".main-wrapper",
	".container",
	".theme-doc-markdown",
	".markdown",
	"main",
	".doc-content",
	".docs-content",
}

// Elements removed from the document before any region selection.
var strippedElements = "script, style, nav, header, footer, aside"

// Navigation chrome removed from inside the chosen content region.
var strippedInnerElements = ".sidebar, .navigation, .menu"

// ContentExtractor pulls the main text out of an HTML page. Output format is
// "text" (rendered text) or "markdown" (html-to-markdown conversion of the
// chosen region).
type ContentExtractor struct {
	outputFormat string
	converter    *md.Converter
	logger       arbor.ILogger
}

// NewContentExtractor creates an extractor for the given output format.
func NewContentExtractor(outputFormat string, logger arbor.ILogger) *ContentExtractor {
	return &ContentExtractor{
		outputFormat: outputFormat,
		converter:    md.NewConverter("", true, nil),
		logger:       logger,
	}
}

// Extract returns the page's main content. Falls back to the whole body when
// no priority selector matches anything substantial.
func (ce *ContentExtractor) Extract(html string, sourceURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML for %s: %w", sourceURL, err)
	}

	doc.Find(strippedElements).Remove()

	region := ce.selectRegion(doc)
	region.Find(strippedInnerElements).Remove()

	if ce.outputFormat == "markdown" {
		regionHTML, err := goquery.OuterHtml(region)
		if err != nil {
			return "", fmt.Errorf("failed to serialize content region for %s: %w", sourceURL, err)
		}
		markdown, err := ce.converter.ConvertString(regionHTML)
		if err != nil {
			return "", fmt.Errorf("markdown conversion failed for %s: %w", sourceURL, err)
		}
		return strings.TrimSpace(markdown), nil
	}

	return strings.TrimSpace(region.Text()), nil
}

// selectRegion finds the first priority selector with meaningful text.
func (ce *ContentExtractor) selectRegion(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		selection := doc.Find(selector).First()
		if selection.Length() == 0 {
			continue
		}
		if len(strings.TrimSpace(selection.Text())) > 0 {
			ce.logger.Debug().Str("selector", selector).Msg("Content region selected")
			return selection
		}
	}
	return doc.Find("body").First()
}

// ExtractTitle returns the page title, preferring the first h1 inside the
// document over the <title> element.
func (ce *ContentExtractor) ExtractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
