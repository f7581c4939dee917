package research

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

var whitespaceRe = regexp.MustCompile(`[ \t]+`)

// ExtractText reduces a fetched HTML page to readable text. Readability
// extraction is tried first; pages it cannot parse (bare docket tables,
// minimal court portals) fall back to a tag-stripping pass with goquery.
func ExtractText(html, pageURL string) string {
	parsedURL, _ := url.Parse(pageURL)

	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return normalizeText(article.TextContent)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, nav, header, footer, aside").Remove()
	return normalizeText(doc.Find("body").Text())
}

// normalizeText collapses runs of spaces and blank lines so the analyzer
// sees one sentence per reasonable chunk.
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	var kept []string
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRe.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
