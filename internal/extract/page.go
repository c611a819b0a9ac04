package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/runcalcs/runscout/internal/article"
)

// FallbackArticle builds a single article from the page's title tag and meta
// description when no structured article was found. Returns false when the
// page has no usable title.
func FallbackArticle(html, pageURL string) (article.Article, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return article.Article{}, false
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return article.Article{}, false
	}

	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	return article.Article{
		Title:     title,
		Summary:   article.TruncateSummary(description),
		SourceURL: pageURL,
	}, true
}
