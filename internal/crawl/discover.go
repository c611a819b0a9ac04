package crawl

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DiscoverLinks extracts anchor hrefs from one page, resolves them against
// the page URL, strips fragments, and returns the ones the policy admits.
// Order of first appearance is preserved; duplicates within the page collapse.
func DiscoverLinks(html, pageURL string, policy LinkPolicy) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""
		link := resolved.String()

		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		if policy.Allow(link) {
			links = append(links, link)
		}
	})
	return links
}
