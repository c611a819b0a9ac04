package crawl

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/runcalcs/runscout/internal/metrics"
)

// Fetcher fetches one page's HTML. The boolean is false when nothing usable
// came back; the crawl treats that as the silent end of a branch.
type Fetcher interface {
	Page(ctx context.Context, pageURL string) (string, bool)
}

// PageHandler receives each fetched page.
type PageHandler func(pageURL, html string)

// Result summarizes one crawl invocation.
type Result struct {
	PagesFetched int
	PagesFailed  int
}

// Crawler walks breadth-first from a seed list. The frontier is a plain FIFO
// queue bounded by a page-count cap; the visited set is keyed by the exact
// fragment-stripped URL string and lives only for this invocation.
type Crawler struct {
	fetcher  Fetcher
	policy   LinkPolicy
	maxPages int
	logger   *zap.Logger
}

// New constructs a Crawler.
func New(fetcher Fetcher, policy LinkPolicy, maxPages int, logger *zap.Logger) *Crawler {
	if maxPages <= 0 {
		maxPages = 1
	}
	return &Crawler{fetcher: fetcher, policy: policy, maxPages: maxPages, logger: logger}
}

// Run crawls until the frontier empties, the page cap is reached, or the
// context is done. Every fetched page is handed to handle before its
// outbound links are enqueued.
func (c *Crawler) Run(ctx context.Context, seeds []string, handle PageHandler) Result {
	var result Result
	frontier := make([]string, 0, len(seeds))
	visited := make(map[string]struct{})

	for _, seed := range seeds {
		frontier = append(frontier, stripFragment(seed))
	}

	for len(frontier) > 0 && result.PagesFetched < c.maxPages {
		if ctx.Err() != nil {
			c.logger.Warn("Crawl canceled", zap.Int("pages_fetched", result.PagesFetched))
			return result
		}

		pageURL := frontier[0]
		frontier = frontier[1:]

		if _, seen := visited[pageURL]; seen {
			continue
		}
		visited[pageURL] = struct{}{}

		html, ok := c.fetcher.Page(ctx, pageURL)
		metrics.ObservePage(pageURL, ok)
		if !ok {
			result.PagesFailed++
			continue
		}
		result.PagesFetched++

		handle(pageURL, html)

		links := DiscoverLinks(html, pageURL, c.policy)
		c.logger.Debug("Page processed",
			zap.String("url", pageURL),
			zap.Int("links_discovered", len(links)),
		)
		for _, link := range links {
			if _, seen := visited[link]; !seen {
				frontier = append(frontier, link)
			}
		}
	}
	return result
}

func stripFragment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	return u.String()
}
