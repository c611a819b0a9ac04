package extract

import (
	"net/url"
	"strings"

	"github.com/runcalcs/runscout/internal/article"
	"github.com/runcalcs/runscout/internal/race"
)

// PageRaces runs the layered race extraction for one page: JSON-LD first,
// site-specific passes for the domains we know publish more than their
// structured data says, and the generic text fallback only when everything
// else came up empty.
func PageRaces(html, pageURL string) []race.Race {
	races := RacesFromJSONLD(html, pageURL)

	host := hostOf(pageURL)
	if strings.Contains(host, "aims-worldrunning") {
		races = append(races, AIMSCalendarRaces(html, pageURL)...)
	}
	if strings.Contains(host, "worldmarathonmajors") {
		races = append(races, MajorsRaces(html, pageURL)...)
	}

	if len(races) == 0 {
		races = FallbackRaces(html, pageURL)
	}
	return races
}

// PageArticles runs the article extraction for one page: JSON-LD, then the
// title/meta-description fallback.
func PageArticles(html, pageURL string) []article.Article {
	articles := ArticlesFromJSONLD(html, pageURL)
	if len(articles) == 0 {
		if a, ok := FallbackArticle(html, pageURL); ok {
			articles = append(articles, a)
		}
	}
	return articles
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
