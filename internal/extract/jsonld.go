// Package extract turns one fetched page into zero or more structured records.
// Extraction is layered: embedded JSON-LD first, then site-specific fallbacks,
// then generic text heuristics. Each layer is a pure function over
// (pageHTML, pageURL) so the layers stay independently testable.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/runcalcs/runscout/internal/article"
	"github.com/runcalcs/runscout/internal/race"
)

var raceEventTypes = map[string]struct{}{
	"Event":       {},
	"SportsEvent": {},
}

var articleTypes = map[string]struct{}{
	"Article":     {},
	"NewsArticle": {},
	"BlogPosting": {},
	"Report":      {},
}

// scriptBlocks returns the text of every JSON-LD script block on the page.
func scriptBlocks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var blocks []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	return blocks
}

// jsonldNodes parses one script block and flattens it into the object nodes it
// contains. A malformed block yields nothing; other blocks on the page still
// get their chance.
func jsonldNodes(block string) []map[string]any {
	var root any
	if err := json.Unmarshal([]byte(block), &root); err != nil {
		return nil
	}
	var nodes []map[string]any
	walkJSONLD(root, &nodes)
	return nodes
}

// walkJSONLD descends through the list/map/@graph shapes JSON-LD payloads
// come in, collecting every object node.
func walkJSONLD(v any, nodes *[]map[string]any) {
	switch n := v.(type) {
	case []any:
		for _, item := range n {
			walkJSONLD(item, nodes)
		}
	case map[string]any:
		*nodes = append(*nodes, n)
		if graph, ok := n["@graph"]; ok {
			walkJSONLD(graph, nodes)
		}
		if list, ok := n["itemListElement"]; ok {
			walkJSONLD(list, nodes)
		}
		if item, ok := n["item"]; ok {
			walkJSONLD(item, nodes)
		}
	}
}

// nodeHasType reports whether the node declares one of the wanted @type values.
// @type may be a string or a list of strings.
func nodeHasType(node map[string]any, wanted map[string]struct{}) bool {
	switch t := node["@type"].(type) {
	case string:
		_, ok := wanted[t]
		return ok
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				if _, match := wanted[s]; match {
					return true
				}
			}
		}
	}
	return false
}

func stringField(node map[string]any, key string) string {
	if s, ok := node[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// RacesFromJSONLD extracts marathon events from the page's structured data.
// A node must carry a marathon name and at least one parseable date to
// produce a record.
func RacesFromJSONLD(html, pageURL string) []race.Race {
	var races []race.Race
	for _, block := range scriptBlocks(html) {
		for _, node := range jsonldNodes(block) {
			if !nodeHasType(node, raceEventTypes) {
				continue
			}
			if r, ok := raceFromEventNode(node, pageURL); ok {
				races = append(races, r)
			}
		}
	}
	return races
}

func raceFromEventNode(node map[string]any, pageURL string) (race.Race, bool) {
	name := stringField(node, "name")
	if name == "" || !race.IsMarathonName(name) {
		return race.Race{}, false
	}

	start := race.NormalizeDate(stringField(node, "startDate"))
	end := race.NormalizeDate(stringField(node, "endDate"))
	if start == "" && end == "" {
		return race.Race{}, false
	}

	loc := locationFrom(node["location"])
	desc := stringField(node, "description")

	website := stringField(node, "url")
	if website == "" {
		website = pageURL
	}

	return race.Race{
		Name:              name,
		StartDate:         start,
		EndDate:           end,
		City:              loc.City,
		Region:            loc.Region,
		Country:           loc.Country,
		Latitude:          loc.Latitude,
		Longitude:         loc.Longitude,
		DistanceKm:        race.MarathonDistanceKm,
		Website:           website,
		Source:            race.SourceLabel(pageURL),
		SourceID:          stringField(node, "@id"),
		Description:       desc,
		EntryRequirements: EntryRequirements(desc),
		Status:            eventStatus(node),
	}, true
}

func eventStatus(node map[string]any) race.Status {
	status := strings.ToLower(stringField(node, "eventStatus"))
	switch {
	case strings.Contains(status, "cancelled"), strings.Contains(status, "canceled"):
		return race.StatusCancelled
	case strings.Contains(status, "scheduled"), strings.Contains(status, "rescheduled"):
		return race.StatusScheduled
	default:
		return race.StatusUnknown
	}
}

// ArticlesFromJSONLD extracts news articles from the page's structured data.
func ArticlesFromJSONLD(html, pageURL string) []article.Article {
	var articles []article.Article
	for _, block := range scriptBlocks(html) {
		for _, node := range jsonldNodes(block) {
			if !nodeHasType(node, articleTypes) {
				continue
			}
			title := stringField(node, "headline")
			if title == "" {
				title = stringField(node, "name")
			}
			if title == "" {
				continue
			}
			sourceURL := stringField(node, "url")
			if sourceURL == "" {
				sourceURL = mainEntityURL(node)
			}
			if sourceURL == "" {
				sourceURL = pageURL
			}
			articles = append(articles, article.Article{
				Title:     title,
				Summary:   article.TruncateSummary(stringField(node, "description")),
				SourceURL: sourceURL,
			})
		}
	}
	return articles
}

// mainEntityURL handles the string-or-object shape of mainEntityOfPage.
func mainEntityURL(node map[string]any) string {
	switch v := node["mainEntityOfPage"].(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		return stringField(v, "@id")
	}
	return ""
}
