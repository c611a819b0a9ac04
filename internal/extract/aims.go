package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/runcalcs/runscout/internal/race"
)

// AIMSCalendarRaces parses the tabular race calendar published by
// aims-worldrunning.org. Rows are expected as (date, race, city, country);
// rows that do not parse are skipped, not reported.
func AIMSCalendarRaces(html, pageURL string) []race.Race {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var races []race.Race
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		date := race.NormalizeDate(strings.TrimSpace(cells.Eq(0).Text()))
		if date == "" {
			return
		}

		nameCell := cells.Eq(1)
		name := strings.TrimSpace(nameCell.Find("a").First().Text())
		if name == "" {
			name = strings.TrimSpace(nameCell.Text())
		}
		if !race.IsMarathonName(name) {
			return
		}

		website := ""
		if href, ok := nameCell.Find("a").First().Attr("href"); ok {
			website = resolveHref(pageURL, href)
		}

		races = append(races, race.Race{
			Name:              name,
			StartDate:         date,
			City:              strings.TrimSpace(cells.Eq(2).Text()),
			Country:           strings.TrimSpace(cells.Eq(3).Text()),
			DistanceKm:        race.MarathonDistanceKm,
			Website:           website,
			Source:            race.SourceLabel(pageURL),
			EntryRequirements: NotSpecified,
			Status:            race.StatusScheduled,
		})
	})
	return races
}

// resolveHref resolves a possibly relative href against the page URL.
func resolveHref(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
