package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/runcalcs/runscout/internal/race"
)

// worldmarathonmajors.com embeds its race data as a script-variable
// assignment rather than JSON-LD. The blob is usually valid JSON, but the
// site has shipped trailing commas and bare keys before, so a best-effort
// per-field recovery backs up the strict parse.

var (
	scriptDataPattern = regexp.MustCompile(`(?s)window\.__data\s*=\s*(\{.*?\})\s*;`)
	jsonStringValue   = `"\s*:\s*"((?:[^"\\]|\\.)*)"`
)

// MajorsRaces extracts races from a World Marathon Majors page.
func MajorsRaces(html, pageURL string) []race.Race {
	var races []race.Race
	for _, match := range scriptDataPattern.FindAllStringSubmatch(html, -1) {
		blob := match[1]
		for _, event := range majorsEventBlobs(blob) {
			if r, ok := majorsRaceFromBlob(event, pageURL); ok {
				races = append(races, r)
			}
		}
	}
	return races
}

// majorsEventBlobs returns the event objects inside a window.__data blob.
// A blob is either a single event or an object with an "events" list.
func majorsEventBlobs(blob string) []map[string]any {
	var root map[string]any
	if err := json.Unmarshal([]byte(blob), &root); err != nil {
		// Malformed JS-flavored JSON: treat the raw blob as one event and
		// let the regex recovery pull what it can.
		return []map[string]any{{"_raw": blob}}
	}
	if events, ok := root["events"].([]any); ok {
		var out []map[string]any
		for _, e := range events {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return []map[string]any{root}
}

func majorsRaceFromBlob(event map[string]any, pageURL string) (race.Race, bool) {
	raw, recovered := event["_raw"].(string)

	field := func(key string) string {
		if recovered {
			return RecoverJSONStringValue(raw, key)
		}
		return stringField(event, key)
	}

	name := field("name")
	if name == "" || !race.IsMarathonName(name) {
		return race.Race{}, false
	}
	date := race.NormalizeDate(field("date_start"))
	if date == "" {
		return race.Race{}, false
	}

	website := field("url")
	if website == "" {
		website = pageURL
	}

	return race.Race{
		Name:              name,
		StartDate:         date,
		City:              field("city"),
		Country:           field("country"),
		DistanceKm:        race.MarathonDistanceKm,
		Website:           website,
		Source:            race.SourceLabel(pageURL),
		SourceID:          field("id"),
		EntryRequirements: NotSpecified,
		Status:            race.StatusScheduled,
	}, true
}

// RecoverJSONStringValue pulls the string value for a key out of a
// malformed or partial JSON blob. This is string scraping, not parsing; it
// is a fallback of last resort and is only trusted for flat string fields.
func RecoverJSONStringValue(blob, key string) string {
	pattern, err := regexp.Compile(`"` + regexp.QuoteMeta(key) + jsonStringValue)
	if err != nil {
		return ""
	}
	match := pattern.FindStringSubmatch(blob)
	if match == nil {
		return ""
	}
	value := match[1]
	value = strings.ReplaceAll(value, `\"`, `"`)
	value = strings.ReplaceAll(value, `\\`, `\`)
	value = strings.ReplaceAll(value, `\/`, `/`)
	return strings.TrimSpace(value)
}
