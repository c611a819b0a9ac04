package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/runcalcs/runscout/internal/race"
)

// The generic fallback scans visible text for date-like tokens sitting next
// to a marathon-bearing phrase. It only runs when the structured layers found
// nothing, and it is deliberately paranoid: event names recovered this way
// pass through JSON-garbage and length filters before they are believed.

const (
	maxFallbackNameLen = 120
	minAlphaChars      = 5
)

var (
	isoLinePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s+(.+)$`)

	monthAlternatives = `(?:January|February|March|April|May|June|July|August|September|October|November|December)`

	namedDateLeading  = regexp.MustCompile(`^(` + monthAlternatives + `\s+\d{1,2},?\s+\d{4})\s+(.+)$`)
	namedDateTrailing = regexp.MustCompile(`^(.+?)\s*[-–—:|]?\s*(` + monthAlternatives + `\s+\d{1,2},?\s+\d{4})$`)

	// Tokens that mean the "name" is really a fragment of JSON that leaked
	// into the visible text.
	jsonGarbageTokens = []string{`{`, `}`, `\"`, `"@`, `@type`, `@context`, `startDate`, `endDate`, `addressLocality`, `":`}
)

// FallbackRaces scans the page's visible text line by line for races.
func FallbackRaces(html, pageURL string) []race.Race {
	var races []race.Race
	for _, line := range visibleTextLines(html) {
		date, name, ok := dateAndName(line)
		if !ok {
			continue
		}
		name, city, country := SplitNameLocation(name)
		name, ok = cleanCandidateName(name)
		if !ok {
			continue
		}
		races = append(races, race.Race{
			Name:              name,
			StartDate:         date,
			City:              city,
			Country:           country,
			DistanceKm:        race.MarathonDistanceKm,
			Website:           pageURL,
			Source:            race.SourceLabel(pageURL),
			EntryRequirements: NotSpecified,
			Status:            race.StatusUnknown,
		})
	}
	return races
}

// dateAndName matches one text line against the two supported shapes:
// an ISO date followed by a name, or a named-month date adjacent to a name.
func dateAndName(line string) (date, name string, ok bool) {
	if m := isoLinePattern.FindStringSubmatch(line); m != nil {
		return race.NormalizeDate(m[1]), m[2], race.NormalizeDate(m[1]) != ""
	}
	if m := namedDateLeading.FindStringSubmatch(line); m != nil {
		if d := race.NormalizeDate(m[1]); d != "" {
			return d, m[2], true
		}
	}
	if m := namedDateTrailing.FindStringSubmatch(line); m != nil {
		if d := race.NormalizeDate(m[2]); d != "" {
			return d, m[1], true
		}
	}
	return "", "", false
}

// cleanCandidateName applies the defensive filters to a putative race name.
func cleanCandidateName(raw string) (string, bool) {
	name := strings.TrimSpace(strings.Trim(raw, `-–—:|,"'`))
	if name == "" || !race.IsMarathonName(name) {
		return "", false
	}
	lower := strings.ToLower(name)
	for _, token := range jsonGarbageTokens {
		if strings.Contains(lower, strings.ToLower(token)) {
			return "", false
		}
	}
	alpha := 0
	for _, r := range name {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	if alpha < minAlphaChars {
		return "", false
	}
	if len(name) > maxFallbackNameLen {
		name = strings.TrimSpace(name[:maxFallbackNameLen])
	}
	return name, true
}

var (
	parenLocation = regexp.MustCompile(`^(.*?)\s*\(([^)]+)\)\s*$`)
	delimSplit    = regexp.MustCompile(`\s+[-–—|]\s+`)
)

// SplitNameLocation recovers an embedded "City, Country" suffix from a race
// name scraped off a calendar line. Supported shapes: a parenthesized suffix,
// a dash/pipe-delimited suffix, or trailing comma-separated segments.
func SplitNameLocation(raw string) (name, city, country string) {
	name = strings.TrimSpace(raw)

	if m := parenLocation.FindStringSubmatch(name); m != nil {
		if c, co, ok := cityCountry(m[2]); ok {
			return strings.TrimSpace(m[1]), c, co
		}
	}

	if parts := delimSplit.Split(name, -1); len(parts) > 1 {
		last := parts[len(parts)-1]
		if c, co, ok := cityCountry(last); ok {
			return strings.TrimSpace(strings.Join(parts[:len(parts)-1], " - ")), c, co
		}
	}

	if parts := strings.Split(name, ","); len(parts) >= 3 {
		c := strings.TrimSpace(parts[len(parts)-2])
		co := strings.TrimSpace(parts[len(parts)-1])
		if looksLikePlace(c) && looksLikePlace(co) {
			return strings.TrimSpace(strings.Join(parts[:len(parts)-2], ",")), c, co
		}
	}

	return name, "", ""
}

// cityCountry splits "City, Country" and rejects anything that does not look
// like two place names.
func cityCountry(s string) (city, country string, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return "", "", false
	}
	city = strings.TrimSpace(parts[0])
	country = strings.TrimSpace(parts[1])
	if !looksLikePlace(city) || !looksLikePlace(country) {
		return "", "", false
	}
	return city, country, true
}

func looksLikePlace(s string) bool {
	if s == "" || len(s) > 40 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) && r != '.' && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}

// visibleTextLines strips script and style content and returns the page's
// visible text split into trimmed lines.
func visibleTextLines(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	doc.Find("script, style, noscript").Remove()
	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
