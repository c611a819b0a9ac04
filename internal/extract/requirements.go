package extract

import (
	"regexp"
	"strings"
)

// requirementPatterns maps description keywords to the short labels the
// website displays. Order is fixed so the joined output is deterministic.
var requirementPatterns = []struct {
	pattern *regexp.Regexp
	label   string
}{
	{regexp.MustCompile(`(?i)\b(?:lottery|ballot)\b`), "lottery"},
	{regexp.MustCompile(`(?i)qualif`), "qualification standard"},
	{regexp.MustCompile(`(?i)\bmembership\b`), "membership"},
	{regexp.MustCompile(`(?i)minimum age|age limit|years (?:of age )?or older`), "minimum age"},
	{regexp.MustCompile(`(?i)(?:entry|registration|race) fee`), "entry fee"},
	{regexp.MustCompile(`(?i)medical certificate`), "medical certificate"},
}

// NotSpecified is stored when a description mentions no known requirement.
const NotSpecified = "Not specified"

// EntryRequirements scans a free-text race description for known entry
// requirement keywords and returns the matched labels comma-joined.
func EntryRequirements(description string) string {
	if strings.TrimSpace(description) == "" {
		return NotSpecified
	}
	var labels []string
	for _, rp := range requirementPatterns {
		if rp.pattern.MatchString(description) {
			labels = append(labels, rp.label)
		}
	}
	if len(labels) == 0 {
		return NotSpecified
	}
	return strings.Join(labels, ", ")
}
