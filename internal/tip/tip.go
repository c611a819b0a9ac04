// Package tip generates the daily running tip via the OpenAI chat
// completions API and shapes it for storage.
package tip

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Categories are the tip topics a daily run picks from.
var Categories = []string{
	"running equipment",
	"health",
	"training",
	"rest",
	"recovery from injury",
	"nutrition",
	"mental wellbeing",
	"weight loss",
	"racing",
	"club running",
	"Parkruns",
}

// RunningTip is the stored shape of one generated tip.
type RunningTip struct {
	Category    string `json:"category"`
	Tip         string `json:"tip"`
	Model       string `json:"model"`
	GeneratedAt string `json:"generated_at"`
}

// Marshal renders the tip as indented JSON for storage.
func (t RunningTip) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tip: %w", err)
	}
	return data, nil
}

// ChooseCategory returns requested when it matches a known category
// (case-insensitive), otherwise a random category.
func ChooseCategory(requested string, rng *rand.Rand) string {
	want := strings.TrimSpace(strings.ToLower(requested))
	if want != "" {
		for _, c := range Categories {
			if strings.ToLower(c) == want {
				return c
			}
		}
	}
	return Categories[rng.Intn(len(Categories))]
}

// DatedKey builds the object key for the tip generated at runAt,
// for example "tips/running-tip-2026-08-30.json".
func DatedKey(prefix string, runAt time.Time) string {
	return fmt.Sprintf("%s-%s.json", prefix, runAt.UTC().Format("2006-01-02"))
}
