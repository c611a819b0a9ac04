// Package article defines the running-news article record and its
// deduplication rules. Article identity is stricter than race identity:
// normalized title plus exact source URL, because distinct outlets routinely
// reuse headlines for different stories.
package article

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// SummaryMaxLen bounds the stored summary, ellipsis included.
const SummaryMaxLen = 220

// Article is a single running-news item.
type Article struct {
	Title     string `json:"title"`
	Summary   string `json:"summary,omitempty"`
	SourceURL string `json:"source_url"`
}

// Snapshot is the single JSON document persisted in object storage.
type Snapshot struct {
	GeneratedAt string    `json:"generated_at"`
	Count       int       `json:"count"`
	Articles    []Article `json:"articles"`
}

// TruncateSummary trims a summary to SummaryMaxLen runes, appending an
// ellipsis when anything was cut.
func TruncateSummary(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= SummaryMaxLen {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:SummaryMaxLen-1])) + "…"
}

func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Dedupe collapses exact duplicates, keeping the first-seen instance of each
// (normalized title, source URL) pair, then sorts by title case-insensitively.
func Dedupe(articles []Article) []Article {
	type key struct {
		title string
		url   string
	}
	seen := make(map[key]struct{}, len(articles))
	var kept []Article
	for _, a := range articles {
		if strings.TrimSpace(a.Title) == "" {
			continue
		}
		k := key{title: normalizeTitle(a.Title), url: strings.TrimSpace(a.SourceURL)}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, a)
	}
	sortByTitle(kept)
	return kept
}

func sortByTitle(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return strings.ToLower(articles[i].Title) < strings.ToLower(articles[j].Title)
	})
}

// NewSnapshot wraps the given articles with generation metadata.
func NewSnapshot(articles []Article, generatedAt time.Time) Snapshot {
	if articles == nil {
		articles = []Article{}
	}
	return Snapshot{
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Count:       len(articles),
		Articles:    articles,
	}
}

// Marshal renders the snapshot pretty-printed.
func (s Snapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal article snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a previously stored snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal article snapshot: %w", err)
	}
	return s, nil
}
