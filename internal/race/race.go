// Package race defines the marathon race record and the rules for merging
// independently scraped copies of the same real-world event into one canonical
// entry. Sources disagree on punctuation, date precision, and how much of the
// location they publish, so identity here is deliberately approximate.
package race

import (
	"net/url"
	"strings"
	"time"
)

// MarathonDistanceKm is the only distance this crawler deals in.
const MarathonDistanceKm = 42.195

// Status represents the published state of a race.
type Status string

// Status values persisted in the snapshot.
const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusUnknown   Status = "unknown"
)

// Race is the canonical record for a single marathon. Dates are ISO-8601
// calendar dates ("2006-01-02") or empty when the source did not publish one.
type Race struct {
	Name              string   `json:"name"`
	StartDate         string   `json:"start_date,omitempty"`
	EndDate           string   `json:"end_date,omitempty"`
	City              string   `json:"city,omitempty"`
	Region            string   `json:"region,omitempty"`
	Country           string   `json:"country,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
	DistanceKm        float64  `json:"distance_km"`
	Website           string   `json:"website,omitempty"`
	Source            string   `json:"source,omitempty"`
	SourceID          string   `json:"source_id,omitempty"`
	Description       string   `json:"description,omitempty"`
	EntryRequirements string   `json:"entry_requirements,omitempty"`
	FirstSeen         string   `json:"first_seen,omitempty"`
	LastSeen          string   `json:"last_seen,omitempty"`
	LastVerified      string   `json:"last_verified,omitempty"`
	Status            Status   `json:"status,omitempty"`
}

// IsMarathonName reports whether name denotes a full marathon. Half marathons
// are a different product and must never enter the snapshot.
func IsMarathonName(name string) bool {
	lower := strings.ToLower(name)
	if !strings.Contains(lower, "marathon") {
		return false
	}
	if strings.Contains(lower, "half marathon") || strings.Contains(lower, "half-marathon") || strings.Contains(lower, "halfmarathon") {
		return false
	}
	return true
}

// NormalizeKey lowercases and collapses interior whitespace so that
// " City  Marathon " and "city marathon" compare equal.
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// SourceLabel derives a short source name from a URL, e.g.
// "https://www.worldmarathonmajors.com/x" -> "worldmarathonmajors.com".
func SourceLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// SameEvent is the approximate identity test between two race records.
// Names must match after normalization; city, country, website domain and
// start date are only compared when both sides carry them, and dates are
// allowed to differ by one calendar day.
func SameEvent(a, b Race) bool {
	if NormalizeKey(a.Name) != NormalizeKey(b.Name) {
		return false
	}
	if a.City != "" && b.City != "" && NormalizeKey(a.City) != NormalizeKey(b.City) {
		return false
	}
	if a.Country != "" && b.Country != "" && NormalizeKey(a.Country) != NormalizeKey(b.Country) {
		return false
	}
	if a.Website != "" && b.Website != "" && SourceLabel(a.Website) != SourceLabel(b.Website) {
		return false
	}
	if a.StartDate != "" && b.StartDate != "" {
		da, okA := ParseDate(a.StartDate)
		db, okB := ParseDate(b.StartDate)
		if okA && okB {
			diff := da.Sub(db)
			if diff < 0 {
				diff = -diff
			}
			if diff > 24*time.Hour {
				return false
			}
		}
	}
	return true
}

// Merge folds a fresh sighting of the same event into the kept record.
// Identity fields are never overwritten once set; blanks are filled in.
func (r *Race) Merge(in Race) {
	if in.LastSeen != "" {
		r.LastSeen = in.LastSeen
	}
	if r.LastVerified == "" && in.LastVerified != "" {
		r.LastVerified = in.LastVerified
	}
	if r.Website == "" {
		r.Website = in.Website
	}
	if r.StartDate == "" {
		r.StartDate = in.StartDate
	}
	if r.EndDate == "" {
		r.EndDate = in.EndDate
	}
	if r.City == "" {
		r.City = in.City
	}
	if r.Region == "" {
		r.Region = in.Region
	}
	if r.Country == "" {
		r.Country = in.Country
	}
	if r.Description == "" {
		r.Description = in.Description
	}
	if r.EntryRequirements == "" || r.EntryRequirements == "Not specified" {
		if in.EntryRequirements != "" {
			r.EntryRequirements = in.EntryRequirements
		}
	}
	if r.Latitude == nil {
		r.Latitude = in.Latitude
	}
	if r.Longitude == nil {
		r.Longitude = in.Longitude
	}
	if r.Status == "" || r.Status == StatusUnknown {
		if in.Status != "" {
			r.Status = in.Status
		}
	}
}
