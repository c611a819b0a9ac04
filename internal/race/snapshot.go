package race

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the single JSON document persisted in object storage.
type Snapshot struct {
	GeneratedAt string `json:"generated_at"`
	Count       int    `json:"count"`
	Races       []Race `json:"races"`
}

// NewSnapshot wraps the given races with generation metadata.
func NewSnapshot(races []Race, generatedAt time.Time) Snapshot {
	if races == nil {
		races = []Race{}
	}
	return Snapshot{
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Count:       len(races),
		Races:       races,
	}
}

// Marshal renders the snapshot pretty-printed, the way the website reads it.
func (s Snapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal race snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a previously stored snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal race snapshot: %w", err)
	}
	return s, nil
}
