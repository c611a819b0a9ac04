package job_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/runcalcs/runscout/internal/article"
	"github.com/runcalcs/runscout/internal/job"
	"github.com/runcalcs/runscout/internal/metrics"
	"github.com/runcalcs/runscout/internal/race"
	"github.com/runcalcs/runscout/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	metrics.Init()
	m.Run()
}

// fixedClock returns the same instant on every call.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// fakeFetcher serves canned HTML per URL.
type fakeFetcher struct {
	pages map[string]string
}

func (f fakeFetcher) Page(_ context.Context, pageURL string) (string, bool) {
	html, ok := f.pages[pageURL]
	return html, ok
}

// fakeGenerator returns a fixed tip.
type fakeGenerator struct {
	text string
	err  error
}

func (g fakeGenerator) Generate(context.Context, string) (string, error) {
	return g.text, g.err
}

// recordingPublisher captures published payloads.
type recordingPublisher struct {
	payloads []any
}

func (p *recordingPublisher) Publish(_ context.Context, payload any) (string, error) {
	p.payloads = append(p.payloads, payload)
	return "msg-1", nil
}

const racePageHTML = `<html><head>
<script type="application/ld+json">
{
  "@type": "SportsEvent",
  "name": "Lakeside Marathon",
  "startDate": "2031-04-12",
  "location": {"@type": "Place", "address": {"addressLocality": "Lakeside", "addressCountry": "Finland"}},
  "url": "https://lakesidemarathon.fi"
}
</script>
</head><body></body></html>`

const articlePageHTML = `<html><head>
<script type="application/ld+json">
{
  "@type": "NewsArticle",
  "headline": "Training Through Winter",
  "description": "How to keep your mileage up when the weather turns.",
  "url": "https://news.example.com/winter-training"
}
</script>
</head><body></body></html>`

func newRaceJob(t *testing.T, store storage.Store, pub *recordingPublisher, now time.Time) *job.RaceJob {
	t.Helper()

	fetcher := fakeFetcher{pages: map[string]string{
		"https://races.example.com/calendar": racePageHTML,
	}}
	j, err := job.NewRaceJob(
		job.RaceConfig{
			Bucket:   "test-bucket",
			Key:      "races/marathons.json",
			Seeds:    []string{"https://races.example.com/calendar"},
			MaxPages: 5,
		},
		store, fetcher, pub, fixedClock{now: now}, zap.NewNop(),
	)
	require.NoError(t, err)
	return j
}

func TestRaceJob_Run(t *testing.T) {
	now := time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC)
	store := storage.NewMemory()
	pub := &recordingPublisher{}

	j := newRaceJob(t, store, pub, now)
	summary, err := j.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "races", summary.Job)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 1, summary.Pages)
	assert.Equal(t, 1, summary.Discovered)
	assert.Equal(t, 0, summary.Existing)
	// One crawled race plus the curated dateless majors.
	assert.Equal(t, 1+len(race.Curated()), summary.Stored)

	data, found, err := store.Load(context.Background(), "races/marathons.json")
	require.NoError(t, err)
	require.True(t, found)

	snapshot, err := race.UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, summary.Stored, snapshot.Count)

	// Dated races sort before the dateless curated entries.
	require.NotEmpty(t, snapshot.Races)
	first := snapshot.Races[0]
	assert.Equal(t, "Lakeside Marathon", first.Name)
	assert.Equal(t, "2031-04-12", first.StartDate)
	assert.Equal(t, now.Format(time.RFC3339), first.FirstSeen)

	require.Len(t, pub.payloads, 1)
}

func TestRaceJob_SecondRunIsStable(t *testing.T) {
	now := time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC)
	store := storage.NewMemory()

	j := newRaceJob(t, store, &recordingPublisher{}, now)
	first, err := j.Run(context.Background())
	require.NoError(t, err)

	later := now.Add(24 * time.Hour)
	j2 := newRaceJob(t, store, &recordingPublisher{}, later)
	second, err := j2.Run(context.Background())
	require.NoError(t, err)

	// Same input pages: the snapshot neither grows nor shrinks, and the
	// original first-seen stamp survives the merge.
	assert.Equal(t, first.Stored, second.Stored)
	assert.Equal(t, first.Stored, second.Existing)

	data, _, err := store.Load(context.Background(), "races/marathons.json")
	require.NoError(t, err)
	snapshot, err := race.UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, now.Format(time.RFC3339), snapshot.Races[0].FirstSeen)
	assert.Equal(t, later.Format(time.RFC3339), snapshot.Races[0].LastSeen)
}

func TestRaceJob_LoadError(t *testing.T) {
	now := time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC)
	store := storage.NewMemory()
	require.NoError(t, store.Save(context.Background(), "races/marathons.json", []byte("not json")))

	j := newRaceJob(t, store, &recordingPublisher{}, now)
	_, err := j.Run(context.Background())
	assert.Error(t, err)
}

func TestArticleJob_Run(t *testing.T) {
	now := time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC)
	store := storage.NewMemory()
	pub := &recordingPublisher{}

	fetcher := fakeFetcher{pages: map[string]string{
		"https://news.example.com/": articlePageHTML,
	}}
	j, err := job.NewArticleJob(
		job.ArticleConfig{
			Bucket:   "test-bucket",
			Key:      "news/articles.json",
			Seeds:    []string{"https://news.example.com/"},
			MaxPages: 5,
		},
		store, fetcher, pub, fixedClock{now: now}, zap.NewNop(),
	)
	require.NoError(t, err)

	summary, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stored)

	data, found, err := store.Load(context.Background(), "news/articles.json")
	require.NoError(t, err)
	require.True(t, found)

	snapshot, err := article.UnmarshalSnapshot(data)
	require.NoError(t, err)
	require.Len(t, snapshot.Articles, 1)
	assert.Equal(t, "Training Through Winter", snapshot.Articles[0].Title)
	assert.Equal(t, "https://news.example.com/winter-training", snapshot.Articles[0].SourceURL)
}

func TestArticleJob_KeepsFirstSeenRecord(t *testing.T) {
	now := time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC)
	store := storage.NewMemory()

	prior := article.NewSnapshot([]article.Article{{
		Title:     "Training Through Winter",
		Summary:   "The original summary.",
		SourceURL: "https://news.example.com/winter-training",
	}}, now.Add(-24*time.Hour))
	data, err := prior.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "news/articles.json", data))

	fetcher := fakeFetcher{pages: map[string]string{
		"https://news.example.com/": articlePageHTML,
	}}
	j, err := job.NewArticleJob(
		job.ArticleConfig{
			Bucket:   "test-bucket",
			Key:      "news/articles.json",
			Seeds:    []string{"https://news.example.com/"},
			MaxPages: 5,
		},
		store, fetcher, &recordingPublisher{}, fixedClock{now: now}, zap.NewNop(),
	)
	require.NoError(t, err)

	summary, err := j.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stored)

	stored, _, err := store.Load(context.Background(), "news/articles.json")
	require.NoError(t, err)
	snapshot, err := article.UnmarshalSnapshot(stored)
	require.NoError(t, err)
	require.Len(t, snapshot.Articles, 1)
	assert.Equal(t, "The original summary.", snapshot.Articles[0].Summary)
}

func TestTipJob_Run(t *testing.T) {
	now := time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC)
	store := storage.NewMemory()
	pub := &recordingPublisher{}

	j, err := job.NewTipJob(
		job.TipConfig{
			Bucket:    "test-bucket",
			KeyPrefix: "running-tips/tip",
			Model:     "gpt-4o-mini",
		},
		store, fakeGenerator{text: "Take one full rest day per week."}, pub, fixedClock{now: now}, zap.NewNop(),
	)
	require.NoError(t, err)

	summary, err := j.Run(context.Background(), "rest")
	require.NoError(t, err)
	assert.Equal(t, "running-tips/tip-2026-08-30.json", summary.Key)
	assert.Equal(t, 1, summary.Stored)

	data, found, err := store.Load(context.Background(), summary.Key)
	require.NoError(t, err)
	require.True(t, found)

	var stored map[string]string
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, map[string]string{
		"category":     "rest",
		"tip":          "Take one full rest day per week.",
		"model":        "gpt-4o-mini",
		"generated_at": "2026-08-30T06:00:00Z",
	}, stored)
}

func TestTipJob_GeneratorError(t *testing.T) {
	now := time.Date(2026, time.August, 30, 6, 0, 0, 0, time.UTC)
	store := storage.NewMemory()

	j, err := job.NewTipJob(
		job.TipConfig{Bucket: "b", KeyPrefix: "running-tips/tip"},
		store, fakeGenerator{err: fmt.Errorf("rate limited")}, &recordingPublisher{}, fixedClock{now: now}, zap.NewNop(),
	)
	require.NoError(t, err)

	_, err = j.Run(context.Background(), "rest")
	assert.ErrorContains(t, err, "rate limited")
	assert.Empty(t, store.Keys())
}
