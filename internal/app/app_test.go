package app_test

import (
	"context"
	"testing"

	"github.com/runcalcs/runscout/internal/app"
	"github.com/runcalcs/runscout/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestNew_DefaultProviders(t *testing.T) {
	cfg := baseConfig(t)

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Logger)
	assert.NotNil(t, a.Store)
	assert.NotNil(t, a.Secrets)
	assert.NotNil(t, a.Publisher)
	assert.NotNil(t, a.Clock)
	assert.NotNil(t, a.Fetcher)
}

func TestNew_LocalStore(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Storage.Provider = "local"
	cfg.Storage.LocalDir = t.TempDir()

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Store.Save(context.Background(), "k.json", []byte("{}")))
	_, found, err := a.Store.Load(context.Background(), "k.json")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestNew_UnknownStorageProvider(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Storage.Provider = "s3"

	_, err := app.New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown storage provider")
}

func TestJobs_FromContainer(t *testing.T) {
	cfg := baseConfig(t)

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	races, err := a.RaceJob()
	require.NoError(t, err)
	assert.NotNil(t, races)

	articles, err := a.ArticleJob()
	require.NoError(t, err)
	assert.NotNil(t, articles)
}

func TestTipJob_ResolvesKeyFromEnv(t *testing.T) {
	t.Setenv("RUNSCOUT_TEST_OPENAI_KEY", "sk-container-test")

	cfg := baseConfig(t)
	cfg.Secrets.Name = "RUNSCOUT_TEST_OPENAI_KEY"

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	tips, err := a.TipJob(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tips)
}

func TestTipJob_MissingSecret(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Secrets.Name = "RUNSCOUT_TEST_OPENAI_KEY_MISSING"

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.TipJob(context.Background())
	assert.Error(t, err)
}
