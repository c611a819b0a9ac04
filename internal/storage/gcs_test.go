package storage_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gcs "cloud.google.com/go/storage"
	"github.com/runcalcs/runscout/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// newTestGCS creates a GCS store pointed at a fake GCS server.
func newTestGCS(t *testing.T, handler http.Handler) (*storage.GCS, func()) {
	t.Helper()

	server := httptest.NewServer(handler)

	// Connect the client to the test server and disable authentication.
	client, err := gcs.NewClient(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)

	store, err := storage.NewGCS(client, storage.GCSConfig{
		Bucket:    "test-bucket",
		ProjectID: "test-project",
	})
	require.NoError(t, err)

	return store, server.Close
}

func TestGCS_Save(t *testing.T) {
	objectName := "races/latest.json"
	objectData := []byte(`{"count":2}`)

	// Simulates the GCS JSON API multipart upload endpoint.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/upload/storage/v1/b/test-bucket/o")
		assert.Equal(t, objectName, r.URL.Query().Get("name"))
		assert.Equal(t, "multipart", r.URL.Query().Get("uploadType"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), string(objectData))
		assert.Contains(t, string(body), "application/json")

		fmt.Fprintln(w, `{ "name": "`+objectName+`" }`)
	})

	store, cleanup := newTestGCS(t, handler)
	defer cleanup()

	err := store.Save(context.Background(), objectName, objectData)
	assert.NoError(t, err)
}

func TestGCS_Save_Error(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	store, cleanup := newTestGCS(t, handler)
	defer cleanup()

	err := store.Save(context.Background(), "races/latest.json", []byte("x"))
	assert.Error(t, err)
}

func TestGCS_Load(t *testing.T) {
	payload := `{"generated_at":"2026-08-30T06:00:00Z","count":0,"races":[]}`

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The client reads object media either via the JSON API alt=media
		// query or the XML-style download path; serve the payload in both
		// shapes and keep routing loose.
		fmt.Fprint(w, payload)
	})

	store, cleanup := newTestGCS(t, handler)
	defer cleanup()

	data, found, err := store.Load(context.Background(), "races/latest.json")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload, string(data))
}

func TestGCS_Load_NotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":404,"message":"Not Found"}}`, http.StatusNotFound)
	})

	store, cleanup := newTestGCS(t, handler)
	defer cleanup()

	data, found, err := store.Load(context.Background(), "races/missing.json")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestGCS_EnsureBucket_CreatesMissingBucket(t *testing.T) {
	var createdBody string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/b/test-bucket"):
			http.Error(w, `{"error":{"code":404,"message":"Not Found"}}`, http.StatusNotFound)
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/b"):
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			createdBody = string(body)
			fmt.Fprintln(w, `{ "name": "test-bucket" }`)
		default:
			http.Error(w, "unexpected request", http.StatusBadRequest)
		}
	})

	store, cleanup := newTestGCSWithOrigins(t, handler, []string{"https://runcalcs.com"})
	defer cleanup()

	err := store.EnsureBucket(context.Background())
	require.NoError(t, err)
	assert.Contains(t, createdBody, "test-bucket")
	assert.Contains(t, createdBody, "https://runcalcs.com")
}

func TestGCS_EnsureBucket_UpdatesExistingBucket(t *testing.T) {
	var patched bool

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprintln(w, `{ "name": "test-bucket" }`)
		case http.MethodPatch:
			patched = true
			fmt.Fprintln(w, `{ "name": "test-bucket" }`)
		default:
			http.Error(w, "unexpected request", http.StatusBadRequest)
		}
	})

	store, cleanup := newTestGCSWithOrigins(t, handler, []string{"https://runcalcs.com"})
	defer cleanup()

	err := store.EnsureBucket(context.Background())
	require.NoError(t, err)
	assert.True(t, patched)
}

func newTestGCSWithOrigins(t *testing.T, handler http.Handler, origins []string) (*storage.GCS, func()) {
	t.Helper()

	server := httptest.NewServer(handler)

	client, err := gcs.NewClient(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)

	store, err := storage.NewGCS(client, storage.GCSConfig{
		Bucket:         "test-bucket",
		ProjectID:      "test-project",
		AllowedOrigins: origins,
	})
	require.NoError(t, err)

	return store, server.Close
}

func TestNewGCS_Validation(t *testing.T) {
	_, err := storage.NewGCS(nil, storage.GCSConfig{Bucket: "b"})
	assert.Error(t, err)

	client := &gcs.Client{}
	_, err = storage.NewGCS(client, storage.GCSConfig{})
	assert.Error(t, err)
}
