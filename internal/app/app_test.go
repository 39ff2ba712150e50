package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"adscout/pkg/config"
	"adscout/pkg/logger"
	"adscout/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	return &config.Config{
		Server: config.ServerConfig{Port: "0", RequestTimeout: 5 * time.Second},
		Search: config.SearchConfig{
			WorkerPoolSize:     2,
			RequestTimeout:     5 * time.Second,
			RateLimitPerSecond: 5,
			RateLimitBurst:     1,
			DefaultCountry:     "US",
		},
		Creative: config.CreativeConfig{DownloadConcurrency: 2, MaxImages: 4, ImageSize: "1024x1024"},
		External: config.ExternalConfig{ApifyBaseURL: "http://127.0.0.1:0", ApifyActorID: "actor"},
		Storage:  config.StorageConfig{DatabasePath: filepath.Join(dir, "ads.db"), ImageDir: filepath.Join(dir, "images")},
		Logging:  config.LoggingConfig{Level: "panic"},
	}
}

func TestNew_WithoutAssistantDisablesCreative(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(t.Context(), testConfig(t), logger.Discard(), metrics.NewWithRegistry(reg))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })

	assert.Nil(t, a.Creative)
	assert.NotNil(t, a.Search)
	assert.NotNil(t, a.Collections)

	c, err := a.Collections.CreateCollection(t.Context(), "wired", "")
	require.NoError(t, err)
	assert.Equal(t, "ads_wired", c.Name)
}

func TestHandler_ServesHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(t.Context(), testConfig(t), logger.Discard(), metrics.NewWithRegistry(reg))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	w := httptest.NewRecorder()
	a.Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNew_BadDatabasePath(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	cfg.Storage.DatabasePath = filepath.Join(blocker, "ads.db")

	_, err := New(t.Context(), cfg, logger.Discard(), metrics.NewWithRegistry(prometheus.NewRegistry()))
	assert.Error(t, err)
}
