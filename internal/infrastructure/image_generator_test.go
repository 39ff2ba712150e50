package infrastructure

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"adscout/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageGenerator_GenerateImage(t *testing.T) {
	png := []byte("\x89PNG fake bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req imageGenerationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-image-1", req.Model)
		assert.Equal(t, "1024x1024", req.Size)
		assert.Equal(t, 1, req.N)
		assert.JSONEq(t, `{"variants":[{"mood":"calm"}]}`, req.Prompt)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(png)}},
		})
	}))
	defer server.Close()

	gen := NewImageGenerator(server.URL, "key", "gpt-image-1", 5*time.Second, logger.Discard(), newTestMetrics())
	img, err := gen.GenerateImage(t.Context(), `{"variants":[{"mood":"calm"}]}`, "1024x1024")
	require.NoError(t, err)
	assert.Equal(t, png, img)
}

func TestImageGenerator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		errText string
	}{
		{"api error", http.StatusBadRequest, `{"error":{"message":"bad size"}}`, "status 400"},
		{"no data", http.StatusOK, `{"data":[]}`, "no image data"},
		{"bad base64", http.StatusOK, `{"data":[{"b64_json":"%%%"}]}`, "decode image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			gen := NewImageGenerator(server.URL, "key", "m", 5*time.Second, logger.Discard(), newTestMetrics())
			_, err := gen.GenerateImage(t.Context(), "{}", "1024x1024")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestHTTPImageFetcher_FetchImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpegdata"))
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher(5*time.Second, newTestMetrics())

	img, err := fetcher.FetchImage(t.Context(), server.URL+"/creatives/ad.jpg?x=1")
	require.NoError(t, err)
	assert.Equal(t, "ad.jpg", img.Name)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, []byte("jpegdata"), img.Data)

	_, err = fetcher.FetchImage(t.Context(), server.URL+"/missing.jpg")
	assert.ErrorContains(t, err, "status 404")
}

func TestFileImageStore_Save(t *testing.T) {
	root := t.TempDir()
	store := NewFileImageStore(root)

	p, err := store.Save(t.Context(), "ads_spring", "abc.png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "ads_spring", "abc.png"), p)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)

	// path components cannot escape the root
	p, err = store.Save(t.Context(), "../evil", "../x.png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "evil", "x.png"), p)
}

func TestFileImageStore_Remove(t *testing.T) {
	root := t.TempDir()
	store := NewFileImageStore(root)

	p, err := store.Save(t.Context(), "ads_spring", "abc.png", []byte("img"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(t.Context(), p))
	_, err = os.Stat(p)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// already gone is fine
	assert.NoError(t, store.Remove(t.Context(), p))

	outside := filepath.Join(t.TempDir(), "keep.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	assert.Error(t, store.Remove(t.Context(), outside))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
