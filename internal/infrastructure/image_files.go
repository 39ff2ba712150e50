package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"adscout/internal/domain"
	"adscout/pkg/metrics"
)

const maxImageBytes = 20 << 20

// HTTPImageFetcher implements domain.ImageFetcher for creative CDN URLs.
type HTTPImageFetcher struct {
	client  *http.Client
	metrics *metrics.Metrics
}

func NewHTTPImageFetcher(timeout time.Duration, metrics *metrics.Metrics) *HTTPImageFetcher {
	return &HTTPImageFetcher{
		client:  &http.Client{Timeout: timeout},
		metrics: metrics,
	}
}

func (f *HTTPImageFetcher) FetchImage(ctx context.Context, rawURL string) (*domain.SourceImage, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.metrics.RecordExternalAPIFailure("image_cdn", "request_creation")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.metrics.RecordExternalAPIFailure("image_cdn", "network_error")
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		f.metrics.RecordExternalAPICall("image_cdn", fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return nil, fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		f.metrics.RecordExternalAPIFailure("image_cdn", "read_body")
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageBytes {
		f.metrics.RecordExternalAPIFailure("image_cdn", "too_large")
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	mimeType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}

	f.metrics.RecordExternalAPICall("image_cdn", "success", duration)

	return &domain.SourceImage{
		Name:     imageName(rawURL),
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

func imageName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "image"
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "image"
	}
	return name
}

// FileImageStore implements domain.ImageStore on the local filesystem,
// one directory per collection.
type FileImageStore struct {
	root string
}

func NewFileImageStore(root string) *FileImageStore {
	return &FileImageStore{root: root}
}

func (s *FileImageStore) Save(_ context.Context, collection, name string, data []byte) (string, error) {
	dir := filepath.Join(s.root, filepath.Base(collection))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure image dir: %w", err)
	}

	p := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return p, nil
}

// Remove deletes a file previously returned by Save. Paths outside the
// store root are rejected.
func (s *FileImageStore) Remove(_ context.Context, p string) error {
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("remove image: %s is outside the image store", p)
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
