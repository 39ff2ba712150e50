package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"adscout/internal/domain"
	"adscout/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry())
}

type fakeSearchClient struct {
	items []domain.RawAdItem
	err   error
	got   domain.SearchQuery
	calls int
}

func (f *fakeSearchClient) SearchAds(_ context.Context, q domain.SearchQuery) ([]domain.RawAdItem, error) {
	f.calls++
	f.got = q
	return f.items, f.err
}

// memoryRepository is an in-memory domain.CollectionRepository for service tests.
type memoryRepository struct {
	mu          sync.Mutex
	collections map[string]domain.Collection
	ads         map[string][]domain.SavedAd
	images      []domain.GeneratedImage
	nextID      int64
	recordErr   error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		collections: make(map[string]domain.Collection),
		ads:         make(map[string][]domain.SavedAd),
	}
}

func (r *memoryRepository) CreateCollection(_ context.Context, name, description string) (*domain.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := domain.Collection{Name: "ads_" + name, Description: description}
	r.collections[c.Name] = c
	return &c, nil
}

func (r *memoryRepository) ListCollections(context.Context) ([]domain.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Collection
	for _, c := range r.collections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryRepository) GetCollection(_ context.Context, name string) (*domain.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[name]
	if !ok {
		return nil, domain.ErrCollectionNotFound
	}
	return &c, nil
}

func (r *memoryRepository) DeleteCollection(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[name]; !ok {
		return domain.ErrCollectionNotFound
	}
	delete(r.collections, name)
	delete(r.ads, name)
	return nil
}

func (r *memoryRepository) SaveAd(_ context.Context, collection string, ad domain.CanonicalAdRecord, notes string) (*domain.SavedAd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[collection]; !ok {
		return nil, domain.ErrCollectionNotFound
	}
	if ad.AdArchiveID == nil || ad.AdArchiveID == "" {
		return nil, domain.ErrMissingAdID
	}
	for _, existing := range r.ads[collection] {
		if existing.Ad.AdArchiveID == ad.AdArchiveID {
			return nil, domain.ErrAdAlreadySaved
		}
	}
	r.nextID++
	saved := domain.SavedAd{ID: r.nextID, Collection: collection, Ad: ad, Notes: notes}
	r.ads[collection] = append(r.ads[collection], saved)
	return &saved, nil
}

func (r *memoryRepository) ListAds(_ context.Context, collection string) ([]domain.SavedAd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[collection]; !ok {
		return nil, domain.ErrCollectionNotFound
	}
	return append([]domain.SavedAd(nil), r.ads[collection]...), nil
}

func (r *memoryRepository) GetAd(_ context.Context, collection string, id int64) (*domain.SavedAd, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ad := range r.ads[collection] {
		if ad.ID == id {
			return &ad, nil
		}
	}
	return nil, domain.ErrAdNotFound
}

func (r *memoryRepository) DeleteAd(_ context.Context, collection string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ads := r.ads[collection]
	for i, ad := range ads {
		if ad.ID == id {
			r.ads[collection] = append(ads[:i], ads[i+1:]...)
			return nil
		}
	}
	return domain.ErrAdNotFound
}

func (r *memoryRepository) RecordGeneratedImage(_ context.Context, img domain.GeneratedImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordErr != nil {
		return r.recordErr
	}
	r.images = append(r.images, img)
	return nil
}

func (r *memoryRepository) ListGeneratedImages(_ context.Context, collection string) ([]domain.GeneratedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.GeneratedImage
	for _, img := range r.images {
		if img.Collection == collection {
			out = append(out, img)
		}
	}
	return out, nil
}

type fakeAssistant struct {
	spec   *domain.CreativeSpec
	err    error
	images []domain.SourceImage
}

func (f *fakeAssistant) AnalyzeImages(_ context.Context, images []domain.SourceImage) (*domain.CreativeSpec, error) {
	f.images = images
	return f.spec, f.err
}

type fakeGenerator struct {
	prompt string
	size   string
	data   []byte
	err    error
}

func (f *fakeGenerator) GenerateImage(_ context.Context, prompt, size string) ([]byte, error) {
	f.prompt = prompt
	f.size = size
	return f.data, f.err
}

var errDownload = errors.New("download failed")

type fakeFetcher struct {
	failing map[string]bool
}

func (f *fakeFetcher) FetchImage(_ context.Context, url string) (*domain.SourceImage, error) {
	if f.failing[url] {
		return nil, errDownload
	}
	return &domain.SourceImage{Name: url, MIMEType: "image/png", Data: []byte(url)}, nil
}

type fakeStore struct {
	saved map[string][]byte
}

func (f *fakeStore) Save(_ context.Context, collection, name string, data []byte) (string, error) {
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	p := collection + "/" + name
	f.saved[p] = data
	return p, nil
}

func (f *fakeStore) Remove(_ context.Context, path string) error {
	delete(f.saved, path)
	return nil
}
