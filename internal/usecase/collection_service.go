package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"adscout/internal/domain"
	"adscout/pkg/logger"
	"adscout/pkg/metrics"
)

// CollectionService manages collections and the ads saved into them
type CollectionService struct {
	repo    domain.CollectionRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewCollectionService(repo domain.CollectionRepository, logger *logger.Logger, metrics *metrics.Metrics) *CollectionService {
	return &CollectionService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *CollectionService) CreateCollection(ctx context.Context, name, description string) (*domain.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		s.record("create_collection", domain.ErrInvalidRequest)
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidRequest)
	}

	c, err := s.repo.CreateCollection(ctx, name, strings.TrimSpace(description))
	s.record("create_collection", err)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return c, nil
}

func (s *CollectionService) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	list, err := s.repo.ListCollections(ctx)
	s.record("list_collections", err)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	if list == nil {
		list = []domain.Collection{}
	}
	return list, nil
}

func (s *CollectionService) DeleteCollection(ctx context.Context, name string) error {
	err := s.repo.DeleteCollection(ctx, name)
	s.record("delete_collection", err)
	if err != nil {
		return fmt.Errorf("failed to delete collection %q: %w", name, err)
	}
	return nil
}

// SaveAd stores a canonical record. Saving an ad_archive_id that the
// collection already holds fails with domain.ErrAdAlreadySaved.
func (s *CollectionService) SaveAd(ctx context.Context, collection string, ad domain.CanonicalAdRecord, notes string) (*domain.SavedAd, error) {
	saved, err := s.repo.SaveAd(ctx, collection, ad, notes)
	s.record("save_ad", err)
	if err != nil {
		if errors.Is(err, domain.ErrAdAlreadySaved) {
			s.logger.WithContext(ctx).WithFields(map[string]any{
				"collection":    collection,
				"ad_archive_id": ad.AdArchiveID,
			}).Info("Ad already saved, skipping")
		}
		return nil, fmt.Errorf("failed to save ad: %w", err)
	}
	return saved, nil
}

func (s *CollectionService) ListAds(ctx context.Context, collection string) ([]domain.SavedAd, error) {
	ads, err := s.repo.ListAds(ctx, collection)
	s.record("list_ads", err)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	if ads == nil {
		ads = []domain.SavedAd{}
	}
	return ads, nil
}

func (s *CollectionService) GetAd(ctx context.Context, collection string, id int64) (*domain.SavedAd, error) {
	ad, err := s.repo.GetAd(ctx, collection, id)
	s.record("get_ad", err)
	if err != nil {
		return nil, fmt.Errorf("failed to get ad %d: %w", id, err)
	}
	return ad, nil
}

func (s *CollectionService) DeleteAd(ctx context.Context, collection string, id int64) error {
	err := s.repo.DeleteAd(ctx, collection, id)
	s.record("delete_ad", err)
	if err != nil {
		return fmt.Errorf("failed to delete ad %d: %w", id, err)
	}
	return nil
}

func (s *CollectionService) ListGeneratedImages(ctx context.Context, collection string) ([]domain.GeneratedImage, error) {
	images, err := s.repo.ListGeneratedImages(ctx, collection)
	s.record("list_images", err)
	if err != nil {
		return nil, fmt.Errorf("failed to list generated images: %w", err)
	}
	if images == nil {
		images = []domain.GeneratedImage{}
	}
	return images, nil
}

func (s *CollectionService) record(operation string, err error) {
	s.metrics.RecordCollectionOperation(operation, operationStatus(err))
}

func operationStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrAdAlreadySaved):
		return "duplicate"
	case errors.Is(err, domain.ErrCollectionNotFound), errors.Is(err, domain.ErrAdNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrMissingAdID):
		return "invalid"
	default:
		return "error"
	}
}
