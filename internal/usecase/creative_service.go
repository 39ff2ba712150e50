package usecase

import (
	"context"
	"fmt"
	"time"

	"adscout/internal/domain"
	"adscout/pkg/logger"
	"adscout/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CreativeService turns saved ads into AI image variants: the assistant
// describes the source creatives, then each variant is rendered on its own.
type CreativeService struct {
	repo        domain.CollectionRepository
	assistant   domain.AssistantClient
	generator   domain.ImageGenerator
	fetcher     domain.ImageFetcher
	store       domain.ImageStore
	logger      *logger.Logger
	metrics     *metrics.Metrics
	concurrency int
	maxImages   int
	imageSize   string
}

type CreativeConfig struct {
	DownloadConcurrency int
	MaxImages           int
	ImageSize           string
}

func NewCreativeService(
	repo domain.CollectionRepository,
	assistant domain.AssistantClient,
	generator domain.ImageGenerator,
	fetcher domain.ImageFetcher,
	store domain.ImageStore,
	logger *logger.Logger,
	metrics *metrics.Metrics,
	cfg CreativeConfig,
) *CreativeService {
	return &CreativeService{
		repo:        repo,
		assistant:   assistant,
		generator:   generator,
		fetcher:     fetcher,
		store:       store,
		logger:      logger,
		metrics:     metrics,
		concurrency: max(cfg.DownloadConcurrency, 1),
		maxImages:   cfg.MaxImages,
		imageSize:   cfg.ImageSize,
	}
}

// GenerateRequest asks for one variant of a saved ad's creative.
type GenerateRequest struct {
	Collection  string
	AdID        int64
	Base        map[string]any
	VariantName string
	Variant     any
	Size        string
}

// Analyze downloads the images of the given saved ads and asks the
// assistant for a base spec and variants. Ads without an image are skipped,
// as are images that fail to download.
func (s *CreativeService) Analyze(ctx context.Context, collection string, adIDs []int64) (*domain.CreativeSpec, error) {
	if s.assistant == nil {
		return nil, fmt.Errorf("assistant: %w", domain.ErrNotConfigured)
	}

	log := s.logger.WithContext(ctx)

	var urls []string
	for _, id := range adIDs {
		ad, err := s.repo.GetAd(ctx, collection, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load ad %d: %w", id, err)
		}
		if u, ok := ad.Ad.OriginalImageURL.(string); ok && u != "" {
			urls = append(urls, u)
		}
	}
	if s.maxImages > 0 && len(urls) > s.maxImages {
		urls = urls[:s.maxImages]
	}
	if len(urls) == 0 {
		return nil, domain.ErrNoImages
	}

	images, err := s.downloadImages(ctx, urls)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, domain.ErrNoImages
	}

	spec, err := s.assistant.AnalyzeImages(ctx, images)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze images: %w", err)
	}

	log.WithFields(map[string]any{
		"collection": collection,
		"ads":        len(adIDs),
		"images":     len(images),
		"variants":   len(spec.Variants),
	}).Info("Creative analysis completed")

	return spec, nil
}

// downloads concurrently and keeps the order of urls
func (s *CreativeService) downloadImages(ctx context.Context, urls []string) ([]domain.SourceImage, error) {
	results := make([]*domain.SourceImage, len(urls))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			img, err := s.fetcher.FetchImage(gCtx, u)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				s.logger.WithContext(ctx).WithError(err).WithField("url", u).Warn("Failed to download creative image, skipping")
				return nil
			}
			results[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to download images: %w", err)
	}

	images := make([]domain.SourceImage, 0, len(results))
	for _, img := range results {
		if img != nil {
			images = append(images, *img)
		}
	}
	return images, nil
}

// Generate renders one variant and records where the file came from.
func (s *CreativeService) Generate(ctx context.Context, req GenerateRequest) (*domain.GeneratedImage, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("image generator: %w", domain.ErrNotConfigured)
	}
	if req.Base == nil {
		return nil, fmt.Errorf("%w: base spec is required", domain.ErrInvalidRequest)
	}
	if req.Variant == nil {
		return nil, fmt.Errorf("%w: variant is required", domain.ErrInvalidRequest)
	}

	if _, err := s.repo.GetAd(ctx, req.Collection, req.AdID); err != nil {
		return nil, fmt.Errorf("failed to load ad %d: %w", req.AdID, err)
	}

	size := req.Size
	if size == "" {
		size = s.imageSize
	}

	prompt, err := BuildPromptText(req.Base, req.Variant, false)
	if err != nil {
		return nil, err
	}

	data, err := s.generator.GenerateImage(ctx, prompt, size)
	if err != nil {
		s.metrics.RecordGeneratedImage("failed")
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	displayPrompt, err := BuildPromptText(req.Base, req.Variant, true)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	path, err := s.store.Save(ctx, req.Collection, id+".png", data)
	if err != nil {
		s.metrics.RecordGeneratedImage("failed")
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	img := domain.GeneratedImage{
		ID:          id,
		Collection:  req.Collection,
		SavedAdID:   req.AdID,
		VariantName: req.VariantName,
		PromptText:  displayPrompt,
		FilePath:    path,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.RecordGeneratedImage(ctx, img); err != nil {
		s.metrics.RecordGeneratedImage("failed")
		// no provenance row, so the file would be orphaned
		if rmErr := s.store.Remove(ctx, path); rmErr != nil {
			s.logger.WithContext(ctx).WithError(rmErr).WithField("path", path).Warn("Failed to remove unrecorded image")
		}
		return nil, fmt.Errorf("failed to record generated image: %w", err)
	}

	s.metrics.RecordGeneratedImage("success")
	s.logger.WithContext(ctx).WithFields(map[string]any{
		"collection": req.Collection,
		"ad_id":      req.AdID,
		"variant":    req.VariantName,
		"path":       path,
	}).Info("Generated creative variant")

	return &img, nil
}
