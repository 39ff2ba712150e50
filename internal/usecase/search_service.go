package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"adscout/internal/domain"
	"adscout/internal/normalizer"
	"adscout/pkg/logger"
	"adscout/pkg/metrics"

	"github.com/go-playground/validator/v10"
)

type SearchService struct {
	client     domain.AdSearchClient
	validator  *validator.Validate
	logger     *logger.Logger
	metrics    *metrics.Metrics
	workerPool int
	country    string
}

func NewSearchService(
	client domain.AdSearchClient,
	logger *logger.Logger,
	metrics *metrics.Metrics,
	workerPool int,
	defaultCountry string,
) *SearchService {
	if workerPool < 1 {
		workerPool = 1
	}
	return &SearchService{
		client:     client,
		validator:  validator.New(),
		logger:     logger,
		metrics:    metrics,
		workerPool: workerPool,
		country:    defaultCountry,
	}
}

// PrepareQuery applies defaults and validates q. Validation failures wrap
// domain.ErrInvalidQuery.
func (s *SearchService) PrepareQuery(q domain.SearchQuery) (domain.SearchQuery, error) {
	if q.Country == "" && s.country != "" {
		q.Country = s.country
	}
	q = q.WithDefaults()

	if err := s.validator.Struct(q); err != nil {
		return q, fmt.Errorf("%w: %s", domain.ErrInvalidQuery, validationMessage(err))
	}
	if q.DateRange != nil && !q.DateRange.Valid() {
		return q, fmt.Errorf("%w: start date must not be after end date", domain.ErrInvalidQuery)
	}
	return q, nil
}

// Search runs a remote ad-library search and returns canonical records. The
// date filter is applied only when the query carries a range.
func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	start := time.Now()
	s.metrics.IncSearchJobsInProgress()
	defer s.metrics.DecSearchJobsInProgress()

	log := s.logger.WithContext(ctx)

	q, err := s.PrepareQuery(q)
	if err != nil {
		s.metrics.RecordSearchJob("failed", "validate", time.Since(start))
		return nil, err
	}

	log.WithFields(map[string]any{
		"domain":       q.Domain,
		"country":      q.Country,
		"status":       q.Status,
		"count":        q.Count,
		"exact_phrase": q.ExactPhrase,
		"date_filter":  q.DateRange != nil,
	}).Info("Starting ad library search")

	raw, err := s.client.SearchAds(ctx, q)
	if err != nil {
		s.metrics.RecordSearchJob("failed", "fetch", time.Since(start))
		return nil, fmt.Errorf("failed to search ad library: %w", err)
	}

	result := s.Normalize(ctx, raw, q.DateRange)

	duration := time.Since(start)
	s.metrics.RecordSearchJob("success", "complete", duration)

	log.WithFields(map[string]any{
		"duration": duration,
		"fetched":  result.Fetched,
		"returned": result.Total,
		"filtered": result.Filtered,
	}).Info("Ad library search completed")

	return result, nil
}

// Normalize converts raw items to canonical records in input order and, when
// r is non-nil, drops records whose start date falls outside it.
func (s *SearchService) Normalize(ctx context.Context, raw []domain.RawAdItem, r *domain.DateRange) *domain.SearchResult {
	records := s.normalizeWithWorkerPool(ctx, raw)
	s.metrics.RecordNormalized("ad_library", len(records))

	kept := records
	if r != nil {
		kept = make([]domain.CanonicalAdRecord, 0, len(records))
		for _, rec := range records {
			if normalizer.InDateRange(rec, *r) {
				kept = append(kept, rec)
			}
		}
	}

	filtered := len(records) - len(kept)
	if filtered > 0 {
		s.metrics.RecordFilteredOut(filtered)
	}

	return &domain.SearchResult{
		Data:     kept,
		Total:    len(kept),
		Fetched:  len(raw),
		Filtered: filtered,
	}
}

// normalizes items concurrently; results are written by index so order is kept
func (s *SearchService) normalizeWithWorkerPool(ctx context.Context, raw []domain.RawAdItem) []domain.CanonicalAdRecord {
	out := make([]domain.CanonicalAdRecord, len(raw))
	if len(raw) == 0 {
		return out
	}

	workers := min(s.workerPool, len(raw))
	jobs := make(chan int, len(raw))

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for i := range jobs {
				out[i] = normalizer.ExtractRecord(raw[i])
			}
		})
	}

	for i := range raw {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"records": len(raw),
		"workers": workers,
	}).Debug("Normalized ad records")

	return out
}

// validationMessage reports the first failing field of a validator error.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		if ve.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s", ve.Field(), ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("%s failed %s", ve.Field(), ve.Tag())
	}
	return err.Error()
}
