package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adscout/internal/domain"
	"adscout/pkg/logger"
	"adscout/pkg/metrics"

	"golang.org/x/time/rate"
)

const adLibraryBaseURL = "https://www.facebook.com/ads/library/"

// Apify caps waitForFinish at 60 seconds per request.
const apifyWaitSeconds = 60

var errMissingDataset = errors.New("no dataset ID returned from Apify")

// ApifyClient implements domain.AdSearchClient by running the ad-library
// scraper actor and reading its default dataset.
type ApifyClient struct {
	client      *http.Client
	baseURL     string
	actorID     string
	token       string
	logger      *logger.Logger
	metrics     *metrics.Metrics
	rateLimiter *rate.Limiter
}

type ApifyClientConfig struct {
	BaseURL            string
	ActorID            string
	Token              string
	Timeout            time.Duration
	RateLimitPerSecond int
	RateLimitBurst     int
}

func NewApifyClient(cfg ApifyClientConfig, logger *logger.Logger, metrics *metrics.Metrics) *ApifyClient {
	return &ApifyClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		actorID:     cfg.ActorID,
		token:       cfg.Token,
		logger:      logger,
		metrics:     metrics,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst),
	}
}

// BuildLibraryURL returns the public ad-library search URL handed to the scraper.
func BuildLibraryURL(q domain.SearchQuery) string {
	term := strings.TrimSpace(q.Domain)
	searchType := "keyword_unordered"
	if q.ExactPhrase {
		term = `"` + term + `"`
		searchType = "keyword_exact_phrase"
	}

	u := fmt.Sprintf(
		"%s?active_status=%s&ad_type=all&country=%s&is_targeted_country=false&media_type=all&q=%s&search_type=%s",
		adLibraryBaseURL, q.Status, strings.ToUpper(q.Country), url.QueryEscape(term), searchType,
	)

	if q.DateRange != nil {
		u += "&start_date[min]=" + q.DateRange.Start.Format("2006-01-02")
		u += "&start_date[max]=" + q.DateRange.End.Format("2006-01-02")
	}
	return u
}

type apifyRun struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type apifyRunEnvelope struct {
	Data apifyRun `json:"data"`
}

func (r apifyRun) finished() bool {
	switch r.Status {
	case "SUCCEEDED", "FAILED", "ABORTED", "TIMED-OUT":
		return true
	}
	return false
}

// SearchAds runs the scraper for q and returns the raw dataset items.
func (c *ApifyClient) SearchAds(ctx context.Context, q domain.SearchQuery) ([]domain.RawAdItem, error) {
	start := time.Now()
	libraryURL := BuildLibraryURL(q)

	input := map[string]any{
		"urls":                       []map[string]string{{"url": libraryURL, "method": http.MethodGet}},
		"count":                      q.Count,
		"scrapeAdDetails":            true,
		"scrapePageAds.activeStatus": q.Status,
		"period":                     "",
	}

	run, err := c.startRun(ctx, input)
	if err != nil {
		return nil, err
	}

	for !run.finished() {
		run, err = c.waitRun(ctx, run.ID)
		if err != nil {
			return nil, err
		}
	}

	if run.Status != "SUCCEEDED" {
		c.metrics.RecordExternalAPIFailure("apify", "run_"+strings.ToLower(run.Status))
		return nil, fmt.Errorf("apify run %s finished with status %s", run.ID, run.Status)
	}
	if run.DefaultDatasetID == "" {
		c.metrics.RecordExternalAPIFailure("apify", "missing_dataset")
		return nil, errMissingDataset
	}

	items, err := c.datasetItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, err
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"domain":   q.Domain,
		"country":  q.Country,
		"run_id":   run.ID,
		"duration": time.Since(start),
		"records":  len(items),
	}).Info("Successfully fetched ad library results")

	return items, nil
}

func (c *ApifyClient) startRun(ctx context.Context, input map[string]any) (apifyRun, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "json_marshal")
		return apifyRun{}, fmt.Errorf("failed to marshal actor input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/acts/%s/runs?waitForFinish=%d", c.baseURL, url.PathEscape(c.actorID), apifyWaitSeconds)

	var env apifyRunEnvelope
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &env); err != nil {
		return apifyRun{}, fmt.Errorf("failed to start actor run: %w", err)
	}
	return env.Data, nil
}

func (c *ApifyClient) waitRun(ctx context.Context, runID string) (apifyRun, error) {
	endpoint := fmt.Sprintf("%s/actor-runs/%s?waitForFinish=%d", c.baseURL, url.PathEscape(runID), apifyWaitSeconds)

	var env apifyRunEnvelope
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &env); err != nil {
		return apifyRun{}, fmt.Errorf("failed to poll actor run: %w", err)
	}
	return env.Data, nil
}

func (c *ApifyClient) datasetItems(ctx context.Context, datasetID string) ([]domain.RawAdItem, error) {
	endpoint := fmt.Sprintf("%s/datasets/%s/items?format=json&clean=true", c.baseURL, url.PathEscape(datasetID))

	var items []domain.RawAdItem
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch dataset items: %w", err)
	}
	return items, nil
}

// do sends one rate-limited request and decodes a 2xx JSON body into out.
func (c *ApifyClient) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	start := time.Now()

	// Apply rate limiting
	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "rate_limit")
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "request_creation")
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "network_error")
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordExternalAPICall("apify", fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return fmt.Errorf("apify API returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "read_body")
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "json_parse")
		return fmt.Errorf("failed to parse response: %w", err)
	}

	c.metrics.RecordExternalAPICall("apify", "success", duration)
	return nil
}
