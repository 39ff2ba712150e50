package infrastructure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"adscout/pkg/logger"
	"adscout/pkg/metrics"
)

// ImageGenerator implements domain.ImageGenerator against an
// OpenAI-compatible images/generations endpoint.
type ImageGenerator struct {
	client  *http.Client
	url     string
	apiKey  string
	model   string
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewImageGenerator(url, apiKey, model string, timeout time.Duration, logger *logger.Logger, metrics *metrics.Metrics) *ImageGenerator {
	return &ImageGenerator{
		client:  &http.Client{Timeout: timeout},
		url:     url,
		apiKey:  apiKey,
		model:   model,
		logger:  logger,
		metrics: metrics,
	}
}

type imageGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

type imageGenerationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImage returns the decoded bytes of one generated image.
func (g *ImageGenerator) GenerateImage(ctx context.Context, prompt, size string) ([]byte, error) {
	start := time.Now()

	payload, err := json.Marshal(imageGenerationRequest{
		Model:  g.model,
		Prompt: prompt,
		Size:   size,
		N:      1,
	})
	if err != nil {
		g.metrics.RecordExternalAPIFailure("images", "json_marshal")
		return nil, fmt.Errorf("failed to marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		g.metrics.RecordExternalAPIFailure("images", "request_creation")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.RecordExternalAPIFailure("images", "network_error")
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		g.metrics.RecordExternalAPIFailure("images", "read_body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		g.metrics.RecordExternalAPICall("images", fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return nil, fmt.Errorf("image API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out imageGenerationResponse
	if err := json.Unmarshal(body, &out); err != nil {
		g.metrics.RecordExternalAPIFailure("images", "json_parse")
		return nil, fmt.Errorf("failed to parse image response: %w", err)
	}
	if len(out.Data) == 0 || out.Data[0].B64JSON == "" {
		g.metrics.RecordExternalAPIFailure("images", "empty_response")
		return nil, fmt.Errorf("image API returned no image data")
	}

	img, err := base64.StdEncoding.DecodeString(out.Data[0].B64JSON)
	if err != nil {
		g.metrics.RecordExternalAPIFailure("images", "b64_decode")
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	g.metrics.RecordExternalAPICall("images", "success", duration)
	g.logger.WithContext(ctx).WithFields(map[string]any{
		"model":    g.model,
		"size":     size,
		"bytes":    len(img),
		"duration": duration,
	}).Info("Generated image")

	return img, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
