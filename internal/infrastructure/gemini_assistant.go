package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adscout/internal/domain"
	"adscout/pkg/logger"
	"adscout/pkg/metrics"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultAnalysisInstructions is the system instruction given to the vision
// model. The user turn carries images only.
const DefaultAnalysisInstructions = `You analyze advertising creatives.
Reply with exactly two fenced JSON blocks, each opened with ` + "```json" + `.
The first block is a JSON object describing the base image: subject, composition,
palette, typography, copy and an "instructions" object for an image generator.
The second block is a JSON object mapping short variant names to variant objects,
each describing one change to apply to the base image.`

// GeminiAssistant implements domain.AssistantClient with a Gemini vision model.
type GeminiAssistant struct {
	client       *genai.Client
	model        string
	instructions string
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewGeminiAssistant(ctx context.Context, apiKey, model string, logger *logger.Logger, metrics *metrics.Metrics) (*GeminiAssistant, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiAssistant{
		client:       client,
		model:        model,
		instructions: DefaultAnalysisInstructions,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

// AnalyzeImages sends images (and nothing else) to the model and parses the
// base spec and variants out of its reply.
func (a *GeminiAssistant) AnalyzeImages(ctx context.Context, images []domain.SourceImage) (*domain.CreativeSpec, error) {
	if len(images) == 0 {
		return nil, domain.ErrNoImages
	}

	start := time.Now()

	model := a.client.GenerativeModel(a.model)
	model.SetTemperature(0.2)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(a.instructions)}}

	parts := make([]genai.Part, 0, len(images))
	for _, img := range images {
		parts = append(parts, genai.ImageData(imageFormat(img.MIMEType), img.Data))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	duration := time.Since(start)
	if err != nil {
		a.metrics.RecordExternalAPIFailure("gemini", "generate_content")
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		a.metrics.RecordExternalAPIFailure("gemini", "empty_response")
		return nil, err
	}

	spec, err := ParseCreativeSpec(text)
	if err != nil {
		a.metrics.RecordExternalAPIFailure("gemini", "parse_output")
		return nil, err
	}

	a.metrics.RecordExternalAPICall("gemini", "success", duration)
	a.logger.WithContext(ctx).WithFields(map[string]any{
		"images":   len(images),
		"variants": len(spec.Variants),
		"duration": duration,
	}).Info("Analyzed creative images")

	return spec, nil
}

func (a *GeminiAssistant) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// ParseCreativeSpec takes the first two JSON blocks of an assistant reply as
// the base spec and the variants.
func ParseCreativeSpec(text string) (*domain.CreativeSpec, error) {
	blocks := ExtractJSONBlocks(text)
	if len(blocks) < 2 {
		return nil, domain.ErrAssistantOutput
	}

	base, err := decodeObject(blocks[0])
	if err != nil {
		return nil, fmt.Errorf("%w: base spec: %v", domain.ErrAssistantOutput, err)
	}
	variants, err := decodeObject(blocks[1])
	if err != nil {
		return nil, fmt.Errorf("%w: variants: %v", domain.ErrAssistantOutput, err)
	}

	return &domain.CreativeSpec{Base: base, Variants: variants}, nil
}

func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

// imageFormat maps a MIME type to the short format genai.ImageData expects.
func imageFormat(mimeType string) string {
	format := strings.TrimPrefix(strings.ToLower(mimeType), "image/")
	if i := strings.IndexByte(format, ';'); i >= 0 {
		format = format[:i]
	}
	switch format {
	case "", "octet-stream":
		return "png"
	case "jpg":
		return "jpeg"
	}
	return format
}
