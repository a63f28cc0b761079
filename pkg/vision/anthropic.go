package vision

import (
	"context"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const assessPrompt = `You are a renovation assessor for residential property.
Review the photos and listing description, then respond with a single JSON
object and nothing else:
{
  "overall_reno_level": "NONE" | "COSMETIC" | "MODERATE" | "MAJOR" | "FULL_GUT",
  "roof_condition": "OK" | "NEEDS_REPLACE",
  "structural_concerns": ["weatherboard rot", ...],
  "key_renovation_items": ["...", ...],
  "confidence": 0.0-1.0,
  "estimated_renovation_cost": <NZD figure, 0 if unsure>,
  "estimated_timeline_weeks": <weeks, 0 if unsure>
}`

// Option configures the Anthropic-backed client.
type Option func(*anthropicClient)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *anthropicClient) {
		c.model = model
	}
}

// WithMaxPhotos caps how many photos are attached per request.
func WithMaxPhotos(n int) Option {
	return func(c *anthropicClient) {
		if n > 0 {
			c.maxPhotos = n
		}
	}
}

type anthropicClient struct {
	client    sdk.Client
	model     string
	maxPhotos int
}

// NewAnthropic creates a vision client backed by the Anthropic API.
func NewAnthropic(apiKey string, opts ...Option) Client {
	c := &anthropicClient{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     "claude-haiku-4-5-20251001",
		maxPhotos: 6,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *anthropicClient) Assess(ctx context.Context, req Request) (*Report, error) {
	if len(req.PhotoURLs) == 0 {
		return nil, eris.New("vision: no photos to assess")
	}

	photos := req.PhotoURLs
	if len(photos) > c.maxPhotos {
		photos = photos[:c.maxPhotos]
	}

	blocks := make([]sdk.ContentBlockParamUnion, 0, len(photos)+1)
	for _, u := range photos {
		blocks = append(blocks, sdk.NewImageBlock(sdk.URLImageSourceParam{URL: u}))
	}

	var prompt strings.Builder
	prompt.WriteString("Property: " + req.Address + "\n")
	if req.Description != "" {
		prompt.WriteString("Listing description:\n" + req.Description + "\n")
	}
	prompt.WriteString("\nAssess the renovation scope.")
	blocks = append(blocks, sdk.NewTextBlock(prompt.String()))

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: 1024,
		System: []sdk.TextBlockParam{
			{Text: assessPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "vision: assess photos")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	report, err := ParseReport(text.String())
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ParseReport extracts the JSON report from a model response, tolerating
// surrounding prose or code fences.
func ParseReport(text string) (*Report, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, eris.New("vision: no JSON object in response")
	}

	var report Report
	if err := json.Unmarshal([]byte(text[start:end+1]), &report); err != nil {
		return nil, eris.Wrap(err, "vision: parse report")
	}

	report.Level = strings.ToUpper(strings.TrimSpace(report.Level))
	switch report.Level {
	case "NONE", "COSMETIC", "MODERATE", "MAJOR", "FULL_GUT":
	default:
		report.Level = "MODERATE"
	}
	if report.Confidence <= 0 {
		report.Confidence = 0.5
	}
	return &report, nil
}
