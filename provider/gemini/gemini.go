// Package gemini provides an imageedit.Provider using Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mhpenta/imageedit"
	"google.golang.org/genai"
)

// Model name constants - the actual API model names.
const (
	APIModelFlashImage = "gemini-2.5-flash-image"
	APIModelProImage   = "gemini-3-pro-image-preview"
	APIModelFlashExp   = "gemini-2.0-flash-exp"
)

// GeminiProvider implements imageedit.Provider using Google's Gemini API.
type GeminiProvider struct {
	client         *genai.Client
	safetySettings []*genai.SafetySetting
	mu             sync.RWMutex
}

// Ensure GeminiProvider implements the interface.
var _ imageedit.Provider = (*GeminiProvider)(nil)

// New creates a provider from a ProviderConfig. The client is built once and
// owned by the returned provider.
func New(ctx context.Context, config *imageedit.ProviderConfig) (*GeminiProvider, error) {
	if config == nil {
		config = &imageedit.ProviderConfig{}
	}

	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	}

	if config.APIKey != "" {
		clientCfg.APIKey = config.APIKey
	}
	// If APIKey is empty, the SDK will try GOOGLE_API_KEY or GEMINI_API_KEY env vars

	if config.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// NewWithAPIKey creates a provider with an API key for Gemini API.
func NewWithAPIKey(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	return New(ctx, &imageedit.ProviderConfig{
		Provider: imageedit.ProviderGeminiAPI,
		APIKey:   apiKey,
	})
}

// SetSafetySettings configures default safety settings for all requests.
// These can be overridden per-request via GenerateConfig.SafetySettings.
func (g *GeminiProvider) SetSafetySettings(settings []imageedit.SafetySetting) *GeminiProvider {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.safetySettings = convertSafetySettings(settings)
	return g
}

// Send runs one generateContent call with history followed by the current message.
func (g *GeminiProvider) Send(ctx context.Context, req *imageedit.Request) (*imageedit.Response, error) {
	config := req.Config
	if config == nil {
		config = imageedit.DefaultConfig()
	}

	modelName := g.resolveModel(config)

	contents, err := toContents(append(append([]imageedit.WireMessage{}, req.History...), req.Message))
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	genConfig := buildGenerateContentConfig(config, g.safetySettings)
	g.mu.RUnlock()

	result, err := g.client.Models.GenerateContent(ctx, modelName, contents, genConfig)
	if err != nil {
		return nil, classifyError(err, modelName)
	}

	return parseResult(result)
}

// Models returns the model definitions supported by this provider.
// The first model is the default.
func (g *GeminiProvider) Models() []imageedit.ModelInfo {
	return Catalog()
}

// Close releases any resources held by the provider.
func (g *GeminiProvider) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

// resolveModel determines which API model name to use.
// Falls back to the first model (default) if none specified.
func (g *GeminiProvider) resolveModel(config *imageedit.GenerateConfig) string {
	if config != nil && config.Model != "" {
		return string(config.Model)
	}
	return g.Models()[0].APIModelName
}

// toContents converts wire messages to genai contents. The API rejects parts
// with no data, so empty text parts are dropped here, along with any message
// left without parts.
func toContents(msgs []imageedit.WireMessage) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		parts := make([]*genai.Part, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch {
			case p.InlineData != nil && p.InlineData.Data != "":
				data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					return nil, &imageedit.EncodingError{
						Input: p.InlineData.Data,
						Err:   fmt.Errorf("%w: invalid base64 payload: %v", imageedit.ErrMalformedEncoding, err),
					}
				}
				parts = append(parts, &genai.Part{
					InlineData: &genai.Blob{
						Data:     data,
						MIMEType: p.InlineData.MIMEType,
					},
				})
			case p.Text != nil && *p.Text != "":
				parts = append(parts, &genai.Part{Text: *p.Text})
			}
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  roleName(m.Role),
			Parts: parts,
		})
	}
	return contents, nil
}

func roleName(r imageedit.Role) string {
	if r == imageedit.RoleModel {
		return string(genai.RoleModel)
	}
	return string(genai.RoleUser)
}

// buildGenerateContentConfig converts our config to Gemini's GenerateContentConfig format.
func buildGenerateContentConfig(config *imageedit.GenerateConfig, defaults []*genai.SafetySetting) *genai.GenerateContentConfig {
	modalities := config.ResponseModalities
	if len(modalities) == 0 {
		modalities = []string{imageedit.ModalityText, imageedit.ModalityImage}
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: modalities,
		Temperature:        config.Temperature,
		TopP:               config.TopP,
		TopK:               config.TopK,
	}

	if config.Size != "" || config.AspectRatio != "" {
		genConfig.ImageConfig = &genai.ImageConfig{
			ImageSize:   config.Size.String(),
			AspectRatio: config.AspectRatio.String(),
		}
	}

	if config.EnableThinking {
		genConfig.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: true,
		}
	}

	// Safety settings: per-request overrides provider defaults
	if len(config.SafetySettings) > 0 {
		genConfig.SafetySettings = convertSafetySettings(config.SafetySettings)
	} else if len(defaults) > 0 {
		genConfig.SafetySettings = defaults
	}

	return genConfig
}

// convertSafetySettings converts our SafetySettings to Gemini's format.
func convertSafetySettings(settings []imageedit.SafetySetting) []*genai.SafetySetting {
	result := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		result = append(result, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return result
}

// parseResult converts the first candidate's parts to wire parts, keeping
// thought parts aside.
func parseResult(result *genai.GenerateContentResponse) (*imageedit.Response, error) {
	if result == nil {
		return nil, errors.New("empty response from model")
	}

	resp := &imageedit.Response{}

	if len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var thinkingParts []string
		for _, part := range result.Candidates[0].Content.Parts {
			if part == nil {
				continue
			}
			if part.Thought {
				if part.Text != "" {
					thinkingParts = append(thinkingParts, part.Text)
				}
				continue
			}

			switch {
			case part.InlineData != nil && len(part.InlineData.Data) > 0:
				resp.Parts = append(resp.Parts, imageedit.WirePart{
					InlineData: &imageedit.InlineData{
						Data:     base64.StdEncoding.EncodeToString(part.InlineData.Data),
						MIMEType: part.InlineData.MIMEType,
					},
				})
			case part.Text != "":
				resp.Parts = append(resp.Parts, imageedit.TextPart(part.Text))
			}
		}
		resp.Thinking = strings.Join(thinkingParts, "\n")
	}

	if result.UsageMetadata != nil {
		resp.UsageMetadata = &imageedit.UsageMetadata{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CandidatesTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}

	return resp, nil
}

// classifyError maps a Gemini API failure onto the library's error kinds:
// 429 becomes a RateLimitError, everything else an UpstreamError.
func classifyError(err error, model string) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			return &imageedit.RateLimitError{
				RetryAfter: 60 * time.Second, // Default; API doesn't reliably provide Retry-After
				LimitType:  "requests",
				Model:      model,
				Err:        err,
			}
		}
		if apiErr.Code == http.StatusInternalServerError {
			return &imageedit.UpstreamError{Hint: imageedit.OverloadHint, Err: err}
		}
	}
	return imageedit.NewUpstreamError(err)
}
