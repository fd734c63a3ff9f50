package imageedit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mhpenta/imageedit/ratelimiter"
)

const (
	ModelFlashImage Model = "flash-image" // Gemini 2.5 Flash Image
	ModelProImage   Model = "pro-image"   // Gemini 3 Pro Image
	ModelFlashExp   Model = "flash-exp"   // Gemini 2.0 Flash experimental

	ModelDefault Model = ModelFlashImage
)

var (
	// ErrModelNotRegistered is returned when a model has no registered provider.
	ErrModelNotRegistered = errors.New("model not registered")

	// ErrProviderNotConfigured is returned when a provider lacks required config.
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// ProviderName identifies a model backend.
type ProviderName string

const (
	ProviderGeminiAPI ProviderName = "gemini"
)

// ProviderConfig configures a specific provider.
type ProviderConfig struct {
	Provider ProviderName

	// APIKey for authentication
	APIKey string

	// BaseURL for custom endpoints (optional)
	BaseURL string
}

// ModelMapping maps a model identifier to its provider and actual model name.
type ModelMapping struct {
	Provider        ProviderName
	ActualModelName string
}

// Manager implements Generator, routing each turn to the provider that
// serves the requested model after checking capabilities and rate limits.
type Manager struct {
	modelMappings map[Model]ModelMapping
	providers     map[ProviderName]Provider
	modelInfo     map[Model]*ModelInfo

	// Default model to use when config.Model is empty
	defaultModel Model

	rateLimiters   *ratelimiter.Registry
	tokenEstimator TokenEstimator

	logger  *slog.Logger
	storage Storage

	mu sync.RWMutex
}

// Ensure Manager implements Generator.
var _ Generator = (*Manager)(nil)

// New creates an empty Manager.
func New() *Manager {
	return &Manager{
		logger:         slog.Default(),
		modelMappings:  make(map[Model]ModelMapping),
		providers:      make(map[ProviderName]Provider),
		modelInfo:      make(map[Model]*ModelInfo),
		rateLimiters:   ratelimiter.NewRegistry(),
		tokenEstimator: NewSimpleTokenEstimator(),
		defaultModel:   ModelDefault,
	}
}

// RegisterModel registers a model with full info (including rate limits).
// Uses the default in-memory rate limiter. Use SetRateLimiter to override with a custom implementation.
func (m *Manager) RegisterModel(model Model, mapping ModelMapping, info *ModelInfo) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.modelMappings[model] = mapping
	m.modelInfo[model] = info

	if info != nil && (info.RateLimits.TokensPerMinute > 0 || info.RateLimits.RequestsPerMinute > 0) {
		m.rateLimiters.Set(string(model), ratelimiter.New(
			info.RateLimits.TokensPerMinute,
			info.RateLimits.RequestsPerMinute,
		))
	}

	return m
}

// RegisterProvider makes p available and registers every model it serves.
func (m *Manager) RegisterProvider(p Provider) *Manager {
	models := p.Models()
	for i := range models {
		info := &models[i]

		m.mu.Lock()
		m.providers[info.Provider] = p
		m.mu.Unlock()

		m.RegisterModel(Model(info.Name), ModelMapping{
			Provider:        info.Provider,
			ActualModelName: info.APIModelName,
		}, info)
	}
	return m
}

// SetRateLimiter sets a custom rate limiter for a model.
func (m *Manager) SetRateLimiter(model Model, limiter ratelimiter.Limiter) *Manager {
	m.rateLimiters.Set(string(model), limiter)
	return m
}

// SetDefaultModel sets the default model used when config.Model is empty.
func (m *Manager) SetDefaultModel(model Model) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.defaultModel = model
	return m
}

// SetLogger sets a structured logger for the manager.
func (m *Manager) SetLogger(logger *slog.Logger) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger = logger
	return m
}

// SetStorage sets a storage backend for persisting generated images.
func (m *Manager) SetStorage(storage Storage) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.storage = storage
	return m
}

// Storage returns the configured storage backend, or nil if not set.
func (m *Manager) Storage() Storage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.storage
}

// SaveImage saves img to the configured storage under basePath.
// If no storage is configured, returns ErrStorageNotConfigured.
func (m *Manager) SaveImage(ctx context.Context, img DataURL, basePath string) (*StorageResult, error) {
	return SaveImage(ctx, m.Storage(), img, basePath)
}

// Send dispatches req to the provider serving the requested model.
func (m *Manager) Send(ctx context.Context, req *Request) (*Response, error) {
	config := req.Config
	if config == nil {
		config = DefaultConfig()
	}

	model := m.resolveModel(config)
	start := time.Now()
	imageCount := req.ImageCount()

	m.logger.Debug("dispatching turn",
		"model", string(model),
		"image_count", imageCount,
		"history_messages", len(req.History),
	)

	if err := m.checkCapabilities(model, imageCount); err != nil {
		return nil, err
	}

	if err := m.checkRateLimit(ctx, model, config, req); err != nil {
		m.logger.Warn("rate limit hit",
			"model", string(model),
			"error", err.Error(),
		)
		return nil, err
	}

	gen, actualConfig, err := m.getProviderForConfig(config)
	if err != nil {
		m.logger.Error("failed to get provider",
			"model", string(model),
			"error", err.Error(),
		)
		return nil, err
	}

	resp, err := gen.Send(ctx, &Request{
		Message: req.Message,
		History: req.History,
		Config:  actualConfig,
	})
	duration := time.Since(start)

	if err != nil {
		m.logger.Error("generation failed",
			"model", string(model),
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return nil, NewUpstreamError(err)
	}
	if resp == nil {
		resp = &Response{}
	}

	logAttrs := []any{
		"model", string(model),
		"duration_ms", duration.Milliseconds(),
		"parts", len(resp.Parts),
	}
	if resp.UsageMetadata != nil {
		logAttrs = append(logAttrs,
			"prompt_tokens", resp.UsageMetadata.PromptTokens,
			"response_tokens", resp.UsageMetadata.CandidatesTokens,
			"total_tokens", resp.UsageMetadata.TotalTokens,
		)
	}
	m.logger.Info("generation completed", logAttrs...)

	return resp, nil
}

// Close releases all provider resources.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, p := range m.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
	}
	m.providers = make(map[ProviderName]Provider)

	return errors.Join(errs...)
}

// ListModels returns all registered models, sorted by name.
func (m *Manager) ListModels() []Model {
	m.mu.RLock()
	defer m.mu.RUnlock()

	models := make([]Model, 0, len(m.modelMappings))
	for model := range m.modelMappings {
		models = append(models, model)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

// GetModelInfo returns model information for a specific model.
func (m *Manager) GetModelInfo(model Model) (*ModelInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.modelInfo[model]
	return info, ok && info != nil
}

// ListModelsInfo returns all registered models with their info, sorted by name.
func (m *Manager) ListModelsInfo() []ModelInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]ModelInfo, 0, len(m.modelInfo))
	for _, info := range m.modelInfo {
		if info != nil {
			infos = append(infos, *info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// DefaultModel returns the model used when a config names none.
func (m *Manager) DefaultModel() Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultModel
}

// checkCapabilities rejects turns carrying more images than the model accepts.
func (m *Manager) checkCapabilities(model Model, imageCount int) error {
	info, ok := m.GetModelInfo(model)
	if !ok {
		return nil
	}

	limit := info.Capabilities.MaxInputImages
	if !info.Capabilities.SupportsMultiImage {
		limit = 1
	}
	return ValidateImageCount(imageCount, limit)
}

// checkRateLimit checks rate limits for a model and optionally waits.
func (m *Manager) checkRateLimit(ctx context.Context, model Model, config *GenerateConfig, req *Request) error {
	const tokenBuffer = 100

	limiter, ok := m.rateLimiters.Get(string(model))
	if !ok {
		return nil
	}

	estimatedTokens := EstimateRequestTokens(m.tokenEstimator, req) + tokenBuffer

	if config.WaitOnRateLimit {
		if err := limiter.WaitAndConsume(ctx, estimatedTokens, config.MaxWaitDuration); err != nil {
			return &RateLimitError{
				RetryAfter: limiter.TimeUntilAvailable(estimatedTokens),
				LimitType:  "tokens",
				Model:      string(model),
				Err:        err,
			}
		}
		return nil
	}

	if !limiter.TryConsume(estimatedTokens) {
		return &RateLimitError{
			RetryAfter: limiter.TimeUntilAvailable(estimatedTokens),
			LimitType:  "tokens",
			Model:      string(model),
		}
	}

	return nil
}

// resolveModel determines the actual model to use.
func (m *Manager) resolveModel(config *GenerateConfig) Model {
	model := ModelDefault
	if config != nil && config.Model != "" {
		model = config.Model
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if model == ModelDefault {
		model = m.defaultModel
	}

	return model
}

// getProviderForConfig returns the provider and a config copy naming the API model.
func (m *Manager) getProviderForConfig(config *GenerateConfig) (Provider, *GenerateConfig, error) {
	model := m.resolveModel(config)

	m.mu.RLock()
	mapping, ok := m.modelMappings[model]
	m.mu.RUnlock()

	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrModelNotRegistered, model)
	}

	gen, err := m.getProvider(mapping.Provider)
	if err != nil {
		return nil, nil, err
	}

	configCopy := *config
	configCopy.Model = Model(mapping.ActualModelName)

	return gen, &configCopy, nil
}

// getProvider returns the provider instance for the given provider name.
func (m *Manager) getProvider(name ProviderName) (Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gen, ok := m.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, name)
	}
	return gen, nil
}
