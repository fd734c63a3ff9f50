package imageedit

import (
	"log/slog"
)

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLogger sets a structured logger for the manager.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithStorage sets a storage backend for persisting generated images.
func WithStorage(storage Storage) ManagerOption {
	return func(m *Manager) {
		m.storage = storage
	}
}

// WithDefaultModel sets the default model used when config.Model is empty.
func WithDefaultModel(model Model) ManagerOption {
	return func(m *Manager) {
		m.defaultModel = model
	}
}

// WithTokenEstimator replaces the estimator used for rate limiting.
func WithTokenEstimator(e TokenEstimator) ManagerOption {
	return func(m *Manager) {
		m.tokenEstimator = e
	}
}

// NewManager creates a Manager serving every model of defaultProvider.
//
// Example:
//
//	gen, err := gemini.NewWithAPIKey(ctx, apiKey)
//	if err != nil {
//	    return err
//	}
//	manager := imageedit.NewManager(gen,
//	    imageedit.WithLogger(slog.Default()),
//	    imageedit.WithDefaultModel(imageedit.ModelProImage),
//	)
//	conv := manager.StartConversation()
func NewManager(defaultProvider Provider, opts ...ManagerOption) *Manager {
	m := New()
	m.RegisterProvider(defaultProvider)

	for _, opt := range opts {
		opt(m)
	}

	return m
}
