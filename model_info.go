package imageedit

// ModelCapabilities describes what a model accepts.
type ModelCapabilities struct {
	SupportsImageEditing bool `json:"supports_image_editing"`
	SupportsMultiImage   bool `json:"supports_multi_image"` // Multiple input images in one turn
	SupportsThinking     bool `json:"supports_thinking"`

	MaxInputImages int `json:"max_input_images"`
}

// RateLimits defines rate limiting parameters for a model.
type RateLimits struct {
	TokensPerMinute   int `json:"tokens_per_minute"`
	RequestsPerMinute int `json:"requests_per_minute"`
}

// ModelInfo contains complete metadata for a model.
type ModelInfo struct {
	Name         string       `json:"name"`           // Public model name (e.g., "flash-image")
	Provider     ProviderName `json:"provider"`       // Which provider serves this model
	APIModelName string       `json:"api_model_name"` // Actual API name (e.g., "gemini-2.5-flash-image")

	Capabilities  ModelCapabilities `json:"capabilities"`
	ContextLength int               `json:"context_length"`
	RateLimits    RateLimits        `json:"rate_limits"`
}
