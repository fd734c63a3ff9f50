package gemini

import "github.com/mhpenta/imageedit"

// FlashImageInfo is the model info for Gemini 2.5 Flash Image, the default.
var FlashImageInfo = imageedit.ModelInfo{
	Name:         string(imageedit.ModelFlashImage),
	Provider:     imageedit.ProviderGeminiAPI,
	APIModelName: APIModelFlashImage,

	Capabilities: imageedit.ModelCapabilities{
		SupportsImageEditing: true,
		SupportsMultiImage:   true,
		SupportsThinking:     false,
		MaxInputImages:       3, // Best results with up to 3 reference images
	},

	ContextLength: 32768,

	RateLimits: imageedit.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 500, // ~500 RPM for Tier 1
	},
}

// ProImageInfo is the model info for Gemini 3 Pro Image.
var ProImageInfo = imageedit.ModelInfo{
	Name:         string(imageedit.ModelProImage),
	Provider:     imageedit.ProviderGeminiAPI,
	APIModelName: APIModelProImage,

	Capabilities: imageedit.ModelCapabilities{
		SupportsImageEditing: true,
		SupportsMultiImage:   true,
		SupportsThinking:     true,
		MaxInputImages:       14,
	},

	ContextLength: 65536,

	RateLimits: imageedit.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 360,
	},
}

// FlashExpInfo is the experimental Gemini 2.0 Flash model with image output.
// It tends to fail with internal errors when given several images.
var FlashExpInfo = imageedit.ModelInfo{
	Name:         string(imageedit.ModelFlashExp),
	Provider:     imageedit.ProviderGeminiAPI,
	APIModelName: APIModelFlashExp,

	Capabilities: imageedit.ModelCapabilities{
		SupportsImageEditing: true,
		SupportsMultiImage:   true,
		MaxInputImages:       3,
	},

	ContextLength: 1048576, // 1M tokens

	RateLimits: imageedit.RateLimits{
		RequestsPerMinute: 10, // Experimental models are heavily limited
	},
}

// Catalog lists the models this provider serves, default first.
func Catalog() []imageedit.ModelInfo {
	return []imageedit.ModelInfo{
		FlashImageInfo,
		ProImageInfo,
		FlashExpInfo,
	}
}
