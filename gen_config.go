package imageedit

import (
	"time"
)

// Model is a public model name registered with a Manager.
type Model string

// ImageSize represents the output resolution for generated images.
type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"
)

// AspectRatio represents the aspect ratio for generated images.
type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio3x4  AspectRatio = "3:4"
	AspectRatio2x3  AspectRatio = "2:3"
	AspectRatio3x2  AspectRatio = "3:2"
	AspectRatioAuto AspectRatio = ""
)

// Response modalities requested from the model.
const (
	ModalityText  = "TEXT"
	ModalityImage = "IMAGE"
)

// GenerateConfig holds configuration options for one round trip.
type GenerateConfig struct {
	// Model to use (if empty, uses the manager's default)
	Model Model

	// Sampling
	Temperature *float32
	TopP        *float32
	TopK        *float32

	// ResponseModalities must include IMAGE for an image to come back.
	ResponseModalities []string

	Size        ImageSize
	AspectRatio AspectRatio

	// EnableThinking asks the model to return its reasoning separately.
	EnableThinking bool

	// SafetySettings for content filtering
	SafetySettings []SafetySetting

	// WaitOnRateLimit, if true, causes the Manager to wait for capacity when rate limited.
	// If false, a RateLimitError is returned immediately.
	WaitOnRateLimit bool

	// MaxWaitDuration is the maximum time to wait when WaitOnRateLimit is true.
	// Zero means no limit.
	MaxWaitDuration time.Duration
}

// WithModel returns a copy of the config with the specified model.
func (c *GenerateConfig) WithModel(model Model) *GenerateConfig {
	if c == nil {
		cX := DefaultConfig()
		cX.Model = model
		return cX
	}
	cX := *c
	cX.Model = model
	return &cX
}

// DefaultConfig returns the sampling settings the image models are tuned for.
func DefaultConfig() *GenerateConfig {
	return &GenerateConfig{
		Model:              ModelDefault,
		Temperature:        ptr(float32(1.0)),
		TopP:               ptr(float32(0.95)),
		TopK:               ptr(float32(40)),
		ResponseModalities: []string{ModalityText, ModalityImage},
	}
}

func (s ImageSize) String() string {
	return string(s)
}

func (a AspectRatio) String() string {
	return string(a)
}

// String returns the model identifier.
func (m Model) String() string {
	return string(m)
}

func ptr[T any](v T) *T {
	return &v
}
