package imageedit

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrEmptyPrompt          = errors.New("prompt cannot be empty")
	ErrInvalidImageEncoding = errors.New("invalid image data URL format")
	ErrTooManyImages        = errors.New("too many input images")
	ErrInvalidMIMEType      = errors.New("invalid or unsupported MIME type")
)

// MaxInputImages is the default cap on images in one turn.
const MaxInputImages = 14

// ValidMIMETypes contains the image MIME types a DataURL may carry.
var ValidMIMETypes = map[string]bool{
	MIMETypePNG:  true,
	MIMETypeJPEG: true,
}

// ValidatePrompt rejects prompts that are empty after trimming.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return &ValidationError{Field: "prompt", Err: ErrEmptyPrompt}
	}
	return nil
}

// ValidateImageEncoding checks that s is a data URL before it is decoded.
func ValidateImageEncoding(s string) error {
	if !strings.HasPrefix(s, dataURLPrefix) {
		return &ValidationError{Field: "image", Err: ErrInvalidImageEncoding}
	}
	return nil
}

// ValidateImageCount rejects more than max images. A max of zero or less means MaxInputImages.
func ValidateImageCount(n, max int) error {
	if max <= 0 {
		max = MaxInputImages
	}
	if n > max {
		return &ValidationError{Field: "images", Err: fmt.Errorf("%w: %d (max %d)", ErrTooManyImages, n, max)}
	}
	return nil
}

// ValidateDataURL checks a decoded image.
func ValidateDataURL(d DataURL) error {
	if !ValidMIMETypes[d.MIMEType] {
		return &ValidationError{Field: "image", Err: fmt.Errorf("%w: %s", ErrInvalidMIMEType, d.MIMEType)}
	}
	if d.Payload == "" {
		return &ValidationError{Field: "image", Err: fmt.Errorf("%w: empty payload", ErrInvalidImageEncoding)}
	}
	return nil
}
