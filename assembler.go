package imageedit

import "fmt"

// AssembleTurn builds the outgoing user message: every image in the order
// given, then a single trailing text part with the prompt. The model grounds
// the instruction more reliably when the text comes after the images.
//
// Nothing is returned unless every image is a well-formed data URL.
func AssembleTurn(prompt string, images []string) (WireMessage, error) {
	if err := ValidatePrompt(prompt); err != nil {
		return WireMessage{}, err
	}

	parts := make([]WirePart, 0, len(images)+1)
	for i, s := range images {
		if err := ValidateImageEncoding(s); err != nil {
			return WireMessage{}, fmt.Errorf("image %d: %w", i, err)
		}
		img, err := ParseDataURL(s)
		if err != nil {
			return WireMessage{}, fmt.Errorf("image %d: %w", i, err)
		}
		if err := ValidateDataURL(img); err != nil {
			return WireMessage{}, fmt.Errorf("image %d: %w", i, err)
		}
		parts = append(parts, ImagePart(img))
	}
	parts = append(parts, TextPart(prompt))

	return WireMessage{Role: RoleUser, Parts: parts}, nil
}

// AssembleImages is AssembleTurn for already decoded images.
func AssembleImages(prompt string, images []DataURL) (WireMessage, error) {
	encoded := make([]string, len(images))
	for i, img := range images {
		encoded[i] = img.String()
	}
	return AssembleTurn(prompt, encoded)
}
