package imageedit

// Interpretation is what a response yields: at most one image and one text.
// Either may be nil.
type Interpretation struct {
	Image *DataURL `json:"image"`
	Text  *string  `json:"description"`
}

// HasImage reports whether an image was returned.
func (i *Interpretation) HasImage() bool {
	return i != nil && i.Image != nil
}

// Description returns the text or "".
func (i *Interpretation) Description() string {
	if i == nil || i.Text == nil {
		return ""
	}
	return *i.Text
}

// InterpretResponse scans parts in order. A later image replaces an earlier
// one and a later non-empty text replaces an earlier one. An image without a
// MIME type is taken to be PNG.
//
// TODO: decide with product whether multi-image responses should be kept;
// only the last image survives today.
func InterpretResponse(parts []WirePart) *Interpretation {
	out := &Interpretation{}
	for _, p := range parts {
		switch {
		case p.InlineData != nil && p.InlineData.Data != "":
			mimeType := p.InlineData.MIMEType
			if mimeType == "" {
				mimeType = MIMETypePNG
			}
			out.Image = &DataURL{MIMEType: mimeType, Payload: p.InlineData.Data}
		case p.Text != nil && *p.Text != "":
			text := *p.Text
			out.Text = &text
		}
	}
	return out
}
