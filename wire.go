package imageedit

// WireMessage is a provider-facing message.
type WireMessage struct {
	Role  Role       `json:"role"`
	Parts []WirePart `json:"parts"`
}

// WirePart holds either text or inline image data. A part with neither is
// empty and never sent.
type WirePart struct {
	Text       *string     `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData is a base64 image payload with its MIME type.
type InlineData struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// TextPart returns a text WirePart. Empty content is kept as an explicit empty string.
func TextPart(s string) WirePart {
	return WirePart{Text: &s}
}

// ImagePart returns an inline image WirePart.
func ImagePart(d DataURL) WirePart {
	return WirePart{InlineData: &InlineData{Data: d.Payload, MIMEType: d.MIMEType}}
}

// IsEmpty reports whether the part has no text key and no image payload.
func (p WirePart) IsEmpty() bool {
	return p.Text == nil && (p.InlineData == nil || p.InlineData.Data == "")
}
