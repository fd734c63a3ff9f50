package imageedit

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	MIMETypePNG  = "image/png"
	MIMETypeJPEG = "image/jpeg"

	dataURLPrefix = "data:"
	base64Marker  = ";base64"
)

// DataURL is an image carried as data:<mimeType>;base64,<payload>.
type DataURL struct {
	MIMEType string
	Payload  string // base64, never decoded by the codec
}

// ParseDataURL splits s on its first comma into header and payload.
//
// The MIME type is not sniffed from the payload: the header is checked for the
// literal "image/png" and anything else is treated as "image/jpeg". Replace
// detectMIMEType to change that without touching callers.
func ParseDataURL(s string) (DataURL, error) {
	if !strings.HasPrefix(s, dataURLPrefix) {
		return DataURL{}, &EncodingError{Input: s, Err: fmt.Errorf("%w: missing %q prefix", ErrMalformedEncoding, dataURLPrefix)}
	}

	header, payload, ok := strings.Cut(s, ",")
	if !ok {
		return DataURL{}, &EncodingError{Input: s, Err: fmt.Errorf("%w: missing header separator", ErrMalformedEncoding)}
	}

	return DataURL{
		MIMEType: detectMIMEType(header),
		Payload:  payload,
	}, nil
}

// EncodeDataURL is the inverse of ParseDataURL.
func EncodeDataURL(mimeType, payload string) string {
	return dataURLPrefix + mimeType + base64Marker + "," + payload
}

// NewDataURL base64-encodes raw image bytes.
func NewDataURL(data []byte, mimeType string) DataURL {
	return DataURL{
		MIMEType: mimeType,
		Payload:  base64.StdEncoding.EncodeToString(data),
	}
}

func (d DataURL) String() string {
	return EncodeDataURL(d.MIMEType, d.Payload)
}

// Bytes decodes the payload.
func (d DataURL) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(d.Payload)
	if err != nil {
		return nil, &EncodingError{Input: d.Payload, Err: fmt.Errorf("%w: invalid base64 payload: %v", ErrMalformedEncoding, err)}
	}
	return data, nil
}

// IsZero reports whether d carries no payload.
func (d DataURL) IsZero() bool {
	return d.MIMEType == "" && d.Payload == ""
}

// MarshalText encodes d in its string form so it travels through JSON as a string.
func (d DataURL) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses the string form.
func (d *DataURL) UnmarshalText(text []byte) error {
	parsed, err := ParseDataURL(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// detectMIMEType is a substring heuristic over the data URL header.
func detectMIMEType(header string) string {
	if strings.Contains(header, MIMETypePNG) {
		return MIMETypePNG
	}
	return MIMETypeJPEG
}
