package imageedit

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDataURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMIME string
		wantData string
		wantErr  error
	}{
		{
			name:     "png",
			input:    "data:image/png;base64,AAA=",
			wantMIME: MIMETypePNG,
			wantData: "AAA=",
		},
		{
			name:     "jpeg",
			input:    "data:image/jpeg;base64,BBB=",
			wantMIME: MIMETypeJPEG,
			wantData: "BBB=",
		},
		{
			name:     "unknown type defaults to jpeg",
			input:    "data:image/webp;base64,CCC=",
			wantMIME: MIMETypeJPEG,
			wantData: "CCC=",
		},
		{
			name:     "splits on first comma only",
			input:    "data:image/png;base64,AA,BB",
			wantMIME: MIMETypePNG,
			wantData: "AA,BB",
		},
		{
			name:    "no comma",
			input:   "data:image/png;base64AAA=",
			wantErr: ErrMalformedEncoding,
		},
		{
			name:    "no prefix",
			input:   "notadataurl",
			wantErr: ErrMalformedEncoding,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrMalformedEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDataURL(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseDataURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var encErr *EncodingError
				if !errors.As(err, &encErr) {
					t.Errorf("expected EncodingError, got %T", err)
				}
				return
			}
			if got.MIMEType != tt.wantMIME || got.Payload != tt.wantData {
				t.Errorf("ParseDataURL() = %+v, want %s %s", got, tt.wantMIME, tt.wantData)
			}
		})
	}
}

func TestDataURL_RoundTrip(t *testing.T) {
	inputs := []string{
		"data:image/png;base64,AAA=",
		"data:image/jpeg;base64,/9j/4AAQSkZJRgABAQ==",
		"data:image/png;base64,",
		"data:image/jpeg;base64,iVBORw0KGgo+/=",
	}

	for _, s := range inputs {
		d, err := ParseDataURL(s)
		if err != nil {
			t.Fatalf("ParseDataURL(%q) error = %v", s, err)
		}
		if got := EncodeDataURL(d.MIMEType, d.Payload); got != s {
			t.Errorf("round trip of %q gave %q", s, got)
		}
		if got := d.String(); got != s {
			t.Errorf("String() of %q gave %q", s, got)
		}
	}
}

func TestDataURL_Bytes(t *testing.T) {
	d := NewDataURL([]byte("hello"), MIMETypePNG)
	if d.String() != "data:image/png;base64,aGVsbG8=" {
		t.Errorf("unexpected encoding %s", d)
	}

	data, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Bytes() = %q", data)
	}

	bad := DataURL{MIMEType: MIMETypePNG, Payload: "%%%"}
	if _, err := bad.Bytes(); !errors.Is(err, ErrMalformedEncoding) {
		t.Errorf("expected ErrMalformedEncoding, got %v", err)
	}
}

func TestDataURL_JSON(t *testing.T) {
	type wrapper struct {
		Image *DataURL `json:"image"`
	}

	b, err := json.Marshal(wrapper{Image: &DataURL{MIMEType: MIMETypePNG, Payload: "AAA="}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `{"image":"data:image/png;base64,AAA="}` {
		t.Errorf("unexpected JSON %s", b)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"image":"notadataurl"}`), &w); !errors.Is(err, ErrMalformedEncoding) {
		t.Errorf("expected ErrMalformedEncoding, got %v", err)
	}

	b, _ = json.Marshal(wrapper{})
	if string(b) != `{"image":null}` {
		t.Errorf("nil image should encode as null, got %s", b)
	}
}
