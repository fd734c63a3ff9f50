package imageedit

import (
	"encoding/json"
	"fmt"
)

// Role identifies who authored a Turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Part is one piece of a Turn. The set of implementations is closed:
// Text, ImageRef and ImageRefList.
type Part interface{ isPart() }

// Text is a plain text part.
type Text struct {
	Content string
}

func (Text) isPart() {}

// ImageRef attaches a single image.
type ImageRef struct {
	Image DataURL
}

func (ImageRef) isPart() {}

// ImageRefList attaches several images to one user turn.
type ImageRefList struct {
	Images []DataURL
}

func (ImageRefList) isPart() {}

// Turn is one role-tagged contribution to a conversation.
type Turn struct {
	Role  Role
	Parts []Part
}

// IsEmpty reports whether the turn has no part carrying content.
func (t Turn) IsEmpty() bool {
	for _, p := range t.Parts {
		switch p := p.(type) {
		case Text:
			if p.Content != "" {
				return false
			}
		case ImageRef:
			if !p.Image.IsZero() {
				return false
			}
		case ImageRefList:
			if len(p.Images) > 0 {
				return false
			}
		}
	}
	return true
}

// Session is the ordered, append-only history of one conversation.
type Session struct {
	turns []Turn
}

// NewSession builds a Session from turns, dropping empty ones.
func NewSession(turns ...Turn) *Session {
	s := &Session{}
	for _, t := range turns {
		s.Append(t)
	}
	return s
}

// Append adds t unless it is empty. It reports whether t was retained.
func (s *Session) Append(t Turn) bool {
	if t.IsEmpty() {
		return false
	}
	s.turns = append(s.turns, t)
	return true
}

// Turns returns a copy of the turns in conversational order.
func (s *Session) Turns() []Turn {
	if s == nil {
		return nil
	}
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns.
func (s *Session) Len() int {
	if s == nil {
		return 0
	}
	return len(s.turns)
}

// Clear removes every turn.
func (s *Session) Clear() {
	s.turns = nil
}

func (s *Session) MarshalJSON() ([]byte, error) {
	turns := s.Turns()
	if turns == nil {
		turns = []Turn{}
	}
	return json.Marshal(turns)
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return err
	}
	s.turns = nil
	for _, t := range turns {
		s.Append(t)
	}
	return nil
}

// jsonPart is the transport shape of a Part: exactly one key is set.
type jsonPart struct {
	Text   *string   `json:"text,omitempty"`
	Image  *DataURL  `json:"image,omitempty"`
	Images []DataURL `json:"images,omitempty"`
}

type jsonTurn struct {
	Role  Role       `json:"role"`
	Parts []jsonPart `json:"parts"`
}

func (t Turn) MarshalJSON() ([]byte, error) {
	jt := jsonTurn{Role: t.Role, Parts: make([]jsonPart, 0, len(t.Parts))}
	for _, p := range t.Parts {
		switch p := p.(type) {
		case Text:
			content := p.Content
			jt.Parts = append(jt.Parts, jsonPart{Text: &content})
		case ImageRef:
			img := p.Image
			jt.Parts = append(jt.Parts, jsonPart{Image: &img})
		case ImageRefList:
			jt.Parts = append(jt.Parts, jsonPart{Images: p.Images})
		}
	}
	return json.Marshal(jt)
}

// UnmarshalJSON accepts {role, parts:[{text}|{image}|{images}]}. A part with
// none of those keys is skipped; a text key wins over image keys.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var jt jsonTurn
	if err := json.Unmarshal(data, &jt); err != nil {
		return err
	}

	switch jt.Role {
	case RoleUser, RoleModel:
	default:
		return &ValidationError{Field: "role", Err: fmt.Errorf("unknown role %q", jt.Role)}
	}

	parts := make([]Part, 0, len(jt.Parts))
	for _, jp := range jt.Parts {
		switch {
		case jp.Text != nil:
			parts = append(parts, Text{Content: *jp.Text})
		case jp.Image != nil:
			parts = append(parts, ImageRef{Image: *jp.Image})
		case len(jp.Images) > 0:
			parts = append(parts, ImageRefList{Images: jp.Images})
		}
	}

	t.Role = jt.Role
	t.Parts = parts
	return nil
}
