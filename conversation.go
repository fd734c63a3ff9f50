package imageedit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Mode selects which images go out with the next prompt.
type Mode int

const (
	// ModeFreshGeneration sends whatever images are staged (possibly none).
	ModeFreshGeneration Mode = iota
	// ModeEditing sends only the most recently generated image.
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeFreshGeneration:
		return "fresh-generation"
	case ModeEditing:
		return "editing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "fresh-generation":
		*m = ModeFreshGeneration
	case "editing":
		*m = ModeEditing
	default:
		return fmt.Errorf("unknown mode %q", text)
	}
	return nil
}

// Conversation tracks one multi-turn generate-then-edit session.
//
// A Conversation is not safe for concurrent use. Callers must not issue a
// second Submit while one is in flight; doing so interleaves Session
// mutations unpredictably.
type Conversation struct {
	id        string
	generator Generator
	config    *GenerateConfig
	logger    *slog.Logger

	session   *Session
	mode      Mode
	staged    []DataURL
	lastImage *DataURL
	lastText  *string
}

// ConversationOption configures a Conversation.
type ConversationOption func(*Conversation)

// WithConversationConfig sets the GenerateConfig sent with every turn.
func WithConversationConfig(config *GenerateConfig) ConversationOption {
	return func(c *Conversation) {
		c.config = config
	}
}

// WithConversationLogger sets a structured logger for the conversation.
func WithConversationLogger(logger *slog.Logger) ConversationOption {
	return func(c *Conversation) {
		c.logger = logger
	}
}

// NewConversation starts an empty conversation in ModeFreshGeneration that
// dispatches through gen.
func NewConversation(gen Generator, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		id:        uuid.NewString(),
		generator: gen,
		logger:    slog.Default(),
		session:   &Session{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID identifies the conversation in logs.
func (c *Conversation) ID() string {
	return c.id
}

// Mode returns the current mode.
func (c *Conversation) Mode() Mode {
	return c.mode
}

// Turns returns a copy of the session history.
func (c *Conversation) Turns() []Turn {
	return c.session.Turns()
}

// Len returns the number of turns in the session.
func (c *Conversation) Len() int {
	return c.session.Len()
}

// LastImage returns the most recently generated image.
func (c *Conversation) LastImage() (DataURL, bool) {
	if c.lastImage == nil {
		return DataURL{}, false
	}
	return *c.lastImage, true
}

// Description returns the text that came with the last generated image.
func (c *Conversation) Description() string {
	if c.lastText == nil {
		return ""
	}
	return *c.lastText
}

// Stage replaces the set of uploaded images used by the next fresh
// generation. Staged images are ignored while editing. Calling Stage with no
// arguments clears the set.
func (c *Conversation) Stage(images ...string) error {
	if err := ValidateImageCount(len(images), MaxInputImages); err != nil {
		return err
	}

	staged := make([]DataURL, 0, len(images))
	for i, s := range images {
		if err := ValidateImageEncoding(s); err != nil {
			return fmt.Errorf("image %d: %w", i, err)
		}
		img, err := ParseDataURL(s)
		if err != nil {
			return fmt.Errorf("image %d: %w", i, err)
		}
		if err := ValidateDataURL(img); err != nil {
			return fmt.Errorf("image %d: %w", i, err)
		}
		staged = append(staged, img)
	}

	c.staged = staged
	return nil
}

// Staged returns the currently staged images.
func (c *Conversation) Staged() []DataURL {
	out := make([]DataURL, len(c.staged))
	copy(out, c.staged)
	return out
}

// ResolveImages returns the images that the next Submit will send.
func (c *Conversation) ResolveImages() []DataURL {
	if c.mode == ModeEditing && c.lastImage != nil {
		return []DataURL{*c.lastImage}
	}
	return c.Staged()
}

// Submit sends prompt with the resolved images and prior history.
//
// When an image comes back, the user and model turns are appended and the
// conversation switches to ModeEditing. When none does, ErrNoImageProduced
// is returned together with the Interpretation so any text can be shown;
// the session and mode are left untouched. Any other error also leaves the
// session exactly as it was.
func (c *Conversation) Submit(ctx context.Context, prompt string) (*Interpretation, error) {
	images := c.ResolveImages()
	encoded := make([]string, len(images))
	for i, img := range images {
		encoded[i] = img.String()
	}

	start := time.Now()
	c.logger.Debug("submitting turn",
		"conversation", c.id,
		"mode", c.mode.String(),
		"image_count", len(images),
		"history_turns", c.session.Len(),
	)

	out, err := Exchange(ctx, c.generator, ExchangeRequest{
		Prompt:  prompt,
		Images:  encoded,
		History: c.session.Turns(),
		Config:  c.config,
	})
	if err != nil {
		c.logger.Error("turn failed",
			"conversation", c.id,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err.Error(),
		)
		return nil, err
	}

	if !out.HasImage() {
		c.logger.Warn("turn produced no image",
			"conversation", c.id,
			"has_text", out.Text != nil,
		)
		return out, ErrNoImageProduced
	}

	c.session.Append(userTurn(prompt, images))
	c.session.Append(modelTurn(out))

	img := *out.Image
	c.lastImage = &img
	c.lastText = out.Text
	c.mode = ModeEditing

	c.logger.Info("turn completed",
		"conversation", c.id,
		"duration_ms", time.Since(start).Milliseconds(),
		"history_turns", c.session.Len(),
	)

	return out, nil
}

// Reset clears the session, staged images and last image and returns to
// ModeFreshGeneration. It is idempotent.
func (c *Conversation) Reset() {
	c.session.Clear()
	c.mode = ModeFreshGeneration
	c.staged = nil
	c.lastImage = nil
	c.lastText = nil
}

func userTurn(prompt string, images []DataURL) Turn {
	t := Turn{Role: RoleUser, Parts: []Part{Text{Content: prompt}}}
	switch len(images) {
	case 0:
	case 1:
		t.Parts = append(t.Parts, ImageRef{Image: images[0]})
	default:
		t.Parts = append(t.Parts, ImageRefList{Images: images})
	}
	return t
}

func modelTurn(out *Interpretation) Turn {
	t := Turn{Role: RoleModel}
	if text := out.Description(); text != "" {
		t.Parts = append(t.Parts, Text{Content: text})
	}
	t.Parts = append(t.Parts, ImageRef{Image: *out.Image})
	return t
}
