package imageedit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConversation_ModeTransition(t *testing.T) {
	gen := &recordingGenerator{responses: []*Response{
		imageResponse("a cat", pngA),
		imageResponse("", pngB),
	}}
	c := NewConversation(gen)

	if c.Mode() != ModeFreshGeneration {
		t.Fatalf("new conversation mode = %v", c.Mode())
	}
	if c.ID() == "" {
		t.Error("expected a conversation ID")
	}

	out, err := c.Submit(context.Background(), "draw a cat")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if out.Description() != "a cat" {
		t.Errorf("Description() = %q", out.Description())
	}
	if c.Mode() != ModeEditing {
		t.Errorf("mode after first image = %v, want editing", c.Mode())
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 turns, got %d", c.Len())
	}

	// The edit turn carries only the last image and the prior history.
	if _, err := c.Submit(context.Background(), "make it blue"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	req := gen.requests[1]
	wantMsg := WireMessage{Role: RoleUser, Parts: []WirePart{ImagePart(pngA), TextPart("make it blue")}}
	if diff := cmp.Diff(wantMsg, req.Message); diff != "" {
		t.Errorf("edit message mismatch (-want +got):\n%s", diff)
	}
	wantHistory := []WireMessage{
		{Role: RoleUser, Parts: []WirePart{TextPart("draw a cat")}},
		{Role: RoleModel, Parts: []WirePart{TextPart("a cat")}},
	}
	if diff := cmp.Diff(wantHistory, req.History); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	last, ok := c.LastImage()
	if !ok || last != pngB {
		t.Errorf("LastImage() = %v, %v", last, ok)
	}
	if c.Description() != "" {
		t.Errorf("description should follow the last turn, got %q", c.Description())
	}
	if c.Len() != 4 {
		t.Errorf("expected 4 turns, got %d", c.Len())
	}
}

func TestConversation_StagedImages(t *testing.T) {
	gen := &recordingGenerator{responses: []*Response{imageResponse("merged", pngA)}}
	c := NewConversation(gen)

	if err := c.Stage("data:image/png;base64,BBB=", "data:image/jpeg;base64,CCC="); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if diff := cmp.Diff([]DataURL{pngB, jpgC}, c.ResolveImages()); diff != "" {
		t.Errorf("ResolveImages() mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.Submit(context.Background(), "merge"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	wantMsg := WireMessage{Role: RoleUser, Parts: []WirePart{ImagePart(pngB), ImagePart(jpgC), TextPart("merge")}}
	if diff := cmp.Diff(wantMsg, gen.requests[0].Message); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}

	wantTurns := []Turn{
		{Role: RoleUser, Parts: []Part{Text{Content: "merge"}, ImageRefList{Images: []DataURL{pngB, jpgC}}}},
		{Role: RoleModel, Parts: []Part{Text{Content: "merged"}, ImageRef{Image: pngA}}},
	}
	if diff := cmp.Diff(wantTurns, c.Turns()); diff != "" {
		t.Errorf("turns mismatch (-want +got):\n%s", diff)
	}

	// Staged images are ignored once editing.
	if diff := cmp.Diff([]DataURL{pngA}, c.ResolveImages()); diff != "" {
		t.Errorf("ResolveImages() in editing mismatch (-want +got):\n%s", diff)
	}
}

func TestConversation_Stage_Invalid(t *testing.T) {
	c := NewConversation(&recordingGenerator{})

	if err := c.Stage("data:image/png;base64,AAA="); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	tests := []struct {
		name    string
		images  []string
		wantErr error
	}{
		{name: "not a data url", images: []string{"notadataurl"}, wantErr: ErrInvalidImageEncoding},
		{name: "missing comma", images: []string{"data:image/png"}, wantErr: ErrMalformedEncoding},
		{name: "empty payload", images: []string{"data:image/png;base64,"}, wantErr: ErrInvalidImageEncoding},
		{name: "too many", images: make([]string, MaxInputImages+1), wantErr: ErrTooManyImages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Stage(tt.images...); !errors.Is(err, tt.wantErr) {
				t.Errorf("Stage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(c.Staged()) != 1 {
				t.Errorf("a failed Stage should keep the previous set, got %d", len(c.Staged()))
			}
		})
	}
}

func TestConversation_FailureLeavesSessionUntouched(t *testing.T) {
	upstream := errors.New("500 Internal Server Error")
	gen := &recordingGenerator{
		responses: []*Response{imageResponse("first", pngA)},
		errs:      []error{nil, upstream},
	}
	c := NewConversation(gen)

	if _, err := c.Submit(context.Background(), "draw"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	before := c.Turns()

	_, err := c.Submit(context.Background(), "edit")
	if !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	var upErr *UpstreamError
	if !errors.As(err, &upErr) || upErr.Hint == "" {
		t.Errorf("expected an UpstreamError with a hint, got %v", err)
	}

	if diff := cmp.Diff(before, c.Turns()); diff != "" {
		t.Errorf("turns changed after failure (-want +got):\n%s", diff)
	}
	if c.Mode() != ModeEditing {
		t.Errorf("mode changed after failure: %v", c.Mode())
	}
	if last, _ := c.LastImage(); last != pngA {
		t.Errorf("last image changed after failure: %v", last)
	}
}

func TestConversation_ValidationFailureDoesNotDispatch(t *testing.T) {
	gen := &recordingGenerator{}
	c := NewConversation(gen)

	if _, err := c.Submit(context.Background(), "  "); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if len(gen.requests) != 0 {
		t.Errorf("generator called %d times", len(gen.requests))
	}
	if c.Len() != 0 {
		t.Errorf("expected empty session, got %d turns", c.Len())
	}
}

func TestConversation_NoImageProduced(t *testing.T) {
	gen := &recordingGenerator{responses: []*Response{
		{Parts: []WirePart{TextPart("I can't draw that")}},
	}}
	c := NewConversation(gen)

	out, err := c.Submit(context.Background(), "draw something forbidden")
	if !errors.Is(err, ErrNoImageProduced) {
		t.Fatalf("expected ErrNoImageProduced, got %v", err)
	}
	if out.Description() != "I can't draw that" {
		t.Errorf("text should still be returned, got %q", out.Description())
	}
	if c.Len() != 0 || c.Mode() != ModeFreshGeneration {
		t.Errorf("session changed: len %d mode %v", c.Len(), c.Mode())
	}
	if _, ok := c.LastImage(); ok {
		t.Error("no last image expected")
	}
}

func TestConversation_Reset(t *testing.T) {
	gen := &recordingGenerator{responses: []*Response{
		imageResponse("one", pngA),
		imageResponse("two", pngB),
	}}
	c := NewConversation(gen)

	if err := c.Stage("data:image/jpeg;base64,CCC="); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if _, err := c.Submit(context.Background(), "first"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	c.Reset()
	c.Reset()

	if c.Len() != 0 || c.Mode() != ModeFreshGeneration || len(c.Staged()) != 0 {
		t.Fatalf("Reset() left state: len %d mode %v staged %d", c.Len(), c.Mode(), len(c.Staged()))
	}
	if _, ok := c.LastImage(); ok {
		t.Error("Reset() should clear the last image")
	}

	if _, err := c.Submit(context.Background(), "second"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	req := gen.requests[1]
	if len(req.History) != 0 {
		t.Errorf("history after reset should be empty, got %d", len(req.History))
	}
	if diff := cmp.Diff(WireMessage{Role: RoleUser, Parts: []WirePart{TextPart("second")}}, req.Message); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
}

func TestConversation_ConfigPassedThrough(t *testing.T) {
	gen := &recordingGenerator{responses: []*Response{imageResponse("", pngA)}}
	cfg := DefaultConfig().WithModel(ModelProImage)
	c := NewConversation(gen, WithConversationConfig(cfg))

	if _, err := c.Submit(context.Background(), "draw"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if gen.requests[0].Config != cfg {
		t.Errorf("config not passed through")
	}
}

func TestMode_String(t *testing.T) {
	if ModeFreshGeneration.String() != "fresh-generation" || ModeEditing.String() != "editing" {
		t.Errorf("unexpected mode names %s %s", ModeFreshGeneration, ModeEditing)
	}
	if Mode(7).String() != "Mode(7)" {
		t.Errorf("unexpected unknown mode name %s", Mode(7))
	}
}
