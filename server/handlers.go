package server

import (
	"errors"
	"net/http"

	"github.com/mhpenta/imageedit"
)

const errGenerate = "Failed to generate image"

// --- Stateless round trip ---

type imageRequest struct {
	Prompt  string           `json:"prompt"`
	Images  []string         `json:"images"`
	History []imageedit.Turn `json:"history"`
}

type imageResponse struct {
	Image       *imageedit.DataURL `json:"image"`
	Description *string            `json:"description"`
	SavedURL    string             `json:"saved_url,omitempty"`
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, errGenerate, err)
		return
	}

	out, err := imageedit.Exchange(r.Context(), s.generator, imageedit.ExchangeRequest{
		Prompt:  req.Prompt,
		Images:  req.Images,
		History: req.History,
		Config:  s.config,
	})
	if err != nil {
		s.errorResponse(w, r, imageedit.HTTPStatus(err), errGenerate, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, s.buildImageResponse(r, out))
}

func (s *Server) buildImageResponse(r *http.Request, out *imageedit.Interpretation) imageResponse {
	resp := imageResponse{Image: out.Image, Description: out.Text}
	if s.storage == nil || !out.HasImage() {
		return resp
	}

	saved, err := imageedit.SaveImage(r.Context(), s.storage, *out.Image, requestID(r.Context()))
	if err != nil {
		// The image still goes back to the caller.
		s.logger.Warn("saving generated image", "request_id", requestID(r.Context()), "error", err)
		return resp
	}
	resp.SavedURL = saved.URL
	return resp
}

// --- Server-held conversation ---

type sessionResponse struct {
	ID          string             `json:"id"`
	Mode        imageedit.Mode     `json:"mode"`
	Turns       []imageedit.Turn   `json:"turns"`
	Staged      int                `json:"staged"`
	LastImage   *imageedit.DataURL `json:"last_image"`
	Description string             `json:"description,omitempty"`
}

// lockConversation claims the conversation or answers 409.
func (s *Server) lockConversation(w http.ResponseWriter, r *http.Request) bool {
	if s.convMu.TryLock() {
		return true
	}
	s.errorResponse(w, r, http.StatusConflict, "Conversation busy",
		errors.New("a turn is already in flight for this conversation"))
	return false
}

func (s *Server) snapshot() sessionResponse {
	resp := sessionResponse{
		ID:          s.conv.ID(),
		Mode:        s.conv.Mode(),
		Turns:       s.conv.Turns(),
		Staged:      len(s.conv.Staged()),
		Description: s.conv.Description(),
	}
	if img, ok := s.conv.LastImage(); ok {
		resp.LastImage = &img
	}
	return resp
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if !s.lockConversation(w, r) {
		return
	}
	defer s.convMu.Unlock()

	s.jsonResponse(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleStageImages(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Images []string `json:"images"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, "Failed to stage images", err)
		return
	}

	if !s.lockConversation(w, r) {
		return
	}
	defer s.convMu.Unlock()

	if err := s.conv.Stage(req.Images...); err != nil {
		s.errorResponse(w, r, imageedit.HTTPStatus(err), "Failed to stage images", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, errGenerate, err)
		return
	}

	if !s.lockConversation(w, r) {
		return
	}
	defer s.convMu.Unlock()

	out, err := s.conv.Submit(r.Context(), req.Prompt)
	switch {
	case errors.Is(err, imageedit.ErrNoImageProduced):
		// An empty result is reported as {image: null}, not as a failure.
	case err != nil:
		s.errorResponse(w, r, imageedit.HTTPStatus(err), errGenerate, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, s.buildImageResponse(r, out))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !s.lockConversation(w, r) {
		return
	}
	defer s.convMu.Unlock()

	s.conv.Reset()
	s.jsonResponse(w, http.StatusOK, s.snapshot())
}

// --- Models ---

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models := []imageedit.ModelInfo{}
	if s.models != nil {
		models = s.models.ListModelsInfo()
	}
	s.jsonResponse(w, http.StatusOK, models)
}
