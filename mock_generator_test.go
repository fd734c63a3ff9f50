package imageedit

import (
	"context"
)

// MockProvider is a mock implementation of Provider.
type MockProvider struct {
	SendFunc   func(ctx context.Context, req *Request) (*Response, error)
	ModelsFunc func() []ModelInfo
	CloseFunc  func() error
}

func (m *MockProvider) Send(ctx context.Context, req *Request) (*Response, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, req)
	}
	return &Response{}, nil
}

func (m *MockProvider) Models() []ModelInfo {
	if m.ModelsFunc != nil {
		return m.ModelsFunc()
	}
	return []ModelInfo{}
}

func (m *MockProvider) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// recordingGenerator returns canned responses in order and records every request.
type recordingGenerator struct {
	responses []*Response
	errs      []error
	requests  []*Request
}

func (g *recordingGenerator) Send(ctx context.Context, req *Request) (*Response, error) {
	i := len(g.requests)
	g.requests = append(g.requests, req)

	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return &Response{}, nil
}

func imageResponse(text string, img DataURL) *Response {
	resp := &Response{}
	if text != "" {
		resp.Parts = append(resp.Parts, TextPart(text))
	}
	resp.Parts = append(resp.Parts, ImagePart(img))
	return resp
}
