package imageedit

import "context"

// Generator sends one assembled turn, with its history, to a generative model.
// The call is atomic from the caller's point of view: no partial responses.
type Generator interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Provider is a Generator backed by a concrete model service.
// Implement this interface to add support for new models or providers.
//
// The first model returned by Models() is considered the default model.
type Provider interface {
	Generator

	// Models returns the model definitions supported by this provider.
	// The first model in the list is the default.
	Models() []ModelInfo

	// Close releases any resources held by the provider.
	Close() error
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req *Request) (*Response, error)

func (f GeneratorFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
