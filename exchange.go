package imageedit

import (
	"context"
	"errors"
)

// ExchangeRequest is one stateless round trip: a prompt, the images in play
// for this turn (data URLs) and the turns that came before it.
type ExchangeRequest struct {
	Prompt  string
	Images  []string
	History []Turn
	Config  *GenerateConfig
}

// Exchange assembles the turn, serializes history, dispatches to gen and
// interprets the result. Input is validated before gen is called. A response
// without usable content is not an error here; check Interpretation.HasImage.
func Exchange(ctx context.Context, gen Generator, req ExchangeRequest) (*Interpretation, error) {
	if gen == nil {
		return nil, errors.New("imageedit: nil generator")
	}

	msg, err := AssembleTurn(req.Prompt, req.Images)
	if err != nil {
		return nil, err
	}

	resp, err := gen.Send(ctx, &Request{
		Message: msg,
		History: EncodeHistory(req.History),
		Config:  req.Config,
	})
	if err != nil {
		return nil, NewUpstreamError(err)
	}
	if resp == nil {
		return &Interpretation{}, nil
	}

	return InterpretResponse(resp.Parts), nil
}
