package assistant

import (
	"context"
	"errors"
)

// ErrModel marks failures of the upstream chat model, as opposed to bad
// tool arguments or local bugs.
var ErrModel = errors.New("chat model call failed")

type Responder interface {
	Respond(ctx context.Context, input string) (string, error)
}

type GameScorer interface {
	Score(ctx context.Context, word string) (Result, error)
}
