// Package llm wraps the multimodal completion capability behind one small
// interface. Cross-cutting concerns (rate limiting, logging) are decorators
// applied via Middleware, keeping providers focused on the API call itself.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyReply indicates the provider answered without any usable text.
var ErrEmptyReply = errors.New("llm: empty reply from model")

// Completer is the single opaque capability the pipeline depends on: given
// an instruction block and an image, return the model's raw text reply.
type Completer interface {
	Name() string
	Close() error
	Complete(ctx context.Context, prompt string, image []byte) (string, error)
}

// Middleware decorates a Completer to inject cross-cutting concerns.
type Middleware func(Completer) Completer

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Completer, mws ...Middleware) Completer {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}
