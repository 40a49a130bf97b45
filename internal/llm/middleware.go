package llm

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// -------- Rate limiting --------

// RateLimit throttles completions to rpm requests per minute with the given
// burst. If rpm <= 0 the middleware is a pass-through.
func RateLimit(rpm, burst int) Middleware {
	return func(next Completer) Completer {
		if rpm <= 0 {
			return next
		}
		if burst < 1 {
			burst = 1
		}
		return &rateLimited{
			next:    next,
			limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		}
	}
}

type rateLimited struct {
	next    Completer
	limiter *rate.Limiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }
func (c *rateLimited) Complete(ctx context.Context, prompt string, image []byte) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.next.Complete(ctx, prompt, image)
}

// -------- Logging --------

// WithLogging logs request sizes and outcomes on the given logger.
func WithLogging(log zerolog.Logger) Middleware {
	return func(next Completer) Completer {
		return &logging{next: next, log: log}
	}
}

type logging struct {
	next Completer
	log  zerolog.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) Complete(ctx context.Context, prompt string, image []byte) (string, error) {
	l.log.Debug().
		Str("model", l.next.Name()).
		Int("prompt_bytes", len(prompt)).
		Int("image_bytes", len(image)).
		Msg("model request")
	reply, err := l.next.Complete(ctx, prompt, image)
	if err != nil {
		l.log.Error().Str("model", l.next.Name()).Err(err).Msg("model call failed")
		return "", err
	}
	l.log.Debug().Str("model", l.next.Name()).Int("reply_bytes", len(reply)).Msg("model reply")
	return reply, nil
}
