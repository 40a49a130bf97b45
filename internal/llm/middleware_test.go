package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWrapOrder(t *testing.T) {
	fake := &Fake{Reply: "ok"}
	wrapped := Wrap(fake, WithLogging(zerolog.Nop()), RateLimit(600, 1))

	reply, err := wrapped.Complete(context.Background(), "p", nil)
	if err != nil || reply != "ok" {
		t.Fatalf("Complete = %q, %v", reply, err)
	}
	if wrapped.Name() != "fake" {
		t.Fatalf("Name not delegated: %q", wrapped.Name())
	}
	if fake.Calls() != 1 {
		t.Fatalf("calls = %d", fake.Calls())
	}
}

func TestRateLimit_PassThroughWhenDisabled(t *testing.T) {
	fake := &Fake{Reply: "ok"}
	if got := Wrap(fake, RateLimit(0, 0)); got != Completer(fake) {
		t.Fatalf("disabled limiter should not wrap")
	}
}

func TestRateLimit_HonorsContextCancel(t *testing.T) {
	fake := &Fake{Reply: "ok"}
	wrapped := Wrap(fake, RateLimit(1, 1)) // 1 rpm: second call would wait ~1min

	ctx := context.Background()
	if _, err := wrapped.Complete(ctx, "first", nil); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := wrapped.Complete(ctx, "second", nil); err == nil {
		t.Fatalf("expected context error while throttled")
	}
	if fake.Calls() != 1 {
		t.Fatalf("throttled call reached the model")
	}
}

func TestWithLogging_PropagatesError(t *testing.T) {
	want := errors.New("quota exceeded")
	fake := &Fake{Err: want}
	wrapped := Wrap(fake, WithLogging(zerolog.Nop()))

	_, err := wrapped.Complete(context.Background(), "p", nil)
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}
