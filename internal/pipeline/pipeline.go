// Package pipeline sequences one assessment request: collect the target's
// recent activity, summarize it, compile the prompt, call the model, parse
// the reply. Stages run strictly in order; the only terminal failures are a
// missing precondition (checked before any I/O) and a failed model call.
// Upstream data loss is absorbed along the way and never fails a request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"safepost/internal/assessment"
	"safepost/internal/interactions"
	"safepost/internal/llm"
	"safepost/internal/promptgen"
	"safepost/internal/source"
)

// State names the pipeline stages, mainly for diagnostics.
type State string

const (
	StateCollecting      State = "collecting"
	StateSummarizing     State = "summarizing"
	StatePrompting       State = "prompting"
	StateAwaitingModel   State = "awaiting_model"
	StateParsing         State = "parsing"
	StateDone            State = "done"
	StateRejected        State = "rejected"
	StateModelCallFailed State = "model_call_failed"
)

// ErrPrecondition is returned when a required request field is missing. No
// upstream or model call is attempted in that case.
var ErrPrecondition = errors.New("pipeline: precondition failed")

// ModelCallError wraps the underlying cause of a failed or timed-out model
// call. It is the only fatal runtime outcome.
type ModelCallError struct {
	Cause error
}

func (e *ModelCallError) Error() string { return "pipeline: model call failed: " + e.Cause.Error() }
func (e *ModelCallError) Unwrap() error { return e.Cause }

// Config bounds one request's work.
type Config struct {
	// PostLimit is the activity window size for peer-risk collection.
	PostLimit int
	// ExcerptMaxLen / CommentSampleMax parameterize the summary builder.
	ExcerptMaxLen    int
	CommentSampleMax int
	UpstreamTimeout  time.Duration
	ModelTimeout     time.Duration
}

const (
	defaultPostLimit       = 5
	defaultUpstreamTimeout = 15 * time.Second
	defaultModelTimeout    = 60 * time.Second
)

func (c Config) withDefaults() Config {
	if c.PostLimit <= 0 {
		c.PostLimit = defaultPostLimit
	}
	if c.UpstreamTimeout <= 0 {
		c.UpstreamTimeout = defaultUpstreamTimeout
	}
	if c.ModelTimeout <= 0 {
		c.ModelTimeout = defaultModelTimeout
	}
	return c
}

// Pipeline holds the request-independent collaborators. All of them arrive
// at construction; nothing here reads process-wide state.
type Pipeline struct {
	adapter  *source.Adapter
	model    llm.Completer
	compiler *promptgen.Compiler
	cfg      Config
	log      zerolog.Logger
}

func New(adapter *source.Adapter, model llm.Completer, compiler *promptgen.Compiler, cfg Config, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		adapter:  adapter,
		model:    model,
		compiler: compiler,
		cfg:      cfg.withDefaults(),
		log:      log,
	}
}

// AnalyzeRequest is the general-mode input.
type AnalyzeRequest struct {
	Caption string
	Image   []byte
}

// RiskRequest is the peer-risk input: it additionally names the viewer
// whose reaction is being assessed.
type RiskRequest struct {
	Caption      string
	Image        []byte
	TargetHandle string
}

// Analyze runs the general sentiment assessment of one post.
func (p *Pipeline) Analyze(ctx context.Context, req AnalyzeRequest) (*assessment.Result, error) {
	r := p.newRun(assessment.ModeGeneral)
	if len(req.Image) == 0 {
		return nil, r.reject("image")
	}

	r.to(StatePrompting)
	prompt := p.compiler.General(req.Caption)

	reply, err := r.callModel(ctx, prompt, req.Image)
	if err != nil {
		return nil, err
	}
	return r.parse(reply), nil
}

// AssessRisk runs the peer-risk assessment of one post against one named
// viewer. A failed activity fetch degrades to an empty summary; the model
// is still consulted.
func (p *Pipeline) AssessRisk(ctx context.Context, req RiskRequest) (*assessment.Result, error) {
	r := p.newRun(assessment.ModePeerRisk)
	switch {
	case len(req.Image) == 0:
		return nil, r.reject("image")
	case req.TargetHandle == "":
		return nil, r.reject("target_handle")
	}

	r.to(StateCollecting)
	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.UpstreamTimeout)
	posts := p.adapter.Fetch(fetchCtx, req.TargetHandle, p.cfg.PostLimit)
	cancel()

	r.to(StateSummarizing)
	sum := interactions.Build(posts, interactions.Options{
		ExcerptMaxLen:    p.cfg.ExcerptMaxLen,
		CommentSampleMax: p.cfg.CommentSampleMax,
	})

	r.to(StatePrompting)
	prompt := p.compiler.PeerRisk(req.TargetHandle, req.Caption, sum)

	reply, err := r.callModel(ctx, prompt, req.Image)
	if err != nil {
		return nil, err
	}
	return r.parse(reply), nil
}

// run tracks one request's progress through the stage machine.
type run struct {
	p     *Pipeline
	mode  assessment.Mode
	state State
}

func (p *Pipeline) newRun(mode assessment.Mode) *run {
	return &run{p: p, mode: mode}
}

func (r *run) to(s State) {
	r.state = s
	r.p.log.Debug().Str("mode", string(r.mode)).Str("state", string(s)).Msg("pipeline stage")
}

func (r *run) reject(field string) error {
	r.to(StateRejected)
	return fmt.Errorf("%w: %s is required", ErrPrecondition, field)
}

func (r *run) callModel(ctx context.Context, prompt string, image []byte) (string, error) {
	r.to(StateAwaitingModel)
	ctx, cancel := context.WithTimeout(ctx, r.p.cfg.ModelTimeout)
	defer cancel()

	reply, err := r.p.model.Complete(ctx, prompt, image)
	if err != nil {
		r.to(StateModelCallFailed)
		return "", &ModelCallError{Cause: err}
	}
	return reply, nil
}

func (r *run) parse(reply string) *assessment.Result {
	r.to(StateParsing)
	res := assessment.Parse(r.mode, reply)
	r.to(StateDone)
	if res.ParseStatus == assessment.ParseUnparseable {
		// Not an error: the raw text still reaches the caller.
		r.p.log.Warn().Str("mode", string(r.mode)).Msg("model reply had no recognizable structure")
	}
	return res
}
