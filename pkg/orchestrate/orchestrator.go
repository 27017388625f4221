package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/capability"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/chat"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/dispatch"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/models"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/sanitize"
)

var (
	// ErrModelUnavailable wraps a failed model-boundary call. Nothing is
	// recoverable for the current request once the provider itself fails.
	ErrModelUnavailable = errors.New("language model unavailable")

	// ErrNoAnswer reports that the fallback path produced nothing. Callers
	// must surface it as an explicit "could not answer", never a blank reply.
	ErrNoAnswer = errors.New("no answer could be produced")
)

const defaultMaxIterations = 5

// GatheredResult is one executed tool call retained for the fallback path.
type GatheredResult struct {
	Tool   string
	Result string
}

// AskRequest is one user question with the caller-owned inputs seeding it.
type AskRequest struct {
	UserContext chat.UserContext
	History     []chat.HistoryEntry
	Question    string
	Role        capability.Role
}

// Orchestrator runs the bounded ask-model / dispatch-tools cycle. Everything
// it holds is read-only after construction; each Ask builds its own state, so
// concurrent questions never observe each other.
type Orchestrator struct {
	model         models.Agent
	registry      *capability.Registry
	dispatcher    *dispatch.Dispatcher
	sanitizer     *sanitize.Sanitizer
	maxIterations int
	instruction   string
	logger        *slog.Logger
}

// Options configure a new Orchestrator.
type Options struct {
	Model          models.Agent
	Registry       *capability.Registry
	Dispatcher     *dispatch.Dispatcher
	Sanitizer      *sanitize.Sanitizer
	MaxIterations  int
	AllowedDomains []string
	Logger         *slog.Logger
}

// New creates an Orchestrator with the provided options.
func New(opts Options) (*Orchestrator, error) {
	if opts.Model == nil {
		return nil, errors.New("orchestrator requires a language model")
	}
	if opts.Registry == nil {
		return nil, errors.New("orchestrator requires a capability registry")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("orchestrator requires a tool dispatcher")
	}
	if opts.Sanitizer == nil {
		opts.Sanitizer = sanitize.New(opts.Registry.Names(), opts.AllowedDomains)
	}
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		model:         opts.Model,
		registry:      opts.Registry,
		dispatcher:    opts.Dispatcher,
		sanitizer:     opts.Sanitizer,
		maxIterations: maxIterations,
		instruction:   systemInstruction(opts.AllowedDomains),
		logger:        logger,
	}, nil
}

// Ask answers one user question. It returns sanitized answer text, or
// ErrNoAnswer when even the fallback produced nothing, or a wrapped
// ErrModelUnavailable when the provider itself failed.
func (o *Orchestrator) Ask(ctx context.Context, req AskRequest) (string, error) {
	if strings.TrimSpace(req.Question) == "" {
		return "", errors.New("question is empty")
	}

	started := time.Now()
	logger := o.logger.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("role", string(req.Role)),
	)

	tools := o.registry.ForRole(req.Role)
	conv := chat.Build(req.UserContext, req.History, req.Question)
	var gathered []GatheredResult

	for iteration := 0; iteration < o.maxIterations; iteration++ {
		resp, err := o.model.Generate(ctx, models.Request{
			Turns:             conv,
			Tools:             tools,
			SystemInstruction: o.instruction,
		})
		if err != nil {
			logger.Error("model call failed", slog.Int("iteration", iteration), slog.Any("error", err))
			return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}

		if len(resp.FunctionCalls) == 0 {
			logger.Info("answered",
				slog.Int("iterations", iteration),
				slog.Int("tool_calls", len(gathered)),
				slog.Duration("elapsed", time.Since(started)))
			return o.finish(resp.Text)
		}

		names := make([]string, 0, len(resp.FunctionCalls))
		for _, call := range resp.FunctionCalls {
			names = append(names, call.Name)
		}
		logger.Info("dispatching tools", slog.Int("iteration", iteration), slog.Any("tools", names))

		conv = conv.WithCalls(resp.FunctionCalls)
		responses := o.dispatcher.ExecuteMany(ctx, resp.FunctionCalls)
		conv = conv.WithResponses(responses)
		for _, r := range responses {
			gathered = append(gathered, GatheredResult{Tool: r.Name, Result: r.Result})
		}
	}

	logger.Warn("iteration budget exhausted, falling back", slog.Int("tool_calls", len(gathered)))
	return o.fallback(ctx, conv)
}

// fallback issues one final request with no tools, asking the model to
// summarize from what was already gathered. An empty or failed fallback is
// the no-answer condition.
func (o *Orchestrator) fallback(ctx context.Context, conv chat.Conversation) (string, error) {
	resp, err := o.model.Generate(ctx, models.Request{
		Turns:             conv.WithText(chat.SpeakerUser, fallbackPrompt),
		SystemInstruction: o.instruction,
	})
	if err != nil {
		o.logger.Error("fallback model call failed", slog.Any("error", err))
		return "", ErrNoAnswer
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", ErrNoAnswer
	}
	return o.finish(resp.Text)
}

func (o *Orchestrator) finish(raw string) (string, error) {
	answer := o.sanitizer.Format(raw)
	if strings.TrimSpace(answer) == "" {
		return "", ErrNoAnswer
	}
	return answer, nil
}
