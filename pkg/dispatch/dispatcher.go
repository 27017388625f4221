package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/chat"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/concurrent"
)

// Handler executes one backend operation for a tool call. The returned value
// is opaque to the dispatcher: its only contract is that it can be serialized
// to a string.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Dispatcher resolves model-emitted function calls against a static
// name→handler table. It never writes storage itself and never raises for a
// tool-level fault: unknown names and handler errors both come back as
// textual results so the model can see the failure and adapt.
type Dispatcher struct {
	handlers map[string]Handler
	parallel int
}

// New builds a dispatcher over the handler table. Parallelism defaults to
// sequential execution; see WithParallelism.
func New(handlers map[string]Handler) *Dispatcher {
	table := make(map[string]Handler, len(handlers))
	for name, h := range handlers {
		key := strings.TrimSpace(name)
		if key == "" || h == nil {
			continue
		}
		table[key] = h
	}
	return &Dispatcher{handlers: table, parallel: 1}
}

// WithParallelism allows a batch of calls within one iteration to execute
// concurrently. Result order still matches emission order on reassembly.
func (d *Dispatcher) WithParallelism(n int) *Dispatcher {
	if n > 0 {
		d.parallel = n
	}
	return d
}

// Execute runs a single function call and serializes its outcome. Failures
// become descriptive result text, never an error return.
func (d *Dispatcher) Execute(ctx context.Context, call chat.FunctionCall) chat.FunctionResponse {
	handler, ok := d.handlers[call.Name]
	if !ok {
		return chat.FunctionResponse{
			Name:   call.Name,
			Result: fmt.Sprintf("tool not found: no capability named %q is available; answer from what is already known or tell the user this information cannot be looked up", call.Name),
		}
	}
	result, err := handler(ctx, call.Args)
	if err != nil {
		return chat.FunctionResponse{
			Name:   call.Name,
			Result: fmt.Sprintf("the lookup failed and its data is unavailable right now: %s; apologize and explain the limitation without technical detail", safeErrorText(err)),
		}
	}
	return chat.FunctionResponse{Name: call.Name, Result: serializeResult(result)}
}

// ExecuteMany runs a batch of calls and returns responses in the exact order
// the calls were emitted, regardless of per-handler latency.
func (d *Dispatcher) ExecuteMany(ctx context.Context, calls []chat.FunctionCall) []chat.FunctionResponse {
	if len(calls) == 0 {
		return nil
	}
	if d.parallel <= 1 {
		responses := make([]chat.FunctionResponse, 0, len(calls))
		for _, call := range calls {
			responses = append(responses, d.Execute(ctx, call))
		}
		return responses
	}
	responses, errs := concurrent.ParallelMap(ctx, calls, func(ctx context.Context, call chat.FunctionCall) (chat.FunctionResponse, error) {
		return d.Execute(ctx, call), nil
	}, d.parallel)
	for i, err := range errs {
		if err != nil {
			responses[i] = chat.FunctionResponse{
				Name:   calls[i].Name,
				Result: "the lookup was cancelled before it finished",
			}
		}
	}
	return responses
}

// Names returns the resolvable tool names, primarily for wiring checks.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	return names
}

// serializeResult flattens whatever shape a collaborator returned into the
// single string field the conversation wire format carries.
func serializeResult(result any) string {
	switch v := result.(type) {
	case nil:
		return "no data found"
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprint(result)
	}
	return string(encoded)
}

// safeErrorText keeps the failure explainable without leaking stack traces or
// internal identifiers: only the outermost error message survives, clipped.
func safeErrorText(err error) string {
	msg := strings.TrimSpace(err.Error())
	if idx := strings.IndexAny(msg, "\n\r"); idx >= 0 {
		msg = msg[:idx]
	}
	const maxLen = 200
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	if msg == "" {
		return "unspecified failure"
	}
	return msg
}
