package orchestrate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/capability"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/chat"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/dispatch"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/models"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/sanitize"
)

// scriptedModel replays canned responses and records every request it saw.
type scriptedModel struct {
	responses []models.Response
	errs      []error
	requests  []models.Request
}

func (m *scriptedModel) Generate(_ context.Context, req models.Request) (*models.Response, error) {
	idx := len(m.requests)
	m.requests = append(m.requests, req)
	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	if idx < len(m.responses) {
		resp := m.responses[idx]
		return &resp, nil
	}
	return &models.Response{Text: "out of script"}, nil
}

func testRegistry(t *testing.T) *capability.Registry {
	t.Helper()
	registry, err := capability.New([]capability.Binding{
		{
			Descriptor: capability.Descriptor{Name: "enrollment_my_courses", Description: "list enrolled courses"},
			Roles:      []capability.Role{capability.RoleAdmin, capability.RoleStudent},
		},
		{
			Descriptor: capability.Descriptor{Name: "billing_invoices", Description: "list invoices"},
			Roles:      []capability.Role{capability.RoleAdmin, capability.RoleStudent},
		},
	})
	if err != nil {
		t.Fatalf("registry build failed: %v", err)
	}
	return registry
}

func newTestOrchestrator(t *testing.T, model models.Agent, handlers map[string]dispatch.Handler, maxIterations int) *Orchestrator {
	t.Helper()
	registry := testRegistry(t)
	o, err := New(Options{
		Model:         model,
		Registry:      registry,
		Dispatcher:    dispatch.New(handlers),
		Sanitizer:     sanitize.New(registry.Names(), []string{"mmdc.mcl.edu.ph"}),
		MaxIterations: maxIterations,
	})
	if err != nil {
		t.Fatalf("orchestrator build failed: %v", err)
	}
	return o
}

func studentRequest(question string) AskRequest {
	return AskRequest{
		UserContext: chat.UserContext{UserID: "u-student-1", FirstName: "Aliyah", Role: "student"},
		Question:    question,
		Role:        capability.RoleStudent,
	}
}

func TestAskEndToEndStudentCourses(t *testing.T) {
	model := &scriptedModel{
		responses: []models.Response{
			{FunctionCalls: []chat.FunctionCall{{Name: "enrollment_my_courses", Args: map[string]any{}}}},
			{Text: "You are enrolled in Introduction to Computing and Purposive Communication."},
		},
	}
	called := 0
	o := newTestOrchestrator(t, model, map[string]dispatch.Handler{
		"enrollment_my_courses": func(_ context.Context, _ map[string]any) (any, error) {
			called++
			return []map[string]any{{"code": "MO-IT101"}, {"code": "MO-GE103"}}, nil
		},
	}, 5)

	answer, err := o.Ask(context.Background(), studentRequest("What courses am I enrolled in?"))
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if called != 1 {
		t.Fatalf("expected exactly one tool dispatch, got %d", called)
	}
	if strings.Contains(answer, "enrollment_my_courses") {
		t.Fatalf("tool name leaked into the answer: %q", answer)
	}
	if strings.Contains(answer, "{") {
		t.Fatalf("raw JSON leaked into the answer: %q", answer)
	}
	if !strings.Contains(answer, "Introduction to Computing") {
		t.Fatalf("answer text lost: %q", answer)
	}

	// Only the student's allowed tool set was offered to the model.
	for _, req := range model.requests {
		for _, tool := range req.Tools {
			if tool.Name != "enrollment_my_courses" && tool.Name != "billing_invoices" {
				t.Fatalf("tool outside the student set was offered: %s", tool.Name)
			}
		}
	}
}

func TestAskTurnPairingInvariant(t *testing.T) {
	model := &scriptedModel{
		responses: []models.Response{
			{FunctionCalls: []chat.FunctionCall{
				{Name: "enrollment_my_courses"},
				{Name: "billing_invoices"},
			}},
			{Text: "All done."},
		},
	}
	o := newTestOrchestrator(t, model, map[string]dispatch.Handler{
		"enrollment_my_courses": func(_ context.Context, _ map[string]any) (any, error) { return "courses", nil },
		"billing_invoices":      func(_ context.Context, _ map[string]any) (any, error) { return "invoices", nil },
	}, 5)

	if _, err := o.Ask(context.Background(), studentRequest("both please")); err != nil {
		t.Fatalf("ask failed: %v", err)
	}

	// The second request's conversation must end with a model turn of two
	// calls followed by a user turn of two matching responses.
	turns := model.requests[1].Turns
	modelTurn := turns[len(turns)-2]
	userTurn := turns[len(turns)-1]
	if modelTurn.Speaker != chat.SpeakerModel || len(modelTurn.Parts) != 2 {
		t.Fatalf("unexpected model turn: %+v", modelTurn)
	}
	if userTurn.Speaker != chat.SpeakerUser || len(userTurn.Parts) != 2 {
		t.Fatalf("unexpected response turn: %+v", userTurn)
	}
	for i := range modelTurn.Parts {
		callName := modelTurn.Parts[i].FunctionCall.Name
		respName := userTurn.Parts[i].FunctionResponse.Name
		if callName != respName {
			t.Fatalf("call/response mispaired at %d: %s vs %s", i, callName, respName)
		}
	}
}

func TestAskIterationBudgetTriggersFallback(t *testing.T) {
	alwaysCall := models.Response{FunctionCalls: []chat.FunctionCall{{Name: "enrollment_my_courses"}}}
	model := &scriptedModel{
		responses: []models.Response{
			alwaysCall, alwaysCall, alwaysCall,
			{Text: "Based on what I gathered, you are enrolled in two courses."},
		},
	}
	dispatched := 0
	o := newTestOrchestrator(t, model, map[string]dispatch.Handler{
		"enrollment_my_courses": func(_ context.Context, _ map[string]any) (any, error) {
			dispatched++
			return "data", nil
		},
	}, 3)

	answer, err := o.Ask(context.Background(), studentRequest("loop forever"))
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if dispatched != 3 {
		t.Fatalf("expected exactly 3 dispatch rounds, got %d", dispatched)
	}
	if len(model.requests) != 4 {
		t.Fatalf("expected 3 loop requests plus 1 fallback, got %d", len(model.requests))
	}
	fallbackReq := model.requests[3]
	if len(fallbackReq.Tools) != 0 {
		t.Fatalf("fallback request must offer no tools")
	}
	lastTurn := fallbackReq.Turns[len(fallbackReq.Turns)-1]
	if !strings.Contains(lastTurn.Parts[0].Text, "already gathered") {
		t.Fatalf("fallback instruction missing: %q", lastTurn.Parts[0].Text)
	}
	if !strings.Contains(answer, "two courses") {
		t.Fatalf("fallback answer lost: %q", answer)
	}
}

func TestAskEmptyFallbackIsNoAnswer(t *testing.T) {
	alwaysCall := models.Response{FunctionCalls: []chat.FunctionCall{{Name: "enrollment_my_courses"}}}
	model := &scriptedModel{
		responses: []models.Response{alwaysCall, {Text: "   "}},
	}
	o := newTestOrchestrator(t, model, map[string]dispatch.Handler{
		"enrollment_my_courses": func(_ context.Context, _ map[string]any) (any, error) { return "data", nil },
	}, 1)

	_, err := o.Ask(context.Background(), studentRequest("q"))
	if !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("empty fallback should be ErrNoAnswer, got %v", err)
	}
}

func TestAskFailedFallbackIsNoAnswer(t *testing.T) {
	alwaysCall := models.Response{FunctionCalls: []chat.FunctionCall{{Name: "enrollment_my_courses"}}}
	model := &scriptedModel{
		responses: []models.Response{alwaysCall},
		errs:      []error{nil, errors.New("provider exploded")},
	}
	o := newTestOrchestrator(t, model, map[string]dispatch.Handler{
		"enrollment_my_courses": func(_ context.Context, _ map[string]any) (any, error) { return "data", nil },
	}, 1)

	_, err := o.Ask(context.Background(), studentRequest("q"))
	if !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("failed fallback should be ErrNoAnswer, got %v", err)
	}
}

func TestAskModelFailureIsFatal(t *testing.T) {
	model := &scriptedModel{errs: []error{errors.New("connection refused")}}
	o := newTestOrchestrator(t, model, nil, 3)

	_, err := o.Ask(context.Background(), studentRequest("q"))
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("model-boundary failure should wrap ErrModelUnavailable, got %v", err)
	}
}

func TestAskToolFailureDoesNotAbort(t *testing.T) {
	model := &scriptedModel{
		responses: []models.Response{
			{FunctionCalls: []chat.FunctionCall{{Name: "billing_invoices"}}},
			{Text: "I could not reach billing, sorry."},
		},
	}
	o := newTestOrchestrator(t, model, map[string]dispatch.Handler{
		"billing_invoices": func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("billing timeout")
		},
	}, 5)

	answer, err := o.Ask(context.Background(), studentRequest("my invoices?"))
	if err != nil {
		t.Fatalf("tool failure must not abort the loop: %v", err)
	}
	if answer == "" {
		t.Fatalf("expected an apology answer")
	}

	// The failure text reached the model as a function response.
	second := model.requests[1]
	last := second.Turns[len(second.Turns)-1]
	if !strings.Contains(last.Parts[0].FunctionResponse.Result, "billing timeout") {
		t.Fatalf("tool failure text missing from model input: %q", last.Parts[0].FunctionResponse.Result)
	}
}

func TestAskEmptyQuestionRejected(t *testing.T) {
	o := newTestOrchestrator(t, &scriptedModel{}, nil, 3)
	if _, err := o.Ask(context.Background(), studentRequest("   ")); err == nil {
		t.Fatalf("blank question should be rejected")
	}
}

func TestNewValidatesOptions(t *testing.T) {
	registry := testRegistry(t)
	if _, err := New(Options{Registry: registry, Dispatcher: dispatch.New(nil)}); err == nil {
		t.Fatalf("missing model should be rejected")
	}
	if _, err := New(Options{Model: &scriptedModel{}, Dispatcher: dispatch.New(nil)}); err == nil {
		t.Fatalf("missing registry should be rejected")
	}
	if _, err := New(Options{Model: &scriptedModel{}, Registry: registry}); err == nil {
		t.Fatalf("missing dispatcher should be rejected")
	}
}
