package chat

import (
	"strings"
	"testing"
)

func TestBuildOrdersTurns(t *testing.T) {
	userCtx := UserContext{UserID: "u-1", FirstName: "Aliyah", LastName: "Cruz", Role: "student"}
	history := []HistoryEntry{
		{Role: "user", Content: "hello"},
		{Role: "model", Content: "hi there"},
	}

	conv := Build(userCtx, history, "what courses am I taking?")

	if len(conv) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(conv))
	}
	if conv[0].Speaker != SpeakerModel {
		t.Fatalf("context snapshot turn should be model-authored, got %s", conv[0].Speaker)
	}
	if !strings.Contains(conv[0].Parts[0].Text, "u-1") {
		t.Fatalf("context snapshot should embed the user id: %q", conv[0].Parts[0].Text)
	}
	if conv[1].Speaker != SpeakerUser || conv[1].Parts[0].Text != "hello" {
		t.Fatalf("history order broken: %+v", conv[1])
	}
	last := conv[len(conv)-1]
	if last.Speaker != SpeakerUser || last.Parts[0].Text != "what courses am I taking?" {
		t.Fatalf("final turn should carry the question: %+v", last)
	}
}

func TestBuildNormalizesUnknownRoles(t *testing.T) {
	history := []HistoryEntry{
		{Role: "assistant", Content: "prior reply"},
		{Role: "system", Content: "noise"},
		{Role: "USER", Content: "prior question"},
	}

	conv := Build(UserContext{}, history, "next")

	if conv[1].Speaker != SpeakerModel {
		t.Fatalf("assistant should collapse to model, got %s", conv[1].Speaker)
	}
	if conv[2].Speaker != SpeakerModel {
		t.Fatalf("system should collapse to model, got %s", conv[2].Speaker)
	}
	if conv[3].Speaker != SpeakerUser {
		t.Fatalf("USER should normalize to user, got %s", conv[3].Speaker)
	}
}

func TestBuildDoesNotMutateHistory(t *testing.T) {
	history := []HistoryEntry{{Role: "weird", Content: "original"}}
	_ = Build(UserContext{}, history, "q")
	if history[0].Role != "weird" || history[0].Content != "original" {
		t.Fatalf("history input was mutated: %+v", history[0])
	}
}

func TestBuildSkipsEmptyHistoryEntries(t *testing.T) {
	history := []HistoryEntry{{Role: "user", Content: "   "}}
	conv := Build(UserContext{}, history, "q")
	if len(conv) != 2 {
		t.Fatalf("blank history entries should be dropped, got %d turns", len(conv))
	}
}

func TestWithCallsAndResponsesCopyOnAppend(t *testing.T) {
	base := Build(UserContext{}, nil, "q")
	baseLen := len(base)

	calls := []FunctionCall{
		{Name: "first", Args: map[string]any{"a": 1}},
		{Name: "second", Args: nil},
	}
	withCalls := base.WithCalls(calls)
	withResponses := withCalls.WithResponses([]FunctionResponse{
		{Name: "first", Result: "one"},
		{Name: "second", Result: "two"},
	})

	if len(base) != baseLen {
		t.Fatalf("append mutated the original conversation")
	}
	modelTurn := withCalls[len(withCalls)-1]
	if modelTurn.Speaker != SpeakerModel || len(modelTurn.Parts) != 2 {
		t.Fatalf("model turn should hold one part per call: %+v", modelTurn)
	}
	if modelTurn.Parts[0].FunctionCall.Name != "first" || modelTurn.Parts[1].FunctionCall.Name != "second" {
		t.Fatalf("call emission order not preserved")
	}
	userTurn := withResponses[len(withResponses)-1]
	if userTurn.Speaker != SpeakerUser || len(userTurn.Parts) != 2 {
		t.Fatalf("response turn should hold one part per result: %+v", userTurn)
	}
	if userTurn.Parts[0].FunctionResponse.Name != "first" || userTurn.Parts[1].FunctionResponse.Result != "two" {
		t.Fatalf("response pairing broken: %+v", userTurn.Parts)
	}
}
