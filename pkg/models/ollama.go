package models

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/chat"
)

// ---------------------------- Ollama -----------------------------------------

// OllamaLLM runs against a local Ollama server. Tool schemas are rendered
// into the system prompt rather than the native tools field, so models
// without tool training still see the capability surface; native tool calls
// in the reply are honored when the model emits them.
type OllamaLLM struct {
	Client *ollama.Client
	Model  string
}

func NewOllamaLLM(model string) (*OllamaLLM, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	httpClient := &http.Client{
		Timeout: 120 * time.Second,
	}

	c := ollama.NewClient(u, httpClient)
	return &OllamaLLM{Client: c, Model: model}, nil
}

func (o *OllamaLLM) Generate(ctx context.Context, req Request) (*Response, error) {
	system := req.SystemInstruction
	if toolBlock := renderToolPrompt(req); toolBlock != "" {
		system = strings.TrimSpace(system + "\n\n" + toolBlock)
	}

	messages := make([]ollama.Message, 0, len(req.Turns)+1)
	if system != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: system})
	}
	for _, turn := range req.Turns {
		role := "user"
		if turn.Speaker == chat.SpeakerModel {
			role = "assistant"
		}
		messages = append(messages, ollama.Message{Role: role, Content: flattenTurn(turn)})
	}

	stream := false
	request := &ollama.ChatRequest{
		Model:    o.Model,
		Messages: messages,
		Stream:   &stream,
	}

	out := &Response{}
	var text strings.Builder
	err := o.Client.Chat(ctx, request, func(resp ollama.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		for _, call := range resp.Message.ToolCalls {
			out.FunctionCalls = append(out.FunctionCalls, chat.FunctionCall{
				Name: call.Function.Name,
				Args: map[string]any(call.Function.Arguments),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	out.Text = text.String()
	return out, nil
}

// renderToolPrompt formats the allowed capability schemas into a prompt block.
func renderToolPrompt(req Request) string {
	if len(req.Tools) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Available functions:\n")
	for _, tool := range req.Tools {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", tool.Name, tool.Description))
		if schemaJSON, err := json.MarshalIndent(jsonSchema(tool.Parameters), "  ", "  "); err == nil {
			sb.WriteString("  Input schema: ")
			sb.Write(schemaJSON)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// flattenTurn renders a turn's parts as plain text for providers whose chat
// history carries no structured call/response parts.
func flattenTurn(turn chat.Turn) string {
	var sb strings.Builder
	for _, part := range turn.Parts {
		switch {
		case part.FunctionCall != nil:
			args, _ := json.Marshal(part.FunctionCall.Args)
			sb.WriteString(fmt.Sprintf("[requested %s with %s]\n", part.FunctionCall.Name, args))
		case part.FunctionResponse != nil:
			sb.WriteString(fmt.Sprintf("[%s returned: %s]\n", part.FunctionResponse.Name, part.FunctionResponse.Result))
		default:
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

var _ Agent = (*OllamaLLM)(nil)
