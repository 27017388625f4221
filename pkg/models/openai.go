package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/capability"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/chat"
)

type OpenAILLM struct {
	Client *openai.Client
	Model  string
}

func NewOpenAILLM(model string) *OpenAILLM {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_KEY") // fallback
	}
	client := openai.NewClient(apiKey)
	return &OpenAILLM{Client: client, Model: model}
}

func (o *OpenAILLM) Generate(ctx context.Context, req Request) (*Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Turns)+1)
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}

	// Tool-call ids are positional: the chat model pairs calls and responses
	// by name and order, the OpenAI wire format by id.
	var pendingIDs []string
	for turnIdx, turn := range req.Turns {
		if turn.Speaker == chat.SpeakerModel {
			msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
			pendingIDs = nil
			for partIdx, part := range turn.Parts {
				switch {
				case part.FunctionCall != nil:
					id := fmt.Sprintf("call_%d_%d", turnIdx, partIdx)
					pendingIDs = append(pendingIDs, id)
					args, _ := json.Marshal(part.FunctionCall.Args)
					msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
						ID:   id,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      part.FunctionCall.Name,
							Arguments: string(args),
						},
					})
				default:
					msg.Content += part.Text
				}
			}
			messages = append(messages, msg)
			continue
		}
		if responses := functionResponses(turn); len(responses) > 0 {
			for i, resp := range responses {
				id := ""
				if i < len(pendingIDs) {
					id = pendingIDs[i]
				}
				messages = append(messages, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    resp.Result,
					Name:       resp.Name,
					ToolCallID: id,
				})
			}
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: turnText(turn),
		})
	}

	request := openai.ChatCompletionRequest{Model: o.Model, Messages: messages}
	for _, tool := range req.Tools {
		request.Tools = append(request.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  jsonSchema(tool.Parameters),
			},
		})
	}

	resp, err := o.Client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	choice := resp.Choices[0].Message
	out := &Response{Text: choice.Content}
	for _, call := range choice.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
		}
		out.FunctionCalls = append(out.FunctionCalls, chat.FunctionCall{
			Name: call.Function.Name,
			Args: args,
		})
	}
	return out, nil
}

// Embed uses the small embedding model, one vector per input.
func (o *OpenAILLM) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.Client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.SmallEmbedding3,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.New("openai embed: response length mismatch")
	}
	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vectors[i] = item.Embedding
	}
	return vectors, nil
}

// jsonSchema renders a capability schema as the JSON-schema map the OpenAI
// and Ollama tool APIs expect.
func jsonSchema(schema *capability.Schema) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	out := map[string]any{"type": string(schema.Type)}
	if schema.Description != "" {
		out["description"] = schema.Description
	}
	if len(schema.Enum) > 0 {
		out["enum"] = schema.Enum
	}
	if schema.Default != nil {
		out["default"] = schema.Default
	}
	if len(schema.Properties) > 0 {
		properties := make(map[string]any, len(schema.Properties))
		for name, prop := range schema.Properties {
			properties[name] = jsonSchema(prop)
		}
		out["properties"] = properties
	}
	if len(schema.Required) > 0 {
		out["required"] = schema.Required
	}
	if schema.Items != nil {
		out["items"] = jsonSchema(schema.Items)
	}
	return out
}

func functionResponses(turn chat.Turn) []chat.FunctionResponse {
	var responses []chat.FunctionResponse
	for _, part := range turn.Parts {
		if part.FunctionResponse != nil {
			responses = append(responses, *part.FunctionResponse)
		}
	}
	return responses
}

func turnText(turn chat.Turn) string {
	text := ""
	for _, part := range turn.Parts {
		text += part.Text
	}
	return text
}

var (
	_ Agent    = (*OpenAILLM)(nil)
	_ Embedder = (*OpenAILLM)(nil)
)
