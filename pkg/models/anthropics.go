package models

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/chat"
)

// AnthropicLLM implements the Agent interface over Anthropic's Messages API.
type AnthropicLLM struct {
	Client    *anthropic.Client
	Model     string
	MaxTokens int
}

// NewAnthropicLLM constructs a client. It reads ANTHROPIC_API_KEY from the env.
func NewAnthropicLLM(model string) *AnthropicLLM {
	key := os.Getenv("ANTHROPIC_API_KEY")
	cl := anthropic.NewClient(
		anthropicopt.WithAPIKey(key),
	)
	return &AnthropicLLM{
		Client:    &cl,
		Model:     model,
		MaxTokens: 1024,
	}
}

func (a *AnthropicLLM) Generate(ctx context.Context, req Request) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(a.MaxTokens),
	}
	if req.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemInstruction}}
	}
	for _, tool := range req.Tools {
		schema := jsonSchema(tool.Parameters)
		properties := schema["properties"]
		required, _ := schema["required"].([]string)
		toolParam := anthropic.ToolParam{
			Name:        tool.Name,
			Description: anthropic.String(tool.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		}
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{OfTool: &toolParam})
	}

	var pendingIDs []string
	for turnIdx, turn := range req.Turns {
		if turn.Speaker == chat.SpeakerModel {
			var blocks []anthropic.ContentBlockParamUnion
			pendingIDs = nil
			for partIdx, part := range turn.Parts {
				switch {
				case part.FunctionCall != nil:
					id := fmt.Sprintf("toolu_%d_%d", turnIdx, partIdx)
					pendingIDs = append(pendingIDs, id)
					blocks = append(blocks, anthropic.ContentBlockParamUnion{
						OfToolUse: &anthropic.ToolUseBlockParam{
							ID:    id,
							Name:  part.FunctionCall.Name,
							Input: part.FunctionCall.Args,
						},
					})
				default:
					if part.Text != "" {
						blocks = append(blocks, anthropic.NewTextBlock(part.Text))
					}
				}
			}
			if len(blocks) > 0 {
				params.Messages = append(params.Messages, anthropic.NewAssistantMessage(blocks...))
			}
			continue
		}
		if responses := functionResponses(turn); len(responses) > 0 {
			var blocks []anthropic.ContentBlockParamUnion
			for i, resp := range responses {
				id := ""
				if i < len(pendingIDs) {
					id = pendingIDs[i]
				}
				blocks = append(blocks, anthropic.NewToolResultBlock(id, resp.Result, false))
			}
			params.Messages = append(params.Messages, anthropic.NewUserMessage(blocks...))
			continue
		}
		params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turnText(turn))))
	}

	msg, err := a.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	out := &Response{}
	for _, cb := range msg.Content {
		switch block := cb.AsAny().(type) {
		case anthropic.TextBlock:
			out.Text += block.Text
		case anthropic.ToolUseBlock:
			args := map[string]any{}
			if len(block.Input) > 0 {
				_ = json.Unmarshal(block.Input, &args)
			}
			out.FunctionCalls = append(out.FunctionCalls, chat.FunctionCall{Name: block.Name, Args: args})
		}
	}
	return out, nil
}

var _ Agent = (*AnthropicLLM)(nil)
