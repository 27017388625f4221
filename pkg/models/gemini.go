package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/capability"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/chat"
)

// ---------------------------- Google Gemini ----------------------------------

// GeminiLLM speaks the native Gemini function-calling wire format, which the
// chat.Turn model mirrors one-to-one.
type GeminiLLM struct {
	Client *genai.Client
	Model  string
}

func NewGeminiLLM(ctx context.Context, model string) (*GeminiLLM, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiLLM{Client: client, Model: model}, nil
}

func (g *GeminiLLM) Generate(ctx context.Context, req Request) (*Response, error) {
	if len(req.Turns) == 0 {
		return nil, errors.New("gemini: empty conversation")
	}

	model := g.Client.GenerativeModel(g.Model)
	if instruction := strings.TrimSpace(req.SystemInstruction); instruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(instruction)}}
	}
	if declarations := geminiDeclarations(req.Tools); len(declarations) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}

	contents := make([]*genai.Content, 0, len(req.Turns))
	for i := range req.Turns {
		contents = append(contents, geminiContent(req.Turns[i]))
	}

	session := model.StartChat()
	session.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini: empty response")
	}

	out := &Response{}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			text.WriteString(string(v))
		case genai.FunctionCall:
			out.FunctionCalls = append(out.FunctionCalls, chat.FunctionCall{Name: v.Name, Args: v.Args})
		}
	}
	out.Text = text.String()
	return out, nil
}

// Embed returns one embedding vector per input text.
func (g *GeminiLLM) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	em := g.Client.EmbeddingModel("text-embedding-004")
	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}
	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, errors.New("gemini embed: response length mismatch")
	}
	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

func geminiContent(turn chat.Turn) *genai.Content {
	parts := make([]genai.Part, 0, len(turn.Parts))
	for _, part := range turn.Parts {
		switch {
		case part.FunctionCall != nil:
			parts = append(parts, genai.FunctionCall{Name: part.FunctionCall.Name, Args: part.FunctionCall.Args})
		case part.FunctionResponse != nil:
			parts = append(parts, genai.FunctionResponse{
				Name:     part.FunctionResponse.Name,
				Response: map[string]any{"result": part.FunctionResponse.Result},
			})
		default:
			parts = append(parts, genai.Text(part.Text))
		}
	}
	return &genai.Content{Role: string(turn.Speaker), Parts: parts}
}

func geminiDeclarations(tools []capability.Descriptor) []*genai.FunctionDeclaration {
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  geminiSchema(tool.Parameters),
		})
	}
	return declarations
}

func geminiSchema(schema *capability.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}
	out := &genai.Schema{
		Description: schema.Description,
		Enum:        schema.Enum,
		Required:    schema.Required,
	}
	switch schema.Type {
	case capability.TypeInteger:
		out.Type = genai.TypeInteger
	case capability.TypeObject:
		out.Type = genai.TypeObject
	case capability.TypeArray:
		out.Type = genai.TypeArray
	default:
		out.Type = genai.TypeString
	}
	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(schema.Properties))
		for name, prop := range schema.Properties {
			out.Properties[name] = geminiSchema(prop)
		}
	}
	if schema.Items != nil {
		out.Items = geminiSchema(schema.Items)
	}
	return out
}

var (
	_ Agent    = (*GeminiLLM)(nil)
	_ Embedder = (*GeminiLLM)(nil)
)
