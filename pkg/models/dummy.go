package models

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
)

// DummyLLM is a lightweight model implementation useful for local runs and
// tests without API calls. Responses can be scripted in order; once the
// script is exhausted (or when none was given) it echoes the last user text.
type DummyLLM struct {
	Prefix string

	mu       sync.Mutex
	script   []Response
	position int
}

func NewDummyLLM(prefix string) *DummyLLM {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Dummy response:"
	}
	return &DummyLLM{Prefix: prefix}
}

// Script queues canned responses returned in order by Generate.
func (d *DummyLLM) Script(responses ...Response) *DummyLLM {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.script = append(d.script, responses...)
	return d
}

func (d *DummyLLM) Generate(_ context.Context, req Request) (*Response, error) {
	d.mu.Lock()
	if d.position < len(d.script) {
		resp := d.script[d.position]
		d.position++
		d.mu.Unlock()
		return &resp, nil
	}
	d.mu.Unlock()

	last := "<empty conversation>"
	for i := len(req.Turns) - 1; i >= 0; i-- {
		if text := strings.TrimSpace(turnText(req.Turns[i])); text != "" {
			last = text
			break
		}
	}
	return &Response{Text: fmt.Sprintf("%s %s", d.Prefix, last)}, nil
}

// Embed returns deterministic unit-free pseudo-vectors so store and search
// plumbing is exercisable without a provider.
func (d *DummyLLM) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, 16)
		for _, token := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(token))
			vec[h.Sum32()%16]++
		}
		vectors[i] = vec
	}
	return vectors, nil
}

var (
	_ Agent    = (*DummyLLM)(nil)
	_ Embedder = (*DummyLLM)(nil)
)
