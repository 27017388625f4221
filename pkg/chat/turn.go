package chat

// Speaker identifies which side of the conversation authored a turn.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerModel Speaker = "model"
)

// FunctionCall is a tool invocation requested by the model.
type FunctionCall struct {
	Name string
	Args map[string]any
}

// FunctionResponse carries the outcome of one executed tool call back to the
// model. Result is always a single string regardless of what shape the
// underlying service returned.
type FunctionResponse struct {
	Name   string
	Result string
}

// Part is one unit of content within a turn: plain text, a function call, or
// a function response. Exactly one field is set.
type Part struct {
	Text             string
	FunctionCall     *FunctionCall
	FunctionResponse *FunctionResponse
}

// TextPart wraps a string in a Part.
func TextPart(text string) Part { return Part{Text: text} }

// Turn is one message in the conversation.
type Turn struct {
	Speaker Speaker
	Parts   []Part
}

// Conversation is an append-only ordered sequence of turns. Mutators return a
// new slice so an in-flight request never aliases another request's history.
type Conversation []Turn

// WithCalls appends a model turn holding one function-call part per requested
// call, preserving the model's emission order.
func (c Conversation) WithCalls(calls []FunctionCall) Conversation {
	parts := make([]Part, 0, len(calls))
	for i := range calls {
		call := calls[i]
		parts = append(parts, Part{FunctionCall: &call})
	}
	out := make(Conversation, 0, len(c)+1)
	out = append(out, c...)
	return append(out, Turn{Speaker: SpeakerModel, Parts: parts})
}

// WithResponses appends a user turn holding one function-response part per
// executed call, in execution order.
func (c Conversation) WithResponses(responses []FunctionResponse) Conversation {
	parts := make([]Part, 0, len(responses))
	for i := range responses {
		resp := responses[i]
		parts = append(parts, Part{FunctionResponse: &resp})
	}
	out := make(Conversation, 0, len(c)+1)
	out = append(out, c...)
	return append(out, Turn{Speaker: SpeakerUser, Parts: parts})
}

// WithText appends a turn containing a single text part.
func (c Conversation) WithText(speaker Speaker, text string) Conversation {
	out := make(Conversation, 0, len(c)+1)
	out = append(out, c...)
	return append(out, Turn{Speaker: speaker, Parts: []Part{TextPart(text)}})
}
