package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UserContext is the role-shaped identity snapshot injected verbatim as the
// opening turn. The builder treats it as read-only caller input.
type UserContext struct {
	UserID    string          `json:"user_id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	Student   *StudentContext `json:"student,omitempty"`
	Staff     *StaffContext   `json:"staff,omitempty"`
}

// StudentContext carries the student-specific identity fields.
type StudentContext struct {
	StudentNumber string `json:"student_number"`
	Program       string `json:"program"`
	YearLevel     int    `json:"year_level"`
}

// StaffContext carries the mentor/admin-specific identity fields.
type StaffContext struct {
	EmployeeNumber string `json:"employee_number"`
	Department     string `json:"department"`
}

// HistoryEntry is one prior exchange message as recorded by the caller's
// session store. Role is free-form on input; the builder normalizes it.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Build assembles the model input state for one question: the user-context
// snapshot as a synthetic model turn, the prior session history oldest-first
// with speakers normalized, and the current question as the final user turn.
// The history slice is never mutated.
func Build(userCtx UserContext, history []HistoryEntry, question string) Conversation {
	conv := make(Conversation, 0, len(history)+2)
	conv = append(conv, Turn{
		Speaker: SpeakerModel,
		Parts:   []Part{TextPart(contextSnapshot(userCtx))},
	})
	for _, entry := range history {
		content := strings.TrimSpace(entry.Content)
		if content == "" {
			continue
		}
		conv = append(conv, Turn{
			Speaker: normalizeSpeaker(entry.Role),
			Parts:   []Part{TextPart(content)},
		})
	}
	return append(conv, Turn{
		Speaker: SpeakerUser,
		Parts:   []Part{TextPart(question)},
	})
}

// normalizeSpeaker collapses any recorded role that is not exactly "user"
// onto the model side, so replayed history always alternates between the two
// speakers the providers understand.
func normalizeSpeaker(role string) Speaker {
	if strings.ToLower(strings.TrimSpace(role)) == string(SpeakerUser) {
		return SpeakerUser
	}
	return SpeakerModel
}

func contextSnapshot(userCtx UserContext) string {
	encoded, err := json.Marshal(userCtx)
	if err != nil {
		return fmt.Sprintf("I am assisting %s %s (%s).", userCtx.FirstName, userCtx.LastName, userCtx.Role)
	}
	return fmt.Sprintf("Noted. I am assisting the following signed-in user and will scope every answer to them: %s", encoded)
}
