// Package narrator talks to the generative backend that writes the story.
// A Narrator receives the full conversation (system message first) and
// returns the next assistant reply.
package narrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/nathoo/nocturne/types"
)

// Narrator produces the next reply of the conversation.
type Narrator interface {
	Narrate(ctx context.Context, messages []types.Message) (string, error)
}

var (
	// ErrEmptyReply is returned when the backend answers with no text.
	ErrEmptyReply = errors.New("narrator: empty reply")
	// ErrScriptExhausted is returned by Scripted when it runs out of replies.
	ErrScriptExhausted = errors.New("narrator: script exhausted")
)

// StatusError reports a non-2xx answer from an HTTP backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("narrator: backend returned status %d: %s", e.Code, body)
}

// Func adapts a function to the Narrator interface.
type Func func(ctx context.Context, messages []types.Message) (string, error)

// Narrate calls f.
func (f Func) Narrate(ctx context.Context, messages []types.Message) (string, error) {
	return f(ctx, messages)
}
