package usecases

import (
	"github.com/google/uuid"

	"github.com/hctpa/guidebot/internal/domain/entities"
)

// Conversation is an ordered, append-only log of turns for one session.
// Clear is the only removing mutation and is invoked by an explicit
// session-reset action, never by the answer pipeline. Not safe for
// concurrent mutation; the caller serializes per session.
type Conversation struct {
	turns []entities.Turn
}

// Append adds a turn to the end of the log.
func (c *Conversation) Append(turn entities.Turn) {
	c.turns = append(c.turns, turn)
}

// History returns the turns in chronological order. The slice is a copy;
// mutating it does not affect the conversation.
func (c *Conversation) History() []entities.Turn {
	out := make([]entities.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Clear removes all turns.
func (c *Conversation) Clear() {
	c.turns = nil
}

// Len returns the number of turns.
func (c *Conversation) Len() int { return len(c.turns) }

// SessionContext carries the per-session state passed to every answer
// pipeline call. There is no ambient global session state.
type SessionContext struct {
	ID           string
	Conversation *Conversation
}

// NewSessionContext creates a session with a fresh id and empty history.
func NewSessionContext() *SessionContext {
	return &SessionContext{
		ID:           uuid.NewString(),
		Conversation: &Conversation{},
	}
}
