// Package chat orchestrates the conversational expense flow: it runs each
// utterance through the parser, records actionable results through the
// expense recorder, and keeps the per-user message history.
package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartspend/backend/internal/domain/expense"
)

// Message is one line of the conversation, from either the user or the bot.
// Bot confirmations carry the expense they recorded.
type Message struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Content   string           `json:"content"`
	IsUser    bool             `json:"is_user"`
	Timestamp time.Time        `json:"timestamp"`
	Expense   *expense.Expense `json:"expense,omitempty"`
}

// History is an in-memory, per-user chat transcript with retention-based
// pruning. Safe for concurrent use.
type History struct {
	retention time.Duration
	now       func() time.Time

	mu     sync.RWMutex
	byUser map[uuid.UUID][]Message
}

// NewHistory creates an empty history. Messages older than the retention
// window are dropped by Prune; a non-positive retention keeps everything.
func NewHistory(retention time.Duration) *History {
	return &History{
		retention: retention,
		now:       time.Now,
		byUser:    make(map[uuid.UUID][]Message),
	}
}

// Append adds a message to its user's transcript.
func (h *History) Append(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byUser[msg.UserID] = append(h.byUser[msg.UserID], msg)
}

// List returns the user's transcript in chronological order.
func (h *History) List(userID uuid.UUID) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	messages := h.byUser[userID]
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

// Prune drops messages older than the retention window and returns how many
// were removed.
func (h *History) Prune() int {
	if h.retention <= 0 {
		return 0
	}
	cutoff := h.now().Add(-h.retention)

	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for userID, messages := range h.byUser {
		kept := messages[:0]
		for _, msg := range messages {
			if msg.Timestamp.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, msg)
		}
		if len(kept) == 0 {
			delete(h.byUser, userID)
			continue
		}
		h.byUser[userID] = kept
	}
	return removed
}

// Len returns the total number of stored messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, messages := range h.byUser {
		total += len(messages)
	}
	return total
}
