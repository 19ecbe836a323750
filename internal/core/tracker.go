package core

import (
	"fmt"
	"strings"
	"sync"
)

// Turn is one query/answer pair in an active chat session.
type Turn struct {
	UserQuery string
	BotAnswer string
}

// Tracker is the in-memory per-user session ledger. A user's entry is created
// lazily on their first turn and removed when the session ends, so a chat
// turn after an end-session silently starts a fresh session.
//
// All operations hold the mutex: requests for the same user may be in flight
// concurrently, and end-of-session must see exactly the turns recorded before
// it (Drain takes and removes in one critical section).
type Tracker struct {
	mu            sync.Mutex
	conversations map[string][]Turn
	queries       map[string][]string
}

func NewTracker() *Tracker {
	return &Tracker{
		conversations: make(map[string][]Turn),
		queries:       make(map[string][]string),
	}
}

// RecordTurn appends a query/answer pair to the user's session. Append-only,
// no deduplication: repeated identical queries are distinct turns.
func (t *Tracker) RecordTurn(email, query, answer string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.conversations[email] = append(t.conversations[email], Turn{UserQuery: query, BotAnswer: answer})
	t.queries[email] = append(t.queries[email], query)
}

// Render produces the conversation as a single text block of
// "User: ..." / "Bot: ..." lines in insertion order.
func (t *Tracker) Render(email string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return renderTurns(t.conversations[email])
}

// Drain returns the rendered conversation and raw queries for a user and
// removes the session in the same critical section, so a turn recorded
// concurrently is never silently dropped between a read and a clear.
func (t *Tracker) Drain(email string) (conversation string, queries []string, turns int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	recorded := t.conversations[email]
	queries = t.queries[email]
	delete(t.conversations, email)
	delete(t.queries, email)

	return renderTurns(recorded), queries, len(recorded)
}

// Clear removes the user's session. Clearing an absent user is a no-op.
func (t *Tracker) Clear(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.conversations, email)
	delete(t.queries, email)
}

// TurnCount reports how many turns are recorded for a user.
func (t *Tracker) TurnCount(email string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.conversations[email])
}

func renderTurns(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	parts := make([]string, 0, len(turns))
	for _, turn := range turns {
		parts = append(parts, fmt.Sprintf("User: %s\nBot: %s", turn.UserQuery, turn.BotAnswer))
	}
	return strings.Join(parts, "\n\n")
}
