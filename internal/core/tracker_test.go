package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordAndRender(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordTurn("a@x.com", "what is metformin?", "Metformin is a diabetes medication.")
	tracker.RecordTurn("a@x.com", "when do I take it?", "Usually with meals.")

	rendered := tracker.Render("a@x.com")
	assert.Equal(t,
		"User: what is metformin?\nBot: Metformin is a diabetes medication.\n\n"+
			"User: when do I take it?\nBot: Usually with meals.",
		rendered)
}

func TestTrackerNoDeduplication(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordTurn("a@x.com", "same question", "same answer")
	tracker.RecordTurn("a@x.com", "same question", "same answer")

	assert.Equal(t, 2, tracker.TurnCount("a@x.com"))
}

func TestTrackerUsersAreIsolated(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordTurn("a@x.com", "q1", "a1")
	tracker.RecordTurn("b@x.com", "q2", "a2")

	assert.Equal(t, 1, tracker.TurnCount("a@x.com"))
	assert.Equal(t, 1, tracker.TurnCount("b@x.com"))
	assert.NotContains(t, tracker.Render("a@x.com"), "q2")
}

func TestTrackerDrainTakesAndRemoves(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordTurn("a@x.com", "q1", "a1")
	tracker.RecordTurn("a@x.com", "q2", "a2")

	conversation, queries, turns := tracker.Drain("a@x.com")
	assert.Equal(t, 2, turns)
	assert.Equal(t, []string{"q1", "q2"}, queries)
	assert.Contains(t, conversation, "User: q1")
	assert.Contains(t, conversation, "Bot: a2")

	// Session is gone after the drain.
	assert.Equal(t, 0, tracker.TurnCount("a@x.com"))
	assert.Equal(t, "", tracker.Render("a@x.com"))
}

func TestTrackerDrainAbsentUser(t *testing.T) {
	tracker := NewTracker()

	conversation, queries, turns := tracker.Drain("ghost@x.com")
	assert.Equal(t, 0, turns)
	assert.Empty(t, queries)
	assert.Equal(t, "", conversation)
}

func TestTrackerClearIsIdempotent(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordTurn("a@x.com", "q", "a")
	tracker.Clear("a@x.com")
	tracker.Clear("a@x.com") // clearing an absent user is a no-op

	assert.Equal(t, 0, tracker.TurnCount("a@x.com"))
}

func TestTrackerClearThenNewTurnStartsFreshSession(t *testing.T) {
	tracker := NewTracker()

	tracker.RecordTurn("a@x.com", "old question", "old answer")
	tracker.Clear("a@x.com")
	tracker.RecordTurn("a@x.com", "new question", "new answer")

	rendered := tracker.Render("a@x.com")
	require.Equal(t, 1, tracker.TurnCount("a@x.com"))
	assert.NotContains(t, rendered, "old question")
	assert.Contains(t, rendered, "new question")
}

func TestTrackerConcurrentRecording(t *testing.T) {
	tracker := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tracker.RecordTurn("a@x.com", fmt.Sprintf("q%d", n), fmt.Sprintf("a%d", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, tracker.TurnCount("a@x.com"))
}
