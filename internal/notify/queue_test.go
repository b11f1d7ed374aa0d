package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/notify"
)

func TestQueue_PostOrdering(t *testing.T) {
	q := notify.New(time.Minute)
	defer q.Close()

	first := q.Post("first", notify.SeverityInfo)
	second := q.Post("second", notify.SeverityError)
	third := q.Post("third", notify.SeveritySuccess)

	events := q.Active()
	require.Len(t, events, 3)

	assert.Equal(t, []string{first, second, third}, []string{events[0].ID, events[1].ID, events[2].ID})
	assert.Equal(t, "first", events[0].Message)
	assert.Equal(t, notify.SeverityError, events[1].Severity)

	// Ids must never collide.
	assert.NotEqual(t, first, second)
	assert.NotEqual(t, second, third)
}

func TestQueue_DismissKeepsOrder(t *testing.T) {
	q := notify.New(time.Minute)
	defer q.Close()

	first := q.Post("first", notify.SeverityInfo)
	second := q.Post("second", notify.SeverityInfo)
	third := q.Post("third", notify.SeverityInfo)

	q.Dismiss(second)

	events := q.Active()
	require.Len(t, events, 2)
	assert.Equal(t, first, events[0].ID)
	assert.Equal(t, third, events[1].ID)
}

func TestQueue_DismissIdempotent(t *testing.T) {
	q := notify.New(time.Minute)
	defer q.Close()

	id := q.Post("hello", notify.SeverityInfo)
	q.Post("still here", notify.SeverityInfo)

	q.Dismiss(id)
	q.Dismiss(id)
	q.Dismiss("no-such-id")

	events := q.Active()
	require.Len(t, events, 1)
	assert.Equal(t, "still here", events[0].Message)
}

func TestQueue_EventsExpire(t *testing.T) {
	q := notify.New(20 * time.Millisecond)
	defer q.Close()

	for i := 0; i < 5; i++ {
		q.Post("transient", notify.SeverityWarning)
	}

	require.Len(t, q.Active(), 5)

	assert.Eventually(t, func() bool {
		return len(q.Active()) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestQueue_CloseStopsTimers(t *testing.T) {
	q := notify.New(10 * time.Millisecond)

	q.Post("doomed", notify.SeverityInfo)
	q.Close()

	assert.Empty(t, q.Active())

	// Posting after Close is a silent no-op.
	id := q.Post("late", notify.SeverityInfo)
	assert.NotEmpty(t, id)
	assert.Empty(t, q.Active())

	// Give any stray timer a chance to fire against the closed queue.
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, q.Active())
}
