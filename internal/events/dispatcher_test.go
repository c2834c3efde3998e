package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string

	d.Subscribe(EventTicketRecorded, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.Subject)
		return errors.New("cache down")
	})
	d.Subscribe(EventTicketRecorded, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.Subject)
		return nil
	})
	d.Subscribe(EventStaffChanged, func(context.Context, Event) error {
		seen = append(seen, "staff")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventTicketRecorded, "1001", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache down")
	assert.Equal(t, []string{"first:1001", "second:1001"}, seen)
}

func TestNewEventStampsIdentity(t *testing.T) {
	a := NewEvent(EventImportCompleted, "run", nil)
	b := NewEvent(EventImportCompleted, "run", nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}
