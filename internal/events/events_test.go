package events

import (
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishJSON(t *testing.T) {
	logger := zerolog.New(io.Discard)
	bus := NewBus(&logger)

	var got []string
	bus.Subscribe(InvoiceSaved, func(e Event) error {
		var p struct{ Number string }
		require.NoError(t, e.Decode(&p))
		got = append(got, "first:"+p.Number)
		assert.False(t, e.CreatedAt.IsZero())
		return errors.New("boom")
	})
	bus.Subscribe(InvoiceSaved, func(e Event) error {
		got = append(got, "second")
		return nil
	})
	bus.Subscribe(ReservationSaved, func(e Event) error {
		got = append(got, "other")
		return nil
	})

	require.NoError(t, bus.PublishJSON(InvoiceSaved, map[string]string{"Number": "INV-2025-001"}))
	assert.Equal(t, []string{"first:INV-2025-001", "second"}, got)
}

func TestBus_PublishCountsFailures(t *testing.T) {
	bus := NewBus(nil)
	bus.Subscribe("x", func(Event) error { return errors.New("a") })
	bus.Subscribe("x", func(Event) error { return nil })

	assert.Equal(t, 1, bus.Publish(Event{Type: "x"}))
	assert.Equal(t, 0, bus.Publish(Event{Type: "none"}))
}

func TestBus_PublishJSONError(t *testing.T) {
	bus := NewBus(nil)
	assert.Error(t, bus.PublishJSON("x", make(chan int)))
}

func TestAsync(t *testing.T) {
	bus := NewBus(nil)
	done := make(chan string, 1)
	bus.Subscribe(InvoiceSaved, Async(func(e Event) error {
		done <- e.Type
		return errors.New("ignored")
	}, nil))

	assert.Equal(t, 0, bus.Publish(Event{Type: InvoiceSaved}))
	assert.Equal(t, InvoiceSaved, <-done)
}
