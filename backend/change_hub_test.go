package backend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tourcompanion/portal-server/backend"
)

func TestChangeHubDeliversToAllSubscribers(t *testing.T) {
	hub := backend.NewChangeHub()

	var first, second []backend.ChangeEvent
	hub.Subscribe(func(event backend.ChangeEvent, _ *backend.Session) {
		first = append(first, event)
	})
	hub.Subscribe(func(event backend.ChangeEvent, _ *backend.Session) {
		second = append(second, event)
	})

	hub.Emit(backend.EventSignedIn, &backend.Session{})
	hub.Emit(backend.EventSignedOut, nil)

	want := []backend.ChangeEvent{backend.EventSignedIn, backend.EventSignedOut}
	require.Equal(t, want, first)
	require.Equal(t, want, second)
}

func TestChangeHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := backend.NewChangeHub()

	var events int
	sub := hub.Subscribe(func(backend.ChangeEvent, *backend.Session) { events++ })

	hub.Emit(backend.EventSignedIn, nil)
	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent
	hub.Emit(backend.EventSignedOut, nil)

	require.Equal(t, 1, events)
}

func TestChangeHubSubscriberCanUnsubscribeDuringEmit(t *testing.T) {
	hub := backend.NewChangeHub()

	var sub backend.Subscription
	var events int
	sub = hub.Subscribe(func(backend.ChangeEvent, *backend.Session) {
		events++
		sub.Unsubscribe()
	})

	hub.Emit(backend.EventSignedIn, nil)
	hub.Emit(backend.EventSignedIn, nil)

	require.Equal(t, 1, events)
}
