package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// timeout returns a channel that fires after a generous test deadline.
func timeout(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(2 * time.Second)
}

func TestEventHubBroadcast(t *testing.T) {
	hub := NewEventHub(nil, nil)
	go hub.Run()
	defer hub.Stop()

	first := &MockClient{SendChan: make(chan []byte, 8)}
	second := &MockClient{SendChan: make(chan []byte, 8)}
	hub.Register(first)
	hub.Register(second)

	hub.Broadcast(Event{Type: EventChatReply, UserID: "user-1"})

	for _, client := range []*MockClient{first, second} {
		select {
		case data := <-client.SendChan:
			var event Event
			require.NoError(t, json.Unmarshal(data, &event))
			assert.Equal(t, EventChatReply, event.Type)
			assert.False(t, event.Timestamp.IsZero())
		case <-timeout(t):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestEventHubUnregister(t *testing.T) {
	hub := NewEventHub(nil, nil)
	go hub.Run()
	defer hub.Stop()

	client := &MockClient{SendChan: make(chan []byte, 8)}
	hub.Register(client)
	hub.Unregister(client)

	// The send channel closes on unregister.
	select {
	case _, open := <-client.SendChan:
		assert.False(t, open)
	case <-timeout(t):
		t.Fatal("send channel was not closed")
	}
}

func TestEventHubDropsSlowClients(t *testing.T) {
	hub := NewEventHub(nil, nil)
	go hub.Run()
	defer hub.Stop()

	// Unbuffered channel with no reader: the first broadcast drops it.
	slow := &MockClient{SendChan: make(chan []byte)}
	healthy := &MockClient{SendChan: make(chan []byte, 8)}
	hub.Register(slow)
	hub.Register(healthy)

	hub.Broadcast(Event{Type: EventCompanionUpdate})

	select {
	case _, open := <-slow.SendChan:
		assert.False(t, open, "slow client channel should be closed")
	case <-timeout(t):
		t.Fatal("slow client was not dropped")
	}
	select {
	case <-healthy.SendChan:
	case <-timeout(t):
		t.Fatal("healthy client did not receive broadcast")
	}
}
