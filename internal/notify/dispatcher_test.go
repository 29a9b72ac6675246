package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"swapmeet/internal/utils"
	"swapmeet/internal/websocket"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestChannelForUser(t *testing.T) {
	userID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	assert.Equal(t, "messages-11111111-2222-3333-4444-555555555555", ChannelForUser(userID))
}

func TestHubDispatcherDeliversToSubscriber(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	channel := ChannelForUser(uuid.New())
	client := &websocket.Client{Hub: hub, Channel: channel, Send: make(chan []byte, 1)}
	hub.Register <- client

	assert.Eventually(t, func() bool {
		return hub.Subscribers(channel) == 1
	}, 2*time.Second, 10*time.Millisecond)

	dispatcher := NewHubDispatcher(hub)
	err := dispatcher.Dispatch(context.Background(), channel, "new-message", map[string]string{"text": "hi"})
	assert.NoError(t, err)

	select {
	case payload := <-client.Send:
		var envelope Envelope
		assert.NoError(t, json.Unmarshal(payload, &envelope))
		assert.Equal(t, "new-message", envelope.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a payload on the subscriber's send buffer")
	}
}

func TestHubDispatcherDropsWithoutSubscriber(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	// No subscriber on the channel: the hub accepts and discards the
	// payload, and the dispatcher reports success.
	dispatcher := NewHubDispatcher(hub)
	err := dispatcher.Dispatch(context.Background(), ChannelForUser(uuid.New()), "new-message", "orphan")
	assert.NoError(t, err)
}

func TestHubDispatcherTimesOutWhenHubStalled(t *testing.T) {
	// Hub loop never started, so the enqueue can only end via the context.
	dispatcher := NewHubDispatcher(websocket.NewHub())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := dispatcher.Dispatch(ctx, ChannelForUser(uuid.New()), "new-message", "stuck")
	assert.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrDispatchFailed))
}

func TestNopDispatcher(t *testing.T) {
	assert.NoError(t, NopDispatcher{}.Dispatch(context.Background(), "messages-any", "new-message", nil))
}
