// Package notify defines the contract with the real-time delivery
// channel. Dispatch is best-effort and fire-and-forget: failures are
// reported to the caller for logging only and never affect the write
// that triggered them.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"swapmeet/internal/utils"
	"swapmeet/internal/websocket"

	"github.com/google/uuid"
)

// Dispatcher pushes an event to a logical channel. Implementations must
// be safe for concurrent use. The context bounds how long an enqueue may
// take; on expiry the event is dropped.
type Dispatcher interface {
	Dispatch(ctx context.Context, channelKey, event string, payload interface{}) error
}

// ChannelForUser derives the per-recipient channel key. One logical
// channel per user.
func ChannelForUser(userID uuid.UUID) string {
	return "messages-" + userID.String()
}

// Envelope is the wire framing for events on the live channel.
type Envelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// HubDispatcher delivers events through the process's websocket hub.
type HubDispatcher struct {
	hub *websocket.Hub
}

func NewHubDispatcher(hub *websocket.Hub) *HubDispatcher {
	return &HubDispatcher{hub: hub}
}

// Dispatch marshals the event and hands it to the hub. If the hub's
// loop does not accept it before the context expires, the event is
// dropped and an error returned for the caller to log.
func (d *HubDispatcher) Dispatch(ctx context.Context, channelKey, event string, payload interface{}) error {
	data, err := json.Marshal(&Envelope{Event: event, Payload: payload})
	if err != nil {
		return utils.NewAppError(utils.ErrDispatchFailed, "failed to encode event", err)
	}

	delivery := &websocket.Delivery{Channel: channelKey, Payload: data}
	select {
	case d.hub.Deliver <- delivery:
		return nil
	case <-ctx.Done():
		return utils.NewAppError(utils.ErrDispatchFailed,
			fmt.Sprintf("timed out queuing %s on %s", event, channelKey), ctx.Err())
	}
}

// NopDispatcher discards every event. Substituted in tests and when the
// process runs without a live channel.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(ctx context.Context, channelKey, event string, payload interface{}) error {
	return nil
}
