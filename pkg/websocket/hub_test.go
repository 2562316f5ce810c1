package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"goride-ledger/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestClient(hub *Hub, userID primitive.ObjectID) *Client {
	return &Client{
		hub:    hub,
		send:   make(chan []byte, 8),
		UserID: userID,
		rooms:  make(map[string]bool),
	}
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestRelayWithoutRedisDeliversToUserRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logger.NewNop())
	go hub.Run(ctx)

	alice := newTestClient(hub, primitive.NewObjectID())
	bob := newTestClient(hub, primitive.NewObjectID())
	hub.register <- alice
	hub.register <- bob

	require.Equal(t, "welcome", receive(t, alice).Type)
	require.Equal(t, "welcome", receive(t, bob).Type)

	relay := NewRelay(hub, nil, "booking_events", logger.NewNop())
	require.NoError(t, relay.Broadcast(ctx, Message{
		Type:   "booking_approved",
		RoomID: UserRoom(alice.UserID),
		Data:   map[string]interface{}{"booking_id": "b1"},
	}))

	msg := receive(t, alice)
	require.Equal(t, "booking_approved", msg.Type)
	require.Equal(t, "b1", msg.Data["booking_id"])
	require.NotZero(t, msg.Timestamp)

	select {
	case <-bob.send:
		t.Fatal("message leaked to another user's room")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logger.NewNop())
	go hub.Run(ctx)

	client := newTestClient(hub, primitive.NewObjectID())
	hub.register <- client
	receive(t, client)
	hub.unregister <- client

	require.Eventually(t, func() bool {
		_, ok := <-client.send
		return !ok
	}, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return hub.ConnectedClients() == 0 }, time.Second, 10*time.Millisecond)
}
