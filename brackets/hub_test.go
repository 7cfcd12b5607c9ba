package brackets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_NotifyTournament(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run(ctx)

	room := RoomForTournament("t1")
	client := &Client{Hub: hub, Send: make(chan []byte, 4), Room: room}
	other := &Client{Hub: hub, Send: make(chan []byte, 4), Room: RoomForTournament("t2")}
	hub.Register <- client
	hub.Register <- other
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)

	hub.NotifyTournament("t1", EventMatchRecorded, map[string]string{"match_id": "m1"})

	select {
	case raw := <-client.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, EventMatchRecorded, msg.Type)
		assert.Equal(t, room, msg.RoomID)
	case <-time.After(time.Second):
		t.Fatal("message was not delivered")
	}
	assert.Empty(t, other.Send)

	hub.Unregister <- client
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-client.Send
	assert.False(t, open)
}
