package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecotrack/internal/domain/entity"
)

func TestHandleMessage(t *testing.T) {
	client := NewClient("u1", nil)

	var reply WSMessage
	require.NoError(t, json.Unmarshal(HandleMessage(client, []byte(`{"type":"ping"}`)), &reply))
	assert.Equal(t, MessageTypePong, reply.Type)

	require.NoError(t, json.Unmarshal(HandleMessage(client, []byte(`{"type":"subscribe","data":{"city":" Pune "}}`)), &reply))
	assert.Equal(t, MessageTypeSubscribed, reply.Type)
	assert.Equal(t, "Pune", client.City())

	HandleMessage(client, []byte(`{"type":"unsubscribe"}`))
	assert.Equal(t, "", client.City())

	require.NoError(t, json.Unmarshal(HandleMessage(client, []byte(`not json`)), &reply))
	assert.Equal(t, MessageTypeError, reply.Type)
}

func TestBroadcastFiltersByCity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	pune := NewClient("u1", nil)
	pune.setCity("Pune")
	goa := NewClient("u2", nil)
	goa.setCity("Goa")
	everywhere := NewClient("u3", nil)

	m.Register <- pune
	m.Register <- goa
	m.Register <- everywhere
	require.Eventually(t, func() bool { return m.ClientCount() == 3 }, time.Second, 5*time.Millisecond)

	m.Broadcast(string(entity.EventReportClaimed), entity.DomainEvent{
		Type:   entity.EventReportClaimed,
		Report: &entity.Report{ID: "r1", City: "Pune"},
	})

	for _, c := range []*Client{pune, everywhere} {
		select {
		case msg := <-c.Send:
			var decoded WSMessage
			require.NoError(t, json.Unmarshal(msg, &decoded))
			assert.Equal(t, string(entity.EventReportClaimed), decoded.Type)
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive the event", c.UserID)
		}
	}

	select {
	case <-goa.Send:
		t.Fatal("client subscribed to another city received the event")
	case <-time.After(50 * time.Millisecond):
	}

	m.Unregister <- goa
	require.Eventually(t, func() bool { return m.ClientCount() == 2 }, time.Second, 5*time.Millisecond)
}

func TestAddAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	m := NewManager()
	m.Start(ctx)

	first := NewClient("u1", nil)
	require.True(t, m.Add(first))
	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return m.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	assert.False(t, m.Add(NewClient("u2", nil)))
}
