package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewHub(t *testing.T) {
	hub := NewHub(testLogger())

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.rooms)
}

func TestHub_JoinAndLeave(t *testing.T) {
	hub := NewHub(testLogger())
	client := NewClient(nil)
	room := RestaurantRoom(uuid.New())

	hub.Join(client, room)
	assert.Equal(t, 1, hub.RoomSize(room))

	hub.Leave(client, room)
	assert.Equal(t, 0, hub.RoomSize(room))

	// Leaving again is safe
	hub.Leave(client, room)
	assert.Equal(t, 0, hub.RoomSize(room))
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	hub := NewHub(testLogger())
	client := NewClient(nil)
	room := RestaurantRoom(uuid.New())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Join(client, room)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, hub.RoomSize(room), "concurrent joins must yield a single membership entry")
}

func TestHub_PublishToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub(testLogger())
	room := RestaurantRoom(uuid.New())

	// No members, no buffering, no panic
	hub.Publish(room, EventOrderUpdated, map[string]string{"id": "O1"})

	// A late join must not receive the earlier event
	client := NewClient(nil)
	hub.Join(client, room)

	select {
	case <-client.send:
		t.Fatal("late joiner must not receive events published before join")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_NoDeliveryAfterLeave(t *testing.T) {
	hub := NewHub(testLogger())
	client := NewClient(nil)
	room := RestaurantRoom(uuid.New())

	hub.Join(client, room)
	hub.Leave(client, room)
	hub.Publish(room, EventOrderUpdated, map[string]string{"id": "O1"})

	select {
	case <-client.send:
		t.Fatal("departed client must not receive events")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RoomIsolation(t *testing.T) {
	hub := NewHub(testLogger())

	restaurant1 := uuid.New()
	restaurant2 := uuid.New()

	kds1 := NewClient(nil)
	kds2 := NewClient(nil)

	hub.Join(kds1, RestaurantRoom(restaurant1))
	hub.Join(kds2, RestaurantRoom(restaurant2))

	hub.Publish(RestaurantRoom(restaurant1), EventOrderUpdated, map[string]string{
		"id":     "O1",
		"status": "READY",
	})

	select {
	case msg := <-kds1.send:
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, EventOrderUpdated, event.Type)

		data, ok := event.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "O1", data["id"])
		assert.Equal(t, "READY", data["status"])
	case <-time.After(time.Second):
		t.Fatal("restaurant1 display should receive the event")
	}

	select {
	case <-kds2.send:
		t.Fatal("restaurant2 display must not receive restaurant1 events")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_DeliveryPreservesPublishOrder(t *testing.T) {
	hub := NewHub(testLogger())
	client := NewClient(nil)
	room := RestaurantRoom(uuid.New())
	hub.Join(client, room)

	statuses := []string{"CONFIRMED", "PREPARING", "READY"}
	for _, status := range statuses {
		hub.Publish(room, EventOrderUpdated, map[string]string{"status": status})
	}

	for _, want := range statuses {
		select {
		case msg := <-client.send:
			var event Event
			require.NoError(t, json.Unmarshal(msg, &event))
			data := event.Data.(map[string]interface{})
			assert.Equal(t, want, data["status"])
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

func TestHub_Disconnect(t *testing.T) {
	hub := NewHub(testLogger())
	client := NewClient(nil)

	room1 := RestaurantRoom(uuid.New())
	room2 := RestaurantRoom(uuid.New())
	hub.Join(client, room1)
	hub.Join(client, room2)

	hub.Disconnect(client)

	assert.Equal(t, 0, hub.RoomSize(room1))
	assert.Equal(t, 0, hub.RoomSize(room2))

	// send channel is closed exactly once; a second disconnect must not panic
	hub.Disconnect(client)

	_, open := <-client.send
	assert.False(t, open)
}

func TestHub_ConcurrentPublishAndMembership(t *testing.T) {
	hub := NewHub(testLogger())
	room := RestaurantRoom(uuid.New())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewClient(nil)
			hub.Join(c, room)
			hub.Publish(room, EventOrderUpdated, map[string]string{"id": "O1"})
			hub.Leave(c, room)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.RoomSize(room))
}

func TestHub_PublishRacingDisconnectDoesNotPanic(t *testing.T) {
	hub := NewHub(testLogger())
	room := RestaurantRoom(uuid.New())

	for i := 0; i < 5000; i++ {
		client := NewClient(nil)
		hub.Join(client, room)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Publish(room, EventOrderUpdated, map[string]string{"id": "O1"})
		}()
		go func() {
			defer wg.Done()
			hub.Disconnect(client)
		}()
		wg.Wait()
	}
}

func TestHub_JoinRacingLastLeaveKeepsMembership(t *testing.T) {
	hub := NewHub(testLogger())
	room := RestaurantRoom(uuid.New())

	for i := 0; i < 5000; i++ {
		leaver := NewClient(nil)
		joiner := NewClient(nil)
		hub.Join(leaver, room)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Leave(leaver, room)
		}()
		go func() {
			defer wg.Done()
			hub.Join(joiner, room)
		}()
		wg.Wait()

		require.Equal(t, 1, hub.RoomSize(room), "iteration %d: joiner fell into a reaped room", i)
		hub.Leave(joiner, room)
	}
}

func TestNewPublisher_NilHubDegradesToNoop(t *testing.T) {
	publisher := NewPublisher(nil, testLogger())

	// Must not panic, must not block
	publisher.Publish(RestaurantRoom(uuid.New()), EventOrderUpdated, map[string]string{"id": "O1"})
}

func TestRestaurantRoom_NamingContract(t *testing.T) {
	id := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	assert.Equal(t, "restaurant:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", RestaurantRoom(id))
}
