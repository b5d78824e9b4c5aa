package realtime

import (
	"context"
	"testing"

	"github.com/npezzotti/smartshop/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLocalBus(t *testing.T) {
	rooms := NewRooms()
	bus := NewLocalBus(rooms)
	u1 := newBareClient(t, 2)
	u2 := newBareClient(t, 2)
	rooms.Join(u1, "u1")
	rooms.Join(u2, "u2")

	assert.NoError(t, bus.PublishUser(context.Background(), "u1", []byte("direct")))
	assert.NoError(t, bus.PublishUser(context.Background(), "offline", []byte("lost")))
	assert.NoError(t, bus.PublishAll(context.Background(), []byte("all")))
	assert.NoError(t, bus.Close())

	assert.Equal(t, []byte("direct"), <-u1.send)
	assert.Equal(t, []byte("all"), <-u1.send)
	assert.Equal(t, []byte("all"), <-u2.send)
	assert.Len(t, u2.send, 0)
}

func TestRedisBus_deliver(t *testing.T) {
	tcases := []struct {
		name      string
		channel   string
		u1, other int
	}{
		{name: "user channel", channel: redisUserPrefix + "u1", u1: 1},
		{name: "broadcast channel", channel: redisBroadcast, u1: 1, other: 1},
		{name: "other user", channel: redisUserPrefix + "u2"},
		{name: "empty user", channel: redisUserPrefix},
		{name: "unknown channel", channel: redisChannelPrefix + "metrics"},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			rooms := NewRooms()
			u1 := newBareClient(t, 1)
			other := newBareClient(t, 1)
			rooms.Join(u1, "u1")
			rooms.Connect(other)

			b := &RedisBus{log: testutil.TestLogger(t), rooms: rooms}
			b.deliver(tc.channel, []byte("frame"))

			assert.Len(t, u1.send, tc.u1)
			assert.Len(t, other.send, tc.other)
		})
	}
}
