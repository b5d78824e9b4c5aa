package realtime

import (
	"sync"
)

// Rooms tracks live connections and maps each user to the set of
// connections that joined the user's room. A connection belongs to at
// most one room at a time.
type Rooms struct {
	mu       sync.RWMutex
	conns    map[*Client]struct{}
	members  map[string]map[*Client]struct{}
	byClient map[*Client]string
}

func NewRooms() *Rooms {
	return &Rooms{
		conns:    make(map[*Client]struct{}),
		members:  make(map[string]map[*Client]struct{}),
		byClient: make(map[*Client]string),
	}
}

// Connect registers a live connection that has not joined a room yet.
func (r *Rooms) Connect(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c] = struct{}{}
}

// Disconnect forgets c entirely and returns the room it was in, if any.
func (r *Rooms) Disconnect(c *Client) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, c)
	userId, ok := r.byClient[c]
	if ok {
		r.removeLocked(c, userId)
	}

	return userId, ok
}

// Connections returns the number of live connections.
func (r *Rooms) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

// Join adds c to the room of userId. Joining the same room twice is a
// no-op; joining a different room moves the connection. It reports
// whether membership changed.
func (r *Rooms) Join(c *Client, userId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.byClient[c]; ok {
		if cur == userId {
			return false
		}
		r.removeLocked(c, cur)
	}

	room, ok := r.members[userId]
	if !ok {
		room = make(map[*Client]struct{})
		r.members[userId] = room
	}
	room[c] = struct{}{}
	r.byClient[c] = userId
	r.conns[c] = struct{}{}

	return true
}

func (r *Rooms) removeLocked(c *Client, userId string) {
	delete(r.byClient, c)
	if room, ok := r.members[userId]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(r.members, userId)
		}
	}
}

// RoomOf returns the user id whose room c is in.
func (r *Rooms) RoomOf(c *Client) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userId, ok := r.byClient[c]
	return userId, ok
}

func (r *Rooms) Members(userId string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.members[userId]
	clients := make([]*Client, 0, len(room))
	for c := range room {
		clients = append(clients, c)
	}

	return clients
}

func (r *Rooms) Online(userId string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.members[userId]) > 0
}

// Len returns the number of non-empty rooms.
func (r *Rooms) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.members)
}

// SendToUser queues frame on every connection in the user's room and
// returns how many connections accepted it.
func (r *Rooms) SendToUser(userId string, frame []byte) int {
	sent := 0
	for _, c := range r.Members(userId) {
		if c.queue(frame) {
			sent++
		}
	}

	return sent
}

// Clients returns a snapshot of every live connection.
func (r *Rooms) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.conns))
	for c := range r.conns {
		clients = append(clients, c)
	}

	return clients
}

// Broadcast queues frame on every live connection.
func (r *Rooms) Broadcast(frame []byte) int {
	sent := 0
	for _, c := range r.Clients() {
		if c.queue(frame) {
			sent++
		}
	}

	return sent
}
