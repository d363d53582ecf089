package hub

import (
	"sync"

	"github.com/nexocrm/messaging/pkg/internal/models"
)

// Conn is the slice of a websocket connection the hub needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

const seenPacketLimit = 128

// client wraps one connection with a bounded ring of recently delivered
// packet ids, so at-least-once emission from the services never reaches the
// wire twice.
type client struct {
	conn    Conn
	seen    []string
	seenSet map[string]struct{}
}

func (c *client) markSeen(id string) bool {
	if len(id) == 0 {
		return true
	}
	if _, ok := c.seenSet[id]; ok {
		return false
	}
	if len(c.seen) >= seenPacketLimit {
		oldest := c.seen[0]
		c.seen = c.seen[1:]
		delete(c.seenSet, oldest)
	}
	c.seen = append(c.seen, id)
	c.seenSet[id] = struct{}{}
	return true
}

var (
	connLock sync.Mutex
	conns    = make(map[string][]*client)
)

func ClientRegister(user models.Account, conn Conn) {
	connLock.Lock()
	defer connLock.Unlock()
	conns[user.ID] = append(conns[user.ID], &client{
		conn:    conn,
		seenSet: make(map[string]struct{}),
	})
}

func ClientUnregister(user models.Account, conn Conn) {
	connLock.Lock()
	defer connLock.Unlock()
	conns[user.ID] = filterOut(conns[user.ID], conn)
	if len(conns[user.ID]) == 0 {
		delete(conns, user.ID)
	}
}

func filterOut(in []*client, conn Conn) []*client {
	out := in[:0]
	for _, item := range in {
		if item.conn != conn {
			out = append(out, item)
		}
	}
	return out
}

func CheckOnline(userId string) bool {
	connLock.Lock()
	defer connLock.Unlock()
	return len(conns[userId]) > 0
}

// PushCommand delivers a packet to every connection of one user. Packets
// carrying an id are delivered at most once per connection.
func PushCommand(userId string, task models.UnifiedCommand) {
	connLock.Lock()
	targets := make([]Conn, 0, len(conns[userId]))
	for _, item := range conns[userId] {
		if item.markSeen(task.ID) {
			targets = append(targets, item.conn)
		}
	}
	connLock.Unlock()

	// Network I/O outside the lock
	payload := task.Marshal()
	for _, conn := range targets {
		_ = conn.WriteMessage(1, payload)
	}
}

func PushCommandBatch(userIds []string, task models.UnifiedCommand) {
	for _, id := range userIds {
		PushCommand(id, task)
	}
}
