package server

import (
	"net"
	"sync"

	"github.com/rs/xid"
)

// readBufferSize mirrors the reference listener's fixed per-connection
// buffer (BUFFER_SIZE in network_listener.c).
const readBufferSize = 8192

// closeThreshold is how close to a full buffer a connection can get
// before it is treated as sending a malformed/oversized request and
// disconnected (spec §6).
const closeThreshold = readBufferSize - 100

// session is one accepted connection's mutable state. It is owned
// exclusively by the session table that created it; workers only touch
// a session while holding the table's lock or while it is not reachable
// from any other goroutine (the short read/process/write window).
type session struct {
	id            xid.ID
	conn          net.Conn
	authenticated bool
	buf           []byte // len is the amount of unconsumed data; initial cap is readBufferSize
	active        bool
	slot          int
}

func newSession(conn net.Conn, slot int) *session {
	return &session{
		id:   xid.New(),
		conn: conn,
		buf:  make([]byte, 0, readBufferSize),
		slot: slot,
	}
}

// table is the fixed-capacity client slot table, guarded by a single
// mutex, matching the reference design's clients[]/clients_mutex pair.
// The contention this implies under heavy connection churn is a known,
// deliberate scalability limit, not an oversight (spec §4.4).
type table struct {
	mu       sync.Mutex
	slots    []*session
	maxConns int
}

func newTable(maxConns int) *table {
	return &table{slots: make([]*session, maxConns), maxConns: maxConns}
}

// add finds a free slot for conn and returns the session, or nil if the
// table is full.
func (t *table) add(conn net.Conn) *session {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, s := range t.slots {
		if s == nil {
			sess := newSession(conn, i)
			sess.active = true
			t.slots[i] = sess
			return sess
		}
	}
	return nil
}

func (t *table) remove(s *session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.slots[s.slot] == s {
		t.slots[s.slot] = nil
	}
}

// ownedBy returns the currently active sessions whose slot index belongs
// to worker workerID under static `i mod N` ownership.
func (t *table) ownedBy(workerID, workers int) []*session {
	t.mu.Lock()
	defer t.mu.Unlock()

	var owned []*session
	for i, s := range t.slots {
		if s == nil || !s.active {
			continue
		}
		if i%workers == workerID {
			owned = append(owned, s)
		}
	}
	return owned
}

// all returns every currently active session, used by shutdown.
func (t *table) all() []*session {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []*session
	for _, s := range t.slots {
		if s != nil && s.active {
			out = append(out, s)
		}
	}
	return out
}

// count returns the number of active sessions.
func (t *table) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, s := range t.slots {
		if s != nil && s.active {
			n++
		}
	}
	return n
}
