package websocket

import (
	"sort"
	"sync"
	"time"
)

// PresenceEntry tracks one connected user. Entries are process-local and
// rebuilt from scratch on restart.
type PresenceEntry struct {
	Client   *Client
	LastSeen time.Time
}

// PresenceTracker keeps a single connection handle per user: a reconnect
// replaces the previous entry rather than fanning out to multiple devices.
type PresenceTracker struct {
	mu      sync.RWMutex
	entries map[string]*PresenceEntry
}

func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{
		entries: make(map[string]*PresenceEntry),
	}
}

// Connect records the user as online and returns the connection handle it
// replaced, if any.
func (t *PresenceTracker) Connect(userID string, client *Client) *Client {
	t.mu.Lock()
	defer t.mu.Unlock()

	var replaced *Client
	if entry, ok := t.entries[userID]; ok {
		replaced = entry.Client
	}

	t.entries[userID] = &PresenceEntry{
		Client:   client,
		LastSeen: time.Now(),
	}

	return replaced
}

// Disconnect removes the entry only when the departing client still owns it,
// so tearing down a replaced connection does not mark the user offline.
func (t *PresenceTracker) Disconnect(userID string, client *Client) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[userID]
	if !ok || entry.Client != client {
		return false
	}

	delete(t.entries, userID)
	return true
}

func (t *PresenceTracker) IsOnline(userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.entries[userID]
	return ok
}

func (t *PresenceTracker) OnlineUserIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

func (t *PresenceTracker) OnlineCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.entries)
}
