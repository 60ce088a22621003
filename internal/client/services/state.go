package services

import (
	"encoding/json"
	"sync"
)

// Connectivity is the debounced reachability of the remote store.
type Connectivity int

const (
	Offline Connectivity = iota
	Online
)

func (c Connectivity) String() string {
	if c == Online {
		return "online"
	}
	return "offline"
}

func (c Connectivity) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Phase is where the sync engine currently is.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSyncing
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSyncing:
		return "syncing"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// SyncState is the process-wide, never persisted status shown to the
// operator. Only the SyncEngine changes it.
type SyncState struct {
	Connectivity Connectivity `json:"connectivity"`
	Phase        Phase        `json:"phase"`
	PendingCount int          `json:"pending_count"`
	LastError    string       `json:"last_error,omitempty"`
}

// stateHub holds the current state and fans every change out to
// subscribers. Each subscriber has a one slot buffer that always holds the
// latest state, so a slow reader skips intermediate states but never blocks
// the engine.
type stateHub struct {
	mu     sync.Mutex
	state  SyncState
	subs   map[int]chan SyncState
	nextID int
}

func (h *stateHub) get() SyncState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// update applies fn under the lock and publishes the result.
func (h *stateHub) update(fn func(s *SyncState)) SyncState {
	h.mu.Lock()
	defer h.mu.Unlock()

	fn(&h.state)
	for _, ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		ch <- h.state
	}
	return h.state
}

func (h *stateHub) subscribe() (<-chan SyncState, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]chan SyncState)
	}
	id := h.nextID
	h.nextID++

	ch := make(chan SyncState, 1)
	ch <- h.state
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}
