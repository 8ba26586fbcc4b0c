// Package history implements bounded undo/redo over graph snapshots. One
// manager serves one editing session: it is reset when a different workflow
// is loaded and discarded with the session.
package history

import (
	"time"

	"github.com/tgohq/flowgraph/pkg/graph"
)

// DefaultLimit bounds how many snapshots a manager retains before the
// oldest is evicted.
const DefaultLimit = 100

// Snapshot is one committed state of the graph. The graph inside is a deep
// copy owned by the history; callers receive their own copy back.
type Snapshot struct {
	Graph     *graph.Graph
	Timestamp time.Time
}

// Option configures a Manager before first use.
type Option func(*Manager)

// WithLimit caps the number of retained snapshots. Values below 1 keep the
// default.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n >= 1 {
			m.limit = n
		}
	}
}

// Manager holds an ordered snapshot list and a cursor into it. Commit
// truncates any redo tail, appends, and advances; Undo and Redo move the
// cursor and are no-ops at the boundaries. Not safe for concurrent use,
// like the graph it snapshots.
type Manager struct {
	snapshots []Snapshot
	cursor    int
	limit     int
}

// New creates a manager seeded with the initial state as its first
// snapshot, so the very first edit can be undone back to it.
func New(initial *graph.Graph, opts ...Option) *Manager {
	m := &Manager{limit: DefaultLimit}
	for _, opt := range opts {
		opt(m)
	}
	m.Reset(initial)
	return m
}

// Commit records the state after one discrete user action. Anything beyond
// the cursor (the redo tail left by earlier undos) is discarded first. When
// the window overflows, the oldest snapshot is evicted.
func (m *Manager) Commit(g *graph.Graph) {
	m.snapshots = append(m.snapshots[:m.cursor+1], Snapshot{
		Graph:     g.Clone(),
		Timestamp: time.Now(),
	})
	m.cursor = len(m.snapshots) - 1

	if len(m.snapshots) > m.limit {
		over := len(m.snapshots) - m.limit
		m.snapshots = append(m.snapshots[:0], m.snapshots[over:]...)
		m.cursor -= over
	}
}

// Undo steps the cursor back and returns a copy of the snapshot now under
// it. At the oldest snapshot it returns nil and changes nothing.
func (m *Manager) Undo() *Snapshot {
	if !m.CanUndo() {
		return nil
	}
	m.cursor--
	return m.current()
}

// Redo steps the cursor forward and returns a copy of the snapshot now
// under it. At the newest snapshot it returns nil and changes nothing.
func (m *Manager) Redo() *Snapshot {
	if !m.CanRedo() {
		return nil
	}
	m.cursor++
	return m.current()
}

// CanUndo reports whether the cursor can move back.
func (m *Manager) CanUndo() bool { return m.cursor > 0 }

// CanRedo reports whether the cursor can move forward.
func (m *Manager) CanRedo() bool { return m.cursor < len(m.snapshots)-1 }

// Current returns a copy of the snapshot under the cursor.
func (m *Manager) Current() *Snapshot {
	return m.current()
}

// Len returns the number of retained snapshots.
func (m *Manager) Len() int { return len(m.snapshots) }

// Reset discards all history and starts over from the given state. Loading
// or creating a workflow goes through here.
func (m *Manager) Reset(initial *graph.Graph) {
	if initial == nil {
		initial = graph.New()
	}
	m.snapshots = []Snapshot{{
		Graph:     initial.Clone(),
		Timestamp: time.Now(),
	}}
	m.cursor = 0
}

func (m *Manager) current() *Snapshot {
	s := m.snapshots[m.cursor]
	return &Snapshot{
		Graph:     s.Graph.Clone(),
		Timestamp: s.Timestamp,
	}
}
