package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

// MemoryStore implements Store and Directory in memory. It backs tests and
// local development where no database file is wanted.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[scores.Category][]*model.Snapshot // kept sorted by CreatedAt
	players   map[string]model.PlayerRef
	maps      map[string]model.MapRef
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[scores.Category][]*model.Snapshot),
		players:   make(map[string]model.PlayerRef),
		maps:      make(map[string]model.MapRef),
	}
}

// Exists reports whether a snapshot exists for (category, createdAt).
func (m *MemoryStore) Exists(_ context.Context, cat scores.Category, createdAt time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.snapshots[cat] {
		if s.CreatedAt.Unix() == createdAt.Unix() {
			return true, nil
		}
	}
	return false, nil
}

// Save stores a copy of the snapshot, returning ErrConflict on a duplicate
// (category, createdAt) key.
func (m *MemoryStore) Save(_ context.Context, snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.snapshots[snap.Category] {
		if s.CreatedAt.Unix() == snap.CreatedAt.Unix() {
			return ErrConflict
		}
	}
	cp := *snap
	cp.Records = append([]model.Record(nil), snap.Records...)
	cp.Points = append([]model.Point(nil), snap.Points...)
	m.snapshots[snap.Category] = append(m.snapshots[snap.Category], &cp)
	sort.Slice(m.snapshots[snap.Category], func(i, j int) bool {
		return m.snapshots[snap.Category][i].CreatedAt.Before(m.snapshots[snap.Category][j].CreatedAt)
	})
	return nil
}

// LatestRecords returns the records of the most recent snapshot carrying
// data for the category, scoped to mapUID when non-empty.
func (m *MemoryStore) LatestRecords(_ context.Context, cat scores.Category, mapUID string) ([]model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snaps := m.snapshots[cat]
	for i := len(snaps) - 1; i >= 0; i-- {
		var out []model.Record
		for _, r := range snaps[i].Records {
			if r.MapUID == mapUID {
				out = append(out, r)
			}
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return nil, nil
}

// LatestSnapshot returns a copy of the most recent snapshot for the
// category.
func (m *MemoryStore) LatestSnapshot(_ context.Context, cat scores.Category) (*model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snaps := m.snapshots[cat]
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	latest := snaps[len(snaps)-1]
	cp := *latest
	cp.Records = append([]model.Record(nil), latest.Records...)
	cp.Points = append([]model.Point(nil), latest.Points...)
	return &cp, nil
}

// ResolvePlayers upserts the referenced players, refreshing nicknames.
func (m *MemoryStore) ResolvePlayers(_ context.Context, players []model.PlayerRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range players {
		existing, ok := m.players[p.Login]
		if ok && p.Nickname == "" {
			p.Nickname = existing.Nickname
		}
		m.players[p.Login] = p
	}
	return nil
}

// ResolveMaps upserts the referenced maps.
func (m *MemoryStore) ResolveMaps(_ context.Context, maps []model.MapRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mr := range maps {
		existing, ok := m.maps[mr.UID]
		if ok && mr.Name == "" {
			mr.Name = existing.Name
		}
		m.maps[mr.UID] = mr
	}
	return nil
}

// SnapshotCount returns the number of snapshots stored for the category.
func (m *MemoryStore) SnapshotCount(cat scores.Category) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots[cat])
}
