package store

import (
	"context"
	"sync"
	"time"

	"github.com/fschmidt/virtualcv/pkg/cv"
	"github.com/fschmidt/virtualcv/pkg/errors"
)

// MemoryStore is an in-memory Store for tests and standalone mode.
// It preserves insertion order, which determines sibling layout order.
type MemoryStore struct {
	mu        sync.RWMutex
	records   map[string]*record
	order     []string // insertion order of node ids
	positions map[string]cv.Position
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:   make(map[string]*record),
		positions: make(map[string]cv.Position),
	}
}

// NewMemoryStoreFromData creates a store pre-populated with the given data.
func NewMemoryStoreFromData(data cv.Data) *MemoryStore {
	s := NewMemoryStore()
	now := time.Now()
	for _, node := range data.Nodes {
		s.records[node.ID] = &record{Node: node, CreatedAt: now, UpdatedAt: now}
		s.order = append(s.order, node.ID)
	}
	for _, pos := range data.Positions {
		s.positions[pos.NodeID] = pos
	}
	return s
}

func (s *MemoryStore) Load(ctx context.Context) (cv.Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data cv.Data
	for _, id := range s.order {
		rec := s.records[id]
		if rec.Deleted {
			continue
		}
		data.Nodes = append(data.Nodes, rec.Node)
		if pos, ok := s.positions[id]; ok {
			data.Positions = append(data.Positions, pos)
		}
	}
	return data, nil
}

func (s *MemoryStore) GetNode(ctx context.Context, id string) (cv.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok || rec.Deleted {
		return cv.Node{}, notFound(id)
	}
	return rec.Node, nil
}

func (s *MemoryStore) Children(ctx context.Context, parentID string) ([]cv.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var children []cv.Node
	for _, id := range s.order {
		rec := s.records[id]
		if rec.Deleted || rec.Node.ParentID != parentID {
			continue
		}
		children = append(children, rec.Node)
	}
	return children, nil
}

func (s *MemoryStore) Search(ctx context.Context, query string) ([]cv.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []cv.Node
	for _, id := range s.order {
		rec := s.records[id]
		if rec.Deleted {
			continue
		}
		if matchesQuery(rec.Node, query) {
			matches = append(matches, rec.Node)
		}
	}
	return matches, nil
}

func (s *MemoryStore) CreateNode(ctx context.Context, node cv.Node) (cv.Node, error) {
	node.ID = mintID(node)
	if !node.Type.Valid() {
		return cv.Node{}, errors.New(errors.ErrCodeInvalidNode, "unknown node type: %q", node.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[node.ID]; exists {
		return cv.Node{}, errors.New(errors.ErrCodeDuplicate, "node %q already exists", node.ID)
	}
	if node.ParentID != "" {
		parent, ok := s.records[node.ParentID]
		if !ok || parent.Deleted {
			return cv.Node{}, notFound(node.ParentID)
		}
	}

	now := time.Now()
	s.records[node.ID] = &record{Node: node, CreatedAt: now, UpdatedAt: now}
	s.order = append(s.order, node.ID)
	return node, nil
}

func (s *MemoryStore) UpdateNode(ctx context.Context, node cv.Node) (cv.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[node.ID]
	if !ok || rec.Deleted {
		return cv.Node{}, notFound(node.ID)
	}

	mergeNode(&rec.Node, node)
	rec.UpdatedAt = time.Now()
	return rec.Node, nil
}

func (s *MemoryStore) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.Deleted {
		return notFound(id)
	}

	// Soft-delete the node and every live descendant.
	now := time.Now()
	doomed := map[string]bool{id: true}
	// Children always appear after their parent in insertion order, so one
	// forward pass covers the whole subtree.
	for _, candidate := range s.order {
		r := s.records[candidate]
		if !r.Deleted && doomed[r.Node.ParentID] {
			doomed[candidate] = true
		}
	}
	for victim := range doomed {
		r := s.records[victim]
		if r.Deleted {
			continue
		}
		r.Deleted = true
		r.DeletedAt = &now
		r.UpdatedAt = now
	}
	return nil
}

func (s *MemoryStore) SavePositions(ctx context.Context, positions []cv.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pos := range positions {
		s.positions[pos.NodeID] = pos
	}
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
