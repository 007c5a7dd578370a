package directory

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps the directory in process memory. Used by tests and by
// single-node deployments that run without Postgres.
type MemoryStore struct {
	mu      sync.RWMutex
	persons map[string]Person
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{persons: make(map[string]Person)}
}

func (s *MemoryStore) GetPerson(_ context.Context, id string) (*Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.persons[NormalizeID(id)]
	if !ok {
		return nil, ErrPersonNotFound
	}
	return &p, nil
}

func (s *MemoryStore) ListProviders(_ context.Context, specialty string) ([]Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Person
	for _, p := range s.persons {
		if p.Role != RoleProvider {
			continue
		}
		if specialty != "" && p.SpecialtyName() != specialty {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreatePerson(_ context.Context, p Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = NormalizeID(p.ID)
	if _, ok := s.persons[p.ID]; ok {
		return ErrPersonExists
	}
	s.persons[p.ID] = p
	return nil
}

func (s *MemoryStore) UpdatePerson(_ context.Context, p Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = NormalizeID(p.ID)
	if _, ok := s.persons[p.ID]; !ok {
		return ErrPersonNotFound
	}
	s.persons[p.ID] = p
	return nil
}

func (s *MemoryStore) DeletePerson(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id = NormalizeID(id)
	if _, ok := s.persons[id]; !ok {
		return ErrPersonNotFound
	}
	delete(s.persons, id)
	return nil
}
