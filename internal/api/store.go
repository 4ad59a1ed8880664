package api

import (
	"sync"
)

type solveRecord struct {
	Response SolveResponse
	Labels   []int
}

// SolveStore keeps completed solves in memory, keyed by id.
type SolveStore struct {
	mu     sync.Mutex
	solves map[string]*solveRecord
	order  []string
	limit  int
}

// NewSolveStore returns a store holding at most limit solves; the oldest is
// evicted first. A limit of 0 means unbounded.
func NewSolveStore(limit int) *SolveStore {
	return &SolveStore{
		solves: make(map[string]*solveRecord),
		limit:  limit,
	}
}

func (s *SolveStore) Save(resp SolveResponse, labels []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.solves[resp.ID]; !ok {
		s.order = append(s.order, resp.ID)
	}
	s.solves[resp.ID] = &solveRecord{Response: resp, Labels: labels}
	for s.limit > 0 && len(s.order) > s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.solves, oldest)
	}
}

func (s *SolveStore) Get(id string) (*solveRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.solves[id]
	return rec, ok
}

func (s *SolveStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.solves[id]; !ok {
		return false
	}
	delete(s.solves, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *SolveStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.solves)
}
