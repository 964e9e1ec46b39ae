package jobstore

import (
	"context"
	"sync"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/model"
)

// MemoryStore is a process-local Store. Default when no SQLite path is
// configured, and the test double for the managers.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]model.Job
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]model.Job)}
}

// Put stores a job, overwriting any previous record with the same id.
func (s *MemoryStore) Put(_ context.Context, job model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

// Get returns the job or ErrJobNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return model.Job{}, ErrJobNotFound
	}
	return job, nil
}

// Update applies fn under the store lock. Terminal jobs are returned as-is.
func (s *MemoryStore) Update(_ context.Context, id string, fn Mutator) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return model.Job{}, ErrJobNotFound
	}
	next, changed, err := guardTerminal(job, fn)
	if err != nil {
		return model.Job{}, err
	}
	if changed {
		next.ID = job.ID
		s.jobs[id] = next
	}
	return s.jobs[id], nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
