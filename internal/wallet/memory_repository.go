package wallet

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]Record
}

// NewMemoryRepository constructs an in-memory repository for tests and
// development mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{byEmail: make(map[string]Record)}
}

func (r *memoryRepository) Create(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[record.Email]; exists {
		return ErrEmailRegistered
	}
	r.byEmail[record.Email] = record
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byEmail[email]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.byEmail {
		if record.ID == id {
			return record, nil
		}
	}
	return Record{}, ErrNotFound
}
