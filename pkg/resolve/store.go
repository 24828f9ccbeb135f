package resolve

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicate is returned when a field already has a value in the store.
var ErrDuplicate = errors.New("resolve: field already resolved")

// Reader is the read side of a Store, handed to resolvers so they can consult
// parent values.
type Reader interface {
	Get(fieldID string) (ResolvedValue, bool)
}

// Store owns the resolved values of one run. It is append-only: each field id
// gets exactly one slot.
type Store struct {
	mu     sync.RWMutex
	values map[string]ResolvedValue
	order  []string
}

var _ Reader = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]ResolvedValue)}
}

// Put records the terminal value for a field.
func (s *Store) Put(value ResolvedValue) error {
	if value.FieldID == "" {
		return errors.New("resolve: value without field id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.values[value.FieldID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, value.FieldID)
	}
	s.values[value.FieldID] = value
	s.order = append(s.order, value.FieldID)
	return nil
}

// Get returns the value for fieldID.
func (s *Store) Get(fieldID string) (ResolvedValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[fieldID]
	return value, ok
}

// Len returns the number of recorded fields.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Values returns the recorded values in insertion order.
func (s *Store) Values() []ResolvedValue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ResolvedValue, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.values[id])
	}
	return out
}
