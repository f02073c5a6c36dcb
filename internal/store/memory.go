package store

import (
	"fmt"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// Memory is a map-backed entity store. It is not safe for concurrent use; see [Guard].
type Memory[T any, P models.Record[T]] struct {
	items map[string]T
}

// NewMemory creates an empty [Memory] store.
func NewMemory[T any, P models.Record[T]]() *Memory[T, P] {
	return &Memory[T, P]{items: make(map[string]T)}
}

// List returns a copy of every stored entity. Order is unspecified.
func (m *Memory[T, P]) List() []T {
	out := make([]T, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out
}

// Get returns the entity stored under id.
func (m *Memory[T, P]) Get(id string) (T, error) {
	item, ok := m.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}
	return item, nil
}

// Add assigns a fresh identifier to entity, stores it and returns the stored copy.
//
// Fails with [shared.ErrAlreadyAssigned] if entity already carries an identifier.
func (m *Memory[T, P]) Add(entity T) (T, error) {
	p := P(&entity)
	for {
		id, err := p.AssignID()
		if err != nil {
			var zero T
			return zero, err
		}
		if _, taken := m.items[id]; !taken {
			break
		}
		p.SetIdentity("")
	}

	m.items[p.Identity()] = entity
	return entity, nil
}

// Update stores entity under id, replacing any existing value or creating the entry if absent.
//
// The identifier carried by entity is ignored for addressing and overwritten with id.
func (m *Memory[T, P]) Update(id string, entity T) error {
	P(&entity).SetIdentity(id)
	m.items[id] = entity
	return nil
}

// Delete removes the entity stored under id.
func (m *Memory[T, P]) Delete(id string) error {
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}
	delete(m.items, id)
	return nil
}

// Len reports the number of stored entities.
func (m *Memory[T, P]) Len() int {
	return len(m.items)
}
