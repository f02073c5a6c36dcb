package store

import (
	"fmt"
	"sync"

	"github.com/desertthunder/crate/internal/models"
)

var _ models.Repository[models.Item] = (*Guard[models.Item, *models.Item])(nil)

// Guard serializes every operation on one [Memory] store through a single mutex.
type Guard[T any, P models.Record[T]] struct {
	mu    sync.Mutex
	store *Memory[T, P]
}

// NewGuard creates a [Guard] owning a new empty store.
func NewGuard[T any, P models.Record[T]]() *Guard[T, P] {
	return &Guard[T, P]{store: NewMemory[T, P]()}
}

// NewItemGuard creates a [Guard] over [models.Item] entities.
func NewItemGuard() *Guard[models.Item, *models.Item] {
	return NewGuard[models.Item, *models.Item]()
}

func (g *Guard[T, P]) List() ([]T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.List(), nil
}

func (g *Guard[T, P]) Get(id string) (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Get(id)
}

func (g *Guard[T, P]) Add(entity T) (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Add(entity)
}

func (g *Guard[T, P]) Update(id string, entity T) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Update(id, entity)
}

func (g *Guard[T, P]) Delete(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Delete(id)
}

func (g *Guard[T, P]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Len()
}

// Seed adds each entity through [Memory.Add] and returns the stored copies.
//
// Stops at the first failure; entities added before it stay in the store.
func (g *Guard[T, P]) Seed(entities []T) ([]T, error) {
	out := make([]T, 0, len(entities))
	for i, entity := range entities {
		stored, err := g.Add(entity)
		if err != nil {
			return out, fmt.Errorf("seed entry %d: %w", i, err)
		}
		out = append(out, stored)
	}
	return out, nil
}
