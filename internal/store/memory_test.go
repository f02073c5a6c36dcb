package store

import (
	"errors"
	"testing"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

func newItemMemory() *Memory[models.Item, *models.Item] {
	return NewMemory[models.Item, *models.Item]()
}

func TestMemory(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		m := newItemMemory()

		if items := m.List(); len(items) != 0 {
			t.Errorf("expected empty list, got %d items", len(items))
		}
		if m.Len() != 0 {
			t.Errorf("expected Len 0, got %d", m.Len())
		}
	})

	t.Run("Add & Get", func(t *testing.T) {
		m := newItemMemory()
		input := models.NewItem("Papua New Guinea", "Future Sound of London", "vinyl", 1991)

		stored, err := m.Add(input)
		if err != nil {
			t.Fatalf("failed to add item: %v", err)
		}
		if stored.ID == "" {
			t.Fatal("stored item should carry an id")
		}

		got, err := m.Get(stored.ID)
		if err != nil {
			t.Fatalf("failed to get item: %v", err)
		}

		want := input
		want.ID = stored.ID
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("Add rejects preassigned id", func(t *testing.T) {
		m := newItemMemory()
		input := models.NewItem("Spastik", "Plastikman", "vinyl", 1994)
		input.ID = "client-chosen"

		if _, err := m.Add(input); !errors.Is(err, shared.ErrAlreadyAssigned) {
			t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
		}
		if m.Len() != 0 {
			t.Error("rejected add must not insert")
		}
	})

	t.Run("Add assigns unique ids", func(t *testing.T) {
		m := newItemMemory()
		seen := make(map[string]struct{})

		for i := 0; i < 500; i++ {
			stored, err := m.Add(models.NewItem("Title", "Creator", "cd", uint16(1990+i%30)))
			if err != nil {
				t.Fatalf("add %d failed: %v", i, err)
			}
			if _, dup := seen[stored.ID]; dup {
				t.Fatalf("duplicate id %s at add %d", stored.ID, i)
			}
			seen[stored.ID] = struct{}{}
		}

		if m.Len() != 500 {
			t.Errorf("expected 500 entries, got %d", m.Len())
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		m := newItemMemory()

		if _, err := m.Get("xxx-xxxx-xxxx-xxxx"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Add, Delete, Get", func(t *testing.T) {
		m := newItemMemory()

		stored, err := m.Add(models.NewItem("Dark and Long", "Underworld", "tape", 1993))
		if err != nil {
			t.Fatalf("failed to add item: %v", err)
		}

		if err := m.Delete(stored.ID); err != nil {
			t.Fatalf("failed to delete item: %v", err)
		}
		if m.Len() != 0 {
			t.Errorf("expected empty store, got %d", m.Len())
		}
		if _, err := m.Get(stored.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("Delete missing", func(t *testing.T) {
		m := newItemMemory()

		if err := m.Delete("nope"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update existing keeps id", func(t *testing.T) {
		m := newItemMemory()

		stored, err := m.Add(models.NewItem("Two Months Off", "Underworld", "cd", 1993))
		if err != nil {
			t.Fatalf("failed to add item: %v", err)
		}

		replacement := models.NewItem("Two Months Off (Remix)", "Underworld", "vinyl", 2002)
		replacement.ID = "ignored-for-addressing"

		if err := m.Update(stored.ID, replacement); err != nil {
			t.Fatalf("failed to update item: %v", err)
		}

		got, err := m.Get(stored.ID)
		if err != nil {
			t.Fatalf("failed to get item: %v", err)
		}
		if got.ID != stored.ID {
			t.Errorf("expected id %s, got %s", stored.ID, got.ID)
		}
		if got.Title != "Two Months Off (Remix)" || got.Format != "vinyl" || got.Year != 2002 {
			t.Errorf("fields not replaced: %+v", got)
		}
		if _, err := m.Get("ignored-for-addressing"); !errors.Is(err, shared.ErrNotFound) {
			t.Error("body id must not create a second entry")
		}
		if m.Len() != 1 {
			t.Errorf("expected 1 entry, got %d", m.Len())
		}
	})

	t.Run("Update absent id upserts", func(t *testing.T) {
		m := newItemMemory()

		if err := m.Update("fresh-key", models.NewItem("Xpander", "Sasha", "cd", 1995)); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}

		got, err := m.Get("fresh-key")
		if err != nil {
			t.Fatalf("expected upserted entry, got %v", err)
		}
		if got.ID != "fresh-key" || got.Title != "Xpander" {
			t.Errorf("unexpected upserted entry: %+v", got)
		}
	})

	t.Run("Update never fails", func(t *testing.T) {
		m := newItemMemory()

		for _, id := range []string{"", "x", "x"} {
			if err := m.Update(id, models.NewItem("a", "b", "c", 1)); err != nil {
				t.Errorf("upsert under %q failed: %v", id, err)
			}
		}
		if m.Len() != 2 {
			t.Errorf("expected 2 entries, got %d", m.Len())
		}
	})

	t.Run("List returns copies", func(t *testing.T) {
		m := newItemMemory()

		stored, err := m.Add(models.NewItem("Spastik", "Plastikman", "vinyl", 1994))
		if err != nil {
			t.Fatalf("failed to add item: %v", err)
		}

		items := m.List()
		items[0].Title = "mutated"

		got, _ := m.Get(stored.ID)
		if got.Title != "Spastik" {
			t.Error("mutating a listed value must not reach the store")
		}
	})
}
