// package models defines the data model for the catalog service
package models

// Record is the constraint satisfied by a pointer to a storable entity type T.
//
// Stores hold T by value and reach the identifier through P, so a single generic store serves every entity shape.
type Record[T any] interface {
	*T
	// Identity returns the assigned identifier, or "" before the first add.
	Identity() string
	// SetIdentity overwrites the identifier; only stores call this.
	SetIdentity(id string)
	// AssignID generates an identifier, failing if one is already set.
	AssignID() (string, error)
	// RequiredFields lists wire keys that must be present in a request body.
	RequiredFields() []string
}

// Repository defines the CRUD contract shared by the in-memory store and its guard.
type Repository[T any] interface {
	List() ([]T, error)
	Get(id string) (T, error)
	Add(entity T) (T, error)
	// Update stores entity under id, creating the entry if absent.
	Update(id string, entity T) error
	Delete(id string) error
	Len() int
}
