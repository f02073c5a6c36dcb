package models

import (
	"fmt"

	"github.com/desertthunder/crate/internal/shared"
)

var itemRequired = []string{"title", "creator", "format", "year"}

// Item is a catalog entry: a release identified by title, creator, format and year.
type Item struct {
	ID      string `json:"id,omitempty" toml:"id,omitempty" yaml:"id,omitempty"`
	Title   string `json:"title" toml:"title" yaml:"title"`
	Creator string `json:"creator" toml:"creator" yaml:"creator"`
	Format  string `json:"format" toml:"format" yaml:"format"`
	Year    uint16 `json:"year" toml:"year" yaml:"year"`
}

// NewItem creates an [Item] without an identifier.
func NewItem(title, creator, format string, year uint16) Item {
	return Item{Title: title, Creator: creator, Format: format, Year: year}
}

func (i Item) Identity() string { return i.ID }

func (i *Item) SetIdentity(id string) { i.ID = id }

// AssignID sets a new v4 UUID on the item and returns it.
//
// Fails with [shared.ErrAlreadyAssigned] when the item already carries an identifier.
func (i *Item) AssignID() (string, error) {
	if i.ID != "" {
		return "", fmt.Errorf("%w: item already has id %s", shared.ErrAlreadyAssigned, i.ID)
	}
	i.ID = shared.GenerateID()
	return i.ID, nil
}

func (*Item) RequiredFields() []string { return itemRequired }

func (i Item) String() string {
	return fmt.Sprintf("%s - %s (%s, %d)", i.Creator, i.Title, i.Format, i.Year)
}
