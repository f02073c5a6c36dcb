package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/crate/internal/models"
)

var _ list.Item = entryItem{}

// entryItem wraps [models.Item] to implement [list.Item].
type entryItem struct {
	item models.Item
}

func (i entryItem) FilterValue() string { return i.item.Title + " " + i.item.Creator }
func (i entryItem) Title() string       { return i.item.Title }
func (i entryItem) Description() string {
	return fmt.Sprintf("%s • %s • %d", i.item.Creator, i.item.Format, i.item.Year)
}

func toListItems(items []models.Item) []list.Item {
	out := make([]list.Item, len(items))
	for i, item := range items {
		out[i] = entryItem{item: item}
	}
	return out
}
