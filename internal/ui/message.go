package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/crate/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgItemsFetched MsgKind = iota
	MsgItemDeleted
)

type itemsFetched struct {
	items []models.Item
	err   error
}

type itemDeleted struct {
	item models.Item
	err  error
}

// itemsFetchedMsg is the constructor for [MsgItemsFetched]
func itemsFetchedMsg(items []models.Item, err error) Msg {
	return Msg{kind: MsgItemsFetched, data: itemsFetched{items, err}}
}

// itemDeletedMsg is the constructor for [MsgItemDeleted]
func itemDeletedMsg(item models.Item, err error) Msg {
	return Msg{kind: MsgItemDeleted, data: itemDeleted{item, err}}
}
