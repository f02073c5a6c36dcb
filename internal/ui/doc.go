// Package ui implements an interactive terminal browser for a running catalog using bubbletea's Elm architecture.
//
// The browser has three views:
//  1. [ListView] : Browse and filter every entry, sorted by creator
//  2. [DetailView] : Inspect one entry, including its identifier
//  3. [ConfirmView] : Confirm deleting the selected entry
//
// The [Model] implements bubbletea's Init/Update/View pattern and talks to the server only through a [Catalog],
// so every fetch and delete runs as a [tea.Cmd] off the update loop.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, d, y/n, r, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
