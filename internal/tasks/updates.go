package tasks

import (
	"fmt"

	"github.com/desertthunder/crate/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ImportStart Phase = iota
	ImportItem
	ImportDone
)

func (p Phase) String() string {
	switch p {
	case ImportStart:
		return "import_start"
	case ImportItem:
		return "import_item"
	case ImportDone:
		return "import_done"
	default:
		return ""
	}
}

func importStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportStart,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Importing %d entries...", total),
	}
}

func importedUpdate(step, total int, item models.Item) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportItem,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, item),
		Data:    item,
	}
}

func importFailedUpdate(step, total int, item models.Item, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportItem,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, item, err),
	}
}

func importCompleteUpdate(result *ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportDone,
		Step:    result.Total,
		Total:   result.Total,
		Message: fmt.Sprintf("Imported %d of %d entries (%d failed)", result.Succeeded, result.Total, result.Failed),
		Data:    result,
	}
}
