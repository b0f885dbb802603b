package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	ValidateInput Phase = iota
	CreateTasks
	Complete
)

func (p Phase) String() string {
	switch p {
	case ValidateInput:
		return "validate_input"
	case CreateTasks:
		return "create_tasks"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func validatingUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ValidateInput,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Validating %d tasks...", total),
	}
}

func invalidInputUpdate(step, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ValidateInput,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] skipped: %v", step, total, err),
	}
}

func createdUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateTasks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, title),
	}
}

func createFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateTasks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}

func completeUpdate(r *ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    r.Total,
		Total:   r.Total,
		Message: fmt.Sprintf("Imported %d of %d tasks (%d failed)", r.Created, r.Total, r.Failed),
		Data:    r,
	}
}
