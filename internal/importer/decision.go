package importer

import (
	"context"
	"fmt"

	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/conflict"
)

// Conflict policies selectable from the command line.
const (
	PolicyAsk    = "ask"
	PolicySkip   = "skip"
	PolicyInsert = "insert"
)

// Decider is asked whether a candidate should be inserted despite
// overlapping existing events. Only a true result with a nil error inserts;
// an error counts as a decline.
type Decider interface {
	ConfirmConflict(ctx context.Context, candidate calendar.Event, conflicts conflict.Set) (bool, error)
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(ctx context.Context, candidate calendar.Event, conflicts conflict.Set) (bool, error)

func (f DeciderFunc) ConfirmConflict(ctx context.Context, candidate calendar.Event, conflicts conflict.Set) (bool, error) {
	return f(ctx, candidate, conflicts)
}

// AlwaysSkip declines every conflicting candidate.
var AlwaysSkip Decider = DeciderFunc(func(context.Context, calendar.Event, conflict.Set) (bool, error) {
	return false, nil
})

// AlwaysInsert accepts every conflicting candidate.
var AlwaysInsert Decider = DeciderFunc(func(context.Context, calendar.Event, conflict.Set) (bool, error) {
	return true, nil
})

// NonInteractive returns the Decider for an unattended policy name.
func NonInteractive(policy string) (Decider, error) {
	switch policy {
	case PolicySkip:
		return AlwaysSkip, nil
	case PolicyInsert:
		return AlwaysInsert, nil
	case PolicyAsk:
		return nil, fmt.Errorf("conflict policy %q needs an operator; use %q or %q", policy, PolicySkip, PolicyInsert)
	default:
		return nil, fmt.Errorf("unknown conflict policy %q (want %s, %s or %s)", policy, PolicyAsk, PolicySkip, PolicyInsert)
	}
}
