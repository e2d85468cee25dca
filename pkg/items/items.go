// Package items describes the ordered data sequences a repeater presents.
//
// A [View] is owned by the caller. The engine reads it through Len and At and
// learns about mutations from the [Change] notifications an [Observable]
// delivers; it never copies or owns the items.
package items

import "fmt"

// View is an ordered, indexable sequence of opaque items.
type View interface {
	Len() int
	At(index int) any
}

// Observable is a View that reports its mutations.
type Observable interface {
	View
	// Subscribe registers fn for change notifications and returns a function
	// that removes the registration.
	Subscribe(fn func(Change)) (unsubscribe func())
}

// Action identifies the kind of collection change.
type Action int

const (
	// Add inserts NewCount items at NewStart.
	Add Action = iota
	// Remove deletes OldCount items starting at OldStart.
	Remove
	// Replace swaps OldCount items at OldStart for NewCount items at NewStart.
	Replace
	// Move relocates OldCount items from OldStart to NewStart.
	Move
	// Reset means the whole sequence changed.
	Reset
)

func (a Action) String() string {
	switch a {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Replace:
		return "replace"
	case Move:
		return "move"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Change describes one mutation of a View. Indices refer to the sequence
// before the change for Old* fields and after it for New* fields.
type Change struct {
	Action   Action
	OldStart int
	OldCount int
	NewStart int
	NewCount int
}

// Added returns a change describing count items inserted at index.
func Added(index, count int) Change {
	return Change{Action: Add, OldStart: -1, NewStart: index, NewCount: count}
}

// Removed returns a change describing count items deleted at index.
func Removed(index, count int) Change {
	return Change{Action: Remove, OldStart: index, OldCount: count, NewStart: -1}
}

// Replaced returns a change describing oldCount items at index replaced by
// newCount items.
func Replaced(index, oldCount, newCount int) Change {
	return Change{Action: Replace, OldStart: index, OldCount: oldCount, NewStart: index, NewCount: newCount}
}

// Moved returns a change describing count items moved from one index to another.
func Moved(from, to, count int) Change {
	return Change{Action: Move, OldStart: from, OldCount: count, NewStart: to, NewCount: count}
}

// ResetChange returns a change describing a full reset.
func ResetChange() Change {
	return Change{Action: Reset, OldStart: -1, NewStart: -1}
}

func (c Change) String() string {
	switch c.Action {
	case Add:
		return fmt.Sprintf("add %d at %d", c.NewCount, c.NewStart)
	case Remove:
		return fmt.Sprintf("remove %d at %d", c.OldCount, c.OldStart)
	case Replace:
		return fmt.Sprintf("replace %d with %d at %d", c.OldCount, c.NewCount, c.OldStart)
	case Move:
		return fmt.Sprintf("move %d from %d to %d", c.OldCount, c.OldStart, c.NewStart)
	default:
		return c.Action.String()
	}
}

// Slice adapts a plain slice to View. It never changes, so it does not
// implement Observable.
type Slice[T any] []T

// Len returns the number of items.
func (s Slice[T]) Len() int { return len(s) }

// At returns the item at index.
func (s Slice[T]) At(index int) any { return s[index] }
