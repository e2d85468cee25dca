package repeater

import "github.com/go-drift/repeater/pkg/layout"

// ElementPreparedArgs describe an element bound to an item.
type ElementPreparedArgs struct {
	Element layout.Element
	Index   int
}

// ElementClearingArgs describe an element about to be returned to the factory.
type ElementClearingArgs struct {
	Element layout.Element
}

// ElementIndexChangedArgs describe an element whose item moved in the source.
type ElementIndexChangedArgs struct {
	Element  layout.Element
	OldIndex int
	NewIndex int
}

// ContentChangingArgs are passed to the content-changing callback when an
// element is prepared (Phase 0) and for every phase it registers after that.
type ContentChangingArgs struct {
	Index   int
	Data    any
	Element layout.Element
	Phase   int
	next    int
}

// RegisterPhase asks for another callback at phase next. Phases of one
// element must strictly increase.
func (a *ContentChangingArgs) RegisterPhase(next int) {
	a.next = next
}

// NextPhase returns the phase registered by the callback, or PhaseReachedEnd.
func (a *ContentChangingArgs) NextPhase() int {
	return a.next
}
