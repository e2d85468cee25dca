package repeater

import (
	"math"

	"github.com/go-drift/repeater/pkg/graphics"
)

// Owner identifies who currently holds a realized element.
type Owner int

const (
	// OwnerUnique marks an element that has not been handed out yet.
	OwnerUnique Owner = iota
	// OwnerElementFactory marks an element returned to the factory.
	OwnerElementFactory
	// OwnerLayout marks an element the layout is displaying.
	OwnerLayout
	// OwnerPinnedPool marks a pinned element the layout let go of.
	OwnerPinnedPool
)

func (o Owner) String() string {
	switch o {
	case OwnerUnique:
		return "unique"
	case OwnerElementFactory:
		return "factory"
	case OwnerLayout:
		return "layout"
	case OwnerPinnedPool:
		return "pinned"
	default:
		return "unknown"
	}
}

const (
	// PhaseNotSpecified is the phase of an element with no pending work.
	PhaseNotSpecified = math.MinInt32
	// PhaseReachedEnd is the phase of an element whose content is complete.
	PhaseReachedEnd = 0
)

// VirtualizationInfo is the realization record of one element.
type VirtualizationInfo struct {
	index                int
	owner                Owner
	phase                int
	data                 any
	arrangeBounds        graphics.Rect
	keepAlive            bool
	autoRecycleCandidate bool
	pinCount             int
}

func newVirtualizationInfo() *VirtualizationInfo {
	return &VirtualizationInfo{index: -1, phase: PhaseNotSpecified}
}

// Index returns the data index, or -1 when the element is not bound.
func (v *VirtualizationInfo) Index() int { return v.index }

// Owner returns the current holder of the element.
func (v *VirtualizationInfo) Owner() Owner { return v.owner }

// Phase returns the next phase to run, PhaseReachedEnd or PhaseNotSpecified.
func (v *VirtualizationInfo) Phase() int { return v.phase }

// Data returns the bound item.
func (v *VirtualizationInfo) Data() any { return v.data }

// ArrangeBounds returns the slot from the last arrange pass.
func (v *VirtualizationInfo) ArrangeBounds() graphics.Rect { return v.arrangeBounds }

// KeepAlive reports whether the element was requested in the current measure pass.
func (v *VirtualizationInfo) KeepAlive() bool { return v.keepAlive }

// AutoRecycleCandidate reports whether the element is cleared when a measure
// pass no longer asks for it.
func (v *VirtualizationInfo) AutoRecycleCandidate() bool { return v.autoRecycleCandidate }

// IsPinned reports whether the element is pinned.
func (v *VirtualizationInfo) IsPinned() bool { return v.pinCount > 0 }

// IsRealized reports whether the element is bound to an item.
func (v *VirtualizationInfo) IsRealized() bool {
	return v.owner == OwnerLayout || v.owner == OwnerPinnedPool
}

func (v *VirtualizationInfo) moveOwnershipToLayout(index int, data any) {
	v.owner = OwnerLayout
	v.index = index
	v.data = data
}

func (v *VirtualizationInfo) moveOwnershipToPinnedPool() {
	v.owner = OwnerPinnedPool
}

func (v *VirtualizationInfo) moveOwnershipToElementFactory() {
	v.owner = OwnerElementFactory
	v.index = -1
	v.data = nil
	v.pinCount = 0
	v.keepAlive = false
	v.autoRecycleCandidate = false
	v.arrangeBounds = graphics.Rect{}
}
