package domain

import "github.com/m04kA/SMC-SalonScheduler/pkg/types"

// SlotState classifies a (date, time) slot for scheduling decisions
type SlotState string

const (
	SlotOpen           SlotState = "open"
	SlotFull           SlotState = "full"
	SlotOverbooked     SlotState = "overbooked"
	SlotClosedByConfig SlotState = "closed"
)

// ClassifySlot classifies the slot at t given the day's capacity and the
// number of active appointments occupying the slot. Precedence, first match
// wins:
//
//  1. ClosedByConfig - a manually closed slot stays closed even when empty.
//  2. Overbooked - strictly more active appointments than MaxSlots. Kept
//     distinct from Full: it means overbooking was allowed when the extra
//     appointment was accepted, or the data needs an audit. Never reported
//     as merely "full".
//  3. Full - occupancy exactly at MaxSlots.
//  4. Open.
//
// The result is a pure function of capacity and activeCount.
func ClassifySlot(capacity *DayCapacity, t types.TimeString, activeCount int) SlotState {
	switch {
	case capacity.IsSlotClosed(t):
		return SlotClosedByConfig
	case activeCount > capacity.MaxSlots:
		return SlotOverbooked
	case activeCount == capacity.MaxSlots:
		return SlotFull
	default:
		return SlotOpen
	}
}

// Slot is one entry of a day's aggregated schedule view
type Slot struct {
	StartTime   types.TimeString
	State       SlotState
	ActiveCount int
	MaxSlots    int
}
