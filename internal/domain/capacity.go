package domain

import (
	"time"

	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// DayCapacity is the per-(salon, date) scheduling configuration.
// Dates with no stored row behave as DefaultDayCapacity; a missing date is
// "open with default capacity", never an error.
type DayCapacity struct {
	ID               int64
	SalonID          int64
	Date             time.Time
	MaxSlots         int
	ClosedSlots      []types.TimeString
	IsClosed         bool
	AllowOverbooking bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultDayCapacity returns the documented default configuration for a date
// that has never been configured.
func DefaultDayCapacity(salonID int64, date time.Time) *DayCapacity {
	return &DayCapacity{
		SalonID:          salonID,
		Date:             date,
		MaxSlots:         DefaultMaxSlots,
		ClosedSlots:      []types.TimeString{},
		IsClosed:         false,
		AllowOverbooking: false,
	}
}

// IsSlotClosed reports whether the slot at t is closed by configuration:
// either the whole day is closed or t is explicitly disabled.
func (c *DayCapacity) IsSlotClosed(t types.TimeString) bool {
	if c.IsClosed {
		return true
	}
	for _, closed := range c.ClosedSlots {
		if closed == t {
			return true
		}
	}
	return false
}

// ToggleSlotClosure flips the closure of exactly one slot time.
// Returns true when the slot is closed after the toggle.
func (c *DayCapacity) ToggleSlotClosure(t types.TimeString) bool {
	for i, closed := range c.ClosedSlots {
		if closed == t {
			c.ClosedSlots = append(c.ClosedSlots[:i], c.ClosedSlots[i+1:]...)
			return false
		}
	}
	c.ClosedSlots = append(c.ClosedSlots, t)
	return true
}

// DayCapacityPatch is a field-wise partial update of a DayCapacity.
// Nil fields keep the stored (or default) value.
type DayCapacityPatch struct {
	MaxSlots         *int
	ClosedSlots      *[]types.TimeString
	IsClosed         *bool
	AllowOverbooking *bool
}

// Apply merges the patch into the capacity
func (c *DayCapacity) Apply(patch DayCapacityPatch) {
	if patch.MaxSlots != nil {
		c.MaxSlots = *patch.MaxSlots
	}
	if patch.ClosedSlots != nil {
		c.ClosedSlots = *patch.ClosedSlots
	}
	if patch.IsClosed != nil {
		c.IsClosed = *patch.IsClosed
	}
	if patch.AllowOverbooking != nil {
		c.AllowOverbooking = *patch.AllowOverbooking
	}
}
