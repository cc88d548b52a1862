package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

func TestDefaultDayCapacity(t *testing.T) {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	c := DefaultDayCapacity(1, date)

	assert.Equal(t, int64(1), c.SalonID)
	assert.Equal(t, date, c.Date)
	assert.Equal(t, DefaultMaxSlots, c.MaxSlots)
	assert.Empty(t, c.ClosedSlots)
	assert.False(t, c.IsClosed)
	assert.False(t, c.AllowOverbooking)
}

func TestDayCapacity_IsSlotClosed(t *testing.T) {
	c := &DayCapacity{
		MaxSlots:    5,
		ClosedSlots: []types.TimeString{"13:00", "14:00"},
	}

	assert.True(t, c.IsSlotClosed("13:00"))
	assert.True(t, c.IsSlotClosed("14:00"))
	assert.False(t, c.IsSlotClosed("10:00"))

	// Закрытый день закрывает любой слот
	c.IsClosed = true
	assert.True(t, c.IsSlotClosed("10:00"))
}

func TestDayCapacity_ToggleSlotClosure(t *testing.T) {
	c := &DayCapacity{MaxSlots: 5}

	closed := c.ToggleSlotClosure("13:00")
	assert.True(t, closed)
	assert.Equal(t, []types.TimeString{"13:00"}, c.ClosedSlots)

	closed = c.ToggleSlotClosure("13:00")
	assert.False(t, closed)
	assert.Empty(t, c.ClosedSlots)
}

func TestDayCapacity_Apply(t *testing.T) {
	c := DefaultDayCapacity(1, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))

	maxSlots := 10
	isClosed := true
	c.Apply(DayCapacityPatch{MaxSlots: &maxSlots, IsClosed: &isClosed})

	assert.Equal(t, 10, c.MaxSlots)
	assert.True(t, c.IsClosed)
	// Незаполненные поля сохраняют прежние значения
	assert.Empty(t, c.ClosedSlots)
	assert.False(t, c.AllowOverbooking)

	slots := []types.TimeString{"12:00"}
	allow := true
	c.Apply(DayCapacityPatch{ClosedSlots: &slots, AllowOverbooking: &allow})

	assert.Equal(t, 10, c.MaxSlots)
	assert.Equal(t, slots, c.ClosedSlots)
	assert.True(t, c.AllowOverbooking)
}

func TestClassifySlot(t *testing.T) {
	capacity := &DayCapacity{
		MaxSlots:    2,
		ClosedSlots: []types.TimeString{"13:00"},
	}

	tests := []struct {
		name        string
		time        types.TimeString
		activeCount int
		want        SlotState
	}{
		{"open when below capacity", "10:00", 1, SlotOpen},
		{"open when empty", "10:00", 0, SlotOpen},
		{"full at capacity", "10:00", 2, SlotFull},
		{"overbooked beyond capacity", "10:00", 3, SlotOverbooked},
		{"closed slot stays closed when empty", "13:00", 0, SlotClosedByConfig},
		{"closed wins over overbooked", "13:00", 5, SlotClosedByConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySlot(capacity, tt.time, tt.activeCount)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestClassifySlot_ClosedDay(t *testing.T) {
	capacity := &DayCapacity{MaxSlots: 5, IsClosed: true}
	assert.Equal(t, SlotClosedByConfig, ClassifySlot(capacity, "10:00", 0))
}
