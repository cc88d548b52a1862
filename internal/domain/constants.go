package domain

// Default day capacity values, used for dates with no stored configuration
const (
	DefaultMaxSlots = 5
)

// Business validation constants
const (
	MinMaxSlots = 1
	MaxMaxSlots = 100

	MaxCommentLength            = 1000
	MaxCancellationReasonLength = 500
	MaxClientNameLength         = 255
)

// Schedule grid constants: the day view is an hourly grid of bookable slots
const (
	ScheduleDayStart       = "09:00"
	ScheduleDayEnd         = "20:00"
	ScheduleSlotStepMinutes = 60
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses lists terminal statuses excluded from slot occupancy counting
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusClosed,
}

// ActiveStatuses lists statuses that occupy a slot
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusPendingApproval,
}
