package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

var (
	testNow   = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	testDate  = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	testStaff = Actor{ID: 10, Name: "Мария", Role: RoleManager, Mode: ModeNormal, ManagedSalonIDs: []int64{1}}
	testClient = Actor{ID: 42, Name: "Иван", Role: RoleClient, Mode: ModeNormal}
)

func newTestAppointment(t *testing.T) *Appointment {
	t.Helper()

	a, err := NewAppointment(
		1, 42, "Иван",
		testDate, types.TimeString("10:00"), 60,
		[]int64{100}, []int64{10},
		testClient, testNow,
	)
	require.NoError(t, err)
	a.ID = 7
	return a
}

func TestNewAppointment(t *testing.T) {
	a := newTestAppointment(t)

	assert.Equal(t, StatusPending, a.Status)
	assert.True(t, a.IsActive())
	require.Len(t, a.History, 1)
	assert.Equal(t, EventCreate, a.History[0].Action)
	assert.Equal(t, AuditKindTransition, a.History[0].Kind)
	assert.Equal(t, testClient.ID, a.History[0].ActorID)
}

func TestNewAppointment_RequiresServices(t *testing.T) {
	_, err := NewAppointment(
		1, 42, "Иван",
		testDate, types.TimeString("10:00"), 60,
		nil, []int64{10},
		testClient, testNow,
	)
	require.ErrorIs(t, err, ErrServicesRequired)
}

func TestAppointment_Confirm(t *testing.T) {
	a := newTestAppointment(t)

	require.NoError(t, a.Confirm(testStaff, testNow))

	assert.Equal(t, StatusConfirmed, a.Status)
	require.Len(t, a.History, 2)
	assert.Equal(t, EventConfirm, a.History[1].Action)
}

func TestAppointment_Confirm_RequiresWorkers(t *testing.T) {
	a := newTestAppointment(t)
	a.WorkerIDs = nil

	err := a.Confirm(testStaff, testNow)
	require.ErrorIs(t, err, ErrWorkersRequired)
	assert.Equal(t, StatusPending, a.Status)
	assert.Len(t, a.History, 1)
}

func TestAppointment_Confirm_InvalidFromConfirmed(t *testing.T) {
	a := newTestAppointment(t)
	require.NoError(t, a.Confirm(testStaff, testNow))

	err := a.Confirm(testStaff, testNow)

	var invalidErr *InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, StatusConfirmed, invalidErr.From)
	assert.Equal(t, EventConfirm, invalidErr.Event)
}

func TestAppointment_Cancel(t *testing.T) {
	reason := "клиент не придёт"

	for _, from := range []AppointmentStatus{StatusPending, StatusConfirmed} {
		t.Run(string(from), func(t *testing.T) {
			a := newTestAppointment(t)
			if from == StatusConfirmed {
				require.NoError(t, a.Confirm(testStaff, testNow))
			}
			historyBefore := len(a.History)

			require.NoError(t, a.Cancel(testStaff, &reason, testNow))

			assert.Equal(t, StatusCancelled, a.Status)
			assert.False(t, a.IsActive())
			require.NotNil(t, a.CancellationReason)
			assert.Equal(t, reason, *a.CancellationReason)
			require.NotNil(t, a.CancelledAt)
			assert.Equal(t, testNow, *a.CancelledAt)
			require.Len(t, a.History, historyBefore+1)
			assert.Equal(t, EventCancel, a.LastHistoryEntry().Action)
		})
	}
}

func TestAppointment_Cancel_AlreadyCancelled(t *testing.T) {
	a := newTestAppointment(t)
	require.NoError(t, a.Cancel(testStaff, nil, testNow))
	historyBefore := len(a.History)

	err := a.Cancel(testStaff, nil, testNow)

	var invalidErr *InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, StatusCancelled, invalidErr.From)
	assert.Len(t, a.History, historyBefore)
}

func TestAppointment_Cancel_FromClosed(t *testing.T) {
	a := newTestAppointment(t)
	require.NoError(t, a.Confirm(testStaff, testNow))
	require.NoError(t, a.Close(testStaff, testNow))

	err := a.Cancel(testStaff, nil, testNow)

	var invalidErr *InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
}

func TestAppointment_ProposeReschedule(t *testing.T) {
	a := newTestAppointment(t)
	require.NoError(t, a.Confirm(testStaff, testNow))

	newDate := testDate.AddDate(0, 0, 2)
	newTime := types.TimeString("14:00")
	require.NoError(t, a.ProposeReschedule(testStaff, newDate, newTime, testNow))

	assert.Equal(t, StatusPendingApproval, a.Status)
	assert.Equal(t, newDate, a.Date)
	assert.Equal(t, newTime, a.StartTime)
	require.NotNil(t, a.PrevDate)
	assert.Equal(t, testDate, *a.PrevDate)
	require.NotNil(t, a.PrevStartTime)
	assert.Equal(t, types.TimeString("10:00"), *a.PrevStartTime)
	assert.Equal(t, EventProposeReschedule, a.LastHistoryEntry().Action)
}

func TestAppointment_ProposeReschedule_FromPending(t *testing.T) {
	a := newTestAppointment(t)

	err := a.ProposeReschedule(testStaff, testDate, types.TimeString("14:00"), testNow)

	var invalidErr *InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, StatusPending, invalidErr.From)
}

func TestAppointment_ApproveReschedule(t *testing.T) {
	a := newTestAppointment(t)
	require.NoError(t, a.Confirm(testStaff, testNow))
	newDate := testDate.AddDate(0, 0, 2)
	require.NoError(t, a.ProposeReschedule(testStaff, newDate, types.TimeString("14:00"), testNow))

	require.NoError(t, a.ApproveReschedule(testClient, nil, testNow))

	assert.Equal(t, StatusConfirmed, a.Status)
	assert.Equal(t, newDate, a.Date)
	assert.Equal(t, types.TimeString("14:00"), a.StartTime)
	assert.Nil(t, a.PrevDate)
	assert.Nil(t, a.PrevStartTime)
	assert.Equal(t, EventApproveReschedule, a.LastHistoryEntry().Action)
}

func TestAppointment_RejectReschedule_RestoresSchedule(t *testing.T) {
	a := newTestAppointment(t)
	require.NoError(t, a.Confirm(testStaff, testNow))
	require.NoError(t, a.ProposeReschedule(testStaff, testDate.AddDate(0, 0, 2), types.TimeString("14:00"), testNow))

	reason := "не подходит время"
	require.NoError(t, a.RejectReschedule(testClient, &reason, testNow))

	assert.Equal(t, StatusConfirmed, a.Status)
	assert.Equal(t, testDate, a.Date)
	assert.Equal(t, types.TimeString("10:00"), a.StartTime)
	assert.Nil(t, a.PrevDate)
	assert.Nil(t, a.PrevStartTime)
	assert.Equal(t, EventRejectReschedule, a.LastHistoryEntry().Action)
	assert.Equal(t, &reason, a.LastHistoryEntry().Reason)
}

func TestAppointment_RejectReschedule_NoPreviousSchedule(t *testing.T) {
	a := newTestAppointment(t)
	require.NoError(t, a.Confirm(testStaff, testNow))
	require.NoError(t, a.ProposeReschedule(testStaff, testDate.AddDate(0, 0, 2), types.TimeString("14:00"), testNow))
	a.PrevDate = nil
	a.PrevStartTime = nil

	err := a.RejectReschedule(testClient, nil, testNow)
	require.ErrorIs(t, err, ErrNoPreviousSchedule)
}

func TestAppointment_Close(t *testing.T) {
	a := newTestAppointment(t)
	require.NoError(t, a.Confirm(testStaff, testNow))

	require.NoError(t, a.Close(testStaff, testNow))

	assert.Equal(t, StatusClosed, a.Status)
	assert.True(t, a.IsTerminal())
	assert.Equal(t, EventClose, a.LastHistoryEntry().Action)
}

func TestAppointment_Close_FromPending(t *testing.T) {
	a := newTestAppointment(t)

	err := a.Close(testStaff, testNow)

	var invalidErr *InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, StatusPending, invalidErr.From)
}

func TestAppointment_EveryTransitionAppendsOneHistoryEntry(t *testing.T) {
	a := newTestAppointment(t)
	require.Len(t, a.History, 1)

	require.NoError(t, a.Confirm(testStaff, testNow))
	require.Len(t, a.History, 2)

	require.NoError(t, a.ProposeReschedule(testStaff, testDate.AddDate(0, 0, 1), types.TimeString("11:00"), testNow))
	require.Len(t, a.History, 3)

	require.NoError(t, a.ApproveReschedule(testClient, nil, testNow))
	require.Len(t, a.History, 4)

	require.NoError(t, a.Close(testStaff, testNow))
	require.Len(t, a.History, 5)
}

func TestAppointment_SetAssignments(t *testing.T) {
	a := newTestAppointment(t)

	require.NoError(t, a.SetAssignments([]int64{10, 11}, []int64{100, 101}, 90))

	assert.Equal(t, []int64{10, 11}, a.WorkerIDs)
	assert.Equal(t, []int64{100, 101}, a.ServiceIDs)
	assert.Equal(t, 90, a.DurationMinutes)
}

func TestAppointment_SetAssignments_PendingAllowsNoWorkers(t *testing.T) {
	a := newTestAppointment(t)

	require.NoError(t, a.SetAssignments(nil, []int64{100}, 60))
	assert.Empty(t, a.WorkerIDs)
}

func TestAppointment_SetAssignments_ConfirmedRequiresWorkers(t *testing.T) {
	a := newTestAppointment(t)
	require.NoError(t, a.Confirm(testStaff, testNow))

	err := a.SetAssignments(nil, []int64{100}, 60)
	require.ErrorIs(t, err, ErrWorkersRequired)
}

func TestAppointment_SetAssignments_Terminal(t *testing.T) {
	a := newTestAppointment(t)
	require.NoError(t, a.Cancel(testStaff, nil, testNow))

	err := a.SetAssignments([]int64{10}, []int64{100}, 60)

	var invalidErr *InvalidTransitionError
	require.ErrorAs(t, err, &invalidErr)
}

func TestAppointment_EndTime(t *testing.T) {
	a := newTestAppointment(t)
	a.StartTime = types.TimeString("10:00")
	a.DurationMinutes = 90

	end, err := a.EndTime()
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("11:30"), end)
}

func TestParseAppointmentStatus(t *testing.T) {
	status, err := ParseAppointmentStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)

	_, err = ParseAppointmentStatus("unknown")
	require.Error(t, err)
}
