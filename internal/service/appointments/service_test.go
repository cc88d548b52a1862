package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonScheduler/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonScheduler/internal/integrations/billingservice"
	"github.com/m04kA/SMC-SalonScheduler/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonScheduler/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

type fakeAppointmentRepo struct {
	appointment *domain.Appointment
	list        []*domain.Appointment

	appliedEntries  []domain.AuditEntry
	replacedCalled  bool
	comments        []domain.Comment
	historyInserted []domain.AuditEntry
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	if f.appointment == nil || f.appointment.ID != id {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return f.appointment, nil
}

func (f *fakeAppointmentRepo) GetBySalonWithFilter(_ context.Context, _ domain.SalonAppointmentsFilter) ([]*domain.Appointment, error) {
	return f.list, nil
}

func (f *fakeAppointmentRepo) ApplyTransition(_ context.Context, _ *domain.Appointment, entry domain.AuditEntry) error {
	f.appliedEntries = append(f.appliedEntries, entry)
	return nil
}

func (f *fakeAppointmentRepo) ReplaceAssignments(_ context.Context, _ *domain.Appointment) error {
	f.replacedCalled = true
	return nil
}

func (f *fakeAppointmentRepo) AddComment(_ context.Context, _ int64, c domain.Comment) error {
	f.comments = append(f.comments, c)
	return nil
}

func (f *fakeAppointmentRepo) InsertHistory(_ context.Context, _ int64, entry domain.AuditEntry) error {
	f.historyInserted = append(f.historyInserted, entry)
	return nil
}

type fakeOccupancy struct {
	state   domain.SlotState
	lastCtx context.Context
}

func (f *fakeOccupancy) Classify(ctx context.Context, salonID int64, date time.Time, _ types.TimeString) (domain.SlotState, *domain.DayCapacity, int, error) {
	f.lastCtx = ctx
	state := f.state
	if state == "" {
		state = domain.SlotOpen
	}
	return state, domain.DefaultDayCapacity(salonID, date), 0, nil
}

type fakeSalonClient struct {
	salon    *salonservice.Salon
	services map[int64]*salonservice.Service
}

func (f *fakeSalonClient) GetSalon(_ context.Context, salonID int64) (*salonservice.Salon, error) {
	if f.salon == nil || f.salon.ID != salonID {
		return nil, salonservice.ErrSalonNotFound
	}
	return f.salon, nil
}

func (f *fakeSalonClient) GetService(_ context.Context, _, serviceID int64) (*salonservice.Service, error) {
	service, ok := f.services[serviceID]
	if !ok {
		return nil, salonservice.ErrServiceNotFound
	}
	return service, nil
}

type fakeBillingClient struct {
	events []*billingservice.AppointmentClosedEvent
	err    error
}

func (f *fakeBillingClient) NotifyAppointmentClosedWithGracefulDegradation(_ context.Context, event *billingservice.AppointmentClosedEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// txScopeKey помечает контекст, который менеджер передаёт в транзакцию.
type txScopeKey struct{}

type markingTxManager struct{}

func (markingTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(context.WithValue(ctx, txScopeKey{}, true))
}

type fakeTimeProvider struct {
	now time.Time
}

func (f *fakeTimeProvider) Now() time.Time {
	return f.now
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

var (
	svcNow  = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	svcDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	manager = domain.Actor{ID: 10, Name: "Мария", Role: domain.RoleManager, Mode: domain.ModeNormal, ManagedSalonIDs: []int64{1}}
	client  = domain.Actor{ID: 42, Name: "Иван", Role: domain.RoleClient, Mode: domain.ModeNormal}
)

type testEnv struct {
	repo      *fakeAppointmentRepo
	occupancy *fakeOccupancy
	salon     *fakeSalonClient
	billing   *fakeBillingClient
	service   *Service
}

func newTestEnv(appointment *domain.Appointment) *testEnv {
	env := &testEnv{
		repo:      &fakeAppointmentRepo{appointment: appointment},
		occupancy: &fakeOccupancy{},
		salon: &fakeSalonClient{
			salon: &salonservice.Salon{ID: 1, Name: "Салон", WorkerIDs: []int64{10, 11}},
			services: map[int64]*salonservice.Service{
				100: {ID: 100, SalonID: 1, Name: "Стрижка", DurationMinutes: 60},
				101: {ID: 101, SalonID: 1, Name: "Укладка", DurationMinutes: 30},
			},
		},
		billing: &fakeBillingClient{},
	}
	env.service = NewService(env.repo, env.occupancy, env.salon, env.billing, fakeTxManager{}, noopLogger{})
	env.service.timeProvider = &fakeTimeProvider{now: svcNow}
	return env
}

func confirmedAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:              7,
		SalonID:         1,
		ClientID:        42,
		ClientName:      "Иван",
		Date:            svcDate,
		StartTime:       types.TimeString("10:00"),
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
		WorkerIDs:       []int64{10},
		ServiceIDs:      []int64{100},
	}
}

func TestGetByID_OwnerSeesOwn(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	resp, err := env.service.GetByID(context.Background(), 7, client)

	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)
}

func TestGetByID_ForeignClientDenied(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	other := domain.Actor{ID: 99, Role: domain.RoleClient, Mode: domain.ModeNormal}
	_, err := env.service.GetByID(context.Background(), 7, other)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGetByID_StaffOfOtherSalonDenied(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	other := domain.Actor{ID: 99, Role: domain.RoleManager, Mode: domain.ModeNormal, ManagedSalonIDs: []int64{2}}
	_, err := env.service.GetByID(context.Background(), 7, other)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGetByID_NotFound(t *testing.T) {
	env := newTestEnv(nil)

	_, err := env.service.GetByID(context.Background(), 7, client)
	require.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestGetSalonAppointments_ReadOnlyAdminAllowed(t *testing.T) {
	env := newTestEnv(nil)
	env.repo.list = []*domain.Appointment{confirmedAppointment()}

	admin := domain.Actor{ID: 5, Role: domain.RoleAdmin, Mode: domain.ModeReadOnly}
	resp, err := env.service.GetSalonAppointments(context.Background(), &models.GetSalonAppointmentsRequest{
		Actor:   admin,
		SalonID: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}

func TestGetSalonAppointments_ClientDenied(t *testing.T) {
	env := newTestEnv(nil)

	_, err := env.service.GetSalonAppointments(context.Background(), &models.GetSalonAppointmentsRequest{
		Actor:   client,
		SalonID: 1,
	})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCancel_Success(t *testing.T) {
	appointment := confirmedAppointment()
	env := newTestEnv(appointment)

	reason := "клиент не придёт"
	resp, err := env.service.Cancel(context.Background(), 7, &models.CancelAppointmentRequest{
		Actor:  manager,
		Reason: &reason,
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	require.NotNil(t, resp.CancellationReason)
	assert.Equal(t, reason, *resp.CancellationReason)
	require.Len(t, env.repo.appliedEntries, 1)
	assert.Equal(t, domain.EventCancel, env.repo.appliedEntries[0].Action)
}

func TestCancel_ClientLacksCapability(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	_, err := env.service.Cancel(context.Background(), 7, &models.CancelAppointmentRequest{Actor: client})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCancel_ReadOnlyAdminDenied(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	admin := domain.Actor{ID: 5, Role: domain.RoleAdmin, Mode: domain.ModeReadOnly}
	_, err := env.service.Cancel(context.Background(), 7, &models.CancelAppointmentRequest{Actor: admin})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	appointment := confirmedAppointment()
	appointment.Status = domain.StatusCancelled
	env := newTestEnv(appointment)

	_, err := env.service.Cancel(context.Background(), 7, &models.CancelAppointmentRequest{Actor: manager})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel_ReasonTooLong(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	long := make([]byte, domain.MaxCancellationReasonLength+1)
	for i := range long {
		long[i] = 'a'
	}
	reason := string(long)

	_, err := env.service.Cancel(context.Background(), 7, &models.CancelAppointmentRequest{
		Actor:  manager,
		Reason: &reason,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestClose_NotifiesBilling(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	resp, err := env.service.Close(context.Background(), 7, &models.CloseAppointmentRequest{Actor: manager})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusClosed), resp.Status)
	require.Len(t, env.billing.events, 1)
	event := env.billing.events[0]
	assert.Equal(t, int64(7), event.AppointmentID)
	assert.Equal(t, int64(42), event.ClientID)
	assert.Equal(t, manager.ID, event.ClosedBy)
	assert.Equal(t, svcNow, event.ClosedAt)
}

func TestClose_BillingDegradationDoesNotFailClose(t *testing.T) {
	env := newTestEnv(confirmedAppointment())
	env.billing.err = billingservice.ErrServiceDegraded

	resp, err := env.service.Close(context.Background(), 7, &models.CloseAppointmentRequest{Actor: manager})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusClosed), resp.Status)
}

func TestClose_PendingInvalid(t *testing.T) {
	appointment := confirmedAppointment()
	appointment.Status = domain.StatusPending
	env := newTestEnv(appointment)

	_, err := env.service.Close(context.Background(), 7, &models.CloseAppointmentRequest{Actor: manager})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, env.billing.events)
}

func TestProposeReschedule_Success(t *testing.T) {
	appointment := confirmedAppointment()
	env := newTestEnv(appointment)

	newDate := svcDate.AddDate(0, 0, 2)
	resp, err := env.service.ProposeReschedule(context.Background(), 7, &models.ProposeRescheduleRequest{
		Actor:   manager,
		NewDate: newDate,
		NewTime: types.TimeString("14:00"),
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPendingApproval), resp.Status)
	assert.Equal(t, "14:00", resp.StartTime)
	require.NotNil(t, resp.PrevStartTime)
	assert.Equal(t, "10:00", *resp.PrevStartTime)
}

func TestProposeReschedule_ClassifyUsesTransactionContext(t *testing.T) {
	appointment := confirmedAppointment()
	env := newTestEnv(appointment)
	env.service = NewService(env.repo, env.occupancy, env.salon, env.billing, markingTxManager{}, noopLogger{})
	env.service.timeProvider = &fakeTimeProvider{now: svcNow}

	_, err := env.service.ProposeReschedule(context.Background(), 7, &models.ProposeRescheduleRequest{
		Actor:   manager,
		NewDate: svcDate.AddDate(0, 0, 2),
		NewTime: types.TimeString("14:00"),
	})

	require.NoError(t, err)
	require.NotNil(t, env.occupancy.lastCtx)
	assert.Equal(t, true, env.occupancy.lastCtx.Value(txScopeKey{}))
}

func TestProposeReschedule_TargetSlotClosed(t *testing.T) {
	env := newTestEnv(confirmedAppointment())
	env.occupancy.state = domain.SlotClosedByConfig

	_, err := env.service.ProposeReschedule(context.Background(), 7, &models.ProposeRescheduleRequest{
		Actor:   manager,
		NewDate: svcDate.AddDate(0, 0, 2),
		NewTime: types.TimeString("14:00"),
	})
	require.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestResolveReschedule_OwnerApproves(t *testing.T) {
	appointment := confirmedAppointment()
	require.NoError(t, appointment.ProposeReschedule(manager, svcDate.AddDate(0, 0, 2), "14:00", svcNow))
	env := newTestEnv(appointment)

	resp, err := env.service.ResolveReschedule(context.Background(), 7, &models.ResolveRescheduleRequest{
		Actor:    client,
		Approved: true,
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, "14:00", resp.StartTime)
	assert.Nil(t, resp.PrevStartTime)
}

func TestResolveReschedule_OwnerRejectsRestoresSchedule(t *testing.T) {
	appointment := confirmedAppointment()
	require.NoError(t, appointment.ProposeReschedule(manager, svcDate.AddDate(0, 0, 2), "14:00", svcNow))
	env := newTestEnv(appointment)

	reason := "не подходит"
	resp, err := env.service.ResolveReschedule(context.Background(), 7, &models.ResolveRescheduleRequest{
		Actor:    client,
		Approved: false,
		Reason:   &reason,
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, "10:00", resp.StartTime)
	assert.Equal(t, svcDate.Format(domain.DateFormat), resp.Date)
}

func TestResolveReschedule_ForeignClientDenied(t *testing.T) {
	appointment := confirmedAppointment()
	require.NoError(t, appointment.ProposeReschedule(manager, svcDate.AddDate(0, 0, 2), "14:00", svcNow))
	env := newTestEnv(appointment)

	other := domain.Actor{ID: 99, Role: domain.RoleClient, Mode: domain.ModeNormal}
	_, err := env.service.ResolveReschedule(context.Background(), 7, &models.ResolveRescheduleRequest{
		Actor:    other,
		Approved: true,
	})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestResolveReschedule_SalonStaffAllowed(t *testing.T) {
	appointment := confirmedAppointment()
	require.NoError(t, appointment.ProposeReschedule(manager, svcDate.AddDate(0, 0, 2), "14:00", svcNow))
	env := newTestEnv(appointment)

	resp, err := env.service.ResolveReschedule(context.Background(), 7, &models.ResolveRescheduleRequest{
		Actor:    manager,
		Approved: true,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
}

func TestResolveReschedule_NotPendingApproval(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	_, err := env.service.ResolveReschedule(context.Background(), 7, &models.ResolveRescheduleRequest{
		Actor:    client,
		Approved: true,
	})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateAssignments_Success(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	resp, err := env.service.UpdateAssignments(context.Background(), 7, &models.UpdateAssignmentsRequest{
		Actor:      manager,
		WorkerIDs:  []int64{10, 11},
		ServiceIDs: []int64{100, 101},
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, resp.WorkerIDs)
	assert.Equal(t, []int64{100, 101}, resp.ServiceIDs)
	assert.Equal(t, 90, resp.DurationMinutes)
	assert.True(t, env.repo.replacedCalled)
}

func TestUpdateAssignments_WorkerNotInSalon(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	_, err := env.service.UpdateAssignments(context.Background(), 7, &models.UpdateAssignmentsRequest{
		Actor:      manager,
		WorkerIDs:  []int64{99},
		ServiceIDs: []int64{100},
	})
	require.ErrorIs(t, err, ErrWorkerNotInSalon)
	assert.False(t, env.repo.replacedCalled)
}

func TestUpdateAssignments_UnknownService(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	_, err := env.service.UpdateAssignments(context.Background(), 7, &models.UpdateAssignmentsRequest{
		Actor:      manager,
		WorkerIDs:  []int64{10},
		ServiceIDs: []int64{999},
	})
	require.ErrorIs(t, err, ErrServiceNotFound)
}

func TestUpdateAssignments_ConfirmedRequiresWorkers(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	_, err := env.service.UpdateAssignments(context.Background(), 7, &models.UpdateAssignmentsRequest{
		Actor:      manager,
		ServiceIDs: []int64{100},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddComment_Success(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	resp, err := env.service.AddComment(context.Background(), 7, &models.AddCommentRequest{
		Actor: manager,
		Body:  "клиент просил мастера Анну",
	})

	require.NoError(t, err)
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "клиент просил мастера Анну", resp.Comments[0].Body)
	assert.Equal(t, manager.ID, resp.Comments[0].AuthorID)

	// Комментарий попадает и в хранилище, и в историю взаимодействий
	require.Len(t, env.repo.comments, 1)
	require.Len(t, env.repo.historyInserted, 1)
	assert.Equal(t, domain.AuditKindComment, env.repo.historyInserted[0].Kind)
}

func TestAddComment_EmptyBody(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	_, err := env.service.AddComment(context.Background(), 7, &models.AddCommentRequest{
		Actor: manager,
		Body:  "",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddComment_ClientDenied(t *testing.T) {
	env := newTestEnv(confirmedAppointment())

	_, err := env.service.AddComment(context.Background(), 7, &models.AddCommentRequest{
		Actor: client,
		Body:  "комментарий",
	})
	require.ErrorIs(t, err, ErrPermissionDenied)
}
