package create_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	capacityRepo "github.com/m04kA/SMC-SalonScheduler/internal/infra/storage/daycapacity"
	"github.com/m04kA/SMC-SalonScheduler/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

type fakeAppointmentRepo struct {
	active  []*domain.Appointment
	created *domain.Appointment
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	a.ID = 1001
	f.created = a
	return a, nil
}

func (f *fakeAppointmentRepo) GetBySalonWithFilter(_ context.Context, _ domain.SalonAppointmentsFilter) ([]*domain.Appointment, error) {
	return f.active, nil
}

type fakeCapacityRepo struct {
	capacity *domain.DayCapacity
}

func (f *fakeCapacityRepo) GetBySalonAndDate(_ context.Context, _ int64, _ time.Time) (*domain.DayCapacity, error) {
	if f.capacity == nil {
		return nil, capacityRepo.ErrCapacityNotFound
	}
	return f.capacity, nil
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

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
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
	ucNow  = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	ucDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
)

func activeAppointments(n int) []*domain.Appointment {
	out := make([]*domain.Appointment, n)
	for i := range out {
		out[i] = &domain.Appointment{Status: domain.StatusConfirmed}
	}
	return out
}

func newTestUseCase(repo *fakeAppointmentRepo, capRepo *fakeCapacityRepo, salon *fakeSalonClient) *UseCase {
	uc := NewUseCase(repo, capRepo, salon, fakeTxManager{}, noopLogger{})
	uc.timeProvider = &fakeTimeProvider{now: ucNow}
	return uc
}

func defaultSalonClient() *fakeSalonClient {
	return &fakeSalonClient{
		salon: &salonservice.Salon{ID: 1, Name: "Салон", WorkerIDs: []int64{10, 11}},
		services: map[int64]*salonservice.Service{
			100: {ID: 100, SalonID: 1, Name: "Стрижка", DurationMinutes: 60},
			101: {ID: 101, SalonID: 1, Name: "Укладка", DurationMinutes: 30},
		},
	}
}

func clientRequest() *Request {
	return &Request{
		Actor:      domain.Actor{ID: 42, Name: "Иван", Role: domain.RoleClient, Mode: domain.ModeNormal},
		SalonID:    1,
		ClientID:   42,
		ClientName: "Иван",
		Date:       ucDate,
		StartTime:  types.TimeString("10:00"),
		ServiceIDs: []int64{100},
	}
}

func TestExecute_Success(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	uc := newTestUseCase(repo, &fakeCapacityRepo{}, defaultSalonClient())

	resp, err := uc.Execute(context.Background(), clientRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(1001), resp.ID)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, types.TimeString("11:00"), resp.EndTime)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, 1, resp.ActiveCount)
	assert.Equal(t, domain.DefaultMaxSlots, resp.MaxSlots)
	assert.Equal(t, string(domain.SlotOpen), resp.SlotState)

	require.NotNil(t, repo.created)
	require.Len(t, repo.created.History, 1)
	assert.Equal(t, domain.EventCreate, repo.created.History[0].Action)
}

func TestExecute_SumsServiceDurations(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	uc := newTestUseCase(repo, &fakeCapacityRepo{}, defaultSalonClient())

	req := clientRequest()
	req.ServiceIDs = []int64{100, 101}

	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 90, resp.DurationMinutes)
	assert.Equal(t, types.TimeString("11:30"), resp.EndTime)
}

func TestExecute_PermissionDenied(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeCapacityRepo{}, defaultSalonClient())

	req := clientRequest()
	req.Actor.Mode = domain.ModeReadOnly

	_, err := uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestExecute_ClientBooksOnlyForSelf(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeCapacityRepo{}, defaultSalonClient())

	req := clientRequest()
	req.ClientID = 43
	req.ClientName = "Пётр"

	_, err := uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestExecute_StaffBooksForClient(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeCapacityRepo{}, defaultSalonClient())

	req := clientRequest()
	req.Actor = domain.Actor{ID: 10, Name: "Мария", Role: domain.RoleWorker, Mode: domain.ModeNormal, ManagedSalonIDs: []int64{1}}

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ClientID)
}

func TestExecute_DateInPast(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeCapacityRepo{}, defaultSalonClient())

	req := clientRequest()
	req.Date = ucNow.AddDate(0, 0, -1)

	_, err := uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_SalonNotFound(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeCapacityRepo{}, &fakeSalonClient{})

	_, err := uc.Execute(context.Background(), clientRequest())
	require.ErrorIs(t, err, ErrSalonNotFound)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeCapacityRepo{}, defaultSalonClient())

	req := clientRequest()
	req.ServiceIDs = []int64{999}

	_, err := uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_WorkerNotInSalon(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeCapacityRepo{}, defaultSalonClient())

	req := clientRequest()
	req.WorkerIDs = []int64{99}

	_, err := uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrWorkerNotInSalon)
}

func TestExecute_ClosedDay(t *testing.T) {
	capRepo := &fakeCapacityRepo{capacity: &domain.DayCapacity{
		SalonID: 1, Date: ucDate, MaxSlots: 5, IsClosed: true,
	}}
	uc := newTestUseCase(&fakeAppointmentRepo{}, capRepo, defaultSalonClient())

	_, err := uc.Execute(context.Background(), clientRequest())
	require.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestExecute_ClosedSlot(t *testing.T) {
	capRepo := &fakeCapacityRepo{capacity: &domain.DayCapacity{
		SalonID: 1, Date: ucDate, MaxSlots: 5,
		ClosedSlots: []types.TimeString{"10:00"},
	}}
	uc := newTestUseCase(&fakeAppointmentRepo{}, capRepo, defaultSalonClient())

	_, err := uc.Execute(context.Background(), clientRequest())
	require.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestExecute_CapacityExceeded(t *testing.T) {
	capRepo := &fakeCapacityRepo{capacity: &domain.DayCapacity{
		SalonID: 1, Date: ucDate, MaxSlots: 2,
	}}
	repo := &fakeAppointmentRepo{active: activeAppointments(2)}
	uc := newTestUseCase(repo, capRepo, defaultSalonClient())

	_, err := uc.Execute(context.Background(), clientRequest())
	require.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestExecute_FullSlotWithOverbookingAllowed(t *testing.T) {
	capRepo := &fakeCapacityRepo{capacity: &domain.DayCapacity{
		SalonID: 1, Date: ucDate, MaxSlots: 2, AllowOverbooking: true,
	}}
	repo := &fakeAppointmentRepo{active: activeAppointments(2)}
	uc := newTestUseCase(repo, capRepo, defaultSalonClient())

	resp, err := uc.Execute(context.Background(), clientRequest())

	require.NoError(t, err)
	assert.Equal(t, 3, resp.ActiveCount)
	assert.Equal(t, string(domain.SlotOverbooked), resp.SlotState)
}

func TestExecute_StaffOverridesFullSlot(t *testing.T) {
	capRepo := &fakeCapacityRepo{capacity: &domain.DayCapacity{
		SalonID: 1, Date: ucDate, MaxSlots: 2,
	}}
	repo := &fakeAppointmentRepo{active: activeAppointments(2)}
	uc := newTestUseCase(repo, capRepo, defaultSalonClient())

	req := clientRequest()
	req.Actor = domain.Actor{ID: 10, Name: "Мария", Role: domain.RoleManager, Mode: domain.ModeNormal, ManagedSalonIDs: []int64{1}}

	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, string(domain.SlotOverbooked), resp.SlotState)
}

func TestExecute_ServicesDoNotFitDay(t *testing.T) {
	salon := defaultSalonClient()
	salon.services[102] = &salonservice.Service{ID: 102, SalonID: 1, Name: "Комплекс", DurationMinutes: 900}
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeCapacityRepo{}, salon)

	req := clientRequest()
	req.StartTime = types.TimeString("20:00")
	req.ServiceIDs = []int64{102}

	_, err := uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_ValidationErrors(t *testing.T) {
	uc := newTestUseCase(&fakeAppointmentRepo{}, &fakeCapacityRepo{}, defaultSalonClient())

	tests := []struct {
		name   string
		mutate func(*Request)
		want   error
	}{
		{"no services", func(r *Request) { r.ServiceIDs = nil }, ErrInvalidInput},
		{"bad time", func(r *Request) { r.StartTime = "9:00" }, ErrInvalidInput},
		{"empty client name", func(r *Request) { r.ClientName = "" }, ErrInvalidInput},
		{"zero salon", func(r *Request) { r.SalonID = 0 }, ErrInvalidInput},
		{"zero date", func(r *Request) { r.Date = time.Time{} }, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := clientRequest()
			tt.mutate(req)
			_, err := uc.Execute(context.Background(), req)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
