package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	authClient "github.com/m04kA/SMC-SalonScheduler/internal/integrations/authservice"
)

type fakeAuthClient struct {
	info *authClient.ActorInfo
	err  error
}

func (f *fakeAuthClient) GetActor(_ context.Context, _ int64) (*authClient.ActorInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

func runAuth(t *testing.T, client AuthClient, header string) (*httptest.ResponseRecorder, domain.Actor, bool) {
	t.Helper()

	var (
		actor domain.Actor
		ok    bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/1", nil)
	if header != "" {
		req.Header.Set("X-User-ID", header)
	}
	rec := httptest.NewRecorder()

	Auth(client, noopLogger{})(next).ServeHTTP(rec, req)
	return rec, actor, ok
}

func TestAuth_ResolvesActor(t *testing.T) {
	client := &fakeAuthClient{info: &authClient.ActorInfo{
		ID:              10,
		Name:            "Мария",
		Role:            "manager",
		Mode:            "normal",
		ManagedSalonIDs: []int64{1},
	}}

	rec, actor, ok := runAuth(t, client, "10")

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, int64(10), actor.ID)
	assert.Equal(t, domain.RoleManager, actor.Role)
	assert.Equal(t, domain.ModeNormal, actor.Mode)
	assert.Equal(t, []int64{1}, actor.ManagedSalonIDs)
}

func TestAuth_EmptyModeDefaultsToNormal(t *testing.T) {
	client := &fakeAuthClient{info: &authClient.ActorInfo{ID: 42, Name: "Иван", Role: "client"}}

	rec, actor, ok := runAuth(t, client, "42")

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, domain.ModeNormal, actor.Mode)
}

func TestAuth_MissingHeader(t *testing.T) {
	rec, _, ok := runAuth(t, &fakeAuthClient{}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, ok)
}

func TestAuth_InvalidHeader(t *testing.T) {
	for _, header := range []string{"abc", "-5", "0"} {
		rec, _, ok := runAuth(t, &fakeAuthClient{}, header)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.False(t, ok)
	}
}

func TestAuth_UnknownUser(t *testing.T) {
	client := &fakeAuthClient{err: authClient.ErrActorNotFound}

	rec, _, _ := runAuth(t, client, "10")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_AuthServiceUnavailable(t *testing.T) {
	client := &fakeAuthClient{err: authClient.ErrInternal}

	rec, _, _ := runAuth(t, client, "10")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestActorFromContext_Empty(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)
}
