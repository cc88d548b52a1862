package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActor_Can_ClientCapabilities(t *testing.T) {
	client := Actor{ID: 1, Role: RoleClient, Mode: ModeNormal}

	assert.True(t, client.Can(CapCreateAppointment))
	assert.True(t, client.Can(CapResolveReschedule))

	assert.False(t, client.Can(CapConfirmAppointment))
	assert.False(t, client.Can(CapCancelAppointment))
	assert.False(t, client.Can(CapCloseAppointment))
	assert.False(t, client.Can(CapProposeReschedule))
	assert.False(t, client.Can(CapAssignStaff))
	assert.False(t, client.Can(CapComment))
	assert.False(t, client.Can(CapViewSalonSchedule))
	assert.False(t, client.Can(CapManageCapacity))
	assert.False(t, client.Can(CapOverrideCapacity))
}

func TestActor_Can_WorkerCapabilities(t *testing.T) {
	worker := Actor{ID: 2, Role: RoleWorker, Mode: ModeNormal}

	assert.True(t, worker.Can(CapConfirmAppointment))
	assert.True(t, worker.Can(CapCancelAppointment))
	assert.True(t, worker.Can(CapCloseAppointment))
	assert.True(t, worker.Can(CapProposeReschedule))
	assert.True(t, worker.Can(CapViewSalonSchedule))
	assert.True(t, worker.Can(CapOverrideCapacity))

	// Вместимостью управляют только менеджеры и администраторы
	assert.False(t, worker.Can(CapManageCapacity))
}

func TestActor_Can_ManagerCapabilities(t *testing.T) {
	manager := Actor{ID: 3, Role: RoleManager, Mode: ModeNormal}

	assert.True(t, manager.Can(CapManageCapacity))
	assert.True(t, manager.Can(CapConfirmAppointment))
}

func TestActor_Can_ReadOnlyModeVetoesMutations(t *testing.T) {
	admin := Actor{ID: 4, Role: RoleAdmin, Mode: ModeReadOnly}

	assert.False(t, admin.Can(CapCreateAppointment))
	assert.False(t, admin.Can(CapConfirmAppointment))
	assert.False(t, admin.Can(CapCancelAppointment))
	assert.False(t, admin.Can(CapManageCapacity))
	assert.False(t, admin.Can(CapOverrideCapacity))

	// Просмотр расписания остаётся доступным в режиме read_only
	assert.True(t, admin.Can(CapViewSalonSchedule))
}

func TestActor_Can_UnknownRole(t *testing.T) {
	unknown := Actor{ID: 5, Role: Role("ghost"), Mode: ModeNormal}
	assert.False(t, unknown.Can(CapCreateAppointment))
}

func TestActor_IsStaff(t *testing.T) {
	assert.False(t, Actor{Role: RoleClient}.IsStaff())
	assert.True(t, Actor{Role: RoleWorker}.IsStaff())
	assert.True(t, Actor{Role: RoleManager}.IsStaff())
	assert.True(t, Actor{Role: RoleAdmin}.IsStaff())
	assert.True(t, Actor{Role: RoleSuperAdmin}.IsStaff())
}

func TestActor_CanManageSalon(t *testing.T) {
	manager := Actor{Role: RoleManager, ManagedSalonIDs: []int64{1, 3}}
	assert.True(t, manager.CanManageSalon(1))
	assert.True(t, manager.CanManageSalon(3))
	assert.False(t, manager.CanManageSalon(2))

	// Платформенные администраторы управляют всеми салонами
	admin := Actor{Role: RoleAdmin}
	assert.True(t, admin.CanManageSalon(42))

	client := Actor{Role: RoleClient}
	assert.False(t, client.CanManageSalon(1))
}
