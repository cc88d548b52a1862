package domain

// Role is the resolved role of an acting user, supplied by the auth service
type Role string

const (
	RoleClient     Role = "client"
	RoleWorker     Role = "worker"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// AdminMode is the active mode of a platform administrator.
// Non-admin actors always carry ModeNormal.
type AdminMode string

const (
	ModeNormal   AdminMode = "normal"
	ModeReadOnly AdminMode = "read_only"
	ModeManage   AdminMode = "manage"
)

// Capability is a single permitted operation. The scheduling layer checks
// capability membership, never role names, so adding a role does not touch
// call sites.
type Capability string

const (
	CapCreateAppointment    Capability = "appointment:create"
	CapConfirmAppointment   Capability = "appointment:confirm"
	CapCancelAppointment    Capability = "appointment:cancel"
	CapCloseAppointment     Capability = "appointment:close"
	CapProposeReschedule    Capability = "appointment:propose_reschedule"
	CapResolveReschedule    Capability = "appointment:resolve_reschedule"
	CapAssignStaff          Capability = "appointment:assign"
	CapComment              Capability = "appointment:comment"
	CapViewSalonSchedule    Capability = "salon:view_appointments"
	CapManageCapacity       Capability = "salon:manage_capacity"
	CapOverrideCapacity     Capability = "salon:override_capacity"
)

// viewCapabilities are exempt from the read-only mode veto
var viewCapabilities = map[Capability]bool{
	CapViewSalonSchedule: true,
}

var staffCapabilities = []Capability{
	CapCreateAppointment,
	CapConfirmAppointment,
	CapCancelAppointment,
	CapCloseAppointment,
	CapProposeReschedule,
	CapResolveReschedule,
	CapAssignStaff,
	CapComment,
	CapViewSalonSchedule,
	CapOverrideCapacity,
}

var managerCapabilities = append([]Capability{
	CapManageCapacity,
}, staffCapabilities...)

// capabilitiesByRole resolves a role into its permitted operations
var capabilitiesByRole = map[Role][]Capability{
	RoleClient: {
		CapCreateAppointment,
		CapResolveReschedule, // owning client approves/rejects proposed reschedules
	},
	RoleWorker:     staffCapabilities,
	RoleManager:    managerCapabilities,
	RoleAdmin:      managerCapabilities,
	RoleSuperAdmin: managerCapabilities,
}

// Actor is the identity making a scheduling request, together with the
// role/mode facts resolved by the auth service. It is passed explicitly into
// every operation; there is no ambient current-user state.
type Actor struct {
	ID              int64
	Name            string
	Role            Role
	Mode            AdminMode
	ManagedSalonIDs []int64
}

// Can reports whether the actor is permitted to perform the operation.
// Read-only mode vetoes every mutating capability regardless of role.
func (a Actor) Can(c Capability) bool {
	if a.Mode == ModeReadOnly && !viewCapabilities[c] {
		return false
	}
	for _, allowed := range capabilitiesByRole[a.Role] {
		if allowed == c {
			return true
		}
	}
	return false
}

// IsStaff reports whether the actor belongs to salon personnel
func (a Actor) IsStaff() bool {
	return a.Role == RoleWorker || a.Role == RoleManager ||
		a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

// IsPlatformAdmin reports whether the actor is a platform administrator
func (a Actor) IsPlatformAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

// CanManageSalon reports whether the actor manages the given salon.
// Platform administrators manage every salon; staff manage the salons
// they are attached to.
func (a Actor) CanManageSalon(salonID int64) bool {
	if a.IsPlatformAdmin() {
		return true
	}
	for _, id := range a.ManagedSalonIDs {
		if id == salonID {
			return true
		}
	}
	return false
}
