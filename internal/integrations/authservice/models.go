package authservice

import "github.com/m04kA/SMC-SalonScheduler/internal/domain"

// ActorInfo модель пользователя из AuthService
type ActorInfo struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Role            string  `json:"role"` // client|worker|manager|admin|super_admin
	Mode            string  `json:"mode"` // normal|read_only|manage (только для админов платформы)
	ManagedSalonIDs []int64 `json:"managed_salon_ids"`
}

// ToDomain конвертирует ответ AuthService в доменную модель актора.
// Пустой mode трактуется как normal.
func (i *ActorInfo) ToDomain() domain.Actor {
	mode := domain.AdminMode(i.Mode)
	if mode == "" {
		mode = domain.ModeNormal
	}

	return domain.Actor{
		ID:              i.ID,
		Name:            i.Name,
		Role:            domain.Role(i.Role),
		Mode:            mode,
		ManagedSalonIDs: i.ManagedSalonIDs,
	}
}

// ErrorResponse модель ошибки от AuthService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
