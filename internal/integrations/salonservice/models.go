package salonservice

// Salon модель салона из SalonService
type Salon struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	WorkerIDs      []int64 `json:"worker_ids"`       // Сотрудники салона
	ManagerUserIDs []int64 `json:"manager_user_ids"` // Пользователи с правами управления салоном
}

// HasWorker проверяет, что сотрудник принадлежит салону
func (s *Salon) HasWorker(workerID int64) bool {
	for _, id := range s.WorkerIDs {
		if id == workerID {
			return true
		}
	}
	return false
}

// Service модель услуги из SalonService
type Service struct {
	ID              int64    `json:"id"`
	SalonID         int64    `json:"salon_id"`
	Name            string   `json:"name"`
	DurationMinutes int      `json:"duration_minutes"`
	Price           *float64 `json:"price,omitempty"`
}

// ErrorResponse модель ошибки от SalonService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
