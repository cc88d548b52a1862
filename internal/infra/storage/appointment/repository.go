package appointment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	"github.com/m04kA/SMC-SalonScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonScheduler/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// appointmentColumns колонки таблицы appointments в порядке сканирования
var appointmentColumns = []string{
	"id",
	"salon_id",
	"client_id",
	"client_name",
	"appointment_date",
	"start_time",
	"duration_minutes",
	"status",
	"prev_date",
	"prev_start_time",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями на услуги
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает запись вместе с назначениями и начальной историей.
// Если в контексте передана активная транзакция (через context.Value),
// использует её - так создание записи и проверка вместимости слота
// выполняются атомарно.
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"salon_id",
			"client_id",
			"client_name",
			"appointment_date",
			"start_time",
			"duration_minutes",
			"status",
		).
		Values(
			a.SalonID,
			a.ClientID,
			a.ClientName,
			a.Date,
			string(a.StartTime),
			a.DurationMinutes,
			a.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&a.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	if err := r.replaceAssignments(ctx, executor, a.ID, a.WorkerIDs, a.ServiceIDs); err != nil {
		return nil, err
	}

	for _, entry := range a.History {
		if err := r.insertHistory(ctx, executor, a.ID, entry); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// GetByID получает запись по ID вместе с назначениями, историей и комментариями
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id})

	// Внутри транзакции блокируем строку записи - переходы состояния
	// сериализуются на уровне агрегата
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	if err := r.loadAssignments(ctx, executor, []*domain.Appointment{a}); err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, executor, a); err != nil {
		return nil, err
	}
	if err := r.loadComments(ctx, executor, a); err != nil {
		return nil, err
	}

	return a, nil
}

// GetBySalonWithFilter получает записи салона с гибкой фильтрацией.
// История и комментарии в списках не гидрируются, назначения - да.
func (r *Repository) GetBySalonWithFilter(ctx context.Context, filter domain.SalonAppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"salon_id": filter.SalonID})

	if filter.ClientID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"appointment_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"appointment_date": *filter.EndDate})
	}
	if filter.StartTime != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"start_time": string(*filter.StartTime)})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		// Если не указан конкретный статус и не нужны неактивные - исключаем их
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	// Для конкретной даты сортируем по времени начала, иначе сначала новые
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("start_time ASC, id ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("appointment_date DESC, start_time DESC")
	}

	// Внутри транзакции блокируем строки дня (FOR UPDATE) - так проверка
	// вместимости слота при создании/подтверждении не гоняется с параллельными
	// записями на ту же дату
	if dbmetrics.IsInTransaction(ctx) && filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalonWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalonWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	appointments, err := scanAppointments(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadAssignments(ctx, executor, appointments); err != nil {
		return nil, err
	}

	return appointments, nil
}

// ApplyTransition сохраняет результат перехода состояния: обновляет изменяемые
// поля записи и добавляет ровно одну запись в историю. Вызывается внутри
// транзакции, чтобы статус и история менялись атомарно.
func (r *Repository) ApplyTransition(ctx context.Context, a *domain.Appointment, entry domain.AuditEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("appointments").
		Set("status", a.Status).
		Set("appointment_date", a.Date).
		Set("start_time", string(a.StartTime)).
		Set("duration_minutes", a.DurationMinutes).
		Set("cancellation_reason", a.CancellationReason).
		Set("cancelled_at", a.CancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": a.ID})

	if a.PrevDate != nil {
		updateBuilder = updateBuilder.Set("prev_date", *a.PrevDate).
			Set("prev_start_time", string(*a.PrevStartTime))
	} else {
		updateBuilder = updateBuilder.Set("prev_date", nil).
			Set("prev_start_time", nil)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ApplyTransition - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ApplyTransition - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ApplyTransition - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return r.insertHistory(ctx, executor, a.ID, entry)
}

// ReplaceAssignments заменяет назначенных сотрудников и услуги записи
func (r *Repository) ReplaceAssignments(ctx context.Context, a *domain.Appointment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("duration_minutes", a.DurationMinutes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceAssignments - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ReplaceAssignments - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ReplaceAssignments - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return r.replaceAssignments(ctx, executor, a.ID, a.WorkerIDs, a.ServiceIDs)
}

// AddComment добавляет комментарий сотрудника к записи
func (r *Repository) AddComment(ctx context.Context, appointmentID int64, c domain.Comment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointment_comments").
		Columns("id", "appointment_id", "author_id", "author_name", "body", "created_at").
		Values(c.ID, appointmentID, c.AuthorID, c.AuthorName, c.Body, c.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AddComment - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddComment - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// InsertHistory добавляет запись в историю взаимодействий (append-only)
func (r *Repository) InsertHistory(ctx context.Context, appointmentID int64, entry domain.AuditEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	return r.insertHistory(ctx, executor, appointmentID, entry)
}

func (r *Repository) insertHistory(ctx context.Context, executor DBExecutor, appointmentID int64, entry domain.AuditEntry) error {
	query, args, err := psqlbuilder.Insert("appointment_history").
		Columns("id", "appointment_id", "kind", "action", "actor_id", "actor_name", "reason", "created_at").
		Values(entry.ID, appointmentID, entry.Kind, entry.Action, entry.ActorID, entry.ActorName, entry.Reason, entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertHistory - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertHistory - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// replaceAssignments полностью заменяет связи запись-сотрудники и запись-услуги,
// сохраняя порядок через колонку position
func (r *Repository) replaceAssignments(ctx context.Context, executor DBExecutor, appointmentID int64, workerIDs, serviceIDs []int64) error {
	for table, ids := range map[string][]int64{
		"appointment_workers":  workerIDs,
		"appointment_services": serviceIDs,
	} {
		query, args, err := psqlbuilder.Delete(table).
			Where(squirrel.Eq{"appointment_id": appointmentID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: replaceAssignments - build delete query for %s: %v", ErrBuildQuery, table, err)
		}
		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: replaceAssignments - execute delete for %s: %v", ErrExecQuery, table, err)
		}

		if len(ids) == 0 {
			continue
		}

		idColumn := "worker_id"
		if table == "appointment_services" {
			idColumn = "service_id"
		}

		insertBuilder := psqlbuilder.Insert(table).Columns("appointment_id", idColumn, "position")
		for pos, id := range ids {
			insertBuilder = insertBuilder.Values(appointmentID, id, pos)
		}

		query, args, err = insertBuilder.ToSql()
		if err != nil {
			return fmt.Errorf("%w: replaceAssignments - build insert query for %s: %v", ErrBuildQuery, table, err)
		}
		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: replaceAssignments - execute insert for %s: %v", ErrExecQuery, table, err)
		}
	}

	return nil
}

// loadAssignments гидрирует WorkerIDs/ServiceIDs пачкой для списка записей
func (r *Repository) loadAssignments(ctx context.Context, executor DBExecutor, appointments []*domain.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Appointment, len(appointments))
	ids := make([]int64, 0, len(appointments))
	for _, a := range appointments {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	for _, spec := range []struct {
		table    string
		idColumn string
		assign   func(a *domain.Appointment, id int64)
	}{
		{"appointment_workers", "worker_id", func(a *domain.Appointment, id int64) { a.WorkerIDs = append(a.WorkerIDs, id) }},
		{"appointment_services", "service_id", func(a *domain.Appointment, id int64) { a.ServiceIDs = append(a.ServiceIDs, id) }},
	} {
		query, args, err := psqlbuilder.Select("appointment_id", spec.idColumn).
			From(spec.table).
			Where(squirrel.Expr("appointment_id = ANY(?)", pq.Array(ids))).
			OrderBy("appointment_id ASC, position ASC").
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: loadAssignments - build select query for %s: %v", ErrBuildQuery, spec.table, err)
		}

		rows, err := executor.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%w: loadAssignments - execute query for %s: %v", ErrExecQuery, spec.table, err)
		}

		for rows.Next() {
			var appointmentID, refID int64
			if err := rows.Scan(&appointmentID, &refID); err != nil {
				rows.Close()
				return fmt.Errorf("%w: loadAssignments - scan %s: %v", ErrScanRow, spec.table, err)
			}
			if a, ok := byID[appointmentID]; ok {
				spec.assign(a, refID)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("%w: loadAssignments - rows error for %s: %v", ErrScanRow, spec.table, err)
		}
		rows.Close()
	}

	return nil
}

// loadHistory гидрирует историю взаимодействий записи в порядке добавления
func (r *Repository) loadHistory(ctx context.Context, executor DBExecutor, a *domain.Appointment) error {
	query, args, err := psqlbuilder.Select("id", "kind", "action", "actor_id", "actor_name", "reason", "created_at").
		From("appointment_history").
		Where(squirrel.Eq{"appointment_id": a.ID}).
		OrderBy("created_at ASC, id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: loadHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadHistory - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(&entry.ID, &entry.Kind, &entry.Action, &entry.ActorID, &entry.ActorName, &entry.Reason, &entry.CreatedAt); err != nil {
			return fmt.Errorf("%w: loadHistory - scan entry: %v", ErrScanRow, err)
		}
		a.History = append(a.History, entry)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadHistory - rows error: %v", ErrScanRow, err)
	}

	return nil
}

// loadComments гидрирует комментарии записи в порядке добавления
func (r *Repository) loadComments(ctx context.Context, executor DBExecutor, a *domain.Appointment) error {
	query, args, err := psqlbuilder.Select("id", "author_id", "author_name", "body", "created_at").
		From("appointment_comments").
		Where(squirrel.Eq{"appointment_id": a.ID}).
		OrderBy("created_at ASC, id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: loadComments - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadComments - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return fmt.Errorf("%w: loadComments - scan comment: %v", ErrScanRow, err)
		}
		a.Comments = append(a.Comments, c)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadComments - rows error: %v", ErrScanRow, err)
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row / *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		a                  domain.Appointment
		startTime          string
		prevDate           sql.NullTime
		prevStartTime      sql.NullString
		cancellationReason sql.NullString
		cancelledAt        sql.NullTime
		createdAt          sql.NullTime
		updatedAt          sql.NullTime
	)

	err := row.Scan(
		&a.ID,
		&a.SalonID,
		&a.ClientID,
		&a.ClientName,
		&a.Date,
		&startTime,
		&a.DurationMinutes,
		&a.Status,
		&prevDate,
		&prevStartTime,
		&cancellationReason,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.StartTime = types.TimeString(startTime)
	if prevDate.Valid {
		d := prevDate.Time
		a.PrevDate = &d
	}
	if prevStartTime.Valid {
		t := types.TimeString(prevStartTime.String)
		a.PrevStartTime = &t
	}
	if cancellationReason.Valid {
		reason := cancellationReason.String
		a.CancellationReason = &reason
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		a.CancelledAt = &t
	}
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan appointment: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}
