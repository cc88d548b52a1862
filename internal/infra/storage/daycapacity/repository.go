package daycapacity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonScheduler/internal/domain"
	"github.com/m04kA/SMC-SalonScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonScheduler/pkg/psqlbuilder"
	"github.com/m04kA/SMC-SalonScheduler/pkg/types"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий конфигурации вместимости по дням
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория вместимости
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBySalonAndDate получает конфигурацию на дату.
// Возвращает ErrCapacityNotFound, если дата не конфигурировалась -
// вызывающий слой подставляет дефолтную конфигурацию.
func (r *Repository) GetBySalonAndDate(ctx context.Context, salonID int64, date time.Time) (*domain.DayCapacity, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"salon_id",
		"capacity_date",
		"max_slots",
		"closed_slots",
		"is_closed",
		"allow_overbooking",
		"created_at",
		"updated_at",
	).
		From("day_capacity").
		Where(squirrel.Eq{"salon_id": salonID, "capacity_date": date})

	// Внутри транзакции блокируем строку конфигурации - проверка вместимости
	// и создание записи не должны гоняться с изменением конфигурации
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalonAndDate - build select query: %v", ErrBuildQuery, err)
	}

	var (
		c           domain.DayCapacity
		closedSlots []string
		createdAt   sql.NullTime
		updatedAt   sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&c.ID,
		&c.SalonID,
		&c.Date,
		&c.MaxSlots,
		pq.Array(&closedSlots),
		&c.IsClosed,
		&c.AllowOverbooking,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrCapacityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalonAndDate - scan capacity: %v", ErrScanRow, err)
	}

	c.ClosedSlots = make([]types.TimeString, 0, len(closedSlots))
	for _, s := range closedSlots {
		c.ClosedSlots = append(c.ClosedSlots, types.TimeString(s))
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time

	return &c, nil
}

// Upsert сохраняет конфигурацию на дату: создает строку при первом
// конфигурировании даты, иначе полностью заменяет значения.
// Конфигурации никогда не удаляются, только замещаются.
func (r *Repository) Upsert(ctx context.Context, c *domain.DayCapacity) (*domain.DayCapacity, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	closedSlots := make([]string, 0, len(c.ClosedSlots))
	for _, t := range c.ClosedSlots {
		closedSlots = append(closedSlots, string(t))
	}

	query, args, err := psqlbuilder.Insert("day_capacity").
		Columns(
			"salon_id",
			"capacity_date",
			"max_slots",
			"closed_slots",
			"is_closed",
			"allow_overbooking",
		).
		Values(
			c.SalonID,
			c.Date,
			c.MaxSlots,
			pq.Array(closedSlots),
			c.IsClosed,
			c.AllowOverbooking,
		).
		Suffix(`ON CONFLICT (salon_id, capacity_date) DO UPDATE SET
			max_slots = EXCLUDED.max_slots,
			closed_slots = EXCLUDED.closed_slots,
			is_closed = EXCLUDED.is_closed,
			allow_overbooking = EXCLUDED.allow_overbooking,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&c.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time

	return c, nil
}
