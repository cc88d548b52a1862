package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addCommentHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/add_comment"
	cancelAppointmentHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/cancel_appointment"
	closeAppointmentHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/close_appointment"
	confirmAppointmentHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/confirm_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/get_appointment"
	getDayCapacityHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/get_day_capacity"
	getDayScheduleHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/get_day_schedule"
	getSalonAppointmentsHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/get_salon_appointments"
	proposeRescheduleHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/propose_reschedule"
	resolveRescheduleHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/resolve_reschedule"
	toggleSlotClosureHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/toggle_slot_closure"
	updateAssignmentsHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/update_assignments"
	updateDayCapacityHandler "github.com/m04kA/SMC-SalonScheduler/internal/api/handlers/update_day_capacity"
	"github.com/m04kA/SMC-SalonScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-SalonScheduler/internal/config"
	appointmentRepo "github.com/m04kA/SMC-SalonScheduler/internal/infra/storage/appointment"
	daycapacityRepo "github.com/m04kA/SMC-SalonScheduler/internal/infra/storage/daycapacity"
	authServiceClient "github.com/m04kA/SMC-SalonScheduler/internal/integrations/authservice"
	billingServiceClient "github.com/m04kA/SMC-SalonScheduler/internal/integrations/billingservice"
	salonServiceClient "github.com/m04kA/SMC-SalonScheduler/internal/integrations/salonservice"
	appointmentsService "github.com/m04kA/SMC-SalonScheduler/internal/service/appointments"
	capacityService "github.com/m04kA/SMC-SalonScheduler/internal/service/capacity"
	occupancyService "github.com/m04kA/SMC-SalonScheduler/internal/service/occupancy"
	confirmAppointmentUC "github.com/m04kA/SMC-SalonScheduler/internal/usecase/confirm_appointment"
	createAppointmentUC "github.com/m04kA/SMC-SalonScheduler/internal/usecase/create_appointment"
	getDayScheduleUC "github.com/m04kA/SMC-SalonScheduler/internal/usecase/get_day_schedule"
	"github.com/m04kA/SMC-SalonScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonScheduler/pkg/logger"
	"github.com/m04kA/SMC-SalonScheduler/pkg/metrics"
	"github.com/m04kA/SMC-SalonScheduler/pkg/simpletxmanager"
	"github.com/m04kA/SMC-SalonScheduler/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SalonScheduler...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	authClient := authServiceClient.NewClient(
		cfg.AuthService.URL,
		time.Duration(cfg.AuthService.Timeout)*time.Second,
		log,
	)
	salonClient := salonServiceClient.NewClient(
		cfg.SalonService.URL,
		time.Duration(cfg.SalonService.Timeout)*time.Second,
		log,
	)
	billingClient := billingServiceClient.NewClient(
		cfg.BillingService.URL,
		time.Duration(cfg.BillingService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (AuthService=%s, SalonService=%s, BillingService=%s)",
		cfg.AuthService.URL, cfg.SalonService.URL, cfg.BillingService.URL)

	// Интерфейс менеджера транзакций (используется сервисами и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		capacityRepository    *daycapacityRepo.Repository
		txMgr                 TxManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		capacityRepository = daycapacityRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		capacityRepository = daycapacityRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	occupancySvc := occupancyService.NewService(appointmentRepository, capacityRepository)
	capacitySvc := capacityService.NewService(capacityRepository, log)
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		occupancySvc,
		salonClient,
		billingClient,
		txMgr,
		log,
	)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		capacityRepository,
		salonClient,
		txMgr,
		log,
	)
	confirmAppointmentUseCase := confirmAppointmentUC.NewUseCase(
		appointmentRepository,
		capacityRepository,
		txMgr,
		log,
	)
	getDayScheduleUseCase := getDayScheduleUC.NewUseCase(
		appointmentRepository,
		capacityRepository,
		log,
	)

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	confirmAppointment := confirmAppointmentHandler.NewHandler(confirmAppointmentUseCase, log)
	getDaySchedule := getDayScheduleHandler.NewHandler(getDayScheduleUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	closeAppointment := closeAppointmentHandler.NewHandler(appointmentSvc, log)
	proposeReschedule := proposeRescheduleHandler.NewHandler(appointmentSvc, log)
	resolveReschedule := resolveRescheduleHandler.NewHandler(appointmentSvc, log)
	addComment := addCommentHandler.NewHandler(appointmentSvc, log)
	updateAssignments := updateAssignmentsHandler.NewHandler(appointmentSvc, log)
	getSalonAppointments := getSalonAppointmentsHandler.NewHandler(appointmentSvc, log)
	getDayCapacity := getDayCapacityHandler.NewHandler(capacitySvc, log)
	updateDayCapacity := updateDayCapacityHandler.NewHandler(capacitySvc, log)
	toggleSlotClosure := toggleSlotClosureHandler.NewHandler(capacitySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Почасовое расписание дня салона
	api.HandleFunc("/salons/{salonId}/schedule", getDaySchedule.Handle).Methods(http.MethodGet)

	// Действующая конфигурация вместимости на дату
	api.HandleFunc("/salons/{salonId}/capacity", getDayCapacity.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(authClient, log))

	// --- Записи ---
	// Создание записи
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)

	// Получение записи по ID
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)

	// Переходы жизненного цикла
	protected.HandleFunc("/appointments/{appointmentId}/confirm", confirmAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/close", closeAppointment.Handle).Methods(http.MethodPatch)

	// Перенос записи
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", proposeReschedule.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule/resolve", resolveReschedule.Handle).Methods(http.MethodPatch)

	// Комментарии и назначения
	protected.HandleFunc("/appointments/{appointmentId}/comments", addComment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/assignments", updateAssignments.Handle).Methods(http.MethodPatch)

	// --- Управление салоном (для персонала) ---
	// Список записей салона
	protected.HandleFunc("/salons/{salonId}/appointments", getSalonAppointments.Handle).Methods(http.MethodGet)

	// Управление вместимостью
	protected.HandleFunc("/salons/{salonId}/capacity", updateDayCapacity.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/salons/{salonId}/capacity/closures", toggleSlotClosure.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
