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

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	acceptProposalHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/accept_proposal"
	assignTripHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/assign_trip"
	cancelBookingHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/cancel_booking"
	changeBookingStatusHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/change_booking_status"
	changeProposalStatusHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/change_proposal_status"
	confirmBookingHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/confirm_booking"
	createDepositIntentHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/create_deposit_intent"
	createFinalPaymentIntentHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/create_final_payment_intent"
	createProposalHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/create_proposal"
	editProposalItineraryHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/edit_proposal_itinerary"
	expireProposalsHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/expire_proposals"
	findAvailabilityHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/find_availability"
	getBookingHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/get_booking"
	getPaymentScheduleHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/get_payment_schedule"
	getProposalHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/get_proposal"
	listBookingsHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/list_bookings"
	recalculateProposalHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/recalculate_proposal"
	recordFinalPaymentHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/record_final_payment"
	unassignTripHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/unassign_trip"
	updateBookingPricingHandler "github.com/m04kA/SMC-TourService/internal/api/handlers/update_booking_pricing"
	"github.com/m04kA/SMC-TourService/internal/api/middleware"
	"github.com/m04kA/SMC-TourService/internal/config"
	assignmentRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/assignment"
	bookingRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/booking"
	fleetRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/fleet"
	proposalRepo "github.com/m04kA/SMC-TourService/internal/infra/storage/proposal"
	"github.com/m04kA/SMC-TourService/internal/integrations/notifier"
	"github.com/m04kA/SMC-TourService/internal/integrations/payments"
	"github.com/m04kA/SMC-TourService/internal/integrations/venues"
	"github.com/m04kA/SMC-TourService/internal/scheduling"
	bookingsService "github.com/m04kA/SMC-TourService/internal/service/bookings"
	proposalsService "github.com/m04kA/SMC-TourService/internal/service/proposals"
	assignTripUC "github.com/m04kA/SMC-TourService/internal/usecase/assign_trip"
	createProposalUC "github.com/m04kA/SMC-TourService/internal/usecase/create_proposal"
	findAvailabilityUC "github.com/m04kA/SMC-TourService/internal/usecase/find_availability"
	"github.com/m04kA/SMC-TourService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TourService/pkg/logger"
	"github.com/m04kA/SMC-TourService/pkg/metrics"
	"github.com/m04kA/SMC-TourService/pkg/money"
	"github.com/m04kA/SMC-TourService/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-TourService...")
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
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

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Репозитории работают через DBExecutor: с метриками это обёртка над пулом
	var (
		executor  dbmetrics.DBExecutor
		txManager *txmanager.TransactionManager
	)
	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		executor = wrappedDB
		txManager = txmanager.NewTransactionManager(wrappedDB)
		log.Info("Database metrics collection started")
	} else {
		executor = db
		txManager = txmanager.NewFromSQL(db)
	}

	bookingRepository := bookingRepo.NewRepository(executor)
	fleetRepository := fleetRepo.NewRepository(executor)
	assignmentRepository := assignmentRepo.NewRepository(executor)
	proposalRepository := proposalRepo.NewRepository(executor)

	// Интеграции
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	tourNotifier := notifier.NewNotifier(redisClient, cfg.Redis.Channel, log)
	paymentClient := payments.NewClient(cfg.Payments.SecretKey, log)
	venueClient := venues.NewClient(cfg.Venues.URL, time.Duration(cfg.Venues.Timeout)*time.Second, log)
	log.Info("Integration clients initialized (Redis=%s channel=%s, Venues=%s timeout=%ds)",
		cfg.Redis.Addr, cfg.Redis.Channel, cfg.Venues.URL, cfg.Venues.Timeout)

	caps := scheduling.Caps{
		MaxDailyMinutes:  cfg.Scheduling.MaxDailyHours * 60,
		MaxWeeklyMinutes: cfg.Scheduling.MaxWeeklyHours * 60,
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		assignmentRepository,
		paymentClient,
		txManager,
		&bookingsService.RealTimeProvider{},
		cfg.Scheduling.FinalPaymentHours,
		log,
	)
	proposalSvc := proposalsService.NewService(
		proposalRepository,
		bookingRepository,
		txManager,
		&proposalsService.RealTimeProvider{},
		log,
	)

	// Инициализируем use cases
	findAvailabilityUseCase := findAvailabilityUC.NewUseCase(
		fleetRepository,
		assignmentRepository,
		caps,
		log,
	)
	assignTripUseCase := assignTripUC.NewUseCase(
		bookingRepository,
		fleetRepository,
		assignmentRepository,
		tourNotifier,
		metricsCollector,
		txManager,
		caps,
		time.Duration(cfg.Scheduling.NotifyTimeoutSecs)*time.Second,
		log,
	)
	createProposalUseCase := createProposalUC.NewUseCase(
		proposalRepository,
		venueClient,
		txManager,
		createProposalUC.Defaults{
			Currency:     cfg.Pricing.Currency,
			TaxRatePct:   money.NewPercent(cfg.Pricing.TaxRatePct),
			GratuityPct:  money.NewPercent(cfg.Pricing.GratuityPct),
			DepositPct:   money.NewPercent(cfg.Pricing.DepositPct),
			ValidityDays: cfg.Pricing.ProposalValidDays,
		},
		log,
	)

	// Инициализируем handlers
	findAvailability := findAvailabilityHandler.NewHandler(findAvailabilityUseCase, log)
	assignTrip := assignTripHandler.NewHandler(assignTripUseCase, log)
	unassignTrip := unassignTripHandler.NewHandler(assignTripUseCase, log)

	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	startBooking := changeBookingStatusHandler.NewHandler(bookingSvc, changeBookingStatusHandler.ActionStart, log)
	completeBooking := changeBookingStatusHandler.NewHandler(bookingSvc, changeBookingStatusHandler.ActionComplete, log)
	getPaymentSchedule := getPaymentScheduleHandler.NewHandler(bookingSvc, log)
	updateBookingPricing := updateBookingPricingHandler.NewHandler(bookingSvc, log)
	recordFinalPayment := recordFinalPaymentHandler.NewHandler(bookingSvc, log)
	createDepositIntent := createDepositIntentHandler.NewHandler(bookingSvc, log)
	createFinalPaymentIntent := createFinalPaymentIntentHandler.NewHandler(bookingSvc, log)

	createProposal := createProposalHandler.NewHandler(createProposalUseCase, log)
	getProposal := getProposalHandler.NewHandler(proposalSvc, log)
	sendProposal := changeProposalStatusHandler.NewHandler(proposalSvc, changeProposalStatusHandler.ActionSend, log)
	viewProposal := changeProposalStatusHandler.NewHandler(proposalSvc, changeProposalStatusHandler.ActionView, log)
	expireProposal := changeProposalStatusHandler.NewHandler(proposalSvc, changeProposalStatusHandler.ActionExpire, log)
	acceptProposal := acceptProposalHandler.NewHandler(proposalSvc, log)
	recalculateProposal := recalculateProposalHandler.NewHandler(proposalSvc, log)
	editProposalItinerary := editProposalItineraryHandler.NewHandler(proposalSvc, log)
	expireProposals := expireProposalsHandler.NewHandler(proposalSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные водители и машины на дату
	api.HandleFunc("/availability", findAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/start", startBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/pricing", updateBookingPricing.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/bookings/{bookingId}/payment-schedule", getPaymentSchedule.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/deposit-intent", createDepositIntent.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/final-payment-intent", createFinalPaymentIntent.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/final-payment", recordFinalPayment.Handle).Methods(http.MethodPost)

	// --- Назначение водителя и машины ---
	protected.HandleFunc("/bookings/{bookingId}/assignment", assignTrip.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/assignment", unassignTrip.Handle).Methods(http.MethodDelete)

	// --- Предложения ---
	protected.HandleFunc("/proposals", createProposal.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/proposals/expire-overdue", expireProposals.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/proposals/{proposalId}", getProposal.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/proposals/{proposalId}/send", sendProposal.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/proposals/{proposalId}/view", viewProposal.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/proposals/{proposalId}/expire", expireProposal.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/proposals/{proposalId}/accept", acceptProposal.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/proposals/{proposalId}/recalculate", recalculateProposal.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/proposals/{proposalId}/itinerary", editProposalItinerary.Handle).Methods(http.MethodPut)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся отправки уведомлений о назначениях
	assignTripUseCase.Wait()

	close(stopMetricsCh)
	if err := redisClient.Close(); err != nil {
		log.Error("Failed to close redis client: %v", err)
	}

	log.Info("Server stopped gracefully")
}
