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
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/cancel_booking"
	completeTripHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/complete_trip"
	confirmBookingHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/confirm_booking"
	counterPaymentHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/counter_payment"
	createBookingHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/create_booking"
	createCheckoutHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/create_checkout"
	deleteBookingHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/delete_booking"
	documentsWebhookHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/documents_webhook"
	finishMaintenanceHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/finish_maintenance"
	getAvailableCarsHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/get_available_cars"
	getBookingHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/get_booking"
	getUserBookingsHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/get_user_bookings"
	paymentWebhookHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/payment_webhook"
	runExpirationHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/run_expiration"
	startTripHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/start_trip"
	updateBookingHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/update_booking"
	verifyBookingHandler "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/handlers/verify_booking"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/api/middleware"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/config"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/ratelimit"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/redislock"
	bookingRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/booking"
	carRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/car"
	paymentRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/payment"
	verificationRepo "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/infra/storage/verification"
	documentsClient "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/documents"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/notifier"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/integrations/payments"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/scheduler"
	availabilityService "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/availability"
	bookingsService "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/bookings"
	carsService "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/service/cars"
	completeTripUC "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/complete_trip"
	createBookingUC "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/create_booking"
	expireBookingsUC "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/expire_bookings"
	startTripUC "github.com/Puviraj-2004/Car-Rental-Backend-sub000/internal/usecase/start_trip"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/dbmetrics"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/logger"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/metrics"
	"github.com/Puviraj-2004/Car-Rental-Backend-sub000/pkg/txmanager"
)

const (
	carLockPrefix       = "carlock:"
	schedulerLockPrefix = "scheduler:"
	rateLimitPrefix     = "rl:"
)

// keyLocker общий интерфейс блокировок для use cases и планировщика
// Остается nil, если Redis не настроен
type keyLocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// notificationPublisher Kafka или лог
type notificationPublisher interface {
	Publish(ctx context.Context, msg notifier.Message) error
}

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

	log.Info("Starting Car-Rental booking service...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены); nil коллектор игнорирует наблюдения
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

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Redis: блокировки автомобилей, планировщика и лимиты запросов
	var (
		carLocker       keyLocker
		schedulerLocker keyLocker
		limiter         *ratelimit.Limiter
	)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			// Блокировки сработают при восстановлении Redis, база остается последней защитой
			log.Warn("Redis is not reachable at %s: %v", cfg.Redis.Addr, err)
		}
		cancelPing()

		lockTTL := time.Duration(cfg.Redis.LockTTL) * time.Second
		carLocker = redislock.NewLocker(redisClient, carLockPrefix, lockTTL)
		schedulerLocker = redislock.NewLocker(redisClient, schedulerLockPrefix, cfg.Scheduler.Interval())
		limiter = ratelimit.NewLimiter(redisClient, rateLimitPrefix, cfg.Redis.RateLimit,
			time.Duration(cfg.Redis.RateLimitWindow)*time.Second)
		log.Info("Redis initialized (addr=%s, lock_ttl=%ds)", cfg.Redis.Addr, cfg.Redis.LockTTL)
	} else {
		log.Warn("Redis is not configured: car locks and rate limiting are disabled")
	}

	// Уведомления
	var publisher notificationPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaNotifier := notifier.NewKafkaNotifier(
			notifier.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic),
			time.Duration(cfg.Kafka.WriteTimeout)*time.Second,
		)
		defer kafkaNotifier.Close()
		publisher = kafkaNotifier
		log.Info("Kafka notifier initialized (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		publisher = notifier.NewLogNotifier(log)
		log.Warn("Kafka is not configured: notifications are written to the log")
	}

	// Интеграционные клиенты
	gateway := payments.NewStripeClient(payments.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Currency:      cfg.Stripe.Currency,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
	})
	if cfg.Stripe.SecretKey == "" {
		log.Warn("Stripe secret key is not set: checkout and refunds will fail")
	}
	docsClient := documentsClient.NewClient(
		cfg.Documents.URL,
		time.Duration(cfg.Documents.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (DocumentsService=%s timeout=%ds)", cfg.Documents.URL, cfg.Documents.Timeout)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	carRepository := carRepo.NewRepository(wrappedDB)
	paymentRepository := paymentRepo.NewRepository(wrappedDB)
	verificationRepository := verificationRepo.NewRepository(wrappedDB)

	// Инициализируем сервисы
	availabilitySvc := availabilityService.NewService(
		bookingRepository,
		carRepository,
		cfg.Booking.AvailabilityBuffer(),
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		carRepository,
		paymentRepository,
		verificationRepository,
		availabilitySvc,
		gateway,
		publisher,
		carLocker,
		txMgr,
		metricsCollector,
		bookingsService.Settings{
			Currency:      cfg.Stripe.Currency,
			TaxRate:       cfg.Booking.TaxRate,
			DepositAmount: cfg.Booking.DepositAmount,
		},
		log,
	)
	carSvc := carsService.NewService(carRepository, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		carRepository,
		availabilitySvc,
		carLocker,
		txMgr,
		createBookingUC.Settings{
			TaxRate:       cfg.Booking.TaxRate,
			DepositAmount: cfg.Booking.DepositAmount,
			MinLeadTime:   cfg.Booking.MinLeadTime(),
		},
		log,
	)
	startTripUseCase := startTripUC.NewUseCase(
		bookingRepository,
		carRepository,
		paymentRepository,
		docsClient,
		txMgr,
		metricsCollector,
		log,
	)
	completeTripUseCase := completeTripUC.NewUseCase(
		bookingRepository,
		carRepository,
		txMgr,
		metricsCollector,
		log,
	)
	expireBookingsUseCase := expireBookingsUC.NewUseCase(
		bookingRepository,
		paymentRepository,
		gateway,
		publisher,
		metricsCollector,
		expireBookingsUC.Settings{
			PendingTimeout:     time.Duration(cfg.Scheduler.PendingTimeoutMinutes) * time.Minute,
			DocumentGrace:      time.Duration(cfg.Scheduler.DocumentGraceMinutes) * time.Minute,
			VerifiedUnpaidTTL:  time.Duration(cfg.Scheduler.VerifiedUnpaidTTLMinutes) * time.Minute,
			DraftMaxAge:        time.Duration(cfg.Scheduler.DraftMaxAgeHours) * time.Hour,
			RefundRetryBackoff: time.Duration(cfg.Scheduler.RefundRetryMinutes) * time.Minute,
			BatchSize:          cfg.Scheduler.BatchSize,
		},
		log,
	)

	// Планировщик истечения
	expirationScheduler := scheduler.New(
		cfg.Scheduler.Interval(),
		expireBookingsUseCase,
		schedulerLocker,
		metricsCollector,
		log,
	)
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	schedulerDone := make(chan struct{})
	if cfg.Scheduler.Enabled {
		go func() {
			defer close(schedulerDone)
			expirationScheduler.Start(schedulerCtx)
		}()
		log.Info("Expiration scheduler started (interval=%s)", cfg.Scheduler.Interval())
	} else {
		close(schedulerDone)
		log.Warn("Expiration scheduler is disabled, use POST /api/v1/admin/expiration/run")
	}

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	updateBooking := updateBookingHandler.NewHandler(bookingSvc, log)
	deleteBooking := deleteBookingHandler.NewHandler(bookingSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	verifyBooking := verifyBookingHandler.NewHandler(bookingSvc, log)
	createCheckout := createCheckoutHandler.NewHandler(bookingSvc, log)
	counterPayment := counterPaymentHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	startTrip := startTripHandler.NewHandler(startTripUseCase, log)
	completeTrip := completeTripHandler.NewHandler(completeTripUseCase, log)
	getAvailableCars := getAvailableCarsHandler.NewHandler(availabilitySvc, log)
	finishMaintenance := finishMaintenanceHandler.NewHandler(carSvc, log)
	runExpiration := runExpirationHandler.NewHandler(expirationScheduler, log)
	paymentWebhook := paymentWebhookHandler.NewHandler(bookingSvc, gateway, log)
	documentsWebhook := documentsWebhookHandler.NewHandler(bookingSvc, cfg.Documents.WebhookSecret, log)

	// Ограничение частоты; без Redis middleware не подключается
	rateLimited := func(scope string, h http.HandlerFunc) http.Handler {
		if limiter == nil {
			return h
		}
		return middleware.RateLimit(limiter, scope, middleware.ByActorOrIP, log)(h)
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(h)
	}

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Каталог свободных автомобилей
	api.HandleFunc("/cars/available", getAvailableCars.Handle).Methods(http.MethodGet)

	// Переход по ссылке подтверждения
	api.Handle("/bookings/verify/{token}", rateLimited("verify", verifyBooking.Handle)).Methods(http.MethodPost)

	// Уведомления платежного шлюза и сервиса документов
	api.HandleFunc("/webhooks/payments", paymentWebhook.Handle).Methods(http.MethodPost)
	api.HandleFunc("/webhooks/documents", documentsWebhook.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (Bearer JWT)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(cfg.Auth.JWTSecret, log))

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings", getUserBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}", updateBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}", deleteBooking.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}/confirm", confirmBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}/checkout", createCheckout.Handle).Methods(http.MethodPost)
	protected.Handle("/bookings/{bookingId:[0-9]+}/cancel", rateLimited("cancel", cancelBooking.Handle)).Methods(http.MethodPost)

	// --- Стойка выдачи (только сотрудники) ---
	protected.Handle("/bookings/{bookingId:[0-9]+}/counter-payment", adminOnly(counterPayment.Handle)).Methods(http.MethodPost)
	protected.Handle("/bookings/{bookingId:[0-9]+}/start", adminOnly(startTrip.Handle)).Methods(http.MethodPost)
	protected.Handle("/bookings/{bookingId:[0-9]+}/complete", adminOnly(completeTrip.Handle)).Methods(http.MethodPost)
	protected.Handle("/cars/{carId:[0-9]+}/finish-maintenance", adminOnly(finishMaintenance.Handle)).Methods(http.MethodPost)
	protected.Handle("/admin/expiration/run", adminOnly(runExpiration.Handle)).Methods(http.MethodPost)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownDuration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся текущего прохода планировщика
	stopScheduler()
	<-schedulerDone
	log.Info("Expiration scheduler stopped")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
