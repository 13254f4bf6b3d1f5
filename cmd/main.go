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

	acceptBookingHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/accept_booking"
	approveStartHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/approve_start"
	availabilityWSHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/availability_ws"
	cancelBookingHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/cancel_booking"
	completeBookingHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/complete_booking"
	connectLoginHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/connect_login"
	connectOnboardingHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/connect_onboarding"
	createBookingHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/create_booking"
	createPaymentIntentHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/create_payment_intent"
	createPayoutHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/create_payout"
	getAvailableBookingsHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/get_available_bookings"
	getBookingHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/get_booking"
	getEarningsHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/get_earnings"
	getProviderOrdersHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/get_provider_orders"
	getUserBookingsHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/get_user_bookings"
	startBookingHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/start_booking"
	stripeWebhookHandler "github.com/m04kA/HSM-MarketplaceService/internal/api/handlers/stripe_webhook"
	"github.com/m04kA/HSM-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/HSM-MarketplaceService/internal/config"
	"github.com/m04kA/HSM-MarketplaceService/internal/infra/storage"
	bookingRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/booking"
	earningRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/earning"
	paymentRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/payment"
	payoutRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/payout"
	providerRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/provider"
	taskRepo "github.com/m04kA/HSM-MarketplaceService/internal/infra/storage/task"
	oneSignalClient "github.com/m04kA/HSM-MarketplaceService/internal/integrations/onesignal"
	stripeClient "github.com/m04kA/HSM-MarketplaceService/internal/integrations/stripeprocessor"
	bookingsService "github.com/m04kA/HSM-MarketplaceService/internal/service/bookings"
	earningsService "github.com/m04kA/HSM-MarketplaceService/internal/service/earnings"
	providerService "github.com/m04kA/HSM-MarketplaceService/internal/service/provider"
	acceptBookingUC "github.com/m04kA/HSM-MarketplaceService/internal/usecase/accept_booking"
	createBookingUC "github.com/m04kA/HSM-MarketplaceService/internal/usecase/create_booking"
	createPaymentIntentUC "github.com/m04kA/HSM-MarketplaceService/internal/usecase/create_payment_intent"
	createPayoutUC "github.com/m04kA/HSM-MarketplaceService/internal/usecase/create_payout"
	processPaymentEventUC "github.com/m04kA/HSM-MarketplaceService/internal/usecase/process_payment_event"
	"github.com/m04kA/HSM-MarketplaceService/internal/worker"
	"github.com/m04kA/HSM-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/HSM-MarketplaceService/pkg/logger"
	"github.com/m04kA/HSM-MarketplaceService/pkg/metrics"
	"github.com/m04kA/HSM-MarketplaceService/pkg/simpletxmanager"
	"github.com/m04kA/HSM-MarketplaceService/pkg/txmanager"
)

// noopTaskMetrics заглушка счётчиков воркеров при выключенных метриках
type noopTaskMetrics struct{}

func (noopTaskMetrics) IncTaskProcessed(kind, status string) {}

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

	log.Info("Starting HSM-MarketplaceService...")
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

	// Применяем миграции
	if err := storage.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations applied")

	// Инициализируем интеграционных клиентов
	processor := stripeClient.NewClient(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, log)
	notifier := oneSignalClient.NewClient(
		cfg.OneSignal.AppID,
		cfg.OneSignal.RestAPIKey,
		time.Duration(cfg.OneSignal.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (Stripe, OneSignal timeout=%ds)", cfg.OneSignal.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		paymentRepository  *paymentRepo.Repository
		payoutRepository   *payoutRepo.Repository
		earningRepository  *earningRepo.Repository
		providerRepository *providerRepo.Repository
		taskRepository     *taskRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		paymentRepository = paymentRepo.NewRepository(wrappedDB)
		payoutRepository = payoutRepo.NewRepository(wrappedDB)
		earningRepository = earningRepo.NewRepository(wrappedDB)
		providerRepository = providerRepo.NewRepository(wrappedDB)
		taskRepository = taskRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		paymentRepository = paymentRepo.NewRepository(db)
		payoutRepository = payoutRepo.NewRepository(db)
		earningRepository = earningRepo.NewRepository(db)
		providerRepository = providerRepo.NewRepository(db)
		taskRepository = taskRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		paymentRepository,
		earningRepository,
		providerRepository,
		processor,
		notifier,
		txMgr,
		log,
	)
	earningsSvc := earningsService.NewService(
		providerRepository,
		earningRepository,
		payoutRepository,
		log,
	)
	providerSvc := providerService.NewService(
		providerRepository,
		processor,
		txMgr,
		cfg.Stripe.OnboardingReturnURL,
		cfg.Stripe.OnboardingRefreshURL,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		paymentRepository,
		taskRepository,
		processor,
		txMgr,
		log,
	)
	createPaymentIntentUseCase := createPaymentIntentUC.NewUseCase(
		bookingRepository,
		paymentRepository,
		processor,
		log,
	)
	acceptBookingUseCase := acceptBookingUC.NewUseCase(
		bookingRepository,
		paymentRepository,
		log,
	)
	createPayoutUseCase := createPayoutUC.NewUseCase(
		providerRepository,
		payoutRepository,
		processor,
		log,
	)
	processPaymentEventUseCase := processPaymentEventUC.NewUseCase(
		paymentRepository,
		processor,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	createPaymentIntent := createPaymentIntentHandler.NewHandler(createPaymentIntentUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	approveStart := approveStartHandler.NewHandler(bookingSvc, log)
	completeBooking := completeBookingHandler.NewHandler(bookingSvc, log)
	getAvailableBookings := getAvailableBookingsHandler.NewHandler(bookingSvc, log)
	acceptBooking := acceptBookingHandler.NewHandler(acceptBookingUseCase, log)
	getProviderOrders := getProviderOrdersHandler.NewHandler(bookingSvc, log)
	startBooking := startBookingHandler.NewHandler(bookingSvc, log)
	getEarnings := getEarningsHandler.NewHandler(earningsSvc, log)
	createPayout := createPayoutHandler.NewHandler(createPayoutUseCase, log)
	connectOnboarding := connectOnboardingHandler.NewHandler(providerSvc, log)
	connectLogin := connectLoginHandler.NewHandler(providerSvc, log)
	availabilityWS := availabilityWSHandler.NewHandler(providerSvc, log)
	stripeWebhook := stripeWebhookHandler.NewHandler(processPaymentEventUseCase, log)

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

	// ============================================================
	// WEBHOOKS (вне /api/v1, аутентификация по подписи Stripe)
	// ============================================================

	r.HandleFunc("/webhooks/stripe", stripeWebhook.Handle).Methods(http.MethodPost)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PROTECTED ROUTES (требуют JWT)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(cfg.Auth.JWTSecret))

	// --- Бронирования (заказчик) ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Повторное создание платежа, если при создании бронирования он не был создан
	protected.HandleFunc("/bookings/{bookingId}/payment-intent", createPaymentIntent.Handle).Methods(http.MethodPost)

	// Отмена бронирования (доступна обеим сторонам)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Подтверждение начала работ заказчиком
	protected.HandleFunc("/bookings/{bookingId}/approve-start", approveStart.Handle).Methods(http.MethodPost)

	// История бронирований текущего пользователя
	protected.HandleFunc("/users/me/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROVIDER ROUTES (требуют роль provider)
	// ============================================================

	provider := protected.PathPrefix("").Subrouter()
	provider.Use(middleware.RequireProvider)

	// --- Лента и заказы ---
	// Доступные для принятия бронирования
	provider.HandleFunc("/provider/bookings", getAvailableBookings.Handle).Methods(http.MethodGet)

	// Принятие бронирования
	provider.HandleFunc("/bookings/{bookingId}/accept", acceptBooking.Handle).Methods(http.MethodPost)

	// Заказы провайдера
	provider.HandleFunc("/provider/orders", getProviderOrders.Handle).Methods(http.MethodGet)

	// Запрос начала работ (ожидает подтверждения заказчика)
	provider.HandleFunc("/bookings/{bookingId}/start", startBooking.Handle).Methods(http.MethodPost)

	// Завершение работ
	provider.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPost)

	// --- Заработок и выплаты ---
	// Сводка заработка
	provider.HandleFunc("/provider/earnings", getEarnings.Handle).Methods(http.MethodGet)

	// Создание выплаты
	provider.HandleFunc("/provider/payouts", createPayout.Handle).Methods(http.MethodPost)

	// Онбординг в процессинге
	provider.HandleFunc("/provider/connect/onboarding", connectOnboarding.Handle).Methods(http.MethodGet)

	// Ссылка на кабинет процессинга
	provider.HandleFunc("/provider/connect/login-link", connectLogin.Handle).Methods(http.MethodGet)

	// --- Доступность ---
	// Websocket присутствия: провайдер онлайн, пока соединение живо
	provider.HandleFunc("/provider/availability/ws", availabilityWS.Handle).Methods(http.MethodGet)

	// Запускаем фоновые воркеры
	var taskMetrics worker.Metrics = noopTaskMetrics{}
	if cfg.Metrics.Enabled {
		taskMetrics = metricsCollector
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	expirer := worker.NewExpirer(
		taskRepository,
		bookingRepository,
		taskMetrics,
		time.Duration(cfg.Worker.PollInterval)*time.Second,
		log,
	)
	go expirer.Run(workerCtx)

	reconciler := worker.NewReconciler(
		bookingRepository,
		payoutRepository,
		providerRepository,
		processor,
		time.Duration(cfg.Worker.ReconcileInterval)*time.Second,
		time.Duration(cfg.Worker.PendingGracePeriod)*time.Minute,
		log,
	)
	go reconciler.Run(workerCtx)

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

	// Останавливаем воркеры
	stopWorkers()

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

	log.Info("Server stopped gracefully")
}
