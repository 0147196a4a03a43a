package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/nobridge/nobridge-backend/internal/config"
	"github.com/nobridge/nobridge-backend/internal/db"
	"github.com/nobridge/nobridge-backend/internal/goroutine"
	httpHandlers "github.com/nobridge/nobridge-backend/internal/http/handlers"
	"github.com/nobridge/nobridge-backend/internal/http/middleware"
	httpRouter "github.com/nobridge/nobridge-backend/internal/http/router"
	"github.com/nobridge/nobridge-backend/internal/infrastructure/persistence"
	"github.com/nobridge/nobridge-backend/internal/logger"
	"github.com/nobridge/nobridge-backend/internal/repository"
	"github.com/nobridge/nobridge-backend/internal/service"
	"github.com/nobridge/nobridge-backend/internal/storage"
	"github.com/nobridge/nobridge-backend/internal/usecase/conversation"
	"github.com/nobridge/nobridge-backend/internal/usecase/inquiry"
	"github.com/nobridge/nobridge-backend/internal/usecase/listing"
	"github.com/nobridge/nobridge-backend/internal/usecase/profile"
	"github.com/nobridge/nobridge-backend/internal/usecase/verification"
	"github.com/nobridge/nobridge-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}
	log := logger.Get()

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	health := map[string]httpHandlers.Pinger{"database": dbConn}

	// Redis нужен только для общих счётчиков rate limit между инстансами.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("main: некорректный REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		health["redis"] = httpHandlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	limitStore, err := middleware.NewLimiterStore(redisClient, "nobridge:ratelimit")
	if err != nil {
		log.Fatalf("main: ошибка инициализации rate limiter: %v", err)
	}

	documents, err := storage.NewDocumentStorage(cfg.DocumentStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: ошибка инициализации хранилища документов: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Репозитории.
	txManager := persistence.NewTxManager(dbConn)
	users := persistence.NewUserRepositoryAdapter(dbConn)
	listings := persistence.NewListingRepositoryAdapter(dbConn)
	inquiries := persistence.NewInquiryRepositoryAdapter(dbConn)
	conversations := persistence.NewConversationRepositoryAdapter(dbConn)
	messages := persistence.NewMessageRepositoryAdapter(dbConn)
	verifications := persistence.NewVerificationRepositoryAdapter(dbConn)

	// Уведомления: запись в БД и доставка через WebSocket.
	notificationService := service.NewNotificationService(repository.NewNotificationRepository(dbConn))
	hub := ws.NewHub(notificationService, log)
	goroutine.SafeGoWithContext(ctx, hub.Run)
	notifier := service.NewNotifier(hub, service.NewCachedAdminDirectory(users, time.Minute), log)

	// Use cases.
	policy := cfg.BumpPolicy()
	now := time.Now
	reevaluator := inquiry.NewReevaluator(txManager, inquiries, users, notifier)

	h := httpRouter.Handlers{
		Health: httpHandlers.NewHealthHandler(health),
		Profile: httpHandlers.NewProfileHandler(
			profile.NewGetProfileUseCase(users),
			profile.NewUpdateProfileUseCase(users, notifier),
		),
		Listing: httpHandlers.NewListingHandler(
			listing.NewCreateListingUseCase(listings, users),
			listing.NewBrowseListingsUseCase(listings),
			listing.NewGetListingUseCase(listings),
			listing.NewListMyListingsUseCase(listings),
			listing.NewChangeListingStatusUseCase(listings, users),
		),
		Inquiry: httpHandlers.NewInquiryHandler(
			inquiry.NewCreateInquiryUseCase(listings, inquiries, users, notifier),
			inquiry.NewGetInquiryUseCase(inquiries),
			inquiry.NewListMyInquiriesUseCase(inquiries),
			inquiry.NewEngageInquiryUseCase(txManager, inquiries, users, notifier),
			inquiry.NewArchiveInquiryUseCase(txManager, inquiries, conversations, notifier),
		),
		Conversation: httpHandlers.NewConversationHandler(
			conversation.NewCheckConversationStatusUseCase(txManager, listings, inquiries, conversations),
			conversation.NewListMyConversationsUseCase(conversations),
			conversation.NewSendMessageUseCase(conversations, messages, notifier),
			conversation.NewListMessagesUseCase(conversations, messages),
		),
		Verification: httpHandlers.NewVerificationHandler(
			verification.NewSubmitUseCase(txManager, verifications, users, listings, notifier, policy, now),
			verification.NewBumpUseCase(txManager, verifications, policy, now),
			verification.NewListMineUseCase(verifications, policy, now),
			verification.NewUploadDocumentUseCase(verifications, documents, now, log),
			cfg.MaxUploadBytes(),
		),
		Admin: httpHandlers.NewAdminHandler(
			verification.NewListQueueUseCase(verifications),
			verification.NewAdminUpdateUseCase(txManager, verifications, users, listings, reevaluator, notifier, now),
			inquiry.NewListEngagementQueueUseCase(inquiries),
			inquiry.NewFacilitateConnectionUseCase(txManager, inquiries, conversations, notifier, cfg.FacilitationAutoApprove),
			inquiry.NewReviewConversationUseCase(txManager, inquiries, conversations, notifier),
		),
		Notification: httpHandlers.NewNotificationHandler(notificationService),
		WS:           httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
	}

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, h, tokenManager, limitStore)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	log.Infof("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}

	// Дожидаемся фоновой доставки уведомлений.
	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := goroutine.Wait(waitCtx); err != nil {
		log.WithError(err).Warn("main: фоновые задачи не завершились вовремя")
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Get().WithError(err).Error("main: ошибка закрытия базы")
	}
}
