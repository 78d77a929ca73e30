package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookstore-api/internal/config"
	"bookstore-api/internal/infrastructure/database/memory"
	"bookstore-api/internal/infrastructure/database/mongodb"
	"bookstore-api/internal/infrastructure/email"
	"bookstore-api/internal/infrastructure/messaging"
	"bookstore-api/internal/logger"
	"bookstore-api/internal/routes"
	"bookstore-api/internal/usecase/book"
	"bookstore-api/pkg/mqtt"
	"bookstore-api/pkg/utils"
)

const memoryURIScheme = "memory://"

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", cfg.Server.Environment),
	)

	hasher := utils.NewBcryptHasher(cfg.Security.BcryptCost)
	deps := routes.Dependencies{
		Config: cfg,
		Hasher: hasher,
		Tokens: utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenTTL()),
		Mailer: email.NewSMTPSender(cfg.SMTP),
	}

	if strings.HasPrefix(cfg.Database.URI, memoryURIScheme) {
		store := memory.NewStore()
		deps.Users = memory.NewUserRepository(store, hasher)
		deps.Books = memory.NewBookRepository(store)
		deps.Store = store
		logger.Warn("Using in-memory store, data will not survive a restart")
	} else {
		db, err := mongodb.NewDB(context.Background(), cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := db.Close(ctx); err != nil {
				logger.Error("Failed to close database connection", zap.Error(err))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout())
		if err := mongodb.EnsureIndexes(ctx, db.Database); err != nil {
			cancel()
			logger.Fatal("Failed to create indexes", zap.Error(err))
		}
		cancel()

		deps.Users = mongodb.NewUserRepository(db.Database, hasher)
		deps.Books = mongodb.NewBookRepository(db.Database)
		deps.Store = db
	}

	notifier, closeNotifier := newCatalogNotifier(&cfg.MQTT)
	defer closeNotifier()
	deps.Notifier = notifier

	done := make(chan struct{})
	defer close(done)
	deps.Done = done

	router := routes.SetupRoutes(deps)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
		return
	}

	logger.Info("Server exited properly")
}

// newCatalogNotifier connects to the MQTT broker when one is configured. A
// broker that cannot be reached disables notifications instead of failing
// startup.
func newCatalogNotifier(cfg *config.MQTTConfig) (book.Notifier, func()) {
	if !cfg.Enabled() {
		return messaging.NopNotifier{}, func() {}
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "bookstore-api-" + uuid.NewString()[:8]
	}

	client := mqtt.NewClient(&mqtt.Config{
		Broker:               cfg.Broker,
		ClientID:             clientID,
		Username:             cfg.Username,
		Password:             cfg.Password,
		CleanSession:         true,
		KeepAlive:            30,
		ConnectTimeout:       10,
		AutoReconnect:        true,
		MaxReconnectInterval: time.Minute,
		PublishTimeout:       5 * time.Second,
	}, logger.Logger)

	if err := client.Connect(); err != nil {
		logger.Error("Failed to connect to MQTT broker, catalog notifications disabled",
			zap.String("broker", cfg.Broker),
			zap.Error(err),
		)
		return messaging.NopNotifier{}, func() {}
	}

	return messaging.NewCatalogNotifier(client, cfg.CatalogTopic, byte(cfg.QoS)), client.Disconnect
}
