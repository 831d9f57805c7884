// Package identityhub собирает HTTP-сервис жизненного цикла пользователей:
// хранилище, кэш, брокер уведомлений, бизнес-логику и маршруты.
package identityhub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/glebkarpov/identity-hub/internal/cache"
	"github.com/glebkarpov/identity-hub/internal/config"
	"github.com/glebkarpov/identity-hub/internal/lib/idgen"
	"github.com/glebkarpov/identity-hub/internal/lib/jwt"
	"github.com/glebkarpov/identity-hub/internal/lib/password"
	"github.com/glebkarpov/identity-hub/internal/lib/rabbitmq"
	"github.com/glebkarpov/identity-hub/internal/migrations"
	"github.com/glebkarpov/identity-hub/internal/notifier"
	"github.com/glebkarpov/identity-hub/internal/roles"
	userservice "github.com/glebkarpov/identity-hub/internal/services/user"
	"github.com/glebkarpov/identity-hub/internal/storage"
)

// App — собранный HTTP-сервис со всеми зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает App: подключает хранилище и применяет миграции, поднимает
// кэш и канал брокера, собирает сервис пользователей и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	hasher := password.NewHasher(cfg.BcryptCost)
	rolesProvider := roles.NewRedisProvider(cacheRedis.Db)
	amqpNotifier := notifier.NewAMQPNotifier(ch, rabbitmq.NotificationExchange)

	service := userservice.New(db, idgen.NewUUIDGenerator(), hasher, jwtMaker,
		rolesProvider, amqpNotifier, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, service, jwtMaker)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		if closeErr := a.cache.Db.Close(); closeErr != nil {
			a.logger.Error("failed to close redis client", slog.Any("err", closeErr))
		}
		a.db.DB.Close()
		return err
	}
}
