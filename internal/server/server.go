// Package server wires configuration, storage, messaging and HTTP into a
// runnable API server.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/iliyamo/event-planner/internal/config"
	"github.com/iliyamo/event-planner/internal/database"
	"github.com/iliyamo/event-planner/internal/handler"
	"github.com/iliyamo/event-planner/internal/middleware"
	"github.com/iliyamo/event-planner/internal/queue"
	"github.com/iliyamo/event-planner/internal/repository"
	"github.com/iliyamo/event-planner/internal/router"
	"github.com/iliyamo/event-planner/internal/service"
	"github.com/iliyamo/event-planner/internal/utils"
)

const shutdownTimeout = 10 * time.Second

// Server owns the echo instance and the connections it serves from.
type Server struct {
	echo      *echo.Echo
	addr      string
	mongo     *mongo.Client
	redis     *redis.Client
	publisher *queue.AMQPPublisher
	logger    *slog.Logger
}

// New connects to MongoDB (required) and Redis (optional), ensures the
// indexes and registers every route.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	client, db, err := database.Open(ctx, cfg.DatabaseURI, cfg.DatabaseName)
	if err != nil {
		return nil, err
	}
	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(idxCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting and response cache disabled")
	}

	var pub queue.Publisher = queue.NopPublisher{}
	var amqpPub *queue.AMQPPublisher
	if cfg.RabbitURL != "" {
		amqpPub = queue.NewAMQPPublisher(cfg.RabbitURL, cfg.ActivityQueue, logger)
		pub = amqpPub
	} else {
		logger.Info("RABBITMQ_URL not set, activity publishing disabled")
	}

	tokens := utils.NewTokenService(utils.TokenConfig{
		AccessSecret:  cfg.AccessSecret,
		AccessTTL:     cfg.AccessExpiry,
		RefreshSecret: cfg.RefreshSecret,
		RefreshTTL:    cfg.RefreshExpiry,
	})
	cookies := utils.CookieFactory{Secure: cfg.CookieSecure, AccessTTL: cfg.AccessExpiry, RefreshTTL: cfg.RefreshExpiry}

	userRepo := repository.NewUserRepo(db)
	eventRepo := repository.NewEventRepo(db)
	users := service.NewUserService(service.UserDeps{
		Users:      userRepo,
		Sessions:   repository.NewTokenRepo(db),
		Events:     eventRepo,
		Tokens:     tokens,
		Publisher:  pub,
		BcryptCost: cfg.BcryptCost,
		Logger:     logger,
	})
	events := service.NewEventService(service.EventDeps{
		Events:    eventRepo,
		Users:     userRepo,
		Publisher: pub,
		Logger:    logger,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(logger)
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.Recover())

	health := map[string]handler.Check{
		"mongo": func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
		"redis": nil,
	}
	if rdb != nil {
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	router.RegisterRoutes(e, router.Deps{
		Users:     handler.NewUserHandler(users, cookies),
		Events:    handler.NewEventHandler(events),
		Auth:      middleware.NewAuth(tokens, users, cookies, logger),
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
		Gatherer:  reg,
		Health:    health,
		Logger:    logger,
	})

	return &Server{
		echo:      e,
		addr:      ":" + cfg.Port,
		mongo:     client,
		redis:     rdb,
		publisher: amqpPub,
		logger:    logger,
	}, nil
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"request_id", v.RequestID,
			)
			return nil
		},
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.echo.Start(s.addr) }()
	s.logger.Info("listening", "addr", s.addr)

	select {
	case err := <-errCh:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.echo.Shutdown(shutdownCtx)
	s.close()
	return err
}

func (s *Server) close() {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.mongo.Disconnect(ctx); err != nil {
		s.logger.Warn("mongo disconnect failed", "error", err)
	}
}
