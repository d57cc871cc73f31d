// main.go
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"teamwork/authz"
	"teamwork/config"
	"teamwork/database"
	"teamwork/events"
	"teamwork/handlers"
	"teamwork/logger"
	"teamwork/middleware"
	"teamwork/services"
	"teamwork/store"
	"teamwork/store/gormstore"
	"teamwork/store/mongostore"
	"teamwork/token"
	"teamwork/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logging.Level, !cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	s, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("store initialization error", zap.Error(err))
		return
	}
	defer func() { _ = s.Close() }()

	broker, err := events.Open(ctx, cfg, log)
	if err != nil {
		log.Error("events initialization error", zap.Error(err))
		return
	}
	defer func() { _ = broker.Close() }()

	issuer := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	svc := services.New(s, broker, issuer, cfg.Auth.BcryptCost, log)
	engine := authz.NewEngine(s, log)

	limiters := middleware.NewLimiters(cfg.RateLimit)
	defer limiters.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    cfg.HTTP.BodyLimit,
		ReadTimeout:  cfg.HTTP.RequestTimeout,
		WriteTimeout: cfg.HTTP.RequestTimeout,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.Origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(limiters.General())

	handlers.New(s, svc, engine, issuer, cfg.HTTP.RequestTimeout, log).Mount(app, limiters)

	go func() {
		log.Info("http server starting",
			zap.String("addr", cfg.ServerAddr()),
			zap.String("env", cfg.App.Env),
			zap.String("store", cfg.Store.Driver),
			zap.String("events", cfg.Events.Driver),
		)
		if err := app.Listen(cfg.ServerAddr()); err != nil {
			log.Error("failed to start server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	stop()

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		log.Warn("server shutdown", zap.Duration("timeout", cfg.Server.ShutdownTimeout), zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres", "sqlite":
		db, err := database.Open(cfg, log)
		if err != nil {
			return nil, err
		}
		return gormstore.New(db), nil
	case "mongo":
		cctx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
		defer cancel()
		s, err := mongostore.Connect(cctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		log.Info("database connected", zap.String("driver", "mongo"), zap.String("database", cfg.Mongo.Database))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
