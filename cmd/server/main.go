package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/flashdeck/internal/account"
	"github.com/dmitrymomot/flashdeck/internal/auth"
	"github.com/dmitrymomot/flashdeck/internal/db/migrations"
	"github.com/dmitrymomot/flashdeck/internal/handler"
	"github.com/dmitrymomot/flashdeck/internal/session"
	"github.com/dmitrymomot/flashdeck/pkg/config"
	"github.com/dmitrymomot/flashdeck/pkg/cookie"
	"github.com/dmitrymomot/flashdeck/pkg/httpserver"
	"github.com/dmitrymomot/flashdeck/pkg/logger"
	"github.com/dmitrymomot/flashdeck/pkg/pg"
	"github.com/dmitrymomot/flashdeck/pkg/ratelimiter"
	redisconn "github.com/dmitrymomot/flashdeck/pkg/redis"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"APP_NAME" envDefault:"flashdeck"`

	// MFAIssuer labels enrollments inside authenticator apps.
	MFAIssuer string `env:"MFA_ISSUER" envDefault:"Flashdeck"`

	// Login rate limiting: burst capacity and refill cadence per client IP.
	LoginRateCapacity int           `env:"LOGIN_RATE_CAPACITY" envDefault:"10"`
	LoginRateRefill   time.Duration `env:"LOGIN_RATE_REFILL" envDefault:"1m"`
}

func main() {
	ctx := context.Background()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, appCfg.ServiceName))
	logger.SetAsDefault(log)

	if err := run(ctx, appCfg, log); err != nil {
		log.ErrorContext(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg appConfig, log *slog.Logger) error {
	var (
		pgCfg      pg.Config
		redisCfg   redisconn.Config
		cookieCfg  cookie.Config
		sessionCfg session.Config
		serverCfg  httpserver.Config
	)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&cookieCfg)
	config.MustLoad(&sessionCfg)
	config.MustLoad(&serverCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, migrations.FS, pgCfg, log); err != nil {
		return err
	}

	redisClient, err := redisconn.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close() //nolint:errcheck

	cookieMgr, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}

	sessions := session.NewFromConfig(sessionCfg,
		session.WithStore(session.NewRedisStore(redisClient)),
		session.WithCookieManager(cookieMgr),
	)

	accountStore := account.NewPostgresStore(pool)
	accounts := account.NewService(accountStore)
	flow := auth.NewFlow(accounts, accountStore, appCfg.MFAIssuer, log)

	limitStore := ratelimiter.NewMemoryStore()
	defer limitStore.Close()

	loginBucket, err := ratelimiter.NewBucket(limitStore, ratelimiter.Config{
		Capacity:       appCfg.LoginRateCapacity,
		RefillRate:     1,
		RefillInterval: appCfg.LoginRateRefill,
	})
	if err != nil {
		return err
	}
	loginLimiter := ratelimiter.Middleware(loginBucket, ratelimiter.ByClientIP)

	h := handler.New(flow, accounts, accountStore, sessions, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool),
		redisconn.Healthcheck(redisClient),
	))
	r.Mount("/", h.Routes(loginLimiter))

	srv := httpserver.NewFromConfig(serverCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}
