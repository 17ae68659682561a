package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/teamkit/internal/actions"
	"github.com/charlesng35/teamkit/internal/api"
	"github.com/charlesng35/teamkit/internal/app"
	"github.com/charlesng35/teamkit/internal/app/maintenance"
	"github.com/charlesng35/teamkit/internal/auth"
	"github.com/charlesng35/teamkit/internal/billing"
	"github.com/charlesng35/teamkit/internal/cache"
	"github.com/charlesng35/teamkit/internal/database"
	"github.com/charlesng35/teamkit/internal/middleware"
	"github.com/charlesng35/teamkit/internal/services"
	"github.com/charlesng35/teamkit/pkg/crypto"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Store     *services.Store
	Cleaner   *maintenance.Cleaner
	RateStore middleware.RateStore
	Router    *gin.Engine

	memoryRates *middleware.MemoryRateStore
}

// bootstrapRuntime initialises the database, rate limiting backend, services and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	stack.Store, err = services.NewStore(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise store: %w", err)
	}

	codecCfg, err := cfg.Auth.SessionCodecConfig()
	if err != nil {
		return nil, fmt.Errorf("session secret: %w", err)
	}
	codec, err := auth.NewSessionCodec(codecCfg)
	if err != nil {
		return nil, fmt.Errorf("initialise session codec: %w", err)
	}
	sessions, err := auth.NewSessionStore(codec, cfg.Auth.SessionStoreConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise session store: %w", err)
	}

	checkout, err := billing.NewHostedCheckout(cfg.CheckoutConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise checkout: %w", err)
	}

	acts, err := actions.New(stack.Store, crypto.NewPasswordHasher(cfg.Auth.HasherConfig()), actions.WithCheckout(checkout))
	if err != nil {
		return nil, fmt.Errorf("initialise actions: %w", err)
	}

	var purger maintenance.CounterPurger
	stack.RateStore, purger, err = stack.selectRateStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	cleanerOpts := []maintenance.Option{
		maintenance.WithSchedule(cfg.Maintenance.Schedule),
		maintenance.WithActivityRetentionDays(cfg.Maintenance.ActivityRetentionDays),
	}
	if purger != nil {
		cleanerOpts = append(cleanerOpts, maintenance.WithCounterPurger(purger))
	}
	stack.Cleaner = maintenance.NewCleaner(stack.Store, cleanerOpts...)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		Store:     stack.Store,
		Actions:   acts,
		Sessions:  sessions,
		RateStore: stack.RateStore,
	}, cfg)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// selectRateStore builds the configured rate limiting backend. An unreachable
// Redis falls back to the database so limits still hold across instances.
func (s *runtimeStack) selectRateStore(ctx context.Context, cfg *app.Config, log *zap.Logger) (middleware.RateStore, maintenance.CounterPurger, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Server.RateLimit.Backend))

	if backend == app.RateLimitRedis {
		client, err := cache.NewRedisClient(ctx, cfg.Cache.RedisClientConfig())
		if err == nil {
			s.Redis = client
			counter, err := cache.NewRedisCounter(client, cfg.Cache.Redis.Prefix)
			if err != nil {
				return nil, nil, err
			}
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
			return middleware.NewCounterRateStore(counter), nil, nil
		}
		log.Warn("redis unavailable; falling back to database-backed rate limiting", zap.Error(err))
		backend = app.RateLimitDatabase
	}

	if backend == app.RateLimitDatabase {
		counter, err := cache.NewDatabaseCounter(s.DB)
		if err != nil {
			return nil, nil, err
		}
		return middleware.NewCounterRateStore(counter), counter, nil
	}

	s.memoryRates = middleware.NewMemoryRateStore()
	return s.memoryRates, nil, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		<-s.Cleaner.Stop().Done()
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown run failed", zap.Error(err))
		}
	}

	if s.memoryRates != nil {
		s.memoryRates.Close()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("failed to close redis client", zap.Error(err))
		}
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}
}

func initialiseDatabase(cfg *app.Config, log *zap.Logger) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log.Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}
