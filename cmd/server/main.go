package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"github.com/ArowuTest/promo-lottery/internal/auth"
	"github.com/ArowuTest/promo-lottery/internal/config"
	"github.com/ArowuTest/promo-lottery/internal/events"
	"github.com/ArowuTest/promo-lottery/internal/handlers"
	"github.com/ArowuTest/promo-lottery/internal/lottery"
	"github.com/ArowuTest/promo-lottery/internal/metrics"
	"github.com/ArowuTest/promo-lottery/internal/models"
	"github.com/ArowuTest/promo-lottery/internal/rng"
	"github.com/ArowuTest/promo-lottery/internal/storage"
)

func main() {
	defer logger.Init("promo-lottery", true, false, io.Discard).Close()

	// Load config & init
	appCfg := config.Load()
	auth.Init(appCfg.JWTSecret)
	if !auth.Enabled() {
		logger.Warning("JWT_SECRET_KEY is empty; stage routes are open")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appCfg.DatabaseConfigured() {
		db, err := config.InitDB(appCfg)
		if err != nil {
			logger.Fatalf("database: %v", err)
		}
		if err := models.Migrate(db); err != nil {
			logger.Fatalf("migrate: %v", err)
		}
		if err := handlers.SeedAdmin(db, appCfg.AdminUsername, appCfg.AdminPassword, appCfg.AdminEmail); err != nil {
			logger.Fatalf("seed admin: %v", err)
		}
	}

	selector, err := newSelector(appCfg)
	if err != nil {
		logger.Fatalf("random source: %v", err)
	}

	store, closeStore, err := storage.Open(ctx, storage.Options{
		Backend:       appCfg.StoreBackend,
		Prefix:        appCfg.StorePrefix,
		DB:            config.DB,
		RedisAddr:     appCfg.RedisAddr,
		RedisPassword: appCfg.RedisPassword,
		RedisDB:       appCfg.RedisDB,
	})
	if err != nil {
		logger.Fatalf("store: %v", err)
	}
	defer closeStore()

	hub := events.NewHub(nil)
	defer hub.Close()

	timings := lottery.DefaultTimings()
	timings.SettleDelay = appCfg.SettleDelay
	engine, err := lottery.New(lottery.Options{
		Tiers:        lottery.DefaultTiers(),
		Selector:     selector,
		Store:        store,
		Animator:     events.NewAnimator(hub),
		Notifier:     lottery.Notifiers{hub, metrics.Recorder{}},
		Timings:      &timings,
		HistoryLimit: appCfg.HistoryLimit,
		MaxRounds:    appCfg.MaxRounds,
	})
	if err != nil {
		logger.Fatalf("engine: %v", err)
	}
	if err := engine.Load(ctx); err != nil {
		logger.Warningf("restoring saved stage: %v", err)
	}

	// Setup router
	r := gin.Default()
	r.Use(config.CORSMiddleware(), metrics.Instrument())
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")
	{
		// Auth
		api.POST("/admin/login", handlers.Login)

		// Admin users (CRUD)
		users := api.Group("/admin/users", handlers.RequireAuth(models.RoleSuperAdmin))
		{
			users.POST("", handlers.CreateUser)
			users.GET("", handlers.ListUsers)
			users.GET("/:id", handlers.GetUser)
			users.PUT("/:id", handlers.UpdateUser)
			users.DELETE("/:id", handlers.DeleteUser)
		}

		handlers.NewLotteryHandler(engine, hub).RegisterRoutes(api)
	}

	srv := &http.Server{Addr: ":" + appCfg.Port, Handler: r}
	go func() {
		logger.Infof("listening on :%s (store=%s)", appCfg.Port, appCfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

func newSelector(c *config.AppConfig) (*rng.Selector, error) {
	if c.SecureRandom {
		return rng.NewSecureSelector()
	}
	logger.Warningf("using seeded random source (seed %d); draws are reproducible", c.RandomSeed)
	return rng.NewSeededSelector(c.RandomSeed), nil
}
