package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/household-task-api/internal/clock"
	"github.com/yukikurage/household-task-api/internal/config"
	"github.com/yukikurage/household-task-api/internal/constants"
	"github.com/yukikurage/household-task-api/internal/database"
	"github.com/yukikurage/household-task-api/internal/handlers"
	"github.com/yukikurage/household-task-api/internal/logger"
	"github.com/yukikurage/household-task-api/internal/middleware"
	"github.com/yukikurage/household-task-api/internal/repository"
	"github.com/yukikurage/household-task-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		logger.Error("Failed to initialize logger", "err", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "err", err)
		os.Exit(1)
	}

	if err := database.MigrateDatabase(db); err != nil {
		logger.Error("Failed to run migrations", "err", err)
		os.Exit(1)
	}

	store := repository.NewStore(db)
	clk := clock.Real{}
	guard := services.NewPlanUsageGuard(store, clk)
	eventService := services.NewEventService(store, clk, cfg.Scheduling.Recurrence)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		logger.Error("Failed to create session store", "err", err)
		os.Exit(1)
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	handlers.RegisterRoutes(r, handlers.Dependencies{
		Store:      store,
		Clock:      clk,
		Auth:       services.NewAuthService(store, guard, clk),
		Households: services.NewHouseholdService(store, guard, clk),
		Tasks:      services.NewTaskService(store, guard, eventService),
		Events:     eventService,
	})

	scheduler := services.NewSchedulerService(cfg.Scheduling.Location())
	refillID, err := scheduler.ScheduleRefill(cfg.Scheduling.RefillCron, cfg.Scheduling.RefillTimeout, eventService.RefillAll)
	if err != nil {
		logger.Error("Failed to schedule refill job", "err", err)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Refill job scheduled", "cron", cfg.Scheduling.RefillCron, "next_run", scheduler.NextRun(refillID))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shut down", "err", err)
	}
}

// newSessionStore uses Redis when REDIS_HOST is set and signed cookies otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
