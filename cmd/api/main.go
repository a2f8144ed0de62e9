package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookhub/internal/config"
	"bookhub/internal/database"
	"bookhub/internal/logging"
	"bookhub/internal/mailer"
	"bookhub/internal/metrics"
	"bookhub/internal/middleware"
	"bookhub/internal/modules/account"
	"bookhub/internal/modules/booking"
	"bookhub/internal/modules/notification"
	jwtsvc "bookhub/internal/pkg/jwt"
	"bookhub/internal/push"
	"bookhub/internal/repository"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(cfg.Logging, cfg.App)
	metrics.Register()

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	bookingRepo := repository.NewBookingRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	j := jwtsvc.New(cfg.JWT.Secret, 24*time.Hour)

	hub := push.NewHub()
	pool := mailer.NewPool(
		mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From),
		cfg.Mailer.Workers,
		cfg.Mailer.QueueSize,
		log,
	)

	dispatcher := notification.NewDispatcher(bookingRepo, notifRepo, hub, pool, log)
	bookingService := booking.NewService(bookingRepo, serviceRepo, dispatcher, log)
	bookingHandler := booking.NewHandler(bookingService)
	notifHandler := notification.NewHandler(notifRepo)
	accountHandler := account.NewHandler(userRepo)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(j))
	{
		bookingHandler.RegisterRoutes(v1)
		notifHandler.RegisterRoutes(v1)
		accountHandler.RegisterRoutes(v1)
	}

	// Push registration authenticates via ?token= because browser
	// websocket clients cannot set headers.
	r.GET("/ws", func(c *gin.Context) {
		claims, err := j.ValidateToken(c.Query("token"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "Invalid token"},
			})
			return
		}
		if err := hub.Upgrade(c.Writer, c.Request, claims.UserID); err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
		}
	})

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// Drain pending emails after the server stops accepting requests.
	pool.Close()
	log.Info().Msg("stopped")
}
