package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	config "github.com/anjiri1684/studlyf_network/configs"
	"github.com/anjiri1684/studlyf_network/events"
	"github.com/anjiri1684/studlyf_network/handlers"
	"github.com/anjiri1684/studlyf_network/jobs"
	"github.com/anjiri1684/studlyf_network/middleware"
	"github.com/anjiri1684/studlyf_network/routes"
	"github.com/anjiri1684/studlyf_network/services"
	"github.com/anjiri1684/studlyf_network/storage"
	"github.com/anjiri1684/studlyf_network/utils"
	"github.com/anjiri1684/studlyf_network/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("🔥 Invalid configuration: %v", err)
	}

	logr, err := utils.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("🔥 Failed to build logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	if err := run(cfg, logr); err != nil {
		logr.Fatalw("Server stopped with error", "error", err)
	}
}

func run(cfg *config.Config, logr *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer st.Close()

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	assets, err := newAssetStore(ctx, cfg)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(logr)
	var notifier services.Notifier = hub
	if cfg.Realtime.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Realtime.RedisAddr,
			Password: cfg.Realtime.RedisPassword,
			DB:       cfg.Realtime.RedisDB,
		})
		defer rdb.Close()

		bridge := websocket.NewRedisBridge(rdb, cfg.Realtime.Channel, hub, logr)
		go func() {
			if err := bridge.Run(ctx); err != nil {
				logr.Errorw("realtime bridge stopped", "error", err)
			}
		}()
		notifier = bridge
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Events.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.Topic, logr)
	}
	defer publisher.Close()

	h := &handlers.Handler{
		Messages:    services.NewMessagingService(st.messages, assets, notifier, publisher, cfg.Assets.Folder, logr),
		Connections: services.NewConnectionService(st.connections, notifier, publisher, logr),
		Profiles:    services.NewProfileService(st.profiles, assets, cfg.Assets.CertFolder, logr),
		Hub:         hub,
		Verifier:    verifier,
		Realtime: handlers.RealtimeOptions{
			TrustClientIdentity: cfg.Auth.TrustClientIdentity,
			SendBuffer:          cfg.Realtime.SendBuffer,
			PingInterval:        cfg.Realtime.PingInterval,
			WriteTimeout:        cfg.Realtime.WriteTimeout,
		},
		ProfileLimit: cfg.App.ProfileLimit,
		Log:          logr,
	}
	if cfg.Auth.TrustClientIdentity {
		logr.Warn("Realtime accepts unverified uid query parameters")
	}

	c := cron.New()
	if _, err := c.AddJob(cfg.Store.ReapSchedule, jobs.NewRetentionJob(st.messages, st.connections, logr)); err != nil {
		return fmt.Errorf("schedule retention job: %w", err)
	}
	c.Start()
	defer c.Stop()
	logr.Infow("✅ Retention job scheduled", "schedule", cfg.Store.ReapSchedule, "retention", cfg.Store.Retention)

	app := fiber.New(fiber.Config{
		Prefork:       false,
		AppName:       cfg.App.Name,
		CaseSensitive: true,
		StrictRouting: true,
		BodyLimit:     cfg.App.BodyLimit,
		ReadTimeout:   cfg.App.ReadTimeout,
		WriteTimeout:  cfg.App.WriteTimeout,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler(logr),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	if local, ok := assets.(*storage.LocalStore); ok {
		app.Static(cfg.Assets.PublicBaseURL, local.Dir())
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to " + cfg.App.Name + " API",
		})
	})

	routes.Register(app, h, middleware.Protected(verifier))

	errc := make(chan error, 1)
	go func() {
		logr.Infow("✅ Server is running", "port", cfg.App.Port)
		errc <- app.Listen(":" + strconv.Itoa(cfg.App.Port))
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logr.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
