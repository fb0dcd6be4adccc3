package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guiche-backend/config"
	"guiche-backend/internal/api"
	"guiche-backend/internal/db"
	"guiche-backend/internal/gate"
	"guiche-backend/internal/liveview"
	"guiche-backend/internal/localinfo"
	"guiche-backend/internal/notes"
	"guiche-backend/internal/notification"
	"guiche-backend/internal/session"
	"guiche-backend/internal/store"
	"guiche-backend/internal/upstream"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
)

func main() {
	logger := log.New(os.Stdout, "guiche-backend ", log.LstdFlags)

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf("loading .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatalf("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	var kv session.KV
	if cfg.Redis.Addr != "" {
		redisKV, err := session.NewRedisKV(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatalf("failed to connect to redis at %s: %v", cfg.Redis.Addr, err)
		}
		defer redisKV.Close()
		kv = redisKV
		logger.Printf("session storage connected at %s", cfg.Redis.Addr)
	} else {
		logger.Println("redis.addr is not set; sessions are kept in process memory")
		kv = session.NewMemoryKV()
	}

	sessions := session.NewStore(kv)
	noteStore := notes.NewStore(kv, cfg.Notes.MaxNotes)

	client := upstream.NewClient(&cfg.Upstream)
	accessGate := gate.New(sessions, client, client)

	workers := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, &webpushOptions)
	workers.Start(ctx)

	// The waiting-room display watches the whole clinic. Each call and each
	// departure is archived, and calls fan out as push notifications.
	displayView := liveview.NewLiveView(cfg.Poller.HistoryCap)
	displayPoller := liveview.NewPoller(client, upstream.Scope{}, cfg.Poller.DisplayInterval, displayView,
		func(appeared, dropped []upstream.QueueItem) {
			events := make([]store.TicketEvent, 0, len(appeared)+len(dropped))
			for _, item := range appeared {
				events = append(events, ticketEvent(item, store.EventCalled))
				workers.Dispatch(notification.Job{Code: item.Code, Room: item.Room})
			}
			for _, item := range dropped {
				events = append(events, ticketEvent(item, store.EventLeft))
			}
			if err := appStore.RecordTicketEvents(ctx, events); err != nil {
				logger.Printf("recording ticket events: %v", err)
			}
		})
	go displayPoller.Run(ctx)
	defer displayPoller.Stop()

	dashboards := liveview.NewRegistry(ctx, client, cfg.Poller.DashboardInterval, cfg.Poller.DashboardIdleTTL, cfg.Poller.HistoryCap)
	defer dashboards.Close()

	local := localinfo.NewService(&cfg.LocalInfo)
	go local.Run(ctx)

	handler := api.NewHandler(api.Deps{
		Upstream:     client,
		Sessions:     sessions,
		Gate:         accessGate,
		Notes:        noteStore,
		Store:        appStore,
		Display:      displayView,
		Dashboards:   dashboards,
		LocalInfo:    local,
		WebPush:      &webpushOptions,
		DisplaySlots: cfg.Poller.DisplaySlots,
	})

	router := api.NewRouter(&cfg.Server, handler, accessGate)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

func ticketEvent(item upstream.QueueItem, event string) store.TicketEvent {
	return store.TicketEvent{
		Code:        item.Code,
		Room:        item.Room,
		Kind:        item.Kind,
		Status:      string(item.Status),
		Event:       event,
		ScheduledAt: item.ScheduledMoment,
		ObservedAt:  time.Now(),
	}
}
