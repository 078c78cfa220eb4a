package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/bot"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/catalog"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/config"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/db"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/events"
	httpapi "github.com/Yorinashi/Kopi-ni-yoshi/internal/http"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/register"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/sequence"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[pos-service] ", log.LstdFlags|log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- DB ---
	menu := catalog.Default()
	var seq register.Sequencer = sequence.NewMemory()

	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatalf("db connect: %v", err)
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				logger.Fatalf("db migrate: %v", err)
			}
		}

		seq = sequence.NewRepository(pool)

		if cfg.UsePostgresCatalog() {
			items, err := catalog.NewPostgresRepository(pool).Load(ctx)
			if err != nil {
				logger.Fatalf("load catalog: %v", err)
			}
			menu, err = catalog.New(items)
			if err != nil {
				logger.Fatalf("build catalog: %v", err)
			}
		}
	} else {
		logger.Printf("DATABASE_DSN not set: receipt numbers are kept in memory")
	}
	logger.Printf("catalog: %d items", menu.Len())

	// --- AMQP ---
	var pub register.Publisher
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatalf("rabbitmq: %v", err)
		}
		defer conn.Close()

		rabbit, err := events.NewRabbitPublisher(conn, events.PosServiceProducer)
		if err != nil {
			logger.Fatalf("rabbitmq publisher: %v", err)
		}
		defer rabbit.Close()
		pub = rabbit
	} else {
		logger.Printf("RABBITMQ_URL not set: receipt events are logged only")
		pub = events.NewLogPublisher(logger)
	}

	registers := register.NewRegistry(register.Deps{
		Catalog:   menu,
		Sequencer: seq,
		Publisher: pub,
		Logger:    logger,
	})

	// --- Telegram ---
	if cfg.TelegramToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			logger.Fatalf("telegram: %v", err)
		}
		logger.Printf("telegram bot @%s started", api.Self.UserName)
		go bot.Run(ctx, api, bot.New(api, registers, cfg.CurrencySymbol, logger))
	}

	// --- HTTP ---
	h := httpapi.NewHandler(registers, cfg.CurrencySymbol, logger)
	r := httpapi.NewRouter(h, httpapi.RouterOptions{
		Logger:         logger,
		AllowOrigins:   cfg.CORSAllowOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown: %v", err)
	}
	cancel()

	logger.Printf("shutdown complete")
}
