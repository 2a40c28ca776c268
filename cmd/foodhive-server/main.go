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

	"foodhive/internal/api"
	"foodhive/internal/app"
	"foodhive/internal/config"
	"foodhive/internal/telegram"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer application.Close()

	server := api.New(application.APIDeps())

	var bot *telegram.Bot
	if cfg.TelegramEnabled() {
		bot, err = telegram.NewBot(cfg.TelegramBotToken, cfg.TelegramWebhookURL,
			application.Chat, application.Catalogs, application.Shopping, application.Metrics,
			telegram.Options{
				AllowedUserIDs: cfg.TelegramAllowedUserIDs,
				AdminID:        cfg.AdminTelegramID,
				DatabasePath:   cfg.DatabasePath,
			})
		if err != nil {
			log.Fatalf("Failed to initialize Telegram Bot: %v", err)
		}
		bot.RegisterHandlers(server.Router())
		application.Dispatcher.Add(bot)
	} else {
		log.Println("Warning: Telegram is not configured, notifications go to the log only")
	}

	if err := application.StartJobs(ctx); err != nil {
		log.Printf("Warning: failed to schedule reminders: %v", err)
		if bot != nil {
			bot.SendAdminAlert(fmt.Sprintf("FoodHive started without expiry reminders: %v", err))
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("FoodHive server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
