package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Nehilsa2/twitter_automation/bot"
	"github.com/Nehilsa2/twitter_automation/browser"
	"github.com/Nehilsa2/twitter_automation/logging"
	"github.com/Nehilsa2/twitter_automation/settings"
	"github.com/Nehilsa2/twitter_automation/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("unable to load .env file; falling back to existing environment variables")
	}

	env := settings.LoadEnvironment()

	logger, err := logging.New(env.LogLevel, env.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	store := settings.NewStore(env.ConfigFile)
	if err := store.Load(); err != nil {
		logger.Fatal("load configuration", zap.Error(err))
	}
	logger.Info("configuration loaded", zap.String("file", store.Path()))

	controller := bot.NewController(store, func(cfg settings.Config) (bot.Driver, error) {
		return browser.New(env, logger.Named("browser"))
	}, logger.Named("bot"))

	server := web.NewServer(env.ListenAddr, controller, store, logger.Named("web"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("control panel failed", zap.Error(err))
		}
	}

	if err := controller.Stop(); err != nil && !errors.Is(err, bot.ErrNotRunning) {
		logger.Warn("stopping bot", zap.Error(err))
	}
	controller.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("shutting down control panel", zap.Error(err))
	}
}
