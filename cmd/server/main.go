package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"formrunner/internal/api"
	"formrunner/internal/automation/filler"
	"formrunner/internal/automation/locator"
	"formrunner/internal/automation/orchestrator"
	"formrunner/internal/infrastructure/browser"
	"formrunner/internal/infrastructure/env"
	"formrunner/internal/infrastructure/logger"
	"formrunner/internal/tasks"
)

func main() {
	envService := env.NewEnvService()

	log := logger.New(logger.Config{
		Dir:      envService.GetDefault("LOG_DIR", "log"),
		Filename: "formrunner.log",
		Debug:    envService.GetBool("DEBUG", false),
	})
	defer func() { _ = log.Sync() }()

	profile := browser.DetectProfile()
	log.Info("runtime profile detected",
		zap.Bool("containerized", profile.Containerized),
		zap.String("hostname", profile.Hostname))

	browserCfg := browser.DefaultConfig(profile)
	browserCfg.Headless = envService.GetBool("BROWSER_HEADLESS", browserCfg.Headless)
	browserCfg.BinaryPath = envService.Get("BROWSER_BIN")
	browserCfg.CacheDir = envService.Get("BROWSER_CACHE_DIR")
	browserCfg.ScreenshotDir = envService.GetDefault("SCREENSHOT_DIR", browserCfg.ScreenshotDir)
	browserCfg.PageLoadTimeout = time.Duration(envService.GetInt("PAGE_LOAD_TIMEOUT_SECONDS", 15)) * time.Second
	browserCfg.ElementWait = time.Duration(envService.GetInt("ELEMENT_WAIT_SECONDS", 10)) * time.Second

	fillCfg := filler.DefaultConfig()
	if envService.Get("FILL_MODE") == string(filler.ModeKeystrokes) {
		fillCfg.Mode = filler.ModeKeystrokes
	}

	manager := browser.NewManager(browserCfg, log)
	loc := locator.New(log)
	fill := filler.New(loc, fillCfg, log)

	engine := orchestrator.New(
		orchestrator.NewBrowserOpener(manager, fill),
		orchestrator.Config{
			SuccessThreshold: envService.GetInt("SUCCESS_THRESHOLD", 1),
			Review: orchestrator.ReviewPolicy{
				AutoClose:  true,
				CloseDelay: time.Duration(envService.GetInt("CLOSE_DELAY_SECONDS", 5)) * time.Second,
			},
		},
		log,
	)

	registry := tasks.NewRegistry(
		engine,
		time.Duration(envService.GetInt("TASK_RETENTION_MINUTES", 30))*time.Minute,
		log,
	)

	server := api.NewServer(engine, registry, log)
	addr := envService.GetDefault("SERVER_ADDR", ":8080")
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}
	registry.Close()
}
