package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicedesk/internal/calls"
	"voicedesk/internal/config"
	"voicedesk/internal/store"
	"voicedesk/internal/vapi"
	"voicedesk/pkg/logger"
	"voicedesk/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Store selection falls back to memory on any persistence trouble;
	// the demo always comes up.
	st := store.Open(rootCtx, cfg.Store, log)
	defer st.Close()

	client := vapi.NewClient(cfg.Vapi.BaseURL, cfg.Vapi.APIKey, cfg.Vapi.AssistantID)

	var dialer calls.Dialer
	var sim *calls.Simulator
	if cfg.CallingServiceConfigured() {
		dialer = calls.VapiDialer{Client: client}
		log.Info("calling service configured", "base_url", cfg.Vapi.BaseURL)
	} else {
		sim = calls.NewSimulator()
		dialer = sim
		log.Info("no calling-service credentials, running in simulation mode")
	}

	var callCap *calls.CallCap
	if cfg.RedisEnabled() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Warn("redis unavailable, call cap disabled", "err", err)
		} else {
			defer rdb.Close()
			callCap = &calls.CallCap{RDB: rdb, Limit: cfg.Redis.MaxActiveCalls}
			log.Info("call cap enabled", "limit", cfg.Redis.MaxActiveCalls)
		}
	}

	svc := calls.NewService(st, dialer, callCap)
	if sim != nil {
		// Simulated lifecycle events flow through the same reconciliation
		// path as real webhook traffic.
		sim.Sink = svc.ApplyEvent
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, svc, client)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "store", st.Kind())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
