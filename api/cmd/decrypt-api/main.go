package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/api/handlers"
	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/api/router"
	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/api/rpc"
	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/config"
	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/core/services"
	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/infrastructure/crypto"
	"github.com/jobyojnahub-a11y/decrypt-api/api/internal/logger"
)

func main() {
	// --- 1. Core Telemetry & Configuration ---
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet; fall back to defaults.
		l := logger.Init("info", "json")
		l.Fatal().Err(err).Msg("FATAL: invalid configuration")
	}

	log := logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("env", cfg.Environment).Msg("🚀 Booting decryption API...")

	if cfg.IsProduction() && cfg.WildcardCORS() {
		log.Warn().Msg("CORS_ALLOWED_ORIGINS is '*' in production; any origin may call the API")
	}

	// --- 2. Cryptographic Engine ---
	algo, err := crypto.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		log.Fatal().Err(err).Msg("FATAL: unsupported ENCRYPTION_ALGORITHM")
	}

	key := crypto.DeriveKey()
	log.Info().
		Str("algorithm", string(algo)).
		Str("key_fingerprint", key.Fingerprint()).
		Msg("🔐 Cipher ready")

	cryptoService, err := crypto.NewAEADService(key, algo)
	if err != nil {
		log.Fatal().Err(err).Msg("FATAL: cipher construction failed")
	}

	// --- 3. Dependency Injection ---
	batchService := services.NewBatchService(cryptoService, logger.WithComponent("batch"), cfg.BatchConcurrency)

	mux := router.NewRouter(router.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		RequestTimeout: cfg.RequestTimeout,
		CipherHandler:  handlers.NewCipherHandler(cryptoService, batchService),
		HealthHandler:  handlers.NewHealthHandler(cryptoService),
		WSHandler:      handlers.NewWebSocketHandler(cryptoService, logger.WithComponent("ws"), cfg.AllowedOrigins, cfg.MaxBodyBytes),
		Logger:         logger.WithComponent("http"),
	})

	// --- 4. HTTP Gateway ---
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		// The WebSocket session manages its own deadlines after the upgrade.
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("🌐 HTTP API active")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("CRITICAL: HTTP server crashed")
		}
	}()

	// --- 5. Optional gRPC Gateway ---
	var grpcServer *grpc.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			log.Fatal().Err(err).Str("port", cfg.GRPCPort).Msg("FATAL: gRPC listener failed")
		}

		grpcServer = rpc.NewServer(logger.WithComponent("grpc"), cryptoService, batchService,
			grpc.MaxRecvMsgSize(int(cfg.MaxBodyBytes)),
		)

		go func() {
			log.Info().Str("port", cfg.GRPCPort).Msg("📡 gRPC API active")
			if err := grpcServer.Serve(lis); err != nil {
				log.Fatal().Err(err).Msg("CRITICAL: gRPC server crashed")
			}
		}()
	}

	// --- 6. Graceful Exit ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info().Msg("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ERROR: Forced shutdown")
	}
	log.Info().Msg("✅ Decryption API shutdown complete")
}
