package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/npclabs/mc-server-wrapper/api"
	"github.com/npclabs/mc-server-wrapper/config"
	"github.com/npclabs/mc-server-wrapper/console"
	"github.com/npclabs/mc-server-wrapper/db"
	"github.com/npclabs/mc-server-wrapper/log"
	"github.com/npclabs/mc-server-wrapper/shutdown"
	backupworker "github.com/npclabs/mc-server-wrapper/workers/backup"
	"github.com/npclabs/mc-server-wrapper/wrapper"
)

func main() {
	cfg := config.Get()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	hub := console.NewHub()

	// Spawning the server is the one failure that is fatal to the whole
	// wrapper; every later failure is reported to the caller instead.
	w, err := wrapper.Start(wrapper.Config{
		JavaBin:     cfg.JavaBin,
		JarPath:     cfg.ServerJarPath,
		MaxMemoryMB: cfg.MaxMemoryBufferSize,
		WorldDir:    cfg.WorldDirPath,
		OnLine:      hub.Publish,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to spawn the Minecraft server")
	}

	log.Info().Msg("waiting for the server to finish initializing")
	if err := w.AwaitReady(); err != nil {
		log.Fatal().Err(err).Msg("server died before becoming ready")
	}

	handoff := shutdown.NewHandoff()
	apiServer := api.NewServer(w, database, handoff, hub)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(api.RequestID())
	r.Use(log.GinLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{
		"/console/ws", // WebSocket - protocol upgrade
	})))
	r.SetTrustedProxies(nil)
	apiServer.SetupRoutes(r)

	worker := backupworker.NewWorker(cfg.BackupSchedule, func() (string, error) {
		return apiServer.CreateBackup(context.Background())
	})
	if err := worker.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start backup worker")
	}

	// Lines typed on the wrapper's own stdin go straight to the server
	// console, through the same lock as the API.
	go passStdin(apiServer)

	srv := &http.Server{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:  r,
		ErrorLog: log.StdErrorLogger(),
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("API server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("API server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-handoff.Done():
		// The game server already stopped; only the listener is left.
		log.Info().Msg("stop requested over the API, shutting down")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := apiServer.StopBridge(); err != nil {
			log.Error().Err(err).Msg("failed to stop the server cleanly")
		}
	}

	worker.Stop()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("API server shutdown error")
	}

	if err := database.Close(); err != nil {
		log.Error().Err(err).Msg("database close error")
	}

	log.Info().Msg("wrapper stopped")
}

// passStdin forwards operator input to the server console until stdin
// closes.
func passStdin(s *api.Server) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := s.RunOperatorCommand(line); err != nil {
			log.Error().Err(err).Msg("failed to pass the command to the server")
		}
	}
}
