// Package api is the HTTP control surface in front of the process
// wrapper. It serializes every bridge operation behind a single mutex:
// the bridge supports at most one in-flight operation, because a
// blocking console receive in one call could otherwise consume the line
// another call was waiting for.
package api

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/npclabs/mc-server-wrapper/console"
	"github.com/npclabs/mc-server-wrapper/db"
	"github.com/npclabs/mc-server-wrapper/log"
	"github.com/npclabs/mc-server-wrapper/shutdown"
	"github.com/npclabs/mc-server-wrapper/wrapper"
)

// Bridge is the surface of the process wrapper the control layer needs.
// Implementations are not safe for concurrent use; Server holds its
// mutex for the full duration of each call.
type Bridge interface {
	Stop() error
	Restart() error
	RunCommand(cmd string) error
	ListPlayers() ([]string, error)
	MakeWorldBackup(ctx context.Context) (string, error)
	State() wrapper.State
	PID() int
	StartedAt() time.Time
}

// Store persists operational history.
type Store interface {
	RecordCommand(command, source string) error
	ListCommands(limit int) ([]db.CommandRecord, error)
	RecordBackup(rec db.BackupRecord) error
	ListBackups(limit int) ([]db.BackupRecord, error)
}

// Server owns the control-surface state shared by all handlers.
type Server struct {
	mu      sync.Mutex // serializes every bridge operation
	bridge  Bridge
	store   Store
	handoff *shutdown.Handoff
	hub     *console.Hub
}

// NewServer wires the handlers' collaborators together.
func NewServer(bridge Bridge, store Store, handoff *shutdown.Handoff, hub *console.Hub) *Server {
	return &Server{
		bridge:  bridge,
		store:   store,
		handoff: handoff,
		hub:     hub,
	}
}

// SetupRoutes registers all routes on the router.
func (s *Server) SetupRoutes(r *gin.Engine) {
	r.GET("/stop", s.StopServer)
	r.GET("/list-players", s.ListPlayers)
	r.GET("/status", s.Status)
	r.POST("/backup", s.MakeBackup)
	r.POST("/command", s.RunCommand)
	r.POST("/restart", s.RestartServer)
	r.GET("/backups", s.ListBackups)
	r.GET("/commands", s.ListCommands)
	r.GET("/console/ws", s.ConsoleStream)
}

// CreateBackup runs a world backup under the bridge lock and records the
// outcome. Shared by the HTTP handler and the scheduled backup worker.
func (s *Server) CreateBackup(ctx context.Context) (string, error) {
	s.mu.Lock()
	start := time.Now()
	path, err := s.bridge.MakeWorldBackup(ctx)
	s.mu.Unlock()

	rec := db.BackupRecord{ArchivePath: path, Duration: time.Since(start)}
	if err != nil {
		rec.Error = err.Error()
	}
	if path != "" {
		if fi, statErr := os.Stat(path); statErr == nil {
			rec.SizeBytes = fi.Size()
		}
	}
	if dbErr := s.store.RecordBackup(rec); dbErr != nil {
		log.Warn().Err(dbErr).Msg("failed to record backup history")
	}
	return path, err
}

// RunOperatorCommand delivers a command typed on the wrapper's own stdin
// to the server, under the same lock as every other bridge operation.
func (s *Server) RunOperatorCommand(cmd string) error {
	return s.runCommand(cmd, "stdin")
}

func (s *Server) runCommand(cmd, source string) error {
	s.mu.Lock()
	err := s.bridge.RunCommand(cmd)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if dbErr := s.store.RecordCommand(cmd, source); dbErr != nil {
		log.Warn().Err(dbErr).Msg("failed to record command history")
	}
	return nil
}

// StopBridge stops the game server if it is still running. Used on the
// OS-signal shutdown path, where no HTTP stop request preceded the
// teardown.
func (s *Server) StopBridge() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bridge.State() == wrapper.StateStopped {
		return nil
	}
	return s.bridge.Stop()
}
