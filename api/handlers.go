package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/npclabs/mc-server-wrapper/log"
)

// StopServer stops the game server, then fires the one-shot shutdown
// handoff so the HTTP listener can begin its own graceful teardown. A
// handoff that was already consumed is a reportable error, not a silent
// no-op: it means a prior shutdown attempt already happened.
func (s *Server) StopServer(c *gin.Context) {
	s.mu.Lock()
	err := s.bridge.Stop()
	s.mu.Unlock()
	if err != nil {
		log.Error().Err(err).Msg("failed to stop the server")
		RespondInternalError(c, "something went wrong while trying to stop the server: "+err.Error())
		return
	}

	if err := s.handoff.Trigger(); err != nil {
		log.Error().Err(err).Msg("shutdown handoff failed")
		RespondInternalError(c, "server stopped, but signaling the wrapper to shut down failed: "+err.Error())
		return
	}

	RespondNoContent(c)
}

// ListPlayers returns the names of the players currently online. Bridge
// failures (including a dead server) propagate as errors instead of
// masquerading as an empty player list.
func (s *Server) ListPlayers(c *gin.Context) {
	s.mu.Lock()
	players, err := s.bridge.ListPlayers()
	s.mu.Unlock()
	if err != nil {
		log.Error().Err(err).Msg("failed to list players")
		RespondInternalError(c, "something went wrong while trying to fetch the list of players online: "+err.Error())
		return
	}
	RespondList(c, players)
}

// MakeBackup archives the world and brings the server back up. On a
// combined failure the response message carries both the archive error
// and the recovery error.
func (s *Server) MakeBackup(c *gin.Context) {
	path, err := s.CreateBackup(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("world backup failed")
		RespondInternalError(c, err.Error())
		return
	}
	RespondData(c, gin.H{"archivePath": path})
}

type runCommandRequest struct {
	Command string `json:"command"`
}

// RunCommand delivers an arbitrary console command to the server. The
// bridge does not wait for a reply, so the request is acknowledged as
// accepted rather than completed.
func (s *Server) RunCommand(c *gin.Context) {
	var req runCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	req.Command = strings.TrimSpace(req.Command)
	if req.Command == "" {
		RespondBadRequest(c, "command must not be empty")
		return
	}

	if err := s.runCommand(req.Command, "api"); err != nil {
		log.Error().Err(err).Str("command", req.Command).Msg("failed to run command")
		RespondInternalError(c, "something went wrong while passing the command to the server: "+err.Error())
		return
	}
	RespondAccepted(c, gin.H{"command": req.Command})
}

// RestartServer forces a full stop/kill/relaunch cycle. Meant as an
// operator recovery action when the server is wedged.
func (s *Server) RestartServer(c *gin.Context) {
	s.mu.Lock()
	err := s.bridge.Restart()
	s.mu.Unlock()
	if err != nil {
		log.Error().Err(err).Msg("restart failed")
		RespondInternalError(c, "something went wrong while restarting the server: "+err.Error())
		return
	}
	RespondNoContent(c)
}

// Status reports the bridge's lifecycle state.
func (s *Server) Status(c *gin.Context) {
	s.mu.Lock()
	state := s.bridge.State()
	pid := s.bridge.PID()
	startedAt := s.bridge.StartedAt()
	s.mu.Unlock()

	RespondData(c, gin.H{
		"state":  state,
		"pid":    pid,
		"uptime": time.Since(startedAt).Round(time.Second).String(),
	})
}

// ListBackups returns recent backup attempts, newest first.
func (s *Server) ListBackups(c *gin.Context) {
	records, err := s.store.ListBackups(limitParam(c))
	if err != nil {
		RespondInternalError(c, "failed to read backup history: "+err.Error())
		return
	}
	RespondList(c, records)
}

// ListCommands returns recently issued commands, newest first.
func (s *Server) ListCommands(c *gin.Context) {
	records, err := s.store.ListCommands(limitParam(c))
	if err != nil {
		RespondInternalError(c, "failed to read command history: "+err.Error())
		return
	}
	RespondList(c, records)
}

func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}
