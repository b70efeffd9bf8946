// Package wrapper supervises a single Minecraft server process,
// bridging its line-oriented stdin/stdout into synchronous operations.
//
// The bridge assumes at most one operation in flight at a time: callers
// (the HTTP layer, the backup worker, the operator stdin pass-through)
// must serialize access behind one mutex, held for the whole operation,
// because the blocking receive in one call would otherwise consume the
// line another call was waiting for.
package wrapper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/npclabs/mc-server-wrapper/backup"
	"github.com/npclabs/mc-server-wrapper/log"
)

const (
	// readyMarker is the substring the server prints once initialization
	// has finished.
	readyMarker = "Done"

	listCommand = "/list"
	stopCommand = "/stop"

	// noLookupsFlag disables log4j message interpolation (CVE-2021-44228).
	noLookupsFlag = "-Dlog4j2.formatMsgNoLookups=true"
	headlessFlag  = "nogui"

	// DefaultMaxMemoryMB is the heap budget used when bringing the server
	// back up after a backup.
	DefaultMaxMemoryMB = 1024
)

// Config controls how the server process is launched.
type Config struct {
	JavaBin     string // defaults to "java"
	JarPath     string
	MaxMemoryMB int    // -Xmx budget, defaults to DefaultMaxMemoryMB
	WorldDir    string // defaults to <jar dir>/world

	// OnLine, if set, observes every console line the server emits.
	// It runs on the reader goroutine and must not block.
	OnLine func(line string)
}

// Wrapper owns the server process handle, its stdin, and the consumer
// end of the console line queue.
type Wrapper struct {
	javaBin     string
	jarPath     string
	maxMemoryMB int
	worldDir    string
	onLine      func(string)

	cmd   *exec.Cmd
	stdin io.WriteCloser
	queue *lineQueue

	state     State
	startedAt time.Time
}

// Start launches the server process with pipes wired to stdin, stdout
// and stderr, starts the reader goroutine, and returns a wrapper in the
// Starting state. The caller should follow up with AwaitReady.
func Start(cfg Config) (*Wrapper, error) {
	if cfg.JavaBin == "" {
		cfg.JavaBin = "java"
	}
	if cfg.MaxMemoryMB <= 0 {
		cfg.MaxMemoryMB = DefaultMaxMemoryMB
	}
	if cfg.WorldDir == "" {
		cfg.WorldDir = filepath.Join(filepath.Dir(cfg.JarPath), "world")
	}

	w := &Wrapper{
		javaBin:     cfg.JavaBin,
		jarPath:     cfg.JarPath,
		maxMemoryMB: cfg.MaxMemoryMB,
		worldDir:    cfg.WorldDir,
		onLine:      cfg.OnLine,
	}
	if err := w.spawn(cfg.MaxMemoryMB); err != nil {
		return nil, err
	}
	return w, nil
}

// args builds the fixed argument shape the server is always launched with.
func (w *Wrapper) args(maxMemoryMB int) []string {
	return []string{
		noLookupsFlag,
		fmt.Sprintf("-Xmx%dm", maxMemoryMB),
		"-jar", w.jarPath,
		headlessFlag,
	}
}

// spawn launches a fresh process and replaces the process handle, stdin
// and line queue wholesale. The previous handles, if any, are discarded
// and never reused.
func (w *Wrapper) spawn(maxMemoryMB int) error {
	cmd := exec.Command(w.javaBin, w.args(maxMemoryMB)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &SpawnError{Message: "could not capture stdin of the server process", Cause: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &SpawnError{Message: "could not capture stdout of the server process", Cause: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &SpawnError{Message: "could not capture stderr of the server process", Cause: err}
	}
	if err := cmd.Start(); err != nil {
		return &SpawnError{Message: "could not launch the server process", Cause: err}
	}

	w.cmd = cmd
	w.stdin = stdin
	w.queue = newLineQueue()
	w.state = StateStarting
	w.startedAt = time.Now()

	go w.readLines(stdout, w.queue)
	go w.readStderr(stderr)

	log.Info().
		Int("pid", cmd.Process.Pid).
		Str("jar", w.jarPath).
		Int("maxMemoryMB", maxMemoryMB).
		Msg("server process started")
	return nil
}

// AwaitReady consumes and discards console lines until one contains the
// readiness marker, then transitions to Ready. There is no timeout: an
// unresponsive server blocks the caller indefinitely. Returns
// ErrBrokenPipe if the server dies before ever becoming ready.
func (w *Wrapper) AwaitReady() error {
	for {
		line, ok := w.queue.recv()
		if !ok {
			return ErrBrokenPipe
		}
		if strings.Contains(line, readyMarker) {
			w.state = StateReady
			log.Info().Msg("server is ready")
			return nil
		}
	}
}

// RunCommand delivers a line-terminated command to the server and does
// not wait for any reply; most commands have none. Console chatter
// queued before the call (world events and other unsolicited output) is
// drained and discarded first, without blocking.
func (w *Wrapper) RunCommand(cmd string) error {
	w.drainChatter()

	if !strings.HasSuffix(cmd, "\n") {
		cmd += "\n"
	}
	if _, err := io.WriteString(w.stdin, cmd); err != nil {
		return fmt.Errorf("write to server stdin: %w", err)
	}
	return nil
}

// drainChatter discards everything currently queued. It stops at the
// first empty observation and never blocks.
func (w *Wrapper) drainChatter() {
	n := 0
	for {
		if _, ok := w.queue.tryRecv(); !ok {
			break
		}
		n++
	}
	if n > 0 {
		log.Debug().Int("lines", n).Msg("discarded unsolicited console output")
	}
}

// ListPlayers issues the player-list query and blocks for exactly one
// console line, which in this protocol is always the query's response:
// "... players online: name1, name2". An empty suffix means nobody is
// online. A line without the expected shape is a ProtocolError, not
// something to silently default.
func (w *Wrapper) ListPlayers() ([]string, error) {
	if err := w.RunCommand(listCommand); err != nil {
		return nil, err
	}
	line, ok := w.queue.recv()
	if !ok {
		return nil, ErrBrokenPipe
	}
	return parsePlayerList(line)
}

func parsePlayerList(line string) ([]string, error) {
	idx := strings.LastIndex(line, ":")
	if idx < 0 {
		return nil, &ProtocolError{Command: listCommand, Line: line}
	}
	suffix := strings.TrimSpace(line[idx+1:])
	if suffix == "" {
		return []string{}, nil
	}
	names := strings.Split(suffix, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names, nil
}

// Stop issues the stop command and blocks until the process exits. A
// non-zero or signal-terminated exit comes back as an ExitError carrying
// the distinguishing detail; it is reported, never retried here.
func (w *Wrapper) Stop() error {
	if err := w.RunCommand(stopCommand); err != nil {
		return err
	}
	w.state = StateStopping
	err := w.cmd.Wait()
	w.state = StateStopped
	return exitErrorFrom(err)
}

// Restart is the recovery path: best-effort stop (errors swallowed),
// forcible kill if the process still reports alive, then a fresh spawn
// and AwaitReady against the same jar. It is only ever invoked
// explicitly after a failed higher-level operation, never speculatively.
func (w *Wrapper) Restart() error {
	if err := w.Stop(); err != nil {
		log.Warn().Err(err).Msg("stop during restart reported an error")
	}
	if err := w.kill(); err != nil {
		return &RestartError{Message: "could not kill the server process", Cause: err}
	}
	return w.respawn(w.maxMemoryMB)
}

// kill forcibly terminates the current process. A process that is
// already dead is not an error.
func (w *Wrapper) kill() error {
	if w.cmd == nil || w.cmd.Process == nil {
		return nil
	}
	if err := w.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func (w *Wrapper) respawn(maxMemoryMB int) error {
	if err := w.spawn(maxMemoryMB); err != nil {
		return &RestartError{Message: "could not relaunch the server process", Cause: err}
	}
	if err := w.AwaitReady(); err != nil {
		return &RestartError{Message: "relaunched server never became ready", Cause: err}
	}
	return nil
}

// MakeWorldBackup stops the server, archives the world directory, and
// then unconditionally brings the server back up with the default memory
// budget, whether or not the archive succeeded. When both the archive
// and the recovery restart fail, the returned error carries both failure
// descriptions so neither is lost.
func (w *Wrapper) MakeWorldBackup(ctx context.Context) (string, error) {
	if err := w.Stop(); err != nil {
		// Wait has returned, so the server is down either way; a dirty
		// exit must not prevent the backup from being taken.
		log.Warn().Err(err).Msg("server stop before backup reported an error")
	}

	archivePath, archiveErr := backup.Create(ctx, w.worldDir)
	restartErr := w.respawn(DefaultMaxMemoryMB)

	if archiveErr != nil {
		if restartErr != nil {
			return "", fmt.Errorf("world backup failed: %v; recovery restart also failed: %v", archiveErr, restartErr)
		}
		return "", fmt.Errorf("world backup failed: %w", archiveErr)
	}
	if restartErr != nil {
		return archivePath, fmt.Errorf("world backup created at %s but the server failed to come back up: %w", archivePath, restartErr)
	}

	log.Info().Str("archive", archivePath).Msg("world backup created")
	return archivePath, nil
}

// State reports the current lifecycle state. Like every other method it
// assumes the caller holds the serializing lock.
func (w *Wrapper) State() State {
	return w.state
}

// PID returns the current server process id, or 0 if there is none.
func (w *Wrapper) PID() int {
	if w.cmd != nil && w.cmd.Process != nil {
		return w.cmd.Process.Pid
	}
	return 0
}

// StartedAt returns when the current process was launched.
func (w *Wrapper) StartedAt() time.Time {
	return w.startedAt
}
