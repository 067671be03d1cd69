package server

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"petris/processing/staging"
)

const (
	// warmupTimeout bounds how long Start waits for the worker to
	// print its first prompt. Model loading usually takes about two
	// seconds; an unmodified script that never prints a prompt still
	// lets Start return after this ceiling.
	warmupTimeout = 2 * time.Second
	warmupPoll    = 50 * time.Millisecond

	// stopTimeout is how long Stop waits for a graceful exit after
	// sending quit before killing the process.
	stopTimeout = 5 * time.Second

	quitCommand = "quit"

	eventBufferSize = 64
)

var (
	ErrAlreadyRunning = errors.New("inference server already running")
	ErrNotRunning     = errors.New("inference server is not running")
)

// Server supervises one long-lived detection worker process. It owns
// the process handle and its three pipes exclusively; callers interact
// through Start/Stop, the Send* commands and the flag accessors.
type Server struct {
	log  zerolog.Logger
	area *staging.Area
	st   *state

	events chan Event

	mu     sync.Mutex // guards cmd, stdin, exited
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	exited chan struct{}
}

func New(area *staging.Area, log zerolog.Logger) *Server {
	return &Server{
		log:    log,
		area:   area,
		st:     &state{},
		events: make(chan Event, eventBufferSize),
	}
}

// Running reports whether a worker process is alive.
func (s *Server) Running() bool { return s.st.Running() }

// Ready reports whether the worker has signalled it can accept
// commands. Best-effort: inferred from the interactive prompt.
func (s *Server) Ready() bool { return s.st.Ready() }

// Processing reports whether a detection command is in flight.
func (s *Server) Processing() bool { return s.st.Processing() }

// Events returns the stream of classified worker output. The channel
// is never closed; drain it from a single consumer.
func (s *Server) Events() <-chan Event { return s.events }

// Start validates the configuration, launches the worker with
// redirected pipes, attaches the pipe readers and the exit watcher,
// then waits (bounded) for the worker to become ready.
func (s *Server) Start(cfg Config) error {
	if s.st.Running() {
		return ErrAlreadyRunning
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("server start: %w", err)
	}

	cmd := exec.Command(cfg.Runtime, cfg.args()...)
	cmd.Dir = cfg.WorkDir
	hideConsole(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch worker: %w", err)
	}

	exited := make(chan struct{})
	s.mu.Lock()
	s.cmd = cmd
	s.stdin = stdin
	s.exited = exited
	s.mu.Unlock()
	s.st.setRunning(true)

	go s.watchOutput(stdout)
	go s.watchErrors(stderr)
	go s.watchExit(cmd, exited)

	s.log.Info().
		Int("pid", cmd.Process.Pid).
		Str("engine", cfg.Engine).
		Msg("worker started, waiting for readiness")

	s.awaitReady(exited)
	return nil
}

// awaitReady polls the ready flag until the worker prints its prompt,
// exits, or the warm-up ceiling lapses. A worker that never prints a
// prompt leaves ready=false; Start still succeeds.
func (s *Server) awaitReady(exited <-chan struct{}) {
	deadline := time.After(warmupTimeout)
	tick := time.NewTicker(warmupPoll)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			if s.st.Ready() {
				s.log.Info().Msg("worker ready")
				return
			}
		case <-exited:
			return
		case <-deadline:
			s.log.Warn().Msg("worker gave no readiness signal within warm-up window")
			return
		}
	}
}

// watchExit reaps the worker and resets the shared flags. An exit that
// was not requested through Stop is reported as a crash.
func (s *Server) watchExit(cmd *exec.Cmd, exited chan struct{}) {
	err := cmd.Wait()
	close(exited)

	wasStopping := s.st.stoppingNow()
	s.st.reset()

	if wasStopping {
		s.log.Info().Msg("worker exited")
		return
	}

	line := "worker exited unexpectedly"
	if err != nil {
		line = fmt.Sprintf("worker exited unexpectedly: %v", err)
	}
	s.log.Error().Err(err).Msg("worker exited unexpectedly")
	s.emit(Event{Kind: EventExit, Line: line})
}

// Stop asks the worker to quit, waits up to stopTimeout for a natural
// exit and kills it otherwise. Always releases the pipe handles and
// clears the flags, including a stuck processing flag.
func (s *Server) Stop() error {
	if !s.st.Running() {
		return ErrNotRunning
	}

	s.st.setStopping(true)
	defer s.st.setStopping(false)

	s.mu.Lock()
	cmd, stdin, exited := s.cmd, s.stdin, s.exited
	s.cmd, s.stdin = nil, nil
	s.mu.Unlock()

	if stdin != nil {
		if _, err := fmt.Fprintln(stdin, quitCommand); err != nil {
			s.log.Warn().Err(err).Msg("could not deliver quit command")
		}
	}

	select {
	case <-exited:
	case <-time.After(stopTimeout):
		s.log.Warn().Msg("worker ignored quit, killing process")
		if cmd != nil && cmd.Process != nil {
			if err := cmd.Process.Kill(); err != nil {
				s.log.Error().Err(err).Msg("kill failed")
			}
		}
		<-exited
	}

	if stdin != nil {
		stdin.Close()
	}
	s.st.reset()
	return nil
}

// Shutdown stops the worker if one is running and clears the staging
// area. Safe to call at application exit regardless of state.
func (s *Server) Shutdown() {
	if s.st.Running() {
		if err := s.Stop(); err != nil {
			s.log.Warn().Err(err).Msg("shutdown stop")
		}
	}
	s.area.Cleanup()
}
