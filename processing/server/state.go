package server

import "sync"

// state holds the flags shared between the UI thread and the pipe
// reader goroutines. All access goes through the accessors.
type state struct {
	mu         sync.RWMutex
	running    bool
	ready      bool
	processing bool
	stopping   bool
}

func (s *state) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *state) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *state) Processing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processing
}

func (s *state) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

func (s *state) setReady(v bool) {
	s.mu.Lock()
	s.ready = v
	s.mu.Unlock()
}

func (s *state) setProcessing(v bool) {
	s.mu.Lock()
	s.processing = v
	s.mu.Unlock()
}

func (s *state) setStopping(v bool) {
	s.mu.Lock()
	s.stopping = v
	s.mu.Unlock()
}

func (s *state) stoppingNow() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopping
}

// reset clears every flag at once, used when the worker exits.
func (s *state) reset() {
	s.mu.Lock()
	s.running = false
	s.ready = false
	s.processing = false
	s.mu.Unlock()
}
