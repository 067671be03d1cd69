package server

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
)

// SendImage stages one image and asks the worker to run detection on
// the staged copy. Fire-and-forget: poll Processing to learn when the
// result has been written.
func (s *Server) SendImage(path string) error {
	if !s.st.Running() {
		return ErrNotRunning
	}

	staged, err := s.area.StageFile(path)
	if err != nil {
		return fmt.Errorf("stage image: %w", err)
	}

	return s.send(fmt.Sprintf("--image %s", filepath.ToSlash(staged)))
}

// SendFolder stages every supported image directly under path into a
// fresh scratch folder and asks the worker to process the batch.
func (s *Server) SendFolder(path string) error {
	if !s.st.Running() {
		return ErrNotRunning
	}

	staged, count, err := s.area.StageFolder(path)
	if err != nil {
		return fmt.Errorf("stage folder: %w", err)
	}
	s.log.Info().Int("images", count).Str("folder", path).Msg("folder staged")

	return s.send(fmt.Sprintf("--folder %s", filepath.ToSlash(staged)))
}

// send writes one command line to the worker's stdin. The request id
// only correlates log lines; the wire protocol itself carries no id.
func (s *Server) send(command string) error {
	s.mu.Lock()
	stdin := s.stdin
	s.mu.Unlock()
	if stdin == nil {
		return ErrNotRunning
	}

	s.log.Debug().
		Str("request_id", uuid.NewString()).
		Str("command", command).
		Msg("dispatching command")

	if err := writeLine(stdin, command); err != nil {
		return fmt.Errorf("write command: %w", err)
	}

	s.st.setProcessing(true)
	return nil
}

// writeLine appends the newline the worker's readline loop expects.
// Pipe writes are unbuffered, so this is also the flush.
func writeLine(w io.Writer, line string) error {
	_, err := fmt.Fprintln(w, line)
	return err
}
