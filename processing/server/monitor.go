package server

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// promptMarker is what the worker's interactive loop prints when it is
// idle and waiting for the next command.
const promptMarker = "> "

// EventKind tells how an output line was classified.
type EventKind int

const (
	EventLine EventKind = iota
	EventProgress
	EventError
	EventExit
)

// Event is one classified line from the worker, or its exit.
type Event struct {
	Kind  EventKind
	Error ErrorKind // set when Kind == EventError
	Line  string
	Done  int // batch progress, set when Kind == EventProgress
	Total int
}

// scanWorkerLines splits worker output into lines. Besides '\n' it
// also splits on '\r' (the worker rewrites its progress line with bare
// carriage returns) and emits the interactive prompt even though it is
// printed without a trailing newline.
func scanWorkerLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if bytes.Equal(data, []byte(promptMarker)) {
		return len(data), data, nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// watchOutput consumes the worker's stdout until the pipe closes.
// Seeing the prompt means the worker is idle: the model is loaded and
// whatever command was last written has been processed.
func (s *Server) watchOutput(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Split(scanWorkerLines)

	for sc.Scan() {
		line := sc.Text()
		if strings.Contains(line, promptMarker) {
			s.sawPrompt()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		if done, total, ok := parseProgress(line); ok {
			s.emit(Event{Kind: EventProgress, Line: line, Done: done, Total: total})
			continue
		}

		s.log.Debug().Str("stream", "stdout").Msg(line)
		s.emit(Event{Kind: EventLine, Line: line})
	}
}

// watchErrors consumes the worker's stderr until the pipe closes.
// Every non-empty line becomes an error event, classified by marker.
func (s *Server) watchErrors(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Split(scanWorkerLines)

	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		kind := classifyError(line)
		s.log.Warn().Str("stream", "stderr").Str("kind", string(kind)).Msg(line)
		s.emit(Event{Kind: EventError, Error: kind, Line: line})
	}
}

func (s *Server) sawPrompt() {
	s.st.setReady(true)
	if s.st.Processing() {
		s.st.setProcessing(false)
	}
}

// parseProgress recognizes the worker's batch progress line of the
// form "Processing 3/12 images".
func parseProgress(line string) (done, total int, ok bool) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(line, promptMarker))
	if _, err := fmt.Sscanf(trimmed, "Processing %d/%d images", &done, &total); err != nil {
		return 0, 0, false
	}
	return done, total, true
}

// emit hands an event to the UI without ever blocking the reader
// goroutines. Plain output lines may be dropped when the buffer is
// full; error and progress events displace the oldest entry instead.
func (s *Server) emit(ev Event) {
	select {
	case s.events <- ev:
		return
	default:
	}

	if ev.Kind == EventLine {
		return
	}

	select {
	case <-s.events:
	default:
	}
	select {
	case s.events <- ev:
	default:
	}
}
