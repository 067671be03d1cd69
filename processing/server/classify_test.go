package server

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		line string
		kind ErrorKind
	}{
		{"ModuleNotFoundError: No module named 'cv2'", ErrorImport},
		{"ImportError: cannot import name 'trt'", ErrorImport},
		{"SyntaxError: invalid syntax", ErrorSyntax},
		{"IndentationError: unexpected indent", ErrorSyntax},
		{"FileNotFoundError: [Errno 2] No such file", ErrorFile},
		{"PermissionError: [Errno 13] Permission denied", ErrorPermission},
		{"RuntimeError: CUDA out of memory", ErrorRuntime},
		{"ValueError: could not broadcast", ErrorValue},
		{"Traceback (most recent call last):", ErrorTraceback},
		{"Exception in thread Thread-1", ErrorException},
		{"something totally unexpected", ErrorGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			assert.Equal(t, tc.kind, classifyError(tc.line))
		})
	}
}

func TestClassifyErrorPreservesDetail(t *testing.T) {
	line := "ModuleNotFoundError: No module named 'cv2'"

	area := newTestArea(t)
	srv := New(area, testLogger())
	srv.emit(Event{Kind: EventError, Error: classifyError(line), Line: line})

	ev := <-srv.Events()
	assert.Equal(t, EventError, ev.Kind)
	assert.Equal(t, ErrorImport, ev.Error)
	assert.Equal(t, line, ev.Line)
}

func TestParseProgress(t *testing.T) {
	done, total, ok := parseProgress("Processing 3/12 images")
	require.True(t, ok)
	assert.Equal(t, 3, done)
	assert.Equal(t, 12, total)

	_, _, ok = parseProgress("Loading TensorRT engine")
	assert.False(t, ok)
}

func TestScanWorkerLines(t *testing.T) {
	input := "Loading engine\r\nProcessing 1/2 images\rProcessing 2/2 images\n> "

	sc := bufio.NewScanner(strings.NewReader(input))
	sc.Split(scanWorkerLines)

	var tokens []string
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		tokens = append(tokens, sc.Text())
	}

	require.NoError(t, sc.Err())
	assert.Equal(t, []string{
		"Loading engine",
		"Processing 1/2 images",
		"Processing 2/2 images",
		"> ",
	}, tokens)
}
