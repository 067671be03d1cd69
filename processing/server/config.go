package server

import (
	"fmt"
	"os"
	"strconv"
)

// defaultOutputShape matches the YOLOv5x head the bundled engines were
// exported with.
const defaultOutputShape = "1,100800,15"

// Config is the immutable start-time configuration of one worker
// instance. Every field maps one-to-one onto a command line argument
// of the detection script.
type Config struct {
	Runtime string // interpreter executable
	Script  string // detection server script
	Engine  string // model weights
	Labels  string // class label yaml

	InputHeight int
	InputWidth  int
	ConfThresh  float64
	NMSThresh   float64
	HideLabels  bool
	HideConf    bool
	Project     string // output subdirectory under Detections/

	WorkDir string // working directory for the worker process
}

// Validate checks that every file the worker needs exists before a
// process is launched.
func (c Config) Validate() error {
	checks := []struct {
		what string
		path string
	}{
		{"runtime executable", c.Runtime},
		{"detection script", c.Script},
		{"model weights", c.Engine},
		{"class labels", c.Labels},
	}

	for _, check := range checks {
		if check.path == "" {
			return fmt.Errorf("%s is not configured", check.what)
		}
		if _, err := os.Stat(check.path); err != nil {
			return fmt.Errorf("%s not found at %q: %w", check.what, check.path, err)
		}
	}

	if c.InputHeight <= 0 || c.InputWidth <= 0 {
		return fmt.Errorf("invalid input shape %dx%d", c.InputHeight, c.InputWidth)
	}
	return nil
}

// args builds the worker invocation arguments, script path first.
func (c Config) args() []string {
	a := []string{
		c.Script,
		"--engine", c.Engine,
		"--labels", c.Labels,
		"--input_shape", fmt.Sprintf("1,3,%d,%d", c.InputHeight, c.InputWidth),
		"--output_shape", defaultOutputShape,
		"--conf_thresh", strconv.FormatFloat(c.ConfThresh, 'g', -1, 64),
		"--nms_thresh", strconv.FormatFloat(c.NMSThresh, 'g', -1, 64),
		"--output_dir", c.Project,
	}
	if c.HideLabels {
		a = append(a, "--hide_labels")
	}
	if c.HideConf {
		a = append(a, "--hide_conf")
	}
	return a
}
