package server

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

const scriptRelPath = "scripts/detect_trt_server.py"

var (
	weightExts = []string{".engine", ".onnx"}
	labelExts  = []string{".yaml", ".yml"}
)

// LocateRuntime returns the bundled Python interpreter under the
// application base directory, erroring when the bundle is missing.
func LocateRuntime(base string) (string, error) {
	rel := "runtime/python/bin/python3"
	if runtime.GOOS == "windows" {
		rel = "runtime/python/python.exe"
	}

	path := filepath.Join(base, filepath.FromSlash(rel))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("python runtime not found at %q: %w", path, err)
	}
	return path, nil
}

// LocateScript returns the detection server script under the
// application base directory.
func LocateScript(base string) (string, error) {
	path := filepath.Join(base, filepath.FromSlash(scriptRelPath))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("detection script not found at %q: %w", path, err)
	}
	return path, nil
}

// FindModels scans the models directory for a weights file and a label
// file. TensorRT engines are preferred over ONNX exports when both are
// present.
func FindModels(dir string) (engine, labels string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("models directory %q: %w", dir, err)
	}

	var weights []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))

		switch {
		case slices.Contains(weightExts, ext):
			weights = append(weights, filepath.Join(dir, name))
		case slices.Contains(labelExts, ext) && labels == "":
			labels = filepath.Join(dir, name)
		}
	}

	for _, ext := range weightExts {
		for _, w := range weights {
			if strings.EqualFold(filepath.Ext(w), ext) {
				engine = w
				break
			}
		}
		if engine != "" {
			break
		}
	}

	if engine == "" {
		return "", "", fmt.Errorf("no model weights (%s) in %q", strings.Join(weightExts, ", "), dir)
	}
	if labels == "" {
		return "", "", fmt.Errorf("no label file (%s) in %q", strings.Join(labelExts, ", "), dir)
	}
	return engine, labels, nil
}
