package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// batchDir is the scratch subdirectory rebuilt for every folder run.
const batchDir = "batch"

// imageExts lists the extensions the worker accepts. Matching is
// case-insensitive: the reference behavior skipped .JPG files on
// case-sensitive filesystems, which we treat as a bug, not a contract.
var imageExts = []string{".jpg", ".jpeg", ".png", ".bmp"}

// ErrNoImages is returned when a staged folder contains no supported
// image files.
var ErrNoImages = errors.New("no supported image files in folder")

// Area is a private scratch directory that user-selected inputs are
// copied into before their paths are handed to the worker. It keeps
// the worker's filename assumptions away from arbitrary user paths
// and lets the same input be re-run safely.
type Area struct {
	root string
	log  zerolog.Logger
}

func NewArea(root string, log zerolog.Logger) *Area {
	return &Area{root: root, log: log}
}

// Root returns the staging root directory.
func (a *Area) Root() string { return a.root }

// StageFile copies src into the staging root under its original
// filename, overwriting any previous copy. The worker names its output
// after the input file, so the name must be preserved exactly.
func (a *Area) StageFile(src string) (string, error) {
	if err := os.MkdirAll(a.root, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	dst := filepath.Join(a.root, filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// StageFolder rebuilds the batch scratch directory and copies every
// supported image directly under src into it. Subdirectories are not
// descended into. Returns the scratch path and how many files were
// copied; zero matches is an error and leaves no command-worthy state.
func (a *Area) StageFolder(src string) (string, int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", 0, fmt.Errorf("source folder: %w", err)
	}
	if !info.IsDir() {
		return "", 0, fmt.Errorf("source %q is not a directory", src)
	}

	scratch := filepath.Join(a.root, batchDir)
	if err := os.RemoveAll(scratch); err != nil {
		return "", 0, fmt.Errorf("clear scratch dir: %w", err)
	}
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return "", 0, fmt.Errorf("create scratch dir: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return "", 0, fmt.Errorf("read source folder: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(scratch, entry.Name())
		if err := copyFile(from, to); err != nil {
			return "", 0, err
		}
		count++
	}

	if count == 0 {
		return "", 0, ErrNoImages
	}
	return scratch, count, nil
}

// Cleanup removes the entire staging tree. Best-effort: failures are
// logged and never surfaced, and repeated calls are no-ops.
func (a *Area) Cleanup() {
	if err := os.RemoveAll(a.root); err != nil {
		a.log.Warn().Err(err).Str("root", a.root).Msg("staging cleanup incomplete")
	}
}

// IsImage reports whether name has a supported image extension.
func IsImage(name string) bool {
	ext := filepath.Ext(name)
	for _, supported := range imageExts {
		if strings.EqualFold(ext, supported) {
			return true
		}
	}
	return false
}

// copyFile copies src to dst and syncs the destination so the staged
// copy is fully on disk before its path is sent to the worker.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %q: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %q: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %q: %w", dst, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync %q: %w", dst, err)
	}
	return out.Close()
}
