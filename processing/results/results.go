package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"petris/internal/models"
	"petris/processing/staging"
)

// Root is the fixed directory the worker writes results under,
// relative to the application base directory.
const Root = "Detections"

// csvName is the per-project detection log the worker appends to.
const csvName = "detections.csv"

// Dir returns the result directory for a project.
func Dir(base, project string) string {
	return filepath.Join(base, Root, project)
}

// ImagePath resolves the annotated output image for an input file.
// The worker names outputs after their inputs, so the original
// (pre-staging) filename is the lookup key.
func ImagePath(base, project, inputName string) (string, error) {
	path := filepath.Join(Dir(base, project), filepath.Base(inputName))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no result for %q in project %q: %w", inputName, project, err)
	}
	return path, nil
}

// List returns every annotated image in a project's result directory,
// sorted by name.
func List(base, project string) ([]string, error) {
	dir := Dir(base, project)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("result directory %q: %w", dir, err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() || !staging.IsImage(entry.Name()) {
			continue
		}
		images = append(images, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(images)
	return images, nil
}

// LoadCSV parses the project's detections.csv. Each row starts with
// image, class, confidence, x, y, width, height; trailing columns
// (normalized YOLO coordinates) are ignored. Short or malformed rows
// are skipped rather than failing the whole file, since the worker
// appends rows while we may be reading.
func LoadCSV(base, project string) ([]models.Detection, error) {
	path := filepath.Join(Dir(base, project), csvName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("detections log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}

	detections := make([]models.Detection, 0, len(rows))
	for _, row := range rows {
		if len(row) < 7 {
			continue
		}

		conf, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			continue
		}
		box, ok := parseBox(row[3:7])
		if !ok {
			continue
		}

		detections = append(detections, models.Detection{
			Image:      row[0],
			Class:      row[1],
			Confidence: conf,
			Box:        box,
		})
	}
	return detections, nil
}

func parseBox(fields []string) (models.Box, bool) {
	vals := make([]int, len(fields))
	for i, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return models.Box{}, false
		}
		vals[i] = v
	}
	return models.Box{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, true
}
