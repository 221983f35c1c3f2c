package testgames

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/courtlytics/pbp/internal/domain/model"
)

// File permission constants.
const (
	outputFilePermission = 0o600
	outputDirPermission  = 0o750
)

// WriteJobs writes one JSON file per game job into dir, creating it when
// needed. Files are named after the game id and are readable by the batch
// runner as-is.
func WriteJobs(dir string, jobs []model.GameJob) error {
	if err := os.MkdirAll(dir, outputDirPermission); err != nil {
		return fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}
	for i := range jobs {
		data, err := json.MarshalIndent(&jobs[i], "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal game %s: %w", jobs[i].GameID, err)
		}
		path := filepath.Join(dir, jobs[i].GameID+".json")
		if err := os.WriteFile(path, data, outputFilePermission); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// ReadJob parses one game job file produced by WriteJobs (or any ingestion
// adapter emitting the same shape).
func ReadJob(path string) (model.GameJob, error) {
	var job model.GameJob
	data, err := os.ReadFile(path)
	if err != nil {
		return job, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &job); err != nil {
		return job, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return job, nil
}
