// Package checkpoint persists pipeline state snapshots between stages so an
// interrupted run can resume where it stopped.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/models"
)

// Store writes one JSON file per completed stage, named
// {run_id}--{stage}.json inside the configured directory.
type Store struct {
	dir    string
	logger arbor.ILogger
}

// NewStore creates a checkpoint store rooted at dir.
func NewStore(dir string, logger arbor.ILogger) *Store {
	return &Store{
		dir:    dir,
		logger: logger,
	}
}

// Save writes a checkpoint for the completed stage and returns the file
// path. Failures wrap as CheckpointError, which the pipeline treats as
// fatal.
func (s *Store) Save(state *models.PipelineState, completedStep string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", &models.CheckpointError{Path: s.dir, Err: err}
	}

	state.CheckpointSeq++
	cp := models.NewCheckpoint(state, completedStep)

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return "", &models.CheckpointError{Path: s.dir, Err: err}
	}

	// Write-then-rename so a crash mid-write never leaves a truncated
	// checkpoint where a good one stood.
	path := filepath.Join(s.dir, fmt.Sprintf("%s--%s.json", state.RunID, completedStep))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", &models.CheckpointError{Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", &models.CheckpointError{Path: path, Err: err}
	}

	s.logger.Debug().
		Str("run_id", state.RunID).
		Str("completed_step", completedStep).
		Str("path", path).
		Msg("Checkpoint saved")

	return path, nil
}

// LoadLatest returns the most recent checkpoint for a run, by save sequence
// number. Stage order is not monotonic across refill iterations (a later
// iteration's find_companies outranks an earlier iteration's score_jobs), so
// file metadata alone cannot order checkpoints; files written before
// sequence numbers existed fall back to mtime, then stage order. Returns nil
// when the directory does not exist or holds no checkpoint for the run. A
// file that exists but does not parse is corrupt and returns CheckpointError
// rather than being skipped.
func (s *Store) LoadLatest(runID string) (*models.Checkpoint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &models.CheckpointError{Path: s.dir, Err: err}
	}

	prefix := runID + "--"

	var newest *models.Checkpoint
	var newestPath string
	var newestTime time.Time
	newestRank := -1
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &models.CheckpointError{Path: path, Err: err}
		}
		var cp models.Checkpoint
		if err := json.Unmarshal(data, &cp); err != nil {
			return nil, &models.CheckpointError{Path: path, Err: err}
		}
		if cp.State == nil {
			return nil, &models.CheckpointError{Path: path, Err: fmt.Errorf("checkpoint has no state")}
		}

		rank := models.StageIndex(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json"))
		newer := newest == nil ||
			cp.Sequence > newest.Sequence ||
			(cp.Sequence == newest.Sequence && (info.ModTime().After(newestTime) ||
				(info.ModTime().Equal(newestTime) && rank > newestRank)))
		if newer {
			newest = &cp
			newestPath = path
			newestTime = info.ModTime()
			newestRank = rank
		}
	}

	if newest == nil {
		return nil, nil
	}

	s.logger.Info().
		Str("run_id", runID).
		Str("completed_step", newest.CompletedStep).
		Str("path", newestPath).
		Msg("Checkpoint loaded")

	return newest, nil
}
