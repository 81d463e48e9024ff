package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// runRequest mirrors the run flags as a YAML file, so a standing search can
// live on disk next to the config and be replayed with a single
// -request flag. Explicit flags override request-file values.
type runRequest struct {
	Resume          string  `yaml:"resume"`
	Preferences     string  `yaml:"preferences"`
	PreferencesFile string  `yaml:"preferences_file"`
	RunID           string  `yaml:"run_id"`
	MinJobs         int     `yaml:"min_jobs"`
	MaxCostUSD      float64 `yaml:"max_cost_usd"`
	CompanyLimit    int     `yaml:"company_limit"`
	NoCheckpoint    bool    `yaml:"no_checkpoint"`
	NotifyTo        string  `yaml:"notify_to"`
}

func loadRunRequest(path string) (*runRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file %s: %w", path, err)
	}

	var req runRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request file %s: %w", path, err)
	}
	return &req, nil
}

// preferences resolves the request's inline text or file reference.
func (r *runRequest) preferences() (string, error) {
	if r.Preferences != "" {
		return r.Preferences, nil
	}
	if r.PreferencesFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(r.PreferencesFile)
	if err != nil {
		return "", fmt.Errorf("failed to read preferences file %s: %w", r.PreferencesFile, err)
	}
	return string(data), nil
}
