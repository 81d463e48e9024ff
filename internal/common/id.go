package common

import (
	"github.com/google/uuid"
)

// NewRunID generates a unique pipeline run ID with the "run_" prefix
// Format: run_<uuid>
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// NewCompanyID generates a unique company ID with the "comp_" prefix
// Format: comp_<uuid>
func NewCompanyID() string {
	return "comp_" + uuid.New().String()
}

// NewRawJobID generates a unique raw-job ID with the "rawjob_" prefix
// Format: rawjob_<uuid>
func NewRawJobID() string {
	return "rawjob_" + uuid.New().String()
}

// NewJobID generates a unique normalized-job ID with the "job_" prefix
// Format: job_<uuid>
func NewJobID() string {
	return "job_" + uuid.New().String()
}
