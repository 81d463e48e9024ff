package models

import "time"

// Checkpoint is one durable snapshot of pipeline state, written after each
// completed stage.
type Checkpoint struct {
	RunID         string         `json:"run_id"`
	CompletedStep string         `json:"completed_step"`
	CreatedAt     time.Time      `json:"created_at"`
	Sequence      int            `json:"sequence,omitempty"`
	State         *PipelineState `json:"state"`
}

// NewCheckpoint builds a checkpoint for the given state and stage. Sequence
// copies the state's save counter; the caller advances it.
func NewCheckpoint(state *PipelineState, completedStep string) *Checkpoint {
	return &Checkpoint{
		RunID:         state.RunID,
		CompletedStep: completedStep,
		CreatedAt:     time.Now().UTC(),
		Sequence:      state.CheckpointSeq,
		State:         state,
	}
}
