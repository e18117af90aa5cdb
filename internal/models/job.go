// Package models defines data structures for the Loreline content pipeline.
package models

import (
	"encoding/json"
	"time"
)

// JobStatus is the lifecycle state of an asynchronous processing job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusComplete   JobStatus = "complete"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether the status permits no further transitions.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusComplete || s == JobStatusFailed
}

// Job tracks one asynchronous processing request through the pipeline.
// Status only advances pending → processing → {complete, failed}; a job in a
// terminal state is immutable.
type Job struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId"`
	SourceRef string          `json:"sourceRef"`
	Status    JobStatus       `json:"status"`
	Progress  int             `json:"progress"` // 0..100
	Stage     string          `json:"stage"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// JobUpdate carries partial job fields; nil fields are left untouched.
// Updates merge last-write-wins with no concurrency check.
type JobUpdate struct {
	Status   *JobStatus
	Progress *int
	Stage    *string
	Result   json.RawMessage
	Error    *string
}

// Clone returns a deep copy so callers can't mutate stored state.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	clone := *j
	clone.Result = append(json.RawMessage(nil), j.Result...)
	return &clone
}

// Apply merges the non-nil fields of u into the job and bumps UpdatedAt.
func (j *Job) Apply(u JobUpdate, now time.Time) {
	if u.Status != nil {
		j.Status = *u.Status
	}
	if u.Progress != nil {
		j.Progress = *u.Progress
	}
	if u.Stage != nil {
		j.Stage = *u.Stage
	}
	if u.Result != nil {
		j.Result = append(json.RawMessage(nil), u.Result...)
	}
	if u.Error != nil {
		j.Error = *u.Error
	}
	j.UpdatedAt = now
}
