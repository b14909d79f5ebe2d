package job

import (
	"context"
	"encoding/json"
	"time"
)

// JobType represents the kind of job
type JobType string

const (
	JobReflow JobType = "reflow"
)

// JobStatus represents the current state of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Job represents a queued subtitle reflow task
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	FilePath    string          `json:"file_path"`
	Params      json.RawMessage `json:"params"`
	Progress    float64         `json:"progress"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// ReflowParams are parameters for a reflow job. Zero values fall back to
// the configured defaults.
type ReflowParams struct {
	Engine       string `json:"engine"`        // "youdao", "deepl", "openai", "gemini"
	SourceLang   string `json:"source_lang"`   // "en", "ja", "auto", etc.
	TargetLang   string `json:"target_lang"`   // "zh", "ko", etc.
	Preset       string `json:"preset"`        // "anime", "movie", "documentary", "custom"
	CustomPrompt string `json:"custom_prompt"` // for "custom" preset
	MaxLineWidth int    `json:"max_line_width"`
	KeepLeftover bool   `json:"keep_leftover"`
}

// ReflowResult is the output of a successful reflow
type ReflowResult struct {
	OutputPath       string  `json:"output_path"` // relative path to the written SRT
	Sentences        int     `json:"sentences"`
	Cues             int     `json:"cues"`
	Dropped          int     `json:"dropped"`
	SkippedTimelines int     `json:"skipped_timelines"`
	Duration         float64 `json:"duration"` // processing time in seconds
}

// DecodeParams unmarshals the job parameters into v.
func (j *Job) DecodeParams(v interface{}) error {
	return json.Unmarshal(j.Params, v)
}

// JobHandler processes a job and returns a JSON-serialisable result.
type JobHandler func(ctx context.Context, job *Job, updateProgress func(float64)) (interface{}, error)
