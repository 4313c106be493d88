package entities

import (
	"math"
	"time"
)

// Job represents a named unit of work: an ordered instruction list run with
// a uniform delay before every instruction
type Job struct {
	name         string
	enabled      bool
	delay        time.Duration
	instructions []Instruction
}

// NewJob creates a job with an empty instruction list
func NewJob(name string, enabled bool, delay time.Duration) (*Job, error) {
	if delay < 0 {
		return nil, &ConfigError{Delay: delay}
	}
	return &Job{name: name, enabled: enabled, delay: delay}, nil
}

// MaxDelaySeconds is the largest delay in seconds a time.Duration can hold
const MaxDelaySeconds = int64(math.MaxInt64 / int64(time.Second))

// DelayFromSeconds converts a delay given in whole seconds, rejecting values
// that are negative or do not fit in a time.Duration
func DelayFromSeconds(seconds int64) (time.Duration, error) {
	if seconds < 0 || seconds > MaxDelaySeconds {
		return 0, &ConfigError{Seconds: seconds}
	}
	return time.Duration(seconds) * time.Second, nil
}

// Push appends an instruction, preserving source order
func (j *Job) Push(inst Instruction) {
	j.instructions = append(j.instructions, inst)
}

func (j *Job) Name() string         { return j.name }
func (j *Job) Enabled() bool        { return j.enabled }
func (j *Job) Delay() time.Duration { return j.delay }

// Instructions returns a copy of the instruction list in execution order
func (j *Job) Instructions() []Instruction {
	out := make([]Instruction, len(j.instructions))
	copy(out, j.instructions)
	return out
}

// Len returns the number of instructions
func (j *Job) Len() int { return len(j.instructions) }

// JobStatus represents the outcome state of a job in a run
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusSkipped   JobStatus = "skipped"
	JobStatusCanceled  JobStatus = "canceled"
)
