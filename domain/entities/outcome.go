package entities

import "time"

// JobOutcome is the result of one job within a run
type JobOutcome struct {
	Job        string    `json:"job" yaml:"job"`
	Status     JobStatus `json:"status" yaml:"status"`
	Executed   int       `json:"executed" yaml:"executed"`
	Total      int       `json:"total" yaml:"total"`
	Reason     string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`

	Err error `json:"-" yaml:"-"`
}

// Failed reports whether the job ended on an execution error or cancellation
func (o JobOutcome) Failed() bool {
	return o.Status == JobStatusFailed || o.Status == JobStatusCanceled
}

// RunReport summarizes one run of a workflow document
type RunReport struct {
	ID         string       `json:"id" yaml:"id"`
	Workflow   string       `json:"workflow" yaml:"workflow"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
	Jobs       []JobOutcome `json:"jobs" yaml:"jobs"`
	CloseError string       `json:"close_error,omitempty" yaml:"close_error,omitempty"`
}

// Failed reports whether any job in the run failed
func (r RunReport) Failed() bool {
	for _, job := range r.Jobs {
		if job.Failed() {
			return true
		}
	}
	return false
}

// Count returns how many jobs ended with the given status
func (r RunReport) Count(status JobStatus) int {
	n := 0
	for _, job := range r.Jobs {
		if job.Status == status {
			n++
		}
	}
	return n
}
