package entities

// Workflow is the loaded document: a display name plus jobs in source order.
// It is read-only once loaded.
type Workflow struct {
	Name string
	Jobs []*Job
}

// EnabledJobs returns the jobs switched on, in source order
func (w *Workflow) EnabledJobs() []*Job {
	jobs := make([]*Job, 0, len(w.Jobs))
	for _, job := range w.Jobs {
		if job.Enabled() {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

// Job returns the first job with the given name
func (w *Workflow) Job(name string) (*Job, bool) {
	for _, job := range w.Jobs {
		if job.Name() == name {
			return job, true
		}
	}
	return nil, false
}
