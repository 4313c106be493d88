package runner

import (
	"context"
	"sync"
	"time"

	"workflow_automation/domain/entities"
	"workflow_automation/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options controls how a run moves from job to job
type Options struct {
	// ContinueOnError keeps running later jobs after one fails
	ContinueOnError bool
	// HoldOpen keeps the session alive for a while after the last job
	HoldOpen time.Duration
	// Jobs restricts the run to the named jobs. Empty runs every enabled job.
	Jobs []string
}

// Runner runs a workflow document job by job on one browser session
type Runner struct {
	engine  *Engine
	auditor interfaces.InstructionAuditor
	history interfaces.RunHistory
	logger  *logrus.Logger
	opts    Options
}

// NewRunner - creates new runner. auditor and history may be nil.
func NewRunner(engine *Engine, auditor interfaces.InstructionAuditor, history interfaces.RunHistory, logger *logrus.Logger, opts Options) *Runner {
	return &Runner{
		engine:  engine,
		auditor: auditor,
		history: history,
		logger:  logger,
		opts:    opts,
	}
}

// Run executes the workflow and closes the browser exactly once when done,
// whatever the outcome of the individual jobs.
func (r *Runner) Run(ctx context.Context, wf *entities.Workflow, browser interfaces.BrowserControl) entities.RunReport {
	closer := &onceCloser{BrowserControl: browser}

	report := entities.RunReport{
		ID:        uuid.NewString(),
		Workflow:  wf.Name,
		StartedAt: time.Now(),
		Jobs:      make([]entities.JobOutcome, 0, len(wf.Jobs)),
	}
	log := r.logger.WithFields(logrus.Fields{"run": report.ID, "workflow": wf.Name})
	log.Infof("Starting run: %d jobs", len(wf.Jobs))

	r.audit(log, wf)

	var abortedBy string
	for _, job := range wf.Jobs {
		switch {
		case !r.selected(job.Name()):
			report.Jobs = append(report.Jobs, skipped(job, "not selected"))
			continue
		case !job.Enabled():
			log.WithField("job", job.Name()).Info("Job disabled, skipping")
			report.Jobs = append(report.Jobs, skipped(job, "disabled"))
			continue
		case abortedBy != "":
			report.Jobs = append(report.Jobs, skipped(job, "aborted after job "+abortedBy+" failed"))
			continue
		case ctx.Err() != nil:
			report.Jobs = append(report.Jobs, skipped(job, "run canceled"))
			continue
		}

		outcome := r.engine.RunJob(ctx, job, closer)
		report.Jobs = append(report.Jobs, outcome)

		if outcome.Status == entities.JobStatusFailed && !r.opts.ContinueOnError {
			abortedBy = job.Name()
		}
	}

	if r.opts.HoldOpen > 0 && ctx.Err() == nil {
		log.Infof("Holding browser open for %s", r.opts.HoldOpen)
		_ = sleepContext(ctx, r.opts.HoldOpen)
	}

	if err := closer.Close(); err != nil {
		log.Warnf("Failed to close browser: %v", err)
		report.CloseError = err.Error()
	}
	report.FinishedAt = time.Now()

	log.Infof("Run finished: %d completed, %d failed, %d canceled, %d skipped",
		report.Count(entities.JobStatusCompleted),
		report.Count(entities.JobStatusFailed),
		report.Count(entities.JobStatusCanceled),
		report.Count(entities.JobStatusSkipped))

	if r.history != nil {
		// the run context may already be canceled, the report is still worth keeping
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.history.SaveReport(saveCtx, report); err != nil {
			log.Warnf("Failed to save run report: %v", err)
		}
	}

	return report
}

// audit logs risky instructions of the jobs about to run
func (r *Runner) audit(log *logrus.Entry, wf *entities.Workflow) {
	if r.auditor == nil {
		return
	}
	for _, job := range wf.EnabledJobs() {
		if !r.selected(job.Name()) {
			continue
		}
		for _, finding := range r.auditor.AuditJob(job) {
			entry := log.WithFields(logrus.Fields{
				"job":  finding.Job,
				"inst": finding.Index + 1,
				"risk": finding.Risk,
			})
			if finding.Risk == entities.RiskHigh {
				entry.Warnf("%s: %s", finding.Line, finding.Reason)
			} else {
				entry.Debugf("%s: %s", finding.Line, finding.Reason)
			}
		}
	}
}

func (r *Runner) selected(name string) bool {
	if len(r.opts.Jobs) == 0 {
		return true
	}
	for _, n := range r.opts.Jobs {
		if n == name {
			return true
		}
	}
	return false
}

func skipped(job *entities.Job, reason string) entities.JobOutcome {
	return entities.JobOutcome{
		Job:    job.Name(),
		Status: entities.JobStatusSkipped,
		Total:  job.Len(),
		Reason: reason,
	}
}

// onceCloser guards Close so the session is released a single time
type onceCloser struct {
	interfaces.BrowserControl
	once sync.Once
	err  error
}

func (c *onceCloser) Close() error {
	c.once.Do(func() {
		c.err = c.BrowserControl.Close()
	})
	return c.err
}
