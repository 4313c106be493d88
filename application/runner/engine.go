package runner

import (
	"context"
	"fmt"
	"time"

	"workflow_automation/domain/entities"
	"workflow_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// EngineOptions tunes instruction interpretation
type EngineOptions struct {
	// FailOnStaleLocate makes a @loc miss clear the located element, so a
	// following @send or @click fails instead of acting on an earlier element.
	// Off by default: a miss keeps the previous element.
	FailOnStaleLocate bool
}

// Engine interprets the instructions of one job against a browser
type Engine struct {
	logger *logrus.Logger
	opts   EngineOptions
	wait   func(ctx context.Context, d time.Duration) error
}

// execContext is the state threaded from one instruction to the next
type execContext struct {
	element interfaces.Element
	located bool
}

// NewEngine - creates new execution engine
func NewEngine(logger *logrus.Logger, opts EngineOptions) *Engine {
	return &Engine{
		logger: logger,
		opts:   opts,
		wait:   sleepContext,
	}
}

// RunJob - executes the job's instructions in order. Enabled state is not
// checked here, callers skip disabled jobs. Every failure is fatal to this
// job only.
func (e *Engine) RunJob(ctx context.Context, job *entities.Job, browser interfaces.BrowserControl) entities.JobOutcome {
	insts := job.Instructions()
	outcome := entities.JobOutcome{
		Job:       job.Name(),
		Status:    entities.JobStatusPending,
		Total:     len(insts),
		StartedAt: time.Now(),
	}
	log := e.logger.WithField("job", job.Name())
	log.Infof("Running job (%d instructions, delay %s)", len(insts), job.Delay())

	var ec execContext
	for i, inst := range insts {
		if err := ctx.Err(); err != nil {
			return e.cancel(log, outcome, err)
		}
		if job.Delay() > 0 {
			if err := e.wait(ctx, job.Delay()); err != nil {
				return e.cancel(log, outcome, err)
			}
		}

		next, err := e.step(ctx, log.WithField("inst", i+1), browser, inst, ec)
		if err != nil {
			execErr := &entities.ExecutionError{Job: job.Name(), Index: i, Line: inst.RawText(), Err: err}
			log.Errorf("Job failed: %v", execErr)
			outcome.Status = entities.JobStatusFailed
			outcome.Err = execErr
			outcome.Error = execErr.Error()
			outcome.FinishedAt = time.Now()
			return outcome
		}
		ec = next
		outcome.Executed++
	}

	outcome.Status = entities.JobStatusCompleted
	outcome.FinishedAt = time.Now()
	log.Infof("Job completed in %s", outcome.FinishedAt.Sub(outcome.StartedAt).Round(time.Millisecond))
	return outcome
}

// step interprets a single instruction and returns the context for the next one
func (e *Engine) step(ctx context.Context, log *logrus.Entry, browser interfaces.BrowserControl, inst entities.Instruction, ec execContext) (execContext, error) {
	switch inst.Kind() {
	case entities.InstructionLocate:
		element, found := browser.Find(ctx, inst.Argument())
		if found {
			log.Debugf("Located: %s", inst.Argument())
			return execContext{element: element, located: true}, nil
		}
		if e.opts.FailOnStaleLocate {
			log.Warnf("Element not found: %s (located element cleared)", inst.Argument())
			return execContext{}, nil
		}
		if ec.located {
			log.Warnf("Element not found: %s (keeping previously located element)", inst.Argument())
		} else {
			log.Warnf("Element not found: %s", inst.Argument())
		}
		return ec, nil

	case entities.InstructionSendText:
		if !ec.located {
			return ec, entities.ErrNoCurrentElement
		}
		log.Debugf("Sending text (%d chars)", len(inst.Argument()))
		if err := browser.SendText(ctx, ec.element, inst.Argument()); err != nil {
			return ec, fmt.Errorf("%w: send text: %w", entities.ErrBrowserCallFailed, err)
		}
		return ec, nil

	case entities.InstructionClick:
		if !ec.located {
			return ec, entities.ErrNoCurrentElement
		}
		log.Debug("Clicking located element")
		if err := browser.Click(ctx, ec.element); err != nil {
			return ec, fmt.Errorf("%w: click: %w", entities.ErrBrowserCallFailed, err)
		}
		return ec, nil

	case entities.InstructionLoopStart, entities.InstructionLoopEnd:
		// TODO: loop scoping needs a product decision on repeat count vs condition; until then both are no-ops.
		log.Debugf("%s is not supported yet, ignoring", inst.Kind())
		return ec, nil
	}

	return ec, fmt.Errorf("unhandled instruction kind %d", inst.Kind())
}

func (e *Engine) cancel(log *logrus.Entry, outcome entities.JobOutcome, err error) entities.JobOutcome {
	log.Warnf("Job canceled after %d of %d instructions: %v", outcome.Executed, outcome.Total, err)
	outcome.Status = entities.JobStatusCanceled
	outcome.Err = fmt.Errorf("job %q canceled: %w", outcome.Job, err)
	outcome.Error = outcome.Err.Error()
	outcome.FinishedAt = time.Now()
	return outcome
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
