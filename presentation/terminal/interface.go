package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"workflow_automation/application/runner"
	"workflow_automation/domain/entities"
	"workflow_automation/domain/interfaces"
	"workflow_automation/infrastructure/browser"
	"workflow_automation/infrastructure/config"
	"workflow_automation/infrastructure/security"
	"workflow_automation/infrastructure/storage"
	"workflow_automation/infrastructure/workflow"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ErrRunFailed is returned when at least one job of a run failed
var ErrRunFailed = errors.New("workflow run failed")

// SessionFactory opens the browser a run drives
type SessionFactory func(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (interfaces.BrowserSession, error)

type TerminalInterface struct {
	cfg        *config.Config
	logger     *logrus.Logger
	out        io.Writer
	newSession SessionFactory
	history    interfaces.RunHistory
}

// NewTerminalInterface - loads configuration and sets up logging
func NewTerminalInterface() (*TerminalInterface, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return &TerminalInterface{
		cfg:        cfg,
		logger:     cfg.NewLogger(),
		out:        os.Stdout,
		newSession: browser.NewSession,
	}, nil
}

// Command builds the root command with run, validate and history
func (t *TerminalInterface) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "workflow_automation",
		Short:         "Run declarative browser workflows",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(t.out)
	root.AddCommand(t.runCommand(), t.validateCommand(), t.historyCommand())
	return root
}

// Execute - runs the command line with the given arguments
func (t *TerminalInterface) Execute(args []string) error {
	root := t.Command()
	root.SetArgs(args)
	return root.Execute()
}

func (t *TerminalInterface) runCommand() *cobra.Command {
	var jobs []string

	cmd := &cobra.Command{
		Use:   "run <workflow.yaml>",
		Short: "Load a workflow and run its enabled jobs",
		Long: `Load a workflow document and run every enabled job in order on one browser session.

Example workflow:
  name: portal
  jobs:
    - name: login
      enable: "on"
      sleep: 1
      insts:
        - "@loc //input[@id='account']"
        - "@send admin"
        - "@loc //button[@type='submit']"
        - "@click"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.run(cmd.Context(), args[0], jobs)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&t.cfg.Driver, "driver", t.cfg.Driver, "Browser driver: selenium or playwright")
	flags.StringVar(&t.cfg.WebDriverURL, "webdriver-url", t.cfg.WebDriverURL, "WebDriver endpoint to attach to")
	flags.StringVar(&t.cfg.StartURL, "url", t.cfg.StartURL, "Page to open before the first job")
	flags.BoolVar(&t.cfg.Headless, "headless", t.cfg.Headless, "Run the browser without a window")
	flags.BoolVar(&t.cfg.ContinueOnError, "continue-on-error", t.cfg.ContinueOnError, "Keep running later jobs after a job fails")
	flags.BoolVar(&t.cfg.FailOnStaleLocate, "fail-on-stale-locate", t.cfg.FailOnStaleLocate, "Fail @send/@click after a @loc that found nothing instead of reusing the previous element")
	flags.DurationVar(&t.cfg.HoldOpen, "hold-open", t.cfg.HoldOpen, "Keep the browser open this long after the last job")
	flags.StringSliceVar(&jobs, "job", nil, "Only run the named jobs (repeatable)")
	return cmd
}

func (t *TerminalInterface) run(ctx context.Context, path string, jobs []string) error {
	if err := t.cfg.Validate(); err != nil {
		return err
	}

	// loading errors stop the run before any browser is started
	wf, err := workflow.LoadFile(path)
	if err != nil {
		return err
	}
	for _, name := range jobs {
		if _, ok := wf.Job(name); !ok {
			return fmt.Errorf("workflow %q has no job named %q", wf.Name, name)
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	history, err := t.runHistory()
	if err != nil {
		t.logger.Warnf("Run history disabled: %v", err)
	}
	defer t.closeHistory()

	session, err := t.newSession(ctx, t.cfg, t.logger)
	if err != nil {
		return err
	}

	engine := runner.NewEngine(t.logger, runner.EngineOptions{FailOnStaleLocate: t.cfg.FailOnStaleLocate})
	r := runner.NewRunner(engine, security.NewSecurityLayer(t.logger), history, t.logger, runner.Options{
		ContinueOnError: t.cfg.ContinueOnError,
		HoldOpen:        t.cfg.HoldOpen,
		Jobs:            jobs,
	})

	report := r.Run(ctx, wf, session)
	t.printReport(report)

	if report.Failed() {
		return ErrRunFailed
	}
	return nil
}

func (t *TerminalInterface) validateCommand() *cobra.Command {
	var canonical bool

	cmd := &cobra.Command{
		Use:   "validate <workflow.yaml>",
		Short: "Load a workflow and print its jobs without starting a browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := workflow.LoadFile(args[0])
			if err != nil {
				return err
			}

			if canonical {
				data, err := workflow.Marshal(wf)
				if err != nil {
					return err
				}
				_, err = t.out.Write(data)
				return err
			}

			auditor := security.NewSecurityLayer(t.logger)
			summary := workflowSummary{Name: wf.Name}
			for _, job := range wf.Jobs {
				js := jobSummary{
					Name:         job.Name(),
					Enabled:      job.Enabled(),
					Delay:        job.Delay().String(),
					Instructions: job.Len(),
				}
				if job.Enabled() {
					js.Findings = auditor.AuditJob(job)
				}
				summary.Jobs = append(summary.Jobs, js)
			}
			return t.printYAML(summary)
		},
	}
	cmd.Flags().BoolVar(&canonical, "canonical", false, "Print the normalized workflow document instead of a summary")
	return cmd
}

func (t *TerminalInterface) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List reports of previous runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := t.runHistory()
			if err != nil {
				return err
			}
			if history == nil {
				return fmt.Errorf("run history is disabled (HISTORY_BACKEND=%s)", t.cfg.HistoryBackend)
			}
			defer t.closeHistory()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			reports, err := history.ListReports(ctx, limit)
			if err != nil {
				return err
			}
			return t.printYAML(reports)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of reports to show, 0 for all")
	return cmd
}

// runHistory - opens the configured history backend, nil when disabled
func (t *TerminalInterface) runHistory() (interfaces.RunHistory, error) {
	if t.history != nil {
		return t.history, nil
	}

	var err error
	switch t.cfg.HistoryBackend {
	case config.HistoryFile:
		t.history, err = storage.NewFileHistory(t.cfg.HistoryPath, t.cfg.HistoryLimit)
	case config.HistoryRedis:
		var store *storage.RedisHistory
		store, err = storage.NewRedisHistory(storage.RedisOptions{
			Addr:       t.cfg.RedisAddr,
			Password:   t.cfg.RedisPassword,
			DB:         t.cfg.RedisDB,
			MaxReports: t.cfg.HistoryLimit,
		})
		if err == nil {
			t.history = store
		}
	}
	if err != nil {
		return nil, err
	}
	return t.history, nil
}

// closeHistory releases the history backend when it holds connections
func (t *TerminalInterface) closeHistory() {
	if closer, ok := t.history.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			t.logger.Warnf("Failed to close run history: %v", err)
		}
	}
	t.history = nil
}

type workflowSummary struct {
	Name string       `yaml:"name"`
	Jobs []jobSummary `yaml:"jobs"`
}

type jobSummary struct {
	Name         string                  `yaml:"name"`
	Enabled      bool                    `yaml:"enabled"`
	Delay        string                  `yaml:"delay"`
	Instructions int                     `yaml:"instructions"`
	Findings     []entities.AuditFinding `yaml:"findings,omitempty"`
}

func (t *TerminalInterface) printReport(report entities.RunReport) {
	fmt.Fprintf(t.out, "\nRun %s (%s)\n", report.ID, report.Workflow)
	for _, job := range report.Jobs {
		switch job.Status {
		case entities.JobStatusCompleted:
			fmt.Fprintf(t.out, "  [ok]      %s (%d/%d)\n", job.Job, job.Executed, job.Total)
		case entities.JobStatusSkipped:
			fmt.Fprintf(t.out, "  [skipped] %s: %s\n", job.Job, job.Reason)
		default:
			fmt.Fprintf(t.out, "  [%s]  %s (%d/%d): %s\n", job.Status, job.Job, job.Executed, job.Total, job.Error)
		}
	}
}

// printYAML serializes v to the command output as YAML
func (t *TerminalInterface) printYAML(v interface{}) error {
	enc := yaml.NewEncoder(t.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
