package runner

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"workflow_automation/domain/entities"
	"workflow_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op       string
	selector string
	element  interfaces.Element
	text     string
}

// fakeBrowser resolves selectors from a fixed map and records every call
type fakeBrowser struct {
	mu       sync.Mutex
	elements map[string]string
	failOn   map[string]error
	calls    []call
	closed   int
	closeErr error
}

func newFakeBrowser(elements map[string]string) *fakeBrowser {
	return &fakeBrowser{elements: elements, failOn: map[string]error{}}
}

func (f *fakeBrowser) Find(ctx context.Context, selector string) (interfaces.Element, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "find", selector: selector})
	el, ok := f.elements[selector]
	if !ok {
		return nil, false
	}
	return el, true
}

func (f *fakeBrowser) SendText(ctx context.Context, element interfaces.Element, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "send", element: element, text: text})
	return f.failOn["send"]
}

func (f *fakeBrowser) Click(ctx context.Context, element interfaces.Element) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "click", element: element})
	return f.failOn["click"]
}

func (f *fakeBrowser) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return f.closeErr
}

func (f *fakeBrowser) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.op)
	}
	return out
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newJob(t *testing.T, name string, enabled bool, delay time.Duration, lines ...string) *entities.Job {
	t.Helper()
	job, err := entities.NewJob(name, enabled, delay)
	require.NoError(t, err)
	for _, line := range lines {
		inst, err := entities.ParseInstruction(line)
		require.NoError(t, err)
		job.Push(inst)
	}
	return job
}

func TestRunJobLogin(t *testing.T) {
	browser := newFakeBrowser(map[string]string{
		"//input[@id='account']":  "account",
		"//input[@id='password']": "password",
		"//button":                "submit",
	})
	job := newJob(t, "login", true, 0,
		"@loc //input[@id='account']",
		"@send admin",
		"@loc //input[@id='password']",
		"@send secret",
		"@loc //button",
		"@click",
	)

	outcome := NewEngine(testLogger(), EngineOptions{}).RunJob(context.Background(), job, browser)

	assert.Equal(t, entities.JobStatusCompleted, outcome.Status)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, 6, outcome.Executed)
	assert.Equal(t, 6, outcome.Total)
	assert.Equal(t, []string{"find", "send", "find", "send", "find", "click"}, browser.ops())
	assert.Equal(t, "account", browser.calls[1].element)
	assert.Equal(t, "admin", browser.calls[1].text)
	assert.Equal(t, "password", browser.calls[3].element)
	assert.Equal(t, "submit", browser.calls[5].element)
}

func TestRunJobSendWithoutLocate(t *testing.T) {
	browser := newFakeBrowser(nil)
	job := newJob(t, "login", true, 0, "@send hi")

	outcome := NewEngine(testLogger(), EngineOptions{}).RunJob(context.Background(), job, browser)

	assert.Equal(t, entities.JobStatusFailed, outcome.Status)
	assert.True(t, errors.Is(outcome.Err, entities.ErrNoCurrentElement))
	assert.Empty(t, browser.ops())
	assert.Zero(t, outcome.Executed)

	var execErr *entities.ExecutionError
	require.ErrorAs(t, outcome.Err, &execErr)
	assert.Equal(t, "login", execErr.Job)
	assert.Equal(t, "@send hi", execErr.Line)
	assert.Equal(t, 0, execErr.Index)
}

func TestRunJobLocateMissThenClick(t *testing.T) {
	browser := newFakeBrowser(nil)
	job := newJob(t, "dismiss", true, 0, "@loc //button", "@click")

	outcome := NewEngine(testLogger(), EngineOptions{}).RunJob(context.Background(), job, browser)

	assert.Equal(t, entities.JobStatusFailed, outcome.Status)
	assert.True(t, errors.Is(outcome.Err, entities.ErrNoCurrentElement))
	assert.Equal(t, []string{"find"}, browser.ops())
	assert.Equal(t, 1, outcome.Executed)
}

func TestRunJobLocateMissKeepsPreviousElement(t *testing.T) {
	browser := newFakeBrowser(map[string]string{"#first": "first"})
	job := newJob(t, "stale", true, 0, "@loc #first", "@loc #missing", "@click")

	outcome := NewEngine(testLogger(), EngineOptions{}).RunJob(context.Background(), job, browser)

	assert.Equal(t, entities.JobStatusCompleted, outcome.Status)
	require.Equal(t, []string{"find", "find", "click"}, browser.ops())
	assert.Equal(t, "first", browser.calls[2].element)
}

func TestRunJobFailOnStaleLocate(t *testing.T) {
	browser := newFakeBrowser(map[string]string{"#first": "first"})
	job := newJob(t, "stale", true, 0, "@loc #first", "@loc #missing", "@click")

	outcome := NewEngine(testLogger(), EngineOptions{FailOnStaleLocate: true}).RunJob(context.Background(), job, browser)

	assert.Equal(t, entities.JobStatusFailed, outcome.Status)
	assert.True(t, errors.Is(outcome.Err, entities.ErrNoCurrentElement))
	assert.Equal(t, []string{"find", "find"}, browser.ops())
	assert.Equal(t, 2, outcome.Executed)
}

func TestRunJobBrowserCallFailed(t *testing.T) {
	cause := errors.New("stale element reference")
	browser := newFakeBrowser(map[string]string{"#go": "go"})
	browser.failOn["click"] = cause
	job := newJob(t, "submit", true, 0, "@loc #go", "@click", "@send never")

	outcome := NewEngine(testLogger(), EngineOptions{}).RunJob(context.Background(), job, browser)

	assert.Equal(t, entities.JobStatusFailed, outcome.Status)
	assert.True(t, errors.Is(outcome.Err, entities.ErrBrowserCallFailed))
	assert.True(t, errors.Is(outcome.Err, cause))
	assert.Equal(t, []string{"find", "click"}, browser.ops())
	assert.Contains(t, outcome.Error, `"submit"`)
	assert.Contains(t, outcome.Error, `"@click"`)
}

func TestRunJobSendFailed(t *testing.T) {
	browser := newFakeBrowser(map[string]string{"#q": "q"})
	browser.failOn["send"] = errors.New("element not interactable")
	job := newJob(t, "search", true, 0, "@loc #q", "@send golang")

	outcome := NewEngine(testLogger(), EngineOptions{}).RunJob(context.Background(), job, browser)

	assert.Equal(t, entities.JobStatusFailed, outcome.Status)
	assert.True(t, errors.Is(outcome.Err, entities.ErrBrowserCallFailed))
	assert.Equal(t, 1, outcome.Executed)
}

func TestRunJobLoopInstructionsAreInert(t *testing.T) {
	browser := newFakeBrowser(map[string]string{"#more": "more"})
	job := newJob(t, "scroll", true, 0, "@loop", "@loc #more", "@click", "@end")

	outcome := NewEngine(testLogger(), EngineOptions{}).RunJob(context.Background(), job, browser)

	assert.Equal(t, entities.JobStatusCompleted, outcome.Status)
	assert.Equal(t, 4, outcome.Executed)
	assert.Equal(t, []string{"find", "click"}, browser.ops())
}

func TestRunJobDelayBeforeEveryInstruction(t *testing.T) {
	browser := newFakeBrowser(map[string]string{"#a": "a"})
	job := newJob(t, "paced", true, 3*time.Second, "@loc #a", "@click", "@end")

	engine := NewEngine(testLogger(), EngineOptions{})
	var waits []time.Duration
	engine.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	outcome := engine.RunJob(context.Background(), job, browser)

	assert.Equal(t, entities.JobStatusCompleted, outcome.Status)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second, 3 * time.Second}, waits)
}

func TestRunJobNoDelayWhenZero(t *testing.T) {
	job := newJob(t, "fast", true, 0, "@loop", "@end")

	engine := NewEngine(testLogger(), EngineOptions{})
	engine.wait = func(ctx context.Context, d time.Duration) error {
		t.Fatalf("unexpected wait of %s", d)
		return nil
	}

	outcome := engine.RunJob(context.Background(), job, newFakeBrowser(nil))
	assert.Equal(t, entities.JobStatusCompleted, outcome.Status)
}

func TestRunJobCanceledDuringDelay(t *testing.T) {
	browser := newFakeBrowser(map[string]string{"#a": "a"})
	job := newJob(t, "slow", true, time.Hour, "@loc #a", "@click")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	outcome := NewEngine(testLogger(), EngineOptions{}).RunJob(ctx, job, browser)

	assert.Less(t, time.Since(start), time.Minute)
	assert.Equal(t, entities.JobStatusCanceled, outcome.Status)
	assert.True(t, errors.Is(outcome.Err, context.DeadlineExceeded))
	assert.Empty(t, browser.ops())
}

func TestRunJobEmpty(t *testing.T) {
	job := newJob(t, "empty", true, time.Second)

	outcome := NewEngine(testLogger(), EngineOptions{}).RunJob(context.Background(), job, newFakeBrowser(nil))
	assert.Equal(t, entities.JobStatusCompleted, outcome.Status)
	assert.Zero(t, outcome.Executed)
}

func TestRunJobContextNotSharedAcrossJobs(t *testing.T) {
	browser := newFakeBrowser(map[string]string{"#a": "a"})
	engine := NewEngine(testLogger(), EngineOptions{})

	first := engine.RunJob(context.Background(), newJob(t, "first", true, 0, "@loc #a"), browser)
	second := engine.RunJob(context.Background(), newJob(t, "second", true, 0, "@click"), browser)

	assert.Equal(t, entities.JobStatusCompleted, first.Status)
	assert.Equal(t, entities.JobStatusFailed, second.Status)
	assert.True(t, errors.Is(second.Err, entities.ErrNoCurrentElement))
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
