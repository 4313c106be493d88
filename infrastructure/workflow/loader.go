package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"workflow_automation/domain/entities"

	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of a workflow file
type document struct {
	Name *string   `yaml:"name"`
	Jobs *[]rawJob `yaml:"jobs"`
}

type rawJob struct {
	Name   *string   `yaml:"name"`
	Enable *string   `yaml:"enable"`
	Sleep  *int64    `yaml:"sleep"`
	Insts  *[]string `yaml:"insts"`
}

// LoadFile reads and loads a workflow file
func LoadFile(path string) (*entities.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}
	return Load(data)
}

// Load parses a workflow document. Loading is all-or-nothing: the first
// invalid job or instruction rejects the whole document.
func Load(source []byte) (*entities.Workflow, error) {
	dec := yaml.NewDecoder(bytes.NewReader(source))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, malformed("", "document is empty", nil)
		}
		return nil, malformed("", err.Error(), err)
	}

	if doc.Name == nil {
		return nil, malformed("", "missing required field \"name\"", nil)
	}
	if doc.Jobs == nil {
		return nil, malformed("", "missing required field \"jobs\"", nil)
	}

	wf := &entities.Workflow{Name: *doc.Name, Jobs: make([]*entities.Job, 0, len(*doc.Jobs))}
	for i, raw := range *doc.Jobs {
		job, err := buildJob(i, raw)
		if err != nil {
			return nil, err
		}
		wf.Jobs = append(wf.Jobs, job)
	}

	return wf, nil
}

func buildJob(index int, raw rawJob) (*entities.Job, error) {
	if raw.Name == nil {
		return nil, malformed("", fmt.Sprintf("jobs[%d]: missing required field \"name\"", index), nil)
	}
	name := *raw.Name

	if raw.Enable == nil {
		return nil, malformed(name, "missing required field \"enable\"", nil)
	}
	enabled, err := parseEnabled(*raw.Enable)
	if err != nil {
		return nil, &entities.LoadError{Kind: entities.LoadInvalidEnabledFlag, Job: name, Value: *raw.Enable}
	}

	if raw.Insts == nil {
		return nil, malformed(name, "missing required field \"insts\"", nil)
	}

	if raw.Sleep == nil {
		return nil, malformed(name, "missing required field \"sleep\"", nil)
	}
	delay, err := entities.DelayFromSeconds(*raw.Sleep)
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", name, err)
	}
	job, err := entities.NewJob(name, enabled, delay)
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", name, err)
	}

	for _, line := range *raw.Insts {
		inst, err := entities.ParseInstruction(line)
		if err != nil {
			return nil, &entities.LoadError{Kind: entities.LoadInvalidInstruction, Job: name, Line: line, Err: err}
		}
		job.Push(inst)
	}

	return job, nil
}

// parseEnabled accepts "on" and "off" in any case
func parseEnabled(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, entities.ErrInvalidEnabledFlag
	}
}

func malformed(job, detail string, err error) error {
	return &entities.LoadError{Kind: entities.LoadMalformedDocument, Job: job, Detail: detail, Err: err}
}

// Marshal serializes a workflow back into the document format, keeping job
// and instruction order. Instructions are written as they appeared in the source.
func Marshal(wf *entities.Workflow) ([]byte, error) {
	type outJob struct {
		Name   string   `yaml:"name"`
		Enable string   `yaml:"enable"`
		Sleep  int64    `yaml:"sleep"`
		Insts  []string `yaml:"insts"`
	}
	type outDoc struct {
		Name string   `yaml:"name"`
		Jobs []outJob `yaml:"jobs"`
	}

	out := outDoc{Name: wf.Name, Jobs: make([]outJob, 0, len(wf.Jobs))}
	for _, job := range wf.Jobs {
		enable := "off"
		if job.Enabled() {
			enable = "on"
		}
		insts := make([]string, 0, job.Len())
		for _, inst := range job.Instructions() {
			line := strings.TrimSpace(inst.RawText())
			if line == "" {
				line = inst.String()
			}
			insts = append(insts, line)
		}
		out.Jobs = append(out.Jobs, outJob{
			Name:   job.Name(),
			Enable: enable,
			Sleep:  int64(job.Delay() / time.Second),
			Insts:  insts,
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("yaml encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("yaml encode: %w", err)
	}
	return buf.Bytes(), nil
}
