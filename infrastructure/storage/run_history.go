package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"workflow_automation/domain/entities"
	"workflow_automation/domain/interfaces"
)

type fileHistory struct {
	historyPath string
	maxReports  int
	mu          sync.Mutex
}

// NewFileHistory - creates run history stored as a JSON file. maxReports
// caps how many reports are kept, 0 keeps all.
func NewFileHistory(path string, maxReports int) (interfaces.RunHistory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &fileHistory{
		historyPath: path,
		maxReports:  maxReports,
	}, nil
}

// SaveReport - appends a run report to the history file
func (s *fileHistory) SaveReport(ctx context.Context, report entities.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load()
	if err != nil {
		return err
	}

	history = append(history, report)
	if s.maxReports > 0 && len(history) > s.maxReports {
		history = history[len(history)-s.maxReports:]
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	tmp := s.historyPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return os.Rename(tmp, s.historyPath)
}

// ListReports - returns stored reports, newest first
func (s *fileHistory) ListReports(ctx context.Context, limit int) ([]entities.RunReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	history, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	reports := make([]entities.RunReport, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		reports = append(reports, history[i])
		if limit > 0 && len(reports) == limit {
			break
		}
	}
	return reports, nil
}

func (s *fileHistory) load() ([]entities.RunReport, error) {
	data, err := os.ReadFile(s.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []entities.RunReport{}, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var history []entities.RunReport
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to decode history %s: %w", s.historyPath, err)
	}

	return history, nil
}
