package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ScanSummary aggregates the outcome of one scan across any number of
// files: totals, per-rule counts, and the reports themselves.
type ScanSummary struct {
	ID           string         `json:"id"`
	StartedAt    time.Time      `json:"started_at"`
	FilesScanned int            `json:"files_scanned"`
	FilesFlagged int            `json:"files_flagged"`
	Total        int            `json:"total_findings"`
	Fixable      int            `json:"fixable_findings"`
	ByRule       map[string]int `json:"by_rule"`
	Reports      []FileReport   `json:"reports"`
}

// NewScanSummary returns an empty summary ready to absorb file reports.
func NewScanSummary() *ScanSummary {
	return &ScanSummary{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		ByRule:    make(map[string]int),
		Reports:   make([]FileReport, 0),
	}
}

// Add folds one file report into the summary. Files with no findings
// count as scanned but contribute no report entry.
func (s *ScanSummary) Add(r FileReport) {
	s.FilesScanned++
	if len(r.Findings) == 0 {
		return
	}
	s.FilesFlagged++
	s.Total += len(r.Findings)
	for _, f := range r.Findings {
		s.ByRule[f.RuleID]++
		if f.Fixable {
			s.Fixable++
		}
	}
	s.Reports = append(s.Reports, r)
}

// Sort orders reports by path and each report's findings by position,
// so summaries are stable regardless of scan order.
func (s *ScanSummary) Sort() {
	sort.Slice(s.Reports, func(i, j int) bool {
		return s.Reports[i].Path < s.Reports[j].Path
	})
	for _, r := range s.Reports {
		sort.Slice(r.Findings, func(i, j int) bool {
			if r.Findings[i].Location.Span.Start != r.Findings[j].Location.Span.Start {
				return r.Findings[i].Location.Span.Start < r.Findings[j].Location.Span.Start
			}
			return r.Findings[i].RuleID < r.Findings[j].RuleID
		})
	}
}
