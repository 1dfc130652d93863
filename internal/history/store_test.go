package history

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestOpen_InvalidURL(t *testing.T) {
	_, err := Open(context.Background(), "not-a-database-url")
	if err == nil {
		t.Error("Open() should reject a malformed database URL")
	}
}

func TestScanRun_Fields(t *testing.T) {
	id := uuid.New()
	sha := "abc123"

	run := ScanRun{
		ID:           id,
		Source:       "repo",
		Target:       "https://github.com/test/app",
		CommitSHA:    &sha,
		FilesScanned: 12,
		FilesFlagged: 3,
		Findings:     7,
		Fixable:      5,
		Summary:      json.RawMessage(`{"total_findings":7}`),
		CreatedAt:    time.Now(),
	}

	if run.ID != id {
		t.Error("ID mismatch")
	}
	if run.Source != "repo" {
		t.Errorf("Source = %s, want repo", run.Source)
	}
	if *run.CommitSHA != "abc123" {
		t.Errorf("CommitSHA = %s, want abc123", *run.CommitSHA)
	}
	if run.FilesScanned != 12 {
		t.Errorf("FilesScanned = %d, want 12", run.FilesScanned)
	}
}

func TestScanRun_JSON(t *testing.T) {
	run := ScanRun{
		ID:       uuid.New(),
		Source:   "dir",
		Target:   "/tmp/app",
		Findings: 2,
		Summary:  json.RawMessage(`{}`),
	}

	data, err := json.Marshal(run)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var decoded ScanRun
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if decoded.Source != "dir" {
		t.Errorf("Source = %s, want dir", decoded.Source)
	}
	if decoded.CommitSHA != nil {
		t.Error("CommitSHA should be omitted when nil")
	}
}
