//go:build integration
// +build integration

package history

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mvvmshift/mvvmshift/internal/testutil"
	"github.com/mvvmshift/mvvmshift/pkg/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	pool := testutil.RequireDB(t)
	store := &Store{pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}

	t.Cleanup(func() {
		testutil.TruncateTables(t, pool, "scan_runs")
	})
	return store
}

func sampleSummary() *model.ScanSummary {
	summary := model.NewScanSummary()
	summary.Add(model.FileReport{
		Path: "vm.cs",
		Findings: []model.Finding{{
			RuleID:   "notified-setter",
			Message:  "setter notifies manually",
			Severity: model.SeverityError,
			Fixable:  true,
		}},
	})
	return summary
}

func TestIntegration_RecordAndGetScanRun(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	run, err := store.RecordSummary(ctx, "repo", "github.com/acme/shop", "abc1234", sampleSummary())
	if err != nil {
		t.Fatalf("RecordSummary() error: %v", err)
	}
	if run.ID == uuid.Nil {
		t.Error("RecordSummary() should set ID")
	}
	if run.CommitSHA == nil || *run.CommitSHA != "abc1234" {
		t.Errorf("CommitSHA = %v, want abc1234", run.CommitSHA)
	}

	fetched, err := store.GetScanRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetScanRun() error: %v", err)
	}
	if fetched == nil {
		t.Fatal("GetScanRun() returned nil")
	}
	if fetched.Source != "repo" {
		t.Errorf("Source = %s, want repo", fetched.Source)
	}
	if fetched.Target != "github.com/acme/shop" {
		t.Errorf("Target = %s, want github.com/acme/shop", fetched.Target)
	}
	if fetched.Findings != 1 || fetched.Fixable != 1 {
		t.Errorf("Findings = %d, Fixable = %d, want 1 and 1", fetched.Findings, fetched.Fixable)
	}

	var stored model.ScanSummary
	if err := json.Unmarshal(fetched.Summary, &stored); err != nil {
		t.Fatalf("stored summary does not unmarshal: %v", err)
	}
	if stored.Total != 1 {
		t.Errorf("stored summary Total = %d, want 1", stored.Total)
	}
}

func TestIntegration_GetScanRun_NotFound(t *testing.T) {
	store := testStore(t)

	run, err := store.GetScanRun(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetScanRun() error: %v", err)
	}
	if run != nil {
		t.Errorf("GetScanRun() = %+v, want nil", run)
	}
}

func TestIntegration_ListScanRuns(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, target := range []string{"first", "second", "third"} {
		if _, err := store.RecordSummary(ctx, "dir", target, "", sampleSummary()); err != nil {
			t.Fatalf("RecordSummary(%s) error: %v", target, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	runs, err := store.ListScanRuns(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListScanRuns() error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].Target != "third" || runs[1].Target != "second" {
		t.Errorf("runs not newest first: %s, %s", runs[0].Target, runs[1].Target)
	}
	if runs[0].CommitSHA != nil {
		t.Errorf("CommitSHA = %v, want nil for local scans", runs[0].CommitSHA)
	}

	rest, err := store.ListScanRuns(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListScanRuns() offset error: %v", err)
	}
	if len(rest) != 1 || rest[0].Target != "first" {
		t.Errorf("offset page = %+v, want the first run", rest)
	}
}
