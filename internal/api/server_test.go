package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvvmshift/mvvmshift/internal/config"
	"github.com/mvvmshift/mvvmshift/internal/engine"
	"github.com/mvvmshift/mvvmshift/pkg/model"
)

const notifiedSource = `public class PersonViewModel
{
    private string _name;

    public string Name
    {
        get { return _name; }
        set
        {
            _name = value;
            OnPropertyChanged(nameof(Name));
        }
    }
}
`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	eng, err := engine.New(engine.Options{})
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}

	srv, err := NewServer(&config.Config{Port: 8080}, eng, nil, nil)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("healthCheck returned status %d, want %d", rr.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %s, want ok", resp["status"])
	}
}

func TestReadyCheck(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, "GET", "/ready", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("readyCheck returned status %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestListRules(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, "GET", "/api/v1/rules", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("listRules returned status %d, want %d", rr.Code, http.StatusOK)
	}

	var rules []model.RuleInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &rules); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("len(rules) = %d, want 3", len(rules))
	}
	if rules[0].ID != "notified-setter" {
		t.Errorf("rules[0].ID = %s, want notified-setter", rules[0].ID)
	}
}

func TestScan_Inline(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, "POST", "/api/v1/scan", ScanRequest{Source: notifiedSource})
	if rr.Code != http.StatusOK {
		t.Fatalf("scan returned status %d: %s", rr.Code, rr.Body.String())
	}

	var resp ScanResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Summary == nil {
		t.Fatal("summary should not be nil")
	}
	if resp.Summary.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", resp.Summary.FilesScanned)
	}
	if resp.Summary.Total != 1 {
		t.Errorf("Total = %d, want 1", resp.Summary.Total)
	}
	if resp.RunID != "" {
		t.Errorf("RunID = %s, want empty without a store", resp.RunID)
	}
	if len(resp.Summary.Reports) != 1 {
		t.Fatalf("len(Reports) = %d, want 1", len(resp.Summary.Reports))
	}
	if got := resp.Summary.Reports[0].Findings[0].RuleID; got != "notified-setter" {
		t.Errorf("RuleID = %s, want notified-setter", got)
	}
}

func TestScan_RuleFilter(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, "POST", "/api/v1/scan", ScanRequest{
		Source: notifiedSource,
		Rules:  []string{"simple-command-type"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("scan returned status %d", rr.Code)
	}

	var resp ScanResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Summary.Total != 0 {
		t.Errorf("Total = %d, want 0 with the setter rule disabled", resp.Summary.Total)
	}
}

func TestScan_Validation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		req  ScanRequest
		want int
	}{
		{"neither source nor repo", ScanRequest{}, http.StatusBadRequest},
		{"both source and repo", ScanRequest{Source: "x", RepositoryURL: "https://github.com/a/b"}, http.StatusBadRequest},
		{"unknown rule", ScanRequest{Source: "x", Rules: []string{"bogus"}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, "POST", "/api/v1/scan", tt.req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestScan_InvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/scan", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestScan_RepoUnavailable(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, "POST", "/api/v1/scan", ScanRequest{RepositoryURL: "https://github.com/owner/repo"})
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestFix(t *testing.T) {
	srv := newTestServer(t)

	// Scan first; the fix request reuses the reported offset.
	rr := doJSON(t, srv, "POST", "/api/v1/scan", ScanRequest{Source: notifiedSource})
	if rr.Code != http.StatusOK {
		t.Fatalf("scan returned status %d", rr.Code)
	}
	var scan ScanResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &scan); err != nil {
		t.Fatalf("failed to unmarshal scan response: %v", err)
	}
	finding := scan.Summary.Reports[0].Findings[0]
	offset := finding.Location.Span.Start

	rr = doJSON(t, srv, "POST", "/api/v1/fix", FixRequest{
		Source: notifiedSource,
		Offset: &offset,
		Rule:   finding.RuleID,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("fix returned status %d: %s", rr.Code, rr.Body.String())
	}

	var result model.FixResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal fix response: %v", err)
	}
	if !result.Changed {
		t.Error("Changed = false, want true")
	}
	if !bytes.Contains([]byte(result.Output), []byte("[Observable]")) {
		t.Error("output should contain the rewritten property")
	}
}

func TestFix_All(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, "POST", "/api/v1/fix", FixRequest{Source: notifiedSource, All: true})
	if rr.Code != http.StatusOK {
		t.Fatalf("fix returned status %d: %s", rr.Code, rr.Body.String())
	}

	var result model.FixResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal fix response: %v", err)
	}
	if !result.Changed {
		t.Error("Changed = false, want true")
	}
	if len(result.Applied) != 1 {
		t.Errorf("len(Applied) = %d, want 1", len(result.Applied))
	}
}

func TestFix_NoFixAtOffset(t *testing.T) {
	srv := newTestServer(t)
	source := "public class ViewModel\n{\n    public Command RefreshCommand { get; set; }\n}\n"

	rr := doJSON(t, srv, "POST", "/api/v1/scan", ScanRequest{Source: source})
	var scan ScanResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &scan); err != nil {
		t.Fatalf("failed to unmarshal scan response: %v", err)
	}
	offset := scan.Summary.Reports[0].Findings[0].Location.Span.Start

	rr = doJSON(t, srv, "POST", "/api/v1/fix", FixRequest{Source: source, Offset: &offset})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
}

func TestFix_StaleOffset(t *testing.T) {
	srv := newTestServer(t)

	offset := 0
	rr := doJSON(t, srv, "POST", "/api/v1/fix", FixRequest{Source: notifiedSource, Offset: &offset})
	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestFix_Validation(t *testing.T) {
	srv := newTestServer(t)
	offset := 0

	tests := []struct {
		name string
		req  FixRequest
		want int
	}{
		{"missing source", FixRequest{Offset: &offset}, http.StatusBadRequest},
		{"missing offset", FixRequest{Source: "class C {}"}, http.StatusBadRequest},
		{"unknown rule", FixRequest{Source: "class C {}", Offset: &offset, Rule: "bogus"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, "POST", "/api/v1/fix", tt.req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRuns_NoStore(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, "GET", "/api/v1/runs", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("listRuns status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}

	rr = doJSON(t, srv, "GET", "/api/v1/runs/7b0d1d62-54a1-4c0f-9731-4bb2e1267a45", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("getRun status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}
