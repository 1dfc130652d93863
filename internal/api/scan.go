package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mvvmshift/mvvmshift/internal/engine"
	"github.com/mvvmshift/mvvmshift/internal/gitrepo"
	"github.com/mvvmshift/mvvmshift/pkg/model"
)

// ScanRequest is the request body for a scan. Exactly one of source
// and repository_url must be set.
type ScanRequest struct {
	Source        string   `json:"source,omitempty"`
	Path          string   `json:"path,omitempty"`
	RepositoryURL string   `json:"repository_url,omitempty"`
	Rules         []string `json:"rules,omitempty"`
}

// RepoMeta describes the cloned repository a scan ran against
type RepoMeta struct {
	Owner     string `json:"owner"`
	Name      string `json:"name"`
	Branch    string `json:"branch"`
	CommitSHA string `json:"commit_sha"`
}

// ScanResponse is the API response for a scan
type ScanResponse struct {
	RunID   string             `json:"run_id,omitempty"`
	Repo    *RepoMeta          `json:"repo,omitempty"`
	Summary *model.ScanSummary `json:"summary"`
}

// FixRequest is the request body for a fix
type FixRequest struct {
	Source string `json:"source"`
	Path   string `json:"path,omitempty"`
	Offset *int   `json:"offset,omitempty"`
	Rule   string `json:"rule,omitempty"`
	All    bool   `json:"all,omitempty"`
}

// listRules describes every rule the engine runs
func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Rules())
}

// scanSource scans either an inline source snippet or a repository
func (s *Server) scanSource(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if (req.Source == "") == (req.RepositoryURL == "") {
		writeError(w, http.StatusBadRequest, "exactly one of source and repository_url is required")
		return
	}

	eng, err := s.engineFor(req.Rules)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Source != "" {
		s.scanInline(w, r, eng, &req)
		return
	}
	s.scanRepo(w, r, eng, &req)
}

func (s *Server) scanInline(w http.ResponseWriter, r *http.Request, eng *engine.Engine, req *ScanRequest) {
	path := req.Path
	if path == "" {
		path = "source.cs"
	}

	report, err := eng.Scan(r.Context(), path, []byte(req.Source))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "failed to parse source")
		return
	}

	summary := model.NewScanSummary()
	summary.Add(report)
	summary.Sort()

	resp := &ScanResponse{Summary: summary}
	if s.store != nil {
		run, err := s.store.RecordSummary(r.Context(), "inline", path, "", summary)
		if err != nil {
			log.Error().Err(err).Msg("Failed to record scan run")
		} else {
			resp.RunID = run.ID.String()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) scanRepo(w http.ResponseWriter, r *http.Request, eng *engine.Engine, req *ScanRequest) {
	if s.repos == nil {
		writeError(w, http.StatusServiceUnavailable, "repository scans not available")
		return
	}

	info, err := gitrepo.ParseRepoURL(req.RepositoryURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	clone, err := s.repos.Clone(r.Context(), info)
	if err != nil {
		log.Error().Err(err).Str("url", req.RepositoryURL).Msg("Clone failed")
		writeError(w, http.StatusBadGateway, "failed to clone repository")
		return
	}
	defer func() {
		if err := s.repos.Cleanup(clone.Path); err != nil {
			log.Warn().Err(err).Str("path", clone.Path).Msg("Failed to clean up clone")
		}
	}()

	summary, err := eng.ScanDir(r.Context(), clone.Path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}

	resp := &ScanResponse{
		Repo: &RepoMeta{
			Owner:     info.Owner,
			Name:      info.Name,
			Branch:    clone.Branch,
			CommitSHA: clone.CommitSHA,
		},
		Summary: summary,
	}
	if s.store != nil {
		run, err := s.store.RecordSummary(r.Context(), "repo", req.RepositoryURL, clone.CommitSHA, summary)
		if err != nil {
			log.Error().Err(err).Msg("Failed to record scan run")
		} else {
			resp.RunID = run.ID.String()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// fixSource applies one fix, or every fixable finding when all is set
func (s *Server) fixSource(w http.ResponseWriter, r *http.Request) {
	var req FixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Source == "" {
		writeError(w, http.StatusBadRequest, "source is required")
		return
	}
	if req.Rule != "" && !s.knownRule(req.Rule) {
		writeError(w, http.StatusBadRequest, "unknown rule: "+req.Rule)
		return
	}

	path := req.Path
	if path == "" {
		path = "source.cs"
	}

	if req.All {
		eng := s.engine
		if req.Rule != "" {
			var err error
			eng, err = s.engineFor([]string{req.Rule})
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		result, err := eng.FixAll(r.Context(), path, []byte(req.Source))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "fix failed")
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	if req.Offset == nil {
		writeError(w, http.StatusBadRequest, "offset is required unless all is set")
		return
	}

	loc := model.Location{Span: model.Span{Start: *req.Offset, End: *req.Offset + 1}}
	result, err := s.engine.Fix(r.Context(), path, []byte(req.Source), loc, req.Rule)
	switch {
	case errors.Is(err, engine.ErrNoFix):
		writeError(w, http.StatusUnprocessableEntity, "no applicable fix at offset")
		return
	case errors.Is(err, engine.ErrStale):
		writeError(w, http.StatusConflict, "offset does not match a fixable construct; re-scan")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "fix failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) knownRule(id string) bool {
	for _, info := range s.engine.Rules() {
		if info.ID == id {
			return true
		}
	}
	return false
}
