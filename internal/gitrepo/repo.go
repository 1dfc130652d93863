// Package gitrepo clones repositories for remote scans.
package gitrepo

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/rs/zerolog/log"
)

// RepoService clones repositories under a base directory. token, when
// set, authenticates private clones.
type RepoService struct {
	baseDir string
	token   string
}

func NewRepoService(baseDir, token string) *RepoService {
	return &RepoService{baseDir: baseDir, token: token}
}

// RepoInfo identifies a repository to clone.
type RepoInfo struct {
	Owner    string
	Name     string
	URL      string
	CloneURL string
	Branch   string
}

// CloneResult describes where a clone landed.
type CloneResult struct {
	Path      string
	CommitSHA string
	Branch    string
}

// ParseRepoURL extracts owner and repository name from a GitHub clone
// URL, in https or ssh form.
func ParseRepoURL(rawURL string) (*RepoInfo, error) {
	var repoPath string
	switch {
	case strings.HasPrefix(rawURL, "git@github.com:"):
		repoPath = strings.TrimPrefix(rawURL, "git@github.com:")
	case strings.HasPrefix(rawURL, "git@"):
		return nil, fmt.Errorf("unsupported ssh remote: %s", rawURL)
	default:
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse URL: %w", err)
		}
		if parsed.Host != "github.com" {
			return nil, fmt.Errorf("only github.com URLs are supported, got: %s", parsed.Host)
		}
		repoPath = parsed.Path
	}

	owner, name, err := splitOwnerRepo(repoPath)
	if err != nil {
		return nil, err
	}
	return &RepoInfo{
		Owner:    owner,
		Name:     name,
		URL:      rawURL,
		CloneURL: fmt.Sprintf("https://github.com/%s/%s.git", owner, name),
		Branch:   "main",
	}, nil
}

// splitOwnerRepo splits "owner/repo[.git]", tolerating surrounding
// slashes.
func splitOwnerRepo(path string) (owner, name string, err error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo path: %s", path)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// Clone clones a repository to local storage. Clones are shallow; a
// scan only needs the working tree at HEAD.
func (s *RepoService) Clone(ctx context.Context, info *RepoInfo) (*CloneResult, error) {
	repoDir := filepath.Join(s.baseDir, info.Owner, info.Name)

	// A stale clone from an earlier run may sit here; start fresh.
	if err := os.RemoveAll(repoDir); err != nil {
		return nil, fmt.Errorf("failed to remove existing directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(repoDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	log.Info().
		Str("url", info.CloneURL).
		Str("path", repoDir).
		Msg("Cloning repository")

	cloneOpts := &git.CloneOptions{
		URL:   info.CloneURL,
		Depth: 1,
	}
	if s.token != "" {
		cloneOpts.Auth = &http.BasicAuth{Username: "git", Password: s.token}
	}
	if info.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(info.Branch)
		cloneOpts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, repoDir, false, cloneOpts)
	if err != nil && info.Branch != "" && strings.Contains(err.Error(), "reference not found") {
		// The named branch may not exist on the remote; retry on its
		// default.
		log.Debug().Str("branch", info.Branch).Msg("Branch not found, trying default")
		cloneOpts.ReferenceName = ""
		cloneOpts.SingleBranch = false
		repo, err = git.PlainCloneContext(ctx, repoDir, false, cloneOpts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to clone: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	result := &CloneResult{
		Path:      repoDir,
		CommitSHA: head.Hash().String(),
		Branch:    head.Name().Short(),
	}

	log.Info().
		Str("commit", shortSHA(result.CommitSHA)).
		Str("branch", result.Branch).
		Msg("Clone complete")

	return result, nil
}

// Cleanup removes a cloned repository. It refuses paths outside the
// service's base directory.
func (s *RepoService) Cleanup(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(abs, base+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %s: outside %s", abs, base)
	}
	return os.RemoveAll(abs)
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
