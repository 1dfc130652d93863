package gitrepo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantName  string
		wantErr   bool
	}{
		{
			name:      "https URL",
			url:       "https://github.com/owner/repo",
			wantOwner: "owner",
			wantName:  "repo",
			wantErr:   false,
		},
		{
			name:      "https URL with .git",
			url:       "https://github.com/owner/repo.git",
			wantOwner: "owner",
			wantName:  "repo",
			wantErr:   false,
		},
		{
			name:      "https URL with trailing slash",
			url:       "https://github.com/owner/repo/",
			wantOwner: "owner",
			wantName:  "repo",
			wantErr:   false,
		},
		{
			name:      "SSH URL",
			url:       "git@github.com:owner/repo.git",
			wantOwner: "owner",
			wantName:  "repo",
			wantErr:   false,
		},
		{
			name:      "SSH URL without .git",
			url:       "git@github.com:owner/repo",
			wantOwner: "owner",
			wantName:  "repo",
			wantErr:   false,
		},
		{
			name:    "non-github URL",
			url:     "https://gitlab.com/owner/repo",
			wantErr: true,
		},
		{
			name:    "invalid URL",
			url:     "not-a-url",
			wantErr: true,
		},
		{
			name:    "missing repo in path",
			url:     "https://github.com/owner",
			wantErr: true,
		},
		{
			name:    "invalid SSH format",
			url:     "git@github.com/owner/repo",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseRepoURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepoURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if info.Owner != tt.wantOwner {
				t.Errorf("Owner = %s, want %s", info.Owner, tt.wantOwner)
			}
			if info.Name != tt.wantName {
				t.Errorf("Name = %s, want %s", info.Name, tt.wantName)
			}
			if info.CloneURL == "" {
				t.Error("CloneURL should not be empty")
			}
			if info.Branch != "main" {
				t.Errorf("Branch = %s, want main", info.Branch)
			}
		})
	}
}

func TestRepoService_Cleanup(t *testing.T) {
	base := t.TempDir()
	svc := NewRepoService(base, "")

	inside := filepath.Join(base, "owner", "repo")
	if err := os.MkdirAll(inside, 0755); err != nil {
		t.Fatal(err)
	}

	if err := svc.Cleanup(inside); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(inside); !os.IsNotExist(err) {
		t.Error("directory should be removed")
	}
}

func TestRepoService_Cleanup_OutsideBase(t *testing.T) {
	svc := NewRepoService(t.TempDir(), "")

	other := t.TempDir()
	if err := svc.Cleanup(other); err == nil {
		t.Error("Cleanup() should refuse paths outside the base directory")
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("directory should still exist: %v", err)
	}
}

func TestShortSHA(t *testing.T) {
	if got := shortSHA("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortSHA = %s, want 01234567", got)
	}
	if got := shortSHA("abc"); got != "abc" {
		t.Errorf("shortSHA = %s, want abc", got)
	}
}
