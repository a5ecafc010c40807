package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lerenn/forgecheck/pkg/adapters/github"
	"github.com/lerenn/forgecheck/pkg/logging"
	"go.uber.org/zap"
)

// ErrInvalidRepoURL is returned when the repository URL cannot be parsed
// into a GitHub owner and repository name.
var ErrInvalidRepoURL = errors.New("invalid repository URL")

// githubSource lists the branches of a GitHub-hosted repository and fetches
// the Puppetfile of each through the API, no local clone needed.
type githubSource struct {
	client   github.Client
	owner    string
	repo     string
	manifest string
}

// NewGitHubSource creates a Source over the GitHub repository at repoURL
// (https://github.com/owner/repo or github.com/owner/repo, a trailing .git
// is accepted).
func NewGitHubSource(client github.Client, repoURL, manifest string) (Source, error) {
	owner, repo, err := splitRepoURL(repoURL)
	if err != nil {
		return nil, err
	}
	return &githubSource{
		client:   client,
		owner:    owner,
		repo:     repo,
		manifest: manifest,
	}, nil
}

var _ Source = (*githubSource)(nil)

func (s *githubSource) BranchManifests(ctx context.Context) ([]BranchFile, error) {
	branches, err := s.client.ListBranches(ctx, github.ListBranchesParams{
		Owner: s.owner,
		Repo:  s.repo,
	})
	if err != nil {
		return nil, fmt.Errorf("listing branches of %s/%s: %w", s.owner, s.repo, err)
	}

	var files []BranchFile
	for _, branch := range branches {
		content, err := s.client.GetFileContent(ctx, github.GetFileContentParams{
			Owner: s.owner,
			Repo:  s.repo,
			Path:  s.manifest,
			Ref:   branch,
		})
		if err != nil || content == nil {
			logging.C(ctx).Warn("Branch has no readable Puppetfile, skipping",
				zap.String("branch", branch), zap.Error(err))
			continue
		}
		files = append(files, BranchFile{Branch: branch, Content: string(content)})
	}
	return files, nil
}

// splitRepoURL extracts owner and repository name from a GitHub URL.
func splitRepoURL(url string) (owner, repo string, err error) {
	const host = "github.com/"
	idx := strings.Index(url, host)
	if idx == -1 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoURL, url)
	}
	rest := strings.TrimSuffix(url[idx+len(host):], ".git")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoURL, url)
	}
	return parts[0], parts[1], nil
}
