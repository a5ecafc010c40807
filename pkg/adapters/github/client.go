//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=client.go -destination=mock.gen.go -package=github
package github

import (
	"context"
	"net/http"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"
)

// GetFileContentParams contains parameters for GetFileContent.
type GetFileContentParams struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// ListBranchesParams contains parameters for ListBranches.
type ListBranchesParams struct {
	Owner string
	Repo  string
}

// Client defines the interface for interacting with GitHub.
type Client interface {
	GetFileContent(ctx context.Context, params GetFileContentParams) ([]byte, error)
	ListBranches(ctx context.Context, params ListBranchesParams) ([]string, error)
}

// client implements Client using go-github.
type client struct {
	gh *github.Client
}

// New creates a new GitHub client with the given token. An empty token makes
// unauthenticated calls, which is enough for public repositories.
func New(token string) Client {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), ts)
	}
	return &client{gh: github.NewClient(hc)}
}

// GetFileContent retrieves the content of a file from a GitHub repository.
func (c *client) GetFileContent(ctx context.Context, params GetFileContentParams) ([]byte, error) {
	fileContent, _, _, err := c.gh.Repositories.GetContents(
		ctx, params.Owner, params.Repo, params.Path,
		&github.RepositoryContentGetOptions{Ref: params.Ref},
	)
	if err != nil {
		return nil, err
	}
	if fileContent == nil {
		return nil, nil
	}
	content, err := fileContent.GetContent()
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

// ListBranches retrieves all branch names of a GitHub repository, walking
// every page of the listing.
func (c *client) ListBranches(ctx context.Context, params ListBranchesParams) ([]string, error) {
	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var names []string
	for {
		branches, resp, err := c.gh.Repositories.ListBranches(ctx, params.Owner, params.Repo, opts)
		if err != nil {
			return nil, err
		}
		for _, branch := range branches {
			names = append(names, branch.GetName())
		}
		if resp.NextPage == 0 {
			return names, nil
		}
		opts.Page = resp.NextPage
	}
}
