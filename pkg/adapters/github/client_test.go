package github

import (
	"context"
	"os"
	"testing"
)

func TestGetFileContent(t *testing.T) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		t.Skip("GITHUB_TOKEN not set; skipping integration test.")
	}

	client := New(token)
	ctx := context.Background()

	content, err := client.GetFileContent(ctx, GetFileContentParams{
		Owner: "octocat",
		Repo:  "Hello-World",
		Path:  "README",
		Ref:   "master",
	})
	if err != nil {
		t.Fatalf("failed to get file content: %v", err)
	}
	if len(content) == 0 {
		t.Errorf("expected file content, got empty result")
	}
}

func TestListBranches(t *testing.T) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		t.Skip("GITHUB_TOKEN not set; skipping integration test.")
	}

	client := New(token)
	ctx := context.Background()

	branches, err := client.ListBranches(ctx, ListBranchesParams{
		Owner: "octocat",
		Repo:  "Hello-World",
	})
	if err != nil {
		t.Fatalf("failed to list branches: %v", err)
	}
	if len(branches) == 0 {
		t.Errorf("expected at least one branch, got none")
	}
}
