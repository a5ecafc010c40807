//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=source.go -destination=mock_source.gen.go -package=repo

// Package repo enumerates the branches of a deployment repository and hands
// out the Puppetfile each branch carries.
package repo

import (
	"context"
)

// BranchFile is one branch's Puppetfile text.
type BranchFile struct {
	Branch  string
	Content string
}

// Source yields the Puppetfile of every branch it can read. Branches without
// a readable Puppetfile are skipped with a diagnostic, not reported as an
// error; an error means the repository itself is unusable.
type Source interface {
	BranchManifests(ctx context.Context) ([]BranchFile, error)
}
