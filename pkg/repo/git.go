package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/lerenn/forgecheck/pkg/logging"
	"go.uber.org/zap"
)

// gitSource reads Puppetfiles straight out of the object store of a local
// clone, one per remote-tracking branch under the configured remote.
type gitSource struct {
	open     func() (*git.Repository, error)
	remote   string
	manifest string
}

// NewGitSource creates a Source over the local clone at path. Only direct
// references under refs/remotes/<remote>/ are scanned; manifest is the
// Puppetfile path inside each branch's root tree.
func NewGitSource(path, remote, manifest string) Source {
	return &gitSource{
		open: func() (*git.Repository, error) {
			return git.PlainOpen(path)
		},
		remote:   remote,
		manifest: manifest,
	}
}

var _ Source = (*gitSource)(nil)

func (s *gitSource) BranchManifests(ctx context.Context) ([]BranchFile, error) {
	r, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	refs, err := r.References()
	if err != nil {
		return nil, fmt.Errorf("listing references: %w", err)
	}
	defer refs.Close()

	prefix := "refs/remotes/" + s.remote + "/"
	var files []BranchFile
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		// Symbolic refs like origin/HEAD have no commit of their own.
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name().String()
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		branch := strings.TrimPrefix(name, prefix)

		content, ok := s.manifestAt(ctx, r, branch, ref.Hash())
		if !ok {
			return nil
		}
		files = append(files, BranchFile{Branch: branch, Content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking references: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Branch < files[j].Branch })
	return files, nil
}

// manifestAt reads the Puppetfile out of the commit at hash. Any per-branch
// problem is a diagnostic, the branch is just left out.
func (s *gitSource) manifestAt(ctx context.Context, r *git.Repository,
	branch string, hash plumbing.Hash) (string, bool) {
	commit, err := r.CommitObject(hash)
	if err != nil {
		logging.C(ctx).Warn("Could not read branch head commit",
			zap.String("branch", branch), zap.Error(err))
		return "", false
	}
	tree, err := commit.Tree()
	if err != nil {
		logging.C(ctx).Warn("Could not read branch root tree",
			zap.String("branch", branch), zap.Error(err))
		return "", false
	}
	file, err := tree.File(s.manifest)
	if err != nil {
		logging.C(ctx).Warn("Branch has no Puppetfile, skipping",
			zap.String("branch", branch), zap.String("path", s.manifest))
		return "", false
	}
	if binary, err := file.IsBinary(); err != nil || binary {
		logging.C(ctx).Warn("Puppetfile blob is not text, skipping",
			zap.String("branch", branch), zap.Error(err))
		return "", false
	}
	content, err := file.Contents()
	if err != nil {
		logging.C(ctx).Warn("Could not read Puppetfile blob",
			zap.String("branch", branch), zap.Error(err))
		return "", false
	}
	return content, true
}
