package repo

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepo builds an in-memory repository and lets tests pin remote-tracking
// refs at arbitrary commits.
type testRepo struct {
	t *testing.T
	r *git.Repository
	w *git.Worktree
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	r, err := git.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)
	w, err := r.Worktree()
	require.NoError(t, err)
	return &testRepo{t: t, r: r, w: w}
}

func (tr *testRepo) commitPuppetfile(content []byte) plumbing.Hash {
	tr.t.Helper()
	f, err := tr.w.Filesystem.Create("Puppetfile")
	require.NoError(tr.t, err)
	_, err = f.Write(content)
	require.NoError(tr.t, err)
	require.NoError(tr.t, f.Close())
	_, err = tr.w.Add("Puppetfile")
	require.NoError(tr.t, err)
	return tr.commit("update Puppetfile")
}

func (tr *testRepo) commitWithoutPuppetfile() plumbing.Hash {
	tr.t.Helper()
	_, err := tr.w.Remove("Puppetfile")
	require.NoError(tr.t, err)
	return tr.commit("drop Puppetfile")
}

func (tr *testRepo) commit(msg string) plumbing.Hash {
	tr.t.Helper()
	hash, err := tr.w.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(tr.t, err)
	return hash
}

func (tr *testRepo) setRemoteRef(name string, hash plumbing.Hash) {
	tr.t.Helper()
	ref := plumbing.NewHashReference(plumbing.ReferenceName("refs/remotes/"+name), hash)
	require.NoError(tr.t, tr.r.Storer.SetReference(ref))
}

func (tr *testRepo) source(remote string) *gitSource {
	return &gitSource{
		open:     func() (*git.Repository, error) { return tr.r, nil },
		remote:   remote,
		manifest: "Puppetfile",
	}
}

func TestGitSource_YieldsPrefixedBranches(t *testing.T) {
	tr := newTestRepo(t)

	prod := tr.commitPuppetfile([]byte(`mod "puppetlabs/stdlib", "8.4.0"`))
	tr.setRemoteRef("origin/production", prod)

	staging := tr.commitPuppetfile([]byte(`mod "puppetlabs/stdlib", "8.5.0"`))
	tr.setRemoteRef("origin/staging", staging)
	tr.setRemoteRef("upstream/other", staging)

	files, err := tr.source("origin").BranchManifests(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)

	// Sorted by branch name, remote prefix stripped, local refs and foreign
	// remotes left out.
	assert.Equal(t, "production", files[0].Branch)
	assert.Contains(t, files[0].Content, `"8.4.0"`)
	assert.Equal(t, "staging", files[1].Branch)
	assert.Contains(t, files[1].Content, `"8.5.0"`)
}

func TestGitSource_SkipsBranchWithoutPuppetfile(t *testing.T) {
	tr := newTestRepo(t)

	prod := tr.commitPuppetfile([]byte(`mod "puppetlabs/stdlib", "8.5.0"`))
	tr.setRemoteRef("origin/production", prod)

	bare := tr.commitWithoutPuppetfile()
	tr.setRemoteRef("origin/bare", bare)

	files, err := tr.source("origin").BranchManifests(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "production", files[0].Branch)
}

func TestGitSource_SkipsBinaryPuppetfile(t *testing.T) {
	tr := newTestRepo(t)

	binary := tr.commitPuppetfile([]byte{0x00, 0x01, 0x02, 0xff})
	tr.setRemoteRef("origin/binary", binary)

	files, err := tr.source("origin").BranchManifests(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestGitSource_SkipsSymbolicHEAD(t *testing.T) {
	tr := newTestRepo(t)

	prod := tr.commitPuppetfile([]byte(`mod "puppetlabs/stdlib", "8.5.0"`))
	tr.setRemoteRef("origin/production", prod)

	head := plumbing.NewSymbolicReference("refs/remotes/origin/HEAD", "refs/remotes/origin/production")
	require.NoError(t, tr.r.Storer.SetReference(head))

	files, err := tr.source("origin").BranchManifests(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "production", files[0].Branch)
}

func TestGitSource_MissingRepositoryIsFatal(t *testing.T) {
	s := NewGitSource(t.TempDir(), "origin", "Puppetfile")
	_, err := s.BranchManifests(context.Background())
	require.Error(t, err)
}
