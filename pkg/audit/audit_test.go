//go:build unit
// +build unit

package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/lerenn/forgecheck/pkg/forge"
	"github.com/lerenn/forgecheck/pkg/puppetfile"
	"github.com/lerenn/forgecheck/pkg/reconcile"
	"github.com/lerenn/forgecheck/pkg/render"
	"github.com/lerenn/forgecheck/pkg/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// TestApp bundles the mocked collaborators and the App under test. The
// renderer is the real Markdown one, its output is deterministic text.
type TestApp struct {
	App          *App
	MockSource   *repo.MockSource
	MockRegistry *forge.MockRegistry
	MockEngine   *reconcile.MockEngine
}

func newTestApp(t *testing.T) *TestApp {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockSource := repo.NewMockSource(ctrl)
	mockRegistry := forge.NewMockRegistry(ctrl)
	mockEngine := reconcile.NewMockEngine(ctrl)

	renderer, err := render.New(render.FormatMarkdown)
	require.NoError(t, err)

	return &TestApp{
		App:          New(mockSource, mockRegistry, mockEngine, renderer),
		MockSource:   mockSource,
		MockRegistry: mockRegistry,
		MockEngine:   mockEngine,
	}
}

func stdlibResult() *reconcile.Result {
	return &reconcile.Result{
		Branches: []string{"production"},
		Rows: []reconcile.Row{{
			Name:     "puppetlabs-stdlib",
			Latest:   semver.MustParse("8.5.0"),
			MaxInUse: semver.MustParse("8.5.0"),
			BranchVersions: map[string]*semver.Version{
				"production": semver.MustParse("8.5.0"),
			},
		}},
	}
}

func TestRun_BranchesView(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	ta.MockSource.EXPECT().BranchManifests(ctx).Return([]repo.BranchFile{
		{Branch: "production", Content: `mod "puppetlabs/stdlib", "8.5.0"` + "\n" + `mod "puppetlabs/concat", "9.0.0"`},
		{Branch: "staging", Content: `mod "puppetlabs/stdlib", "8.4.0"`},
	}, nil)

	ta.MockEngine.EXPECT().Reconcile(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, names []string, branches []puppetfile.BranchManifest) (*reconcile.Result, error) {
			// Deduplicated and sorted across branches.
			assert.Equal(t, []string{"puppetlabs-concat", "puppetlabs-stdlib"}, names)
			require.Len(t, branches, 2)
			assert.Equal(t, "production", branches[0].Branch)
			assert.Len(t, branches[0].Modules, 2)
			return stdlibResult(), nil
		})

	ta.MockRegistry.EXPECT().Persist().Return(nil)

	out, err := ta.App.Run(ctx, ViewBranches, "")
	require.NoError(t, err)
	assert.Contains(t, out, "|Module-Name|Forge latest|production|")
	assert.Contains(t, out, "puppetlabs-stdlib")
}

func TestRun_ParseFatalBranchContributesNothing(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	ta.MockSource.EXPECT().BranchManifests(ctx).Return([]repo.BranchFile{
		{Branch: "production", Content: `mod "puppetlabs/stdlib", "8.5.0"`},
		{Branch: "broken", Content: `mod "a/b", "not-a-version"`},
	}, nil)

	ta.MockEngine.EXPECT().Reconcile(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, names []string, branches []puppetfile.BranchManifest) (*reconcile.Result, error) {
			assert.Equal(t, []string{"puppetlabs-stdlib"}, names)
			require.Len(t, branches, 1)
			assert.Equal(t, "production", branches[0].Branch)
			return stdlibResult(), nil
		})

	ta.MockRegistry.EXPECT().Persist().Return(nil)

	_, err := ta.App.Run(ctx, ViewBranches, "")
	require.NoError(t, err)
}

func TestRun_UnknownSelectedBranch(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	ta.MockSource.EXPECT().BranchManifests(ctx).Return([]repo.BranchFile{
		{Branch: "production", Content: `mod "puppetlabs/stdlib", "8.5.0"`},
	}, nil)

	_, err := ta.App.Run(ctx, ViewBranches, "prodcution")
	require.ErrorIs(t, err, ErrBranchUnknown)
	assert.Contains(t, err.Error(), "production")
}

func TestRun_SourceFailureIsFatal(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	sourceErr := errors.New("repository not found")
	ta.MockSource.EXPECT().BranchManifests(ctx).Return(nil, sourceErr)

	_, err := ta.App.Run(ctx, ViewBranches, "")
	require.ErrorIs(t, err, sourceErr)
}

func TestRun_PersistFailureKeepsOutput(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	ta.MockSource.EXPECT().BranchManifests(ctx).Return([]repo.BranchFile{
		{Branch: "production", Content: `mod "puppetlabs/stdlib", "8.5.0"`},
	}, nil)
	ta.MockEngine.EXPECT().Reconcile(ctx, gomock.Any(), gomock.Any()).Return(stdlibResult(), nil)
	ta.MockRegistry.EXPECT().Persist().Return(errors.New("disk full"))

	out, err := ta.App.Run(ctx, ViewBranches, "")
	require.NoError(t, err)
	assert.Contains(t, out, "puppetlabs-stdlib")
}

func TestRun_LatestView(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	ta.MockSource.EXPECT().BranchManifests(ctx).Return([]repo.BranchFile{
		{Branch: "production", Content: `mod "puppetlabs/stdlib", "8.5.0"`},
	}, nil)
	ta.MockEngine.EXPECT().Reconcile(ctx, gomock.Any(), gomock.Any()).Return(stdlibResult(), nil)
	ta.MockRegistry.EXPECT().Persist().Return(nil)

	out, err := ta.App.Run(ctx, ViewLatest, "")
	require.NoError(t, err)
	assert.Contains(t, out, "|Module-Name|Forge latest|\n")
	assert.NotContains(t, out, "|production|")
}

func TestRun_RowLookupErrorDoesNotAbort(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	res := stdlibResult()
	res.Rows = append(res.Rows, reconcile.Row{
		Name:           "broken-module",
		MaxInUse:       semver.MustParse("0.0.0"),
		BranchVersions: map[string]*semver.Version{},
		Err:            errors.New("forge unreachable"),
	})

	ta.MockSource.EXPECT().BranchManifests(ctx).Return([]repo.BranchFile{
		{Branch: "production", Content: `mod "puppetlabs/stdlib", "8.5.0"`},
	}, nil)
	ta.MockEngine.EXPECT().Reconcile(ctx, gomock.Any(), gomock.Any()).Return(res, nil)
	ta.MockRegistry.EXPECT().Persist().Return(nil)

	out, err := ta.App.Run(ctx, ViewBranches, "")
	require.NoError(t, err)
	assert.Contains(t, out, "|?|")
}
