// Package audit wires the branch source, the Puppetfile parser, the forge
// registry and the reconciliation engine into one run of the tool.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lerenn/forgecheck/pkg/forge"
	"github.com/lerenn/forgecheck/pkg/logging"
	"github.com/lerenn/forgecheck/pkg/puppetfile"
	"github.com/lerenn/forgecheck/pkg/reconcile"
	"github.com/lerenn/forgecheck/pkg/render"
	"github.com/lerenn/forgecheck/pkg/repo"
	"go.uber.org/zap"
)

// View selects which report a run produces.
type View int

const (
	// ViewBranches is the module-by-branch matrix.
	ViewBranches View = iota
	// ViewLatest lists the registry's latest version per module.
	ViewLatest
	// ViewDeprecated lists only the deprecated modules.
	ViewDeprecated
)

// ErrBranchUnknown is returned when the selected branch was not found among
// the scanned branches.
var ErrBranchUnknown = errors.New("selected branch is not known")

// App is one configured forgecheck run.
type App struct {
	source   repo.Source
	registry forge.Registry
	engine   reconcile.Engine
	renderer render.Renderer
}

// New creates an App over the given collaborators.
func New(source repo.Source, registry forge.Registry, engine reconcile.Engine,
	renderer render.Renderer) *App {
	return &App{
		source:   source,
		registry: registry,
		engine:   engine,
		renderer: renderer,
	}
}

// Run produces the rendered view. A branch whose Puppetfile has an invalid
// forge version contributes nothing; modules whose registry lookup failed
// are reported in the output and warned about here. The registry snapshot is
// persisted after rendering, so a persist failure never costs the report.
func (a *App) Run(ctx context.Context, view View, only string) (string, error) {
	files, err := a.source.BranchManifests(ctx)
	if err != nil {
		return "", fmt.Errorf("listing branch manifests: %w", err)
	}

	branches, names := a.parseBranches(ctx, files)

	if only != "" && !containsBranch(branches, only) {
		return "", fmt.Errorf("%w: %q, branches to choose from: %s",
			ErrBranchUnknown, only, strings.Join(branchNames(branches), ", "))
	}

	res, err := a.engine.Reconcile(ctx, names, branches)
	if err != nil {
		return "", fmt.Errorf("reconciling modules: %w", err)
	}
	for _, row := range res.Rows {
		if row.Err != nil {
			logging.C(ctx).Warn("Could not determine latest version",
				zap.String("module", row.Name), zap.Error(row.Err))
		}
	}

	out, err := a.renderView(res, view, only)
	if err != nil {
		return "", err
	}

	if err := a.registry.Persist(); err != nil {
		logging.C(ctx).Error("Could not persist forge snapshot, next run starts cold",
			zap.Error(err))
	}
	return out, nil
}

// parseBranches parses every branch's Puppetfile and collects the sorted,
// deduplicated set of forge module names declared anywhere.
func (a *App) parseBranches(ctx context.Context,
	files []repo.BranchFile) ([]puppetfile.BranchManifest, []string) {
	branches := make([]puppetfile.BranchManifest, 0, len(files))
	seen := make(map[string]struct{})

	for _, file := range files {
		modules, err := puppetfile.Parse(file.Content)
		if err != nil {
			logging.C(ctx).Warn("Skipping branch with unusable Puppetfile",
				zap.String("branch", file.Branch), zap.Error(err))
			continue
		}
		branches = append(branches, puppetfile.BranchManifest{
			Branch:  file.Branch,
			Modules: modules,
		})
		for _, module := range modules {
			if forgeModule, ok := module.(puppetfile.ForgeModule); ok {
				seen[forgeModule.Name] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return branches, names
}

func (a *App) renderView(res *reconcile.Result, view View, only string) (string, error) {
	switch view {
	case ViewLatest:
		return a.renderer.Latest(res)
	case ViewDeprecated:
		return a.renderer.Deprecated(res)
	default:
		return a.renderer.Branches(res, only)
	}
}

func containsBranch(branches []puppetfile.BranchManifest, name string) bool {
	for _, branch := range branches {
		if branch.Branch == name {
			return true
		}
	}
	return false
}

func branchNames(branches []puppetfile.BranchManifest) []string {
	names := make([]string, 0, len(branches))
	for _, branch := range branches {
		names = append(names, branch.Branch)
	}
	sort.Strings(names)
	return names
}
