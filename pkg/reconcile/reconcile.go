//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=reconcile.go -destination=mock_engine.gen.go -package=reconcile

// Package reconcile combines per-branch Puppetfile declarations with forge
// registry answers into a module-by-branch freshness matrix.
package reconcile

import (
	"context"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/lerenn/forgecheck/pkg/forge"
	"github.com/lerenn/forgecheck/pkg/logging"
	"github.com/lerenn/forgecheck/pkg/puppetfile"
	"go.uber.org/zap"
)

// RegistryState classifies a module's registry entry against the highest
// version any branch declares.
type RegistryState int

const (
	// RegistryNominal means the registry's latest version is in use somewhere.
	RegistryNominal RegistryState = iota
	// RegistryAheadOfUse means the registry published a version newer than
	// anything declared.
	RegistryAheadOfUse
	// RegistryDeprecated means the registry flagged the module as deprecated.
	// It wins over RegistryAheadOfUse.
	RegistryDeprecated
	// RegistryUnknown means the registry lookup failed for this module.
	RegistryUnknown
)

// CellState classifies one branch's declared version against the highest
// version declared across all branches.
type CellState int

const (
	// CellAtMax means the branch declares the max-in-use version.
	CellAtMax CellState = iota
	// CellBehindMax means the branch declares an older version.
	CellBehindMax
	// CellAboveMax means the branch declares a newer version than the
	// computed maximum. Reportable, not an error.
	CellAboveMax
)

// Row is the reconciliation result for one forge module. BranchVersions has
// no entry for branches whose Puppetfile does not declare the module. Err is
// set when the registry lookup failed; Latest and Deprecated are then
// meaningless.
type Row struct {
	Name           string
	Latest         *semver.Version
	Deprecated     bool
	MaxInUse       *semver.Version
	BranchVersions map[string]*semver.Version
	Err            error
}

// RegistryState classifies the registry's entry for this row's module.
func (r Row) RegistryState() RegistryState {
	switch {
	case r.Err != nil:
		return RegistryUnknown
	case r.Deprecated:
		return RegistryDeprecated
	case r.Latest.GreaterThan(r.MaxInUse):
		return RegistryAheadOfUse
	default:
		return RegistryNominal
	}
}

// CellState classifies the version branch declares for this row's module.
// The second return value is false when the branch does not declare it.
func (r Row) CellState(branch string) (CellState, bool) {
	version, ok := r.BranchVersions[branch]
	if !ok {
		return 0, false
	}
	switch {
	case version.LessThan(r.MaxInUse):
		return CellBehindMax, true
	case version.GreaterThan(r.MaxInUse):
		return CellAboveMax, true
	default:
		return CellAtMax, true
	}
}

// Result is the full matrix: one Row per module in the caller-supplied name
// order, and the branch names in lexicographic order.
type Result struct {
	Branches []string
	Rows     []Row
}

// Engine builds the reconciliation matrix.
type Engine interface {
	Reconcile(ctx context.Context, names []string, branches []puppetfile.BranchManifest) (*Result, error)
}

type engine struct {
	registry forge.Registry
}

// NewEngine creates an Engine answering registry questions through registry.
func NewEngine(registry forge.Registry) Engine {
	return &engine{
		registry: registry,
	}
}

var _ Engine = (*engine)(nil)

// zeroVersion is the MaxInUse floor for modules no branch declares.
var zeroVersion = semver.New(0, 0, 0, "", "")

// Reconcile builds one Row per name, in the given order. A failed registry
// lookup marks that row's Err and moves on; the declared versions are still
// collected so the branch columns stay usable.
func (e *engine) Reconcile(ctx context.Context, names []string,
	branches []puppetfile.BranchManifest) (*Result, error) {
	branchNames := make([]string, 0, len(branches))
	for _, branch := range branches {
		branchNames = append(branchNames, branch.Branch)
	}
	sort.Strings(branchNames)

	rows := make([]Row, 0, len(names))
	for _, name := range names {
		logging.C(ctx).Debug("Reconciling module", zap.String("module", name))
		row := Row{
			Name:           name,
			MaxInUse:       zeroVersion,
			BranchVersions: make(map[string]*semver.Version),
		}

		row.Latest, row.Err = e.registry.GetVersion(ctx, name)
		if row.Err == nil {
			row.Deprecated, row.Err = e.registry.IsDeprecated(ctx, name)
		}

		for _, branch := range branches {
			version, ok := declaredVersion(branch, name)
			if !ok {
				continue
			}
			row.BranchVersions[branch.Branch] = version
			if version.GreaterThan(row.MaxInUse) {
				row.MaxInUse = version
			}
		}

		rows = append(rows, row)
	}

	return &Result{
		Branches: branchNames,
		Rows:     rows,
	}, nil
}

// declaredVersion returns the version branch declares for the forge module
// name. Only the first matching declaration counts, later duplicates in the
// same Puppetfile are ignored.
func declaredVersion(branch puppetfile.BranchManifest, name string) (*semver.Version, bool) {
	for _, module := range branch.Modules {
		forgeModule, ok := module.(puppetfile.ForgeModule)
		if !ok {
			continue
		}
		if forgeModule.Name == name {
			return forgeModule.Version, true
		}
	}
	return nil, false
}
