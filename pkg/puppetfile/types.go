// Package puppetfile parses the r10k/g10k Puppetfile dialect into module
// declarations.
package puppetfile

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Module is a single declaration parsed from a Puppetfile: either a
// ForgeModule or a GitModule.
type Module interface {
	isModule()
}

// ForgeModule is a module published on the Puppet Forge, pinned to an exact
// release version.
type ForgeModule struct {
	// Name in canonical owner-name form (never contains a slash).
	Name    string
	Version *semver.Version
}

// GitModule is a module sourced from a git repository, described by the
// attribute block following its declaration line.
type GitModule struct {
	Name string
	Spec GitSpec
}

func (ForgeModule) isModule() {}
func (GitModule) isModule()   {}

// RefKind selects how a git module's revision is chosen.
type RefKind int

const (
	// RefHead tracks the newest commit on the remote's default branch.
	RefHead RefKind = iota
	// RefCommit pins an exact commit hash.
	RefCommit
	// RefTag follows a tag. The exact commit can vary if the tag is moved
	// between runs.
	RefTag
	// RefBranch tracks the newest commit on a named branch.
	RefBranch
)

// GitRef is the revision selector of a git module. Value is empty for
// RefHead.
type GitRef struct {
	Kind  RefKind
	Value string
}

// GitSpec describes where a git module lives and how r10k/g10k deploys it.
// Attributes left unset when the module is finalized keep their zero values.
type GitSpec struct {
	// URL of the repository, empty when the Puppetfile omits :git.
	URL string
	// Ref is the revision selector, RefHead unless an attribute set one.
	Ref GitRef
	// Fallback branch name, meaningful only when Ref is a branch.
	Fallback string
	// Link is the r10k-specific link flag.
	Link bool
}

// BranchManifest pairs a branch name with the modules parsed from its
// Puppetfile. Built once per branch per run and immutable afterwards.
type BranchManifest struct {
	Branch  string
	Modules []Module
}

// CanonicalName rewrites a module name to the Forge's canonical owner-name
// form: any owner/name separator becomes a dash. Already-canonical names
// pass through unchanged.
func CanonicalName(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}
