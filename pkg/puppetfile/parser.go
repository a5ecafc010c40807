package puppetfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/lerenn/forgecheck/pkg/logging"
	"go.uber.org/zap"
)

// Line shapes of the Puppetfile dialect, tested in this order. Quotes may be
// single or double and do not have to match across fields.
var (
	// mod "puppetlabs/stdlib", "8.5.0"
	forgeLineRE = regexp.MustCompile(`^\s*(?:mod)\s+['"](?P<name>[^'"]+[-/][^'"]+)['"],\s+['"](?P<version>.*)['"]`)
	// mod "mymodule",
	gitLineRE = regexp.MustCompile(`^\s*(?:mod)\s+['"](?P<name>[^'"]+)['"]\s*,$`)
	// :git => 'https://example.com/repo.git'
	attrLineRE = regexp.MustCompile(`^\s*:(?P<name>git|commit|tag|branch|ref|link|fallback)\s*=>\s*['"]?(?P<value>[^'"]+)['"]?$`)
)

// ErrInvalidVersion reports a forge module line whose version field is not
// valid semver. It aborts the parse of the whole manifest: every downstream
// comparison depends on that version being orderable.
var ErrInvalidVersion = errors.New("forge module version is not valid semver")

// gitBuilder accumulates the attribute block of a git module until the next
// module line, or the end of input, finalizes it.
type gitBuilder struct {
	name string
	spec GitSpec
}

func (b *gitBuilder) finalize() Module {
	return GitModule{Name: b.name, Spec: b.spec}
}

// Parse scans a Puppetfile and returns its module declarations in source
// order. Lines it cannot interpret are skipped with a diagnostic; the only
// fatal condition is a forge module line with an unparsable version, which
// makes the whole manifest unusable.
func Parse(content string) ([]Module, error) {
	var (
		modules     []Module
		current     *gitBuilder
		attrsHalted bool
	)

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Strip inline comments. Intentionally not aware of '#' inside a
		// quoted URL.
		if before, _, found := strings.Cut(line, "#"); found {
			line = strings.TrimSpace(before)
		}

		if m := forgeLineRE.FindStringSubmatch(line); m != nil {
			if current != nil {
				modules = append(modules, current.finalize())
				current = nil
			}
			name := CanonicalName(m[1])
			version, err := semver.StrictNewVersion(m[2])
			if err != nil {
				return nil, fmt.Errorf("%w: %q declares %q", ErrInvalidVersion, name, m[2])
			}
			modules = append(modules, ForgeModule{Name: name, Version: version})
			continue
		}

		if m := gitLineRE.FindStringSubmatch(line); m != nil {
			if current != nil {
				modules = append(modules, current.finalize())
			}
			current = &gitBuilder{name: m[1]}
			continue
		}

		if m := attrLineRE.FindStringSubmatch(line); m != nil && !attrsHalted {
			if current == nil {
				logging.L().Warn("Attribute line outside a module block, ignoring attributes from here on",
					zap.String("line", line))
				attrsHalted = true
				continue
			}
			if !applyAttribute(current, m[1], m[2]) {
				attrsHalted = true
			}
			continue
		}

		logging.L().Debug("Skipping unrecognized Puppetfile line", zap.String("line", line))
	}

	if current != nil {
		modules = append(modules, current.finalize())
	}
	return modules, nil
}

// applyAttribute sets one attribute on the git module being accumulated. The
// return value reports whether attribute processing may continue; an unknown
// attribute name stops it for the remainder of the file.
func applyAttribute(b *gitBuilder, name, value string) bool {
	switch name {
	case "git":
		b.spec.URL = value
	case "tag":
		b.spec.Ref = GitRef{Kind: RefTag, Value: value}
	case "branch":
		b.spec.Ref = GitRef{Kind: RefBranch, Value: value}
	case "commit":
		b.spec.Ref = GitRef{Kind: RefCommit, Value: value}
	case "fallback":
		b.spec.Fallback = value
	case "link":
		// The flag's value text is irrelevant, its presence sets it.
		b.spec.Link = true
	default:
		logging.L().Warn("Unknown git attribute, ignoring attributes from here on",
			zap.String("attribute", name), zap.String("value", value))
		return false
	}
	return true
}
