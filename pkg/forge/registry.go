//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=registry.go -destination=mock_registry.gen.go -package=forge

// Package forge talks to a Puppet Forge style module registry and caches its
// answers across runs.
package forge

import (
	"context"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/lerenn/forgecheck/pkg/logging"
	"go.uber.org/zap"
)

// DefaultTTL is how long a fetched module document stays fresh.
const DefaultTTL = time.Hour

// Registry answers version and deprecation questions about forge modules.
// Answers come from a cache seeded from a snapshot store; a module whose entry
// is missing or older than the TTL is fetched again. Persist writes the cache
// back so the next run starts warm.
type Registry interface {
	GetVersion(ctx context.Context, name string) (*semver.Version, error)
	IsDeprecated(ctx context.Context, name string) (bool, error)
	Persist() error
}

type cacheEntry struct {
	version     *semver.Version
	deprecated  bool
	timeFetched time.Time
}

type registry struct {
	client  Client
	store   SnapshotStore
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewRegistry creates a Registry caching client answers for ttl and seeded
// from store. A snapshot that cannot be read only costs the warm start;
// snapshot entries with an invalid version are dropped.
func NewRegistry(client Client, store SnapshotStore, ttl time.Duration) Registry {
	r := &registry{
		client:  client,
		store:   store,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}

	snap, err := store.Load()
	if err != nil {
		logging.L().Warn("Could not load forge snapshot, starting cold", zap.Error(err))
		return r
	}
	for name, e := range snap {
		version, err := semver.StrictNewVersion(e.Version)
		if err != nil {
			logging.L().Warn("Dropping snapshot entry with invalid version",
				zap.String("module", name),
				zap.String("version", e.Version))
			continue
		}
		r.entries[name] = cacheEntry{
			version:     version,
			deprecated:  e.Deprecated,
			timeFetched: time.Unix(e.TimeFetched, 0),
		}
	}
	return r
}

var _ Registry = (*registry)(nil)

func (r *registry) GetVersion(ctx context.Context, name string) (*semver.Version, error) {
	e, err := r.ensure(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.version, nil
}

func (r *registry) IsDeprecated(ctx context.Context, name string) (bool, error) {
	e, err := r.ensure(ctx, name)
	if err != nil {
		return false, err
	}
	return e.deprecated, nil
}

// ensure returns the cache entry for name, fetching it first when it is
// missing or at least TTL old. A failed fetch leaves the cache untouched.
func (r *registry) ensure(ctx context.Context, name string) (cacheEntry, error) {
	if e, ok := r.entries[name]; ok && r.now().Sub(e.timeFetched) < r.ttl {
		logging.C(ctx).Debug("Module document in cache", zap.String("module", name))
		return e, nil
	}

	meta, err := r.client.Fetch(ctx, name)
	if err != nil {
		return cacheEntry{}, err
	}
	e := cacheEntry{
		version:     meta.Version,
		deprecated:  meta.Deprecated,
		timeFetched: r.now(),
	}
	r.entries[name] = e
	return e, nil
}

func (r *registry) Persist() error {
	snap := make(Snapshot, len(r.entries))
	for name, e := range r.entries {
		snap[name] = SnapshotEntry{
			Version:     e.version.String(),
			Deprecated:  e.deprecated,
			TimeFetched: e.timeFetched.Unix(),
		}
	}
	return r.store.Save(snap)
}
