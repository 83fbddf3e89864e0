package domain

import (
	"context"

	semver "github.com/Masterminds/semver/v3"
)

// ManifestLoader loads the project's workspace manifest.
type ManifestLoader interface {
	// Load reads the manifest at location, which may be the manifest file
	// itself or a directory containing one.
	Load(location string) (*ProjectManifest, error)
}

// SnapshotGenerator produces an APISnapshot from a package source root by
// invoking the external generator tool. The pipeline always passes
// includeDeps=false: only the package's own interface is snapshotted.
type SnapshotGenerator interface {
	Generate(ctx context.Context, packageRoot string, includeDeps bool) (*APISnapshot, error)
}

// RegistryClient talks to the package registry and its on-disk download
// cache.
type RegistryClient interface {
	// EnsureSource makes the published source of (name, version) present
	// under its fingerprinted cache path and returns that path. Repeat
	// requests reuse the existing download.
	EnsureSource(ctx context.Context, name, version string) (string, error)
	// LatestVersion resolves the highest published version of name.
	LatestVersion(ctx context.Context, name string) (*semver.Version, error)
}

// RevisionCache materializes git checkouts under fingerprinted cache paths.
type RevisionCache interface {
	// EnsureCheckout makes a checkout of rev (resolved against the repo at
	// sourceRoot) present under cacheRoot and returns its path. An existing
	// checkout is reused without touching the repository.
	EnsureCheckout(ctx context.Context, sourceRoot, cacheRoot, rev string) (string, error)
}
