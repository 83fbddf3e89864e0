package application

import (
	"context"
	"os"

	semver "github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/relcheck/relcheck/internal/domain"
)

// baselineLoader produces the "before" snapshot for one package. One
// implementation exists per baseline kind; the set is closed.
type baselineLoader interface {
	loadSnapshot(ctx context.Context, name, currentVersion string) (*domain.APISnapshot, error)
}

// registryBaseline fetches published source from the registry cache and
// snapshots it. With no pinned version it resolves the latest published one.
type registryBaseline struct {
	registry  domain.RegistryClient
	generator domain.SnapshotGenerator
	logger    *log.Logger
	pinned    *semver.Version
}

func (b *registryBaseline) loadSnapshot(ctx context.Context, name, _ string) (*domain.APISnapshot, error) {
	version := b.pinned
	if version == nil {
		latest, err := b.registry.LatestVersion(ctx, name)
		if err != nil {
			return nil, err
		}
		version = latest
	}

	b.logger.Info("Parsing", "package", name, "version", version.String(), "side", "baseline")
	dir, err := b.registry.EnsureSource(ctx, name, version.String())
	if err != nil {
		return nil, err
	}

	snap, err := b.generator.Generate(ctx, dir, false)
	if err != nil {
		return nil, err
	}
	if snap.Package == "" {
		snap.Package = name
	}
	if snap.Version == "" {
		snap.Version = version.String()
	}
	return snap, nil
}

// workspaceBaseline snapshots a package out of a baseline workspace on disk,
// either a local source root or a cached git checkout.
type workspaceBaseline struct {
	root      string
	manifests domain.ManifestLoader
	generator domain.SnapshotGenerator
	logger    *log.Logger
}

func (b *workspaceBaseline) loadSnapshot(ctx context.Context, name, _ string) (*domain.APISnapshot, error) {
	manifest, err := b.manifests.Load(b.root)
	if err != nil {
		return nil, err
	}
	pkg, ok := manifest.Member(name)
	if !ok {
		return nil, domain.Errorf(domain.KindResolution, "package %q is not a member of the baseline workspace at %s", name, b.root)
	}

	b.logger.Info("Parsing", "package", pkg.Name, "version", pkg.Version, "side", "baseline")
	snap, err := b.generator.Generate(ctx, manifest.PackageRoot(pkg), false)
	if err != nil {
		return nil, err
	}
	if snap.Package == "" {
		snap.Package = pkg.Name
	}
	if snap.Version == "" {
		snap.Version = pkg.Version
	}
	return snap, nil
}

// fileBaseline loads a prebuilt snapshot document, bypassing generation.
type fileBaseline struct {
	path string
}

func (b *fileBaseline) loadSnapshot(_ context.Context, _, _ string) (*domain.APISnapshot, error) {
	return loadSnapshotFile(b.path)
}

func loadSnapshotFile(path string) (*domain.APISnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.Errorf(domain.KindFormat, "reading snapshot %s: %w", path, err)
	}
	snap, err := domain.ParseSnapshot(data)
	if err != nil {
		return nil, domain.Errorf(domain.KindFormat, "parsing snapshot %s: %w", path, err)
	}
	return snap, nil
}
