// Package application orchestrates the release-compatibility pipeline:
// resolve scope -> snapshot current -> resolve baseline -> evaluate rules ->
// fold a Report.
package application

import (
	"context"

	semver "github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/relcheck/relcheck/internal/domain"
	"github.com/relcheck/relcheck/internal/domain/rules"
)

// CheckConfig is the immutable configuration of one run, assembled by the
// inbound layer before execution starts.
type CheckConfig struct {
	Current  domain.CurrentSpec
	Scope    domain.Scope
	Baseline domain.BaselineSpec
}

// CheckService runs release-compatibility checks. Packages are processed
// strictly sequentially, in scope-resolution order; within a package the
// current snapshot is always generated before the baseline is requested.
type CheckService struct {
	manifests domain.ManifestLoader
	generator domain.SnapshotGenerator
	registry  domain.RegistryClient
	revisions domain.RevisionCache
	catalog   *rules.Catalog
	logger    *log.Logger
}

func NewCheckService(
	manifests domain.ManifestLoader,
	generator domain.SnapshotGenerator,
	registry domain.RegistryClient,
	revisions domain.RevisionCache,
	catalog *rules.Catalog,
	logger *log.Logger,
) *CheckService {
	return &CheckService{
		manifests: manifests,
		generator: generator,
		registry:  registry,
		revisions: revisions,
		catalog:   catalog,
		logger:    logger,
	}
}

// CheckRelease executes one run and returns its Report. Configuration errors
// surface before any fetch or generation work; every later error aborts the
// run with no Report at all. Findings are not errors.
func (s *CheckService) CheckRelease(ctx context.Context, cfg CheckConfig) (*domain.Report, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.Current.Kind == domain.CurrentSnapshot {
		return s.checkPrebuilt(cfg)
	}

	manifest, err := s.manifests.Load(cfg.Current.Location())
	if err != nil {
		return nil, err
	}
	loader, err := s.newBaselineLoader(ctx, cfg.Baseline, manifest)
	if err != nil {
		return nil, err
	}

	selected := cfg.Scope.SelectMembers(manifest)
	implied := cfg.Scope.Selection == domain.SelectWorkspace

	verdicts := make([]domain.CheckVerdict, 0, len(selected))
	for _, pkg := range selected {
		// Implied-scope packages are optional; explicitly named ones are
		// never silently skipped.
		if implied && !pkg.Publishable() {
			s.logger.Info("Skipping", "package", pkg.Name, "version", pkg.Version, "reason", "not publishable")
			continue
		}

		s.logger.Info("Parsing", "package", pkg.Name, "version", pkg.Version, "side", "current")
		current, err := s.generator.Generate(ctx, manifest.PackageRoot(pkg), false)
		if err != nil {
			return nil, err
		}
		if current.Package == "" {
			current.Package = pkg.Name
		}
		if current.Version == "" {
			current.Version = pkg.Version
		}

		baseline, err := loader.loadSnapshot(ctx, pkg.Name, pkg.Version)
		if err != nil {
			return nil, err
		}

		verdicts = append(verdicts, s.evaluate(pkg.Name, current, baseline))
	}

	return &domain.Report{Verdicts: verdicts}, nil
}

func (s *CheckService) checkPrebuilt(cfg CheckConfig) (*domain.Report, error) {
	current, err := loadSnapshotFile(cfg.Current.SnapshotPath)
	if err != nil {
		return nil, err
	}
	baseline, err := loadSnapshotFile(cfg.Baseline.SnapshotPath)
	if err != nil {
		return nil, err
	}

	name := current.Package
	if name == "" {
		name = "<unknown>"
	}
	verdict := s.evaluate(name, current, baseline)
	return &domain.Report{Verdicts: []domain.CheckVerdict{verdict}}, nil
}

func (s *CheckService) evaluate(name string, current, baseline *domain.APISnapshot) domain.CheckVerdict {
	findings := s.catalog.Evaluate(current, baseline)
	verdict := domain.CheckVerdict{Package: name, Version: current.Version, Findings: findings}
	if verdict.Pass() {
		s.logger.Info("Checked", "package", name, "result", "ok")
	} else {
		s.logger.Warn("Checked", "package", name, "result", "violations", "count", len(findings))
	}
	return verdict
}

func (s *CheckService) newBaselineLoader(ctx context.Context, spec domain.BaselineSpec, manifest *domain.ProjectManifest) (baselineLoader, error) {
	switch spec.Kind {
	case domain.BaselineVersion:
		version, err := semver.NewVersion(spec.Version)
		if err != nil {
			return nil, domain.Errorf(domain.KindResolution, "baseline version %q is not a valid semantic version: %w", spec.Version, err)
		}
		if s.registry == nil {
			return nil, domain.Errorf(domain.KindConfiguration, "no registry configured")
		}
		return &registryBaseline{registry: s.registry, generator: s.generator, logger: s.logger, pinned: version}, nil

	case domain.BaselineLatest:
		if s.registry == nil {
			return nil, domain.Errorf(domain.KindConfiguration, "no registry configured")
		}
		return &registryBaseline{registry: s.registry, generator: s.generator, logger: s.logger}, nil

	case domain.BaselineRevision:
		root, err := s.revisions.EnsureCheckout(ctx, manifest.RootPath, manifest.CacheDir(), spec.Revision)
		if err != nil {
			return nil, err
		}
		return &workspaceBaseline{root: root, manifests: s.manifests, generator: s.generator, logger: s.logger}, nil

	case domain.BaselineRoot:
		// Validate eagerly so a bogus root fails before any generation.
		if _, err := s.manifests.Load(spec.Root); err != nil {
			return nil, domain.Errorf(domain.KindConfiguration, "baseline root %s is not a valid package root: %w", spec.Root, err)
		}
		return &workspaceBaseline{root: spec.Root, manifests: s.manifests, generator: s.generator, logger: s.logger}, nil

	case domain.BaselineSnapshot:
		return &fileBaseline{path: spec.SnapshotPath}, nil

	default:
		return nil, domain.Errorf(domain.KindInternal, "unknown baseline kind %d", spec.Kind)
	}
}

func validateConfig(cfg CheckConfig) error {
	active := 0
	if cfg.Baseline.Version != "" {
		active++
	}
	if cfg.Baseline.Revision != "" {
		active++
	}
	if cfg.Baseline.Root != "" {
		active++
	}
	if cfg.Baseline.SnapshotPath != "" {
		active++
	}
	if active > 1 {
		return domain.Errorf(domain.KindConfiguration, "baseline kinds are mutually exclusive; pick one of version, revision, root, or snapshot")
	}

	switch cfg.Baseline.Kind {
	case domain.BaselineVersion:
		if cfg.Baseline.Version == "" {
			return domain.Errorf(domain.KindConfiguration, "baseline version is empty")
		}
	case domain.BaselineRevision:
		if cfg.Baseline.Revision == "" {
			return domain.Errorf(domain.KindConfiguration, "baseline revision is empty")
		}
	case domain.BaselineRoot:
		if cfg.Baseline.Root == "" {
			return domain.Errorf(domain.KindConfiguration, "baseline root is empty")
		}
	case domain.BaselineSnapshot:
		if cfg.Baseline.SnapshotPath == "" {
			return domain.Errorf(domain.KindConfiguration, "baseline snapshot path is empty")
		}
	}

	if cfg.Current.Kind == domain.CurrentSnapshot && cfg.Baseline.Kind != domain.BaselineSnapshot {
		return domain.Errorf(domain.KindConfiguration, "a prebuilt current snapshot requires a prebuilt baseline snapshot")
	}
	return nil
}
