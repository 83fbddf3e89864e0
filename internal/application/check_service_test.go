package application_test

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	semver "github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcheck/relcheck/internal/adapters/outbound/project"
	"github.com/relcheck/relcheck/internal/application"
	"github.com/relcheck/relcheck/internal/domain"
	"github.com/relcheck/relcheck/internal/domain/rules"
)

// fakeGenerator resolves snapshots by a caller-provided function and counts
// invocations.
type fakeGenerator struct {
	fn    func(root string) (*domain.APISnapshot, error)
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, root string, _ bool) (*domain.APISnapshot, error) {
	f.calls++
	return f.fn(root)
}

type fakeRegistry struct {
	versions []string
	sources  map[string]string // version -> source dir
	asked    []string          // versions passed to EnsureSource
}

func (f *fakeRegistry) LatestVersion(_ context.Context, name string) (*semver.Version, error) {
	var latest *semver.Version
	for _, raw := range f.versions {
		v := semver.MustParse(raw)
		if latest == nil || v.GreaterThan(latest) {
			latest = v
		}
	}
	if latest == nil {
		return nil, domain.Errorf(domain.KindResolution, "package %s has no published versions", name)
	}
	return latest, nil
}

func (f *fakeRegistry) EnsureSource(_ context.Context, _, version string) (string, error) {
	f.asked = append(f.asked, version)
	dir, ok := f.sources[version]
	if !ok {
		return "", domain.Errorf(domain.KindResolution, "version %s does not exist", version)
	}
	return dir, nil
}

type fakeRevisions struct {
	dir   string
	err   error
	calls int
}

func (f *fakeRevisions) EnsureCheckout(_ context.Context, _, _, _ string) (string, error) {
	f.calls++
	return f.dir, f.err
}

// writeWorkspace materializes a workspace directory with the given manifest
// and an empty source dir per member path.
func writeWorkspace(t *testing.T, manifest string, memberPaths ...string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, project.ManifestName), []byte(manifest), 0644))
	for _, p := range memberPaths {
		require.NoError(t, os.MkdirAll(filepath.Join(root, p), 0755))
	}
	return root
}

func writeSnapshotFile(t *testing.T, snap *domain.APISnapshot) string {
	t.Helper()
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func demoAPI(withFoo bool) *domain.APISnapshot {
	snap := &domain.APISnapshot{Package: "demo", Version: "1.0.0"}
	if withFoo {
		snap.Functions = []domain.Function{
			{Name: "Foo", Params: []domain.Param{{Name: "x", Type: "int64"}}},
		}
	}
	return snap
}

func newService(t *testing.T, gen *fakeGenerator, reg domain.RegistryClient, rev domain.RevisionCache) *application.CheckService {
	t.Helper()
	catalog, err := rules.Load()
	require.NoError(t, err)
	return application.NewCheckService(project.New(), gen, reg, rev, catalog, log.New(io.Discard))
}

const demoManifest = "members:\n  - {name: demo, version: 1.0.0, path: pkg}\n"

// Scenario A: identical interfaces on both sides pass.
func TestCheckRelease_SelfComparisonPasses(t *testing.T) {
	root := writeWorkspace(t, demoManifest, "pkg")
	gen := &fakeGenerator{fn: func(string) (*domain.APISnapshot, error) { return demoAPI(true), nil }}
	svc := newService(t, gen, nil, nil)

	report, err := svc.CheckRelease(context.Background(), application.CheckConfig{
		Current:  domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: root},
		Baseline: domain.RootBaseline(root),
	})
	require.NoError(t, err)
	require.Len(t, report.Verdicts, 1)
	assert.True(t, report.Success())
	assert.Empty(t, report.Verdicts[0].Findings)
}

// Scenario B: the baseline exposes Foo, the current side removed it.
func TestCheckRelease_RemovedFunctionFails(t *testing.T) {
	currentRoot := writeWorkspace(t, demoManifest, "pkg")
	baselineRoot := writeWorkspace(t, demoManifest, "pkg")

	gen := &fakeGenerator{fn: func(root string) (*domain.APISnapshot, error) {
		if filepath.Dir(root) == baselineRoot {
			return demoAPI(true), nil
		}
		return demoAPI(false), nil
	}}
	svc := newService(t, gen, nil, nil)

	report, err := svc.CheckRelease(context.Background(), application.CheckConfig{
		Current:  domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: currentRoot},
		Baseline: domain.RootBaseline(baselineRoot),
	})
	require.NoError(t, err)
	assert.False(t, report.Success())

	require.Len(t, report.Verdicts, 1)
	findings := report.Verdicts[0].Findings
	require.NotEmpty(t, findings)
	assert.Equal(t, "function_missing", findings[0].RuleID)
	assert.Equal(t, domain.UpdateMajor, findings[0].RequiredUpdate)
}

func TestCheckRelease_PrebuiltSnapshotPair(t *testing.T) {
	current := writeSnapshotFile(t, demoAPI(false))
	baseline := writeSnapshotFile(t, demoAPI(true))

	gen := &fakeGenerator{fn: func(string) (*domain.APISnapshot, error) {
		t.Fatal("prebuilt snapshots must not invoke the generator")
		return nil, nil
	}}
	svc := newService(t, gen, nil, nil)

	report, err := svc.CheckRelease(context.Background(), application.CheckConfig{
		Current:  domain.CurrentSpec{Kind: domain.CurrentSnapshot, SnapshotPath: current},
		Baseline: domain.SnapshotBaseline(baseline),
	})
	require.NoError(t, err)
	assert.False(t, report.Success())
	assert.Equal(t, "demo", report.Verdicts[0].Package)
}

// Configuration errors must surface before any fetch or generation work.
func TestCheckRelease_ConfigurationErrors(t *testing.T) {
	gen := &fakeGenerator{fn: func(string) (*domain.APISnapshot, error) { return demoAPI(true), nil }}
	rev := &fakeRevisions{dir: t.TempDir()}
	svc := newService(t, gen, nil, rev)

	cases := map[string]application.CheckConfig{
		"current snapshot without baseline snapshot": {
			Current:  domain.CurrentSpec{Kind: domain.CurrentSnapshot, SnapshotPath: "x.json"},
			Baseline: domain.LatestBaseline(),
		},
		"conflicting baselines": {
			Current: domain.CurrentSpec{Kind: domain.CurrentDir},
			Baseline: domain.BaselineSpec{
				Kind:     domain.BaselineVersion,
				Version:  "1.0.0",
				Revision: "HEAD~1",
			},
		},
		"version kind without version": {
			Current:  domain.CurrentSpec{Kind: domain.CurrentDir},
			Baseline: domain.BaselineSpec{Kind: domain.BaselineVersion},
		},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CheckRelease(context.Background(), cfg)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindConfiguration))
			assert.Zero(t, gen.calls, "no generation before configuration validation")
			assert.Zero(t, rev.calls, "no fetches before configuration validation")
		})
	}
}

// Scenario C: a revision that cannot be resolved aborts the run before any
// snapshot is generated or rule evaluated.
func TestCheckRelease_BadRevisionAbortsBeforeEvaluation(t *testing.T) {
	root := writeWorkspace(t, demoManifest, "pkg")
	gen := &fakeGenerator{fn: func(string) (*domain.APISnapshot, error) { return demoAPI(true), nil }}
	rev := &fakeRevisions{err: domain.Errorf(domain.KindFetch, `resolving revision "abc123": not found`)}
	svc := newService(t, gen, nil, rev)

	report, err := svc.CheckRelease(context.Background(), application.CheckConfig{
		Current:  domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: root},
		Baseline: domain.RevisionBaseline("abc123"),
	})
	require.Error(t, err)
	assert.Nil(t, report, "no partial report on an aborted run")
	assert.True(t, domain.IsKind(err, domain.KindFetch))
	assert.Zero(t, gen.calls)
}

func TestCheckRelease_LatestVersionResolution(t *testing.T) {
	root := writeWorkspace(t, demoManifest, "pkg")
	baselineSource := t.TempDir()

	gen := &fakeGenerator{fn: func(root string) (*domain.APISnapshot, error) {
		if root == baselineSource {
			snap := demoAPI(true)
			snap.Version = "1.2.0"
			return snap, nil
		}
		return demoAPI(true), nil
	}}
	reg := &fakeRegistry{
		versions: []string{"1.0.0", "1.2.0", "0.9.0"},
		sources:  map[string]string{"1.2.0": baselineSource},
	}
	svc := newService(t, gen, reg, nil)

	report, err := svc.CheckRelease(context.Background(), application.CheckConfig{
		Current:  domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: root},
		Baseline: domain.LatestBaseline(),
	})
	require.NoError(t, err)
	assert.True(t, report.Success())
	assert.Equal(t, []string{"1.2.0"}, reg.asked, "baseline must be the semver maximum")
}

func TestCheckRelease_InvalidBaselineVersionIsResolutionError(t *testing.T) {
	root := writeWorkspace(t, demoManifest, "pkg")
	gen := &fakeGenerator{fn: func(string) (*domain.APISnapshot, error) { return demoAPI(true), nil }}
	svc := newService(t, gen, &fakeRegistry{}, nil)

	_, err := svc.CheckRelease(context.Background(), application.CheckConfig{
		Current:  domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: root},
		Baseline: domain.VersionBaseline("not-a-version"),
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindResolution))
}

const mixedManifest = `
members:
  - {name: demo, version: 1.0.0, path: pkg}
  - {name: internal-tool, version: 0.1.0, path: tool, publish: false}
`

func TestCheckRelease_WorkspaceSkipsNonPublishable(t *testing.T) {
	root := writeWorkspace(t, mixedManifest, "pkg", "tool")
	gen := &fakeGenerator{fn: func(string) (*domain.APISnapshot, error) { return demoAPI(true), nil }}
	svc := newService(t, gen, nil, nil)

	report, err := svc.CheckRelease(context.Background(), application.CheckConfig{
		Current:  domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: root},
		Scope:    domain.Scope{Selection: domain.SelectWorkspace},
		Baseline: domain.RootBaseline(root),
	})
	require.NoError(t, err)
	require.Len(t, report.Verdicts, 1)
	assert.Equal(t, "demo", report.Verdicts[0].Package)
}

// The skip-with-notice only applies to workspace mode. A non-publishable
// package that is a default member still gets checked in the default
// invocation.
func TestCheckRelease_DefaultMembersKeepNonPublishable(t *testing.T) {
	manifest := `
members:
  - {name: demo, version: 1.0.0, path: pkg}
  - {name: internal-tool, version: 0.1.0, path: tool, publish: false}
default_members: [internal-tool]
`
	root := writeWorkspace(t, manifest, "pkg", "tool")
	gen := &fakeGenerator{fn: func(string) (*domain.APISnapshot, error) { return demoAPI(true), nil }}
	svc := newService(t, gen, nil, nil)

	report, err := svc.CheckRelease(context.Background(), application.CheckConfig{
		Current:  domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: root},
		Baseline: domain.RootBaseline(root),
	})
	require.NoError(t, err)
	require.Len(t, report.Verdicts, 1)
	assert.Equal(t, "internal-tool", report.Verdicts[0].Package)
}

// Explicitly named packages are never silently skipped, publishable or not.
func TestCheckRelease_ExplicitSelectionKeepsNonPublishable(t *testing.T) {
	root := writeWorkspace(t, mixedManifest, "pkg", "tool")
	gen := &fakeGenerator{fn: func(string) (*domain.APISnapshot, error) { return demoAPI(true), nil }}
	svc := newService(t, gen, nil, nil)

	report, err := svc.CheckRelease(context.Background(), application.CheckConfig{
		Current:  domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: root},
		Scope:    domain.Scope{Selection: domain.SelectPackages, Packages: []string{"internal-tool"}},
		Baseline: domain.RootBaseline(root),
	})
	require.NoError(t, err)
	require.Len(t, report.Verdicts, 1)
	assert.Equal(t, "internal-tool", report.Verdicts[0].Package)
}

func TestCheckRelease_ExcludedPackageNeverEvaluated(t *testing.T) {
	root := writeWorkspace(t, mixedManifest, "pkg", "tool")
	gen := &fakeGenerator{fn: func(string) (*domain.APISnapshot, error) { return demoAPI(true), nil }}
	svc := newService(t, gen, nil, nil)

	report, err := svc.CheckRelease(context.Background(), application.CheckConfig{
		Current:  domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: root},
		Scope:    domain.Scope{Selection: domain.SelectWorkspace, Exclude: []string{"demo"}},
		Baseline: domain.RootBaseline(root),
	})
	require.NoError(t, err)
	for _, v := range report.Verdicts {
		assert.NotEqual(t, "demo", v.Package)
	}
}

// An empty selection yields a vacuously successful report.
func TestCheckRelease_EmptySelectionSucceeds(t *testing.T) {
	root := writeWorkspace(t, demoManifest, "pkg")
	gen := &fakeGenerator{fn: func(string) (*domain.APISnapshot, error) { return demoAPI(true), nil }}
	svc := newService(t, gen, nil, nil)

	report, err := svc.CheckRelease(context.Background(), application.CheckConfig{
		Current:  domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: root},
		Scope:    domain.Scope{Selection: domain.SelectPackages, Packages: []string{"no-such-package"}},
		Baseline: domain.RootBaseline(root),
	})
	require.NoError(t, err)
	assert.Empty(t, report.Verdicts)
	assert.True(t, report.Success())
	assert.Zero(t, gen.calls)
}

func TestCheckRelease_InvalidBaselineRootIsConfigurationError(t *testing.T) {
	root := writeWorkspace(t, demoManifest, "pkg")
	gen := &fakeGenerator{fn: func(string) (*domain.APISnapshot, error) { return demoAPI(true), nil }}
	svc := newService(t, gen, nil, nil)

	_, err := svc.CheckRelease(context.Background(), application.CheckConfig{
		Current:  domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: root},
		Baseline: domain.RootBaseline(t.TempDir()),
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConfiguration))
}
