package domain

import "path/filepath"

// RequiredUpdate is the version bump a rule demands when it fires.
type RequiredUpdate string

const (
	UpdateMajor RequiredUpdate = "major"
	UpdateMinor RequiredUpdate = "minor"
	UpdatePatch RequiredUpdate = "patch"
)

// Valid reports whether u is one of the known bump levels.
func (u RequiredUpdate) Valid() bool {
	switch u {
	case UpdateMajor, UpdateMinor, UpdatePatch:
		return true
	}
	return false
}

// Package is one member of the project's workspace. It is owned by the host
// project's manifest and read-only to the check pipeline.
type Package struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
	// Path is the package root, relative to the workspace root.
	Path string `yaml:"path" json:"path"`
	// Publish marks publish eligibility. Unset means publishable.
	Publish *bool `yaml:"publish,omitempty" json:"publish,omitempty"`
}

// Publishable reports whether the package may be published at all.
// Workspace-implied scope skips non-publishable members.
func (p Package) Publishable() bool {
	return p.Publish == nil || *p.Publish
}

// ProjectManifest is the resolved workspace model of the project under check.
type ProjectManifest struct {
	Members        []Package `yaml:"members"`
	DefaultMembers []string  `yaml:"default_members,omitempty"`
	TargetDir      string    `yaml:"target_dir,omitempty"`

	// RootPath is the directory containing the manifest file. Not part of
	// the document itself; filled in by the loader.
	RootPath string `yaml:"-"`
}

// Member looks up a workspace member by name.
func (m *ProjectManifest) Member(name string) (Package, bool) {
	for _, p := range m.Members {
		if p.Name == name {
			return p, true
		}
	}
	return Package{}, false
}

// PackageRoot returns the source root of a member package.
func (m *ProjectManifest) PackageRoot(p Package) string {
	return filepath.Join(m.RootPath, p.Path)
}

const cacheScope = "relcheck"

// CacheDir returns the relcheck-owned cache directory under the project's
// build-output directory. The path is stable across runs; caching depends
// on that, and it must not be shared with unrelated tooling.
func (m *ProjectManifest) CacheDir() string {
	target := m.TargetDir
	if target == "" {
		target = "target"
	}
	return filepath.Join(m.RootPath, target, cacheScope)
}

// Finding is one detected occurrence of a rule violation against a snapshot
// pair. Findings are ordinary output of a successful run, not errors.
type Finding struct {
	RuleID         string         `json:"rule_id"`
	RequiredUpdate RequiredUpdate `json:"required_update"`
	Package        string         `json:"package"`
	Symbol         string         `json:"symbol,omitempty"`
	Message        string         `json:"message"`
}

// CheckVerdict is the outcome for one evaluated package.
type CheckVerdict struct {
	Package  string    `json:"package"`
	Version  string    `json:"version,omitempty"`
	Findings []Finding `json:"findings,omitempty"`
}

// Pass reports whether the package survived the whole catalog unscathed.
func (v CheckVerdict) Pass() bool { return len(v.Findings) == 0 }

// Report is the terminal value of a run: the fold of every per-package
// verdict. Immutable once constructed.
type Report struct {
	Verdicts []CheckVerdict `json:"verdicts"`
}

// Success is the logical AND over all verdicts. An empty package set is
// vacuously successful.
func (r *Report) Success() bool {
	for _, v := range r.Verdicts {
		if !v.Pass() {
			return false
		}
	}
	return true
}
