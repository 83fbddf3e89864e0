// Package project loads the workspace manifest that defines which packages
// a project is made of.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/relcheck/relcheck/internal/domain"
)

// ManifestName is the workspace manifest file relcheck looks for at a
// project or package root.
const ManifestName = "relcheck.yaml"

// Loader implements domain.ManifestLoader by reading relcheck.yaml.
type Loader struct{}

// New creates a manifest Loader.
func New() *Loader { return &Loader{} }

// Load reads the manifest at location, which may be the manifest file itself
// or a directory containing one. Any problem with the project definition is
// a configuration error: it is detectable before fetch or generation work.
func (l *Loader) Load(location string) (*domain.ProjectManifest, error) {
	path := location
	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.Errorf(domain.KindConfiguration, "project manifest %s: %w", location, err)
	}
	if info.IsDir() {
		path = filepath.Join(location, ManifestName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.Errorf(domain.KindConfiguration, "reading project manifest: %w", err)
	}

	var manifest domain.ProjectManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, domain.Errorf(domain.KindConfiguration, "parsing %s: %w", path, err)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, domain.Errorf(domain.KindConfiguration, "resolving project root: %w", err)
	}
	manifest.RootPath = root

	if err := validate(&manifest); err != nil {
		return nil, domain.Errorf(domain.KindConfiguration, "invalid %s: %w", path, err)
	}
	return &manifest, nil
}

func validate(m *domain.ProjectManifest) error {
	if len(m.Members) == 0 {
		return fmt.Errorf("workspace declares no members")
	}
	seen := make(map[string]bool, len(m.Members))
	for i, p := range m.Members {
		if p.Name == "" {
			return fmt.Errorf("member %d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate member %q", p.Name)
		}
		seen[p.Name] = true
		if p.Path == "" {
			return fmt.Errorf("member %q has no path", p.Name)
		}
	}
	for _, name := range m.DefaultMembers {
		if !seen[name] {
			return fmt.Errorf("default member %q is not a workspace member", name)
		}
	}
	return nil
}
