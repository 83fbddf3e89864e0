package project_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/relcheck/relcheck/internal/adapters/outbound/project"
	"github.com/relcheck/relcheck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, project.ManifestName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return dir
}

const validManifest = `
members:
  - name: demo
    version: 1.0.0
    path: .
  - name: helper
    version: 0.3.0
    path: helper
    publish: false
default_members: [demo]
`

func TestLoad_FromDirectory(t *testing.T) {
	dir := writeManifest(t, validManifest)

	m, err := project.New().Load(dir)
	require.NoError(t, err)

	assert.Len(t, m.Members, 2)
	assert.Equal(t, []string{"demo"}, m.DefaultMembers)

	demo, ok := m.Member("demo")
	require.True(t, ok)
	assert.True(t, demo.Publishable())

	helper, ok := m.Member("helper")
	require.True(t, ok)
	assert.False(t, helper.Publishable())

	assert.Equal(t, filepath.Join(m.RootPath, "helper"), m.PackageRoot(helper))
	assert.Equal(t, filepath.Join(m.RootPath, "target", "relcheck"), m.CacheDir())
}

func TestLoad_FromFilePath(t *testing.T) {
	dir := writeManifest(t, validManifest)

	m, err := project.New().Load(filepath.Join(dir, project.ManifestName))
	require.NoError(t, err)
	assert.Len(t, m.Members, 2)
}

func TestLoad_MissingManifestIsConfigurationError(t *testing.T) {
	_, err := project.New().Load(filepath.Join(t.TempDir(), "nowhere"))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConfiguration))
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"no members":       `members: []`,
		"duplicate member": "members:\n  - {name: a, version: 1.0.0, path: a}\n  - {name: a, version: 1.0.0, path: b}\n",
		"missing path":     "members:\n  - {name: a, version: 1.0.0}\n",
		"unknown default":  "members:\n  - {name: a, version: 1.0.0, path: a}\ndefault_members: [ghost]\n",
		"malformed yaml":   "members: [unclosed",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := writeManifest(t, content)
			_, err := project.New().Load(dir)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindConfiguration))
		})
	}
}
