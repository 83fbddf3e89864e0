package domain

// BaselineKind enumerates the closed set of baseline resolution strategies.
type BaselineKind int

const (
	// BaselineLatest resolves the highest published version in the registry.
	// The default when no baseline is configured.
	BaselineLatest BaselineKind = iota
	// BaselineVersion fetches an exact published version from the registry.
	BaselineVersion
	// BaselineRevision checks out a revision of the project's own history.
	BaselineRevision
	// BaselineRoot snapshots a local source directory directly.
	BaselineRoot
	// BaselineSnapshot loads a prebuilt snapshot document from disk.
	BaselineSnapshot
)

// BaselineSpec selects how the "before" snapshot is obtained. Exactly one
// kind is active per run; it is immutable configuration set before execution.
type BaselineSpec struct {
	Kind BaselineKind

	Version      string // BaselineVersion
	Revision     string // BaselineRevision
	Root         string // BaselineRoot
	SnapshotPath string // BaselineSnapshot
}

// LatestBaseline resolves against the latest published version.
func LatestBaseline() BaselineSpec {
	return BaselineSpec{Kind: BaselineLatest}
}

// VersionBaseline resolves against an exact published version.
func VersionBaseline(version string) BaselineSpec {
	return BaselineSpec{Kind: BaselineVersion, Version: version}
}

// RevisionBaseline resolves against a revision of the project's history.
func RevisionBaseline(rev string) BaselineSpec {
	return BaselineSpec{Kind: BaselineRevision, Revision: rev}
}

// RootBaseline snapshots a local directory.
func RootBaseline(root string) BaselineSpec {
	return BaselineSpec{Kind: BaselineRoot, Root: root}
}

// SnapshotBaseline loads a prebuilt snapshot document.
func SnapshotBaseline(path string) BaselineSpec {
	return BaselineSpec{Kind: BaselineSnapshot, SnapshotPath: path}
}

// CurrentKind enumerates how the "current" side is located.
type CurrentKind int

const (
	// CurrentDir uses the manifest in the working directory.
	CurrentDir CurrentKind = iota
	// CurrentManifest uses an explicit manifest path (file or directory).
	CurrentManifest
	// CurrentSnapshot uses a prebuilt snapshot document; requires a
	// prebuilt baseline as well.
	CurrentSnapshot
)

// CurrentSpec selects the current side of the comparison.
type CurrentSpec struct {
	Kind         CurrentKind
	ManifestPath string // CurrentManifest
	SnapshotPath string // CurrentSnapshot
}

// Location returns the manifest location for manifest-backed current kinds.
func (c CurrentSpec) Location() string {
	if c.Kind == CurrentManifest {
		return c.ManifestPath
	}
	return "."
}
