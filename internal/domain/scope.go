package domain

// Selection decides which workspace members participate in a run.
type Selection int

const (
	// SelectDefaultMembers checks the manifest's default-build members,
	// falling back to the whole workspace when none are declared.
	SelectDefaultMembers Selection = iota
	// SelectWorkspace checks every workspace member.
	SelectWorkspace
	// SelectPackages checks an explicit list of member names.
	SelectPackages
)

// Scope is the package-selection configuration for a run. Constructed once
// from configuration and never mutated.
type Scope struct {
	Selection Selection
	// Packages holds the requested names for SelectPackages. Names are
	// matched only against resolved workspace members; there is no pattern
	// expansion, and names that are not members are silently dropped.
	Packages []string
	// Exclude is removed from the final selection regardless of mode.
	Exclude []string
}

// SelectMembers resolves the scope against a loaded manifest and returns the
// packages to evaluate, in manifest order. The exclusion list applies last.
func (s Scope) SelectMembers(m *ProjectManifest) []Package {
	var base []Package
	switch s.Selection {
	case SelectWorkspace:
		base = m.Members
	case SelectPackages:
		requested := toSet(s.Packages)
		for _, p := range m.Members {
			if requested[p.Name] {
				base = append(base, p)
			}
		}
	default: // SelectDefaultMembers
		if len(m.DefaultMembers) == 0 {
			base = m.Members
			break
		}
		defaults := toSet(m.DefaultMembers)
		for _, p := range m.Members {
			if defaults[p.Name] {
				base = append(base, p)
			}
		}
	}

	excluded := toSet(s.Exclude)
	selected := make([]Package, 0, len(base))
	for _, p := range base {
		if !excluded[p.Name] {
			selected = append(selected, p)
		}
	}
	return selected
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
