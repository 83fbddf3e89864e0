// Package rules holds the declarative compatibility rule catalog and the
// engine that evaluates it against a pair of API snapshots.
package rules

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/relcheck/relcheck/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Rule is one declarative compatibility check: a stable id, the version bump
// it signals, user-facing text, and a pure matcher over a snapshot pair.
type Rule struct {
	ID             string                `json:"id"`
	RequiredUpdate domain.RequiredUpdate `json:"required_update"`
	Description    string                `json:"description"`
	Reference      string                `json:"reference,omitempty"`
	ReferenceLink  string                `json:"reference_link,omitempty"`

	run matcherFunc
}

// Catalog is the full rule set, loaded once per process and immutable after.
type Catalog struct {
	rules []Rule
	byID  map[string]int
}

type catalogDoc struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	ID             string `yaml:"id"`
	RequiredUpdate string `yaml:"required_update"`
	Kind           string `yaml:"kind"`
	Description    string `yaml:"description"`
	Reference      string `yaml:"reference"`
	ReferenceLink  string `yaml:"reference_link"`
}

// Load parses and validates the embedded catalog. A malformed or internally
// inconsistent catalog is a defect in relcheck itself and yields an internal
// error, which aborts the whole run.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse builds a catalog from raw YAML. Exposed for catalog validation tests.
func Parse(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.Errorf(domain.KindInternal, "parsing rule catalog: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, domain.Errorf(domain.KindInternal, "rule catalog is empty")
	}

	c := &Catalog{
		rules: make([]Rule, 0, len(doc.Rules)),
		byID:  make(map[string]int, len(doc.Rules)),
	}
	for _, entry := range doc.Rules {
		if entry.ID == "" {
			return nil, domain.Errorf(domain.KindInternal, "rule catalog contains a rule without an id")
		}
		if _, dup := c.byID[entry.ID]; dup {
			return nil, domain.Errorf(domain.KindInternal, "duplicate rule id %q", entry.ID)
		}
		update := domain.RequiredUpdate(entry.RequiredUpdate)
		if !update.Valid() {
			return nil, domain.Errorf(domain.KindInternal, "rule %q: invalid required_update %q", entry.ID, entry.RequiredUpdate)
		}
		if entry.Description == "" {
			return nil, domain.Errorf(domain.KindInternal, "rule %q: missing description", entry.ID)
		}
		run, ok := matchers[entry.Kind]
		if !ok {
			return nil, domain.Errorf(domain.KindInternal, "rule %q: unknown matcher kind %q", entry.ID, entry.Kind)
		}

		c.byID[entry.ID] = len(c.rules)
		c.rules = append(c.rules, Rule{
			ID:             entry.ID,
			RequiredUpdate: update,
			Description:    entry.Description,
			Reference:      entry.Reference,
			ReferenceLink:  entry.ReferenceLink,
			run:            run,
		})
	}
	return c, nil
}

// Rules returns the catalog in declaration order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Rule looks a rule up by id. Pure lookup, no side effects.
func (c *Catalog) Rule(id string) (Rule, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

// IDs returns every rule id, sorted. Used for "unknown id" error output.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Evaluate runs every rule in catalog order against the snapshot pair and
// returns the findings. Rules whose required bump is already covered by the
// version change between the two snapshots do not fire: the catalog states
// what each change requires, and a sufficient declared bump is compliance.
func (c *Catalog) Evaluate(current, baseline *domain.APISnapshot) []domain.Finding {
	pkg := current.Package
	if pkg == "" {
		pkg = baseline.Package
	}

	actual := bumpBetween(baseline.Version, current.Version)

	var findings []domain.Finding
	for _, rule := range c.rules {
		if bumpRank(actual) >= bumpRank(rule.RequiredUpdate) {
			continue
		}
		for _, m := range rule.run(current, baseline) {
			findings = append(findings, domain.Finding{
				RuleID:         rule.ID,
				RequiredUpdate: rule.RequiredUpdate,
				Package:        pkg,
				Symbol:         m.symbol,
				Message:        m.message,
			})
		}
	}
	return findings
}

func bumpRank(u domain.RequiredUpdate) int {
	switch u {
	case domain.UpdateMajor:
		return 3
	case domain.UpdateMinor:
		return 2
	case domain.UpdatePatch:
		return 1
	default:
		return 0
	}
}

// String renders the rule as a one-line summary, the way `relcheck list`
// prints it.
func (r Rule) String() string {
	return fmt.Sprintf("%s (%s): %s", r.ID, r.RequiredUpdate, r.Description)
}
