package rules

import (
	semver "github.com/Masterminds/semver/v3"

	"github.com/relcheck/relcheck/internal/domain"
)

// bumpBetween classifies the release bump declared between the baseline and
// current snapshot versions. An empty result means no effective bump, which
// leaves every rule active: if a version is missing or unparseable we cannot
// credit the release with any bump, so the full catalog applies.
//
// Pre-1.0 versions follow the usual registry convention: for 0.y.z the minor
// position carries breaking weight, and for 0.0.z every bump does.
func bumpBetween(baselineVersion, currentVersion string) domain.RequiredUpdate {
	baseline, err := semver.NewVersion(baselineVersion)
	if err != nil {
		return ""
	}
	current, err := semver.NewVersion(currentVersion)
	if err != nil {
		return ""
	}
	if !current.GreaterThan(baseline) {
		return ""
	}

	switch {
	case current.Major() > baseline.Major():
		return domain.UpdateMajor
	case current.Minor() > baseline.Minor():
		if baseline.Major() == 0 {
			return domain.UpdateMajor
		}
		return domain.UpdateMinor
	default:
		if baseline.Major() == 0 && baseline.Minor() == 0 {
			return domain.UpdateMajor
		}
		return domain.UpdatePatch
	}
}
