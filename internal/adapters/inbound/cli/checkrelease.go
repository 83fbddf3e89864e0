package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/relcheck/relcheck/internal/adapters/outbound/gitcache"
	"github.com/relcheck/relcheck/internal/adapters/outbound/project"
	"github.com/relcheck/relcheck/internal/adapters/outbound/registry"
	"github.com/relcheck/relcheck/internal/adapters/outbound/snapshot"
	"github.com/relcheck/relcheck/internal/adapters/outbound/tui"
	"github.com/relcheck/relcheck/internal/application"
	"github.com/relcheck/relcheck/internal/domain"
	"github.com/relcheck/relcheck/internal/domain/rules"
)

// registryEnv overrides the registry base URL when the flag is not given.
const registryEnv = "RELCHECK_REGISTRY"

func newCheckReleaseCmd() *cobra.Command {
	var (
		manifestPath     string
		workspace        bool
		packages         []string
		exclude          []string
		baselineVersion  string
		baselineRev      string
		baselineRoot     string
		baselineSnapshot string
		currentSnapshot  string
		registryURL      string
		generatorTool    string
		verbose          bool
		jsonOutput       bool
	)

	cmd := &cobra.Command{
		Use:     "check-release",
		Aliases: []string{"check"},
		Short:   "Check the current API against a released baseline",
		Long:    "Generate an API snapshot of the current sources, resolve a baseline (latest release by default), and evaluate every compatibility rule against the pair.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{ReportTimestamp: false})
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}

			current := domain.CurrentSpec{Kind: domain.CurrentDir}
			if manifestPath != "" {
				current = domain.CurrentSpec{Kind: domain.CurrentManifest, ManifestPath: manifestPath}
			}
			if currentSnapshot != "" {
				current = domain.CurrentSpec{Kind: domain.CurrentSnapshot, SnapshotPath: currentSnapshot}
			}

			baseline := domain.LatestBaseline()
			switch {
			case baselineVersion != "":
				baseline = domain.VersionBaseline(baselineVersion)
			case baselineRev != "":
				baseline = domain.RevisionBaseline(baselineRev)
			case baselineRoot != "":
				baseline = domain.RootBaseline(baselineRoot)
			case baselineSnapshot != "":
				baseline = domain.SnapshotBaseline(baselineSnapshot)
			}

			scope := domain.Scope{Exclude: exclude}
			switch {
			case len(packages) > 0:
				scope.Selection = domain.SelectPackages
				scope.Packages = packages
			case workspace:
				scope.Selection = domain.SelectWorkspace
			}

			if registryURL == "" {
				registryURL = os.Getenv(registryEnv)
			}

			manifests := project.New()
			generator := snapshot.NewGenerator(generatorTool, verbose, logger)

			// The registry caches downloads under the project's target dir,
			// so it needs the manifest resolved up front.
			var reg domain.RegistryClient
			if registryURL != "" && current.Kind != domain.CurrentSnapshot {
				manifest, err := manifests.Load(current.Location())
				if err != nil {
					return err
				}
				reg = registry.New(registryURL, manifest.CacheDir(), logger)
			}

			catalog, err := rules.Load()
			if err != nil {
				return err
			}

			svc := application.NewCheckService(manifests, generator, reg, gitcache.New(logger), catalog, logger)
			report, err := svc.CheckRelease(cmd.Context(), application.CheckConfig{
				Current:  current,
				Scope:    scope,
				Baseline: baseline,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(report))
			}

			if !report.Success() {
				return fmt.Errorf("release compatibility check failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest-path", "", "Path to the workspace manifest (file or directory)")
	cmd.Flags().BoolVar(&workspace, "workspace", false, "Check every workspace member")
	cmd.Flags().StringArrayVar(&packages, "package", nil, "Check only the named package (repeatable)")
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "Skip the named package (repeatable)")
	cmd.Flags().StringVar(&baselineVersion, "baseline-version", "", "Compare against this published version")
	cmd.Flags().StringVar(&baselineRev, "baseline-rev", "", "Compare against this git revision")
	cmd.Flags().StringVar(&baselineRoot, "baseline-root", "", "Compare against a source root on disk")
	cmd.Flags().StringVar(&baselineSnapshot, "baseline-snapshot", "", "Compare against a prebuilt snapshot file")
	cmd.Flags().StringVar(&currentSnapshot, "current-snapshot", "", "Use a prebuilt snapshot file as the current side")
	cmd.Flags().StringVar(&registryURL, "registry", "", "Registry base URL (default $"+registryEnv+")")
	cmd.Flags().StringVar(&generatorTool, "generator", snapshot.DefaultTool, "Snapshot generator executable")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output, including generator diagnostics")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")

	cmd.MarkFlagsMutuallyExclusive("baseline-version", "baseline-rev", "baseline-root", "baseline-snapshot")
	cmd.MarkFlagsMutuallyExclusive("workspace", "package")

	return cmd
}
