// Package tui renders check reports and rule listings for the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/relcheck/relcheck/internal/domain"
	"github.com/relcheck/relcheck/internal/domain/rules"
)

// ── Claude-inspired warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle   = lipgloss.NewStyle().Foreground(dim)
	faintStyle = lipgloss.NewStyle().Foreground(faint)
	passStyle  = lipgloss.NewStyle().Foreground(success)
	failStyle  = lipgloss.NewStyle().Foreground(danger)
	warnStyle  = lipgloss.NewStyle().Foreground(warning)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(fg)
	ruleStyle  = lipgloss.NewStyle().Bold(true).Foreground(fg)
	linkStyle  = lipgloss.NewStyle().Foreground(dim).Underline(true)

	majorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	minorTagStyle = lipgloss.NewStyle().Foreground(warning).Bold(true)

	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderReport renders the outcome of a whole run.
func RenderReport(report *domain.Report) string {
	var b strings.Builder

	title := headerStyle.Render("relcheck")
	subtitle := dimStyle.Render("Release Compatibility Report")

	var verdictLine string
	if report.Success() {
		verdictLine = passStyle.Bold(true).Render("PASS")
	} else {
		verdictLine = failStyle.Bold(true).Render(fmt.Sprintf("FAIL  %d violations", countFindings(report)))
	}

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + verdictLine))
	b.WriteString("\n\n")

	for _, v := range report.Verdicts {
		renderVerdict(&b, v)
	}

	b.WriteString("  " + separatorLine)
	b.WriteString("\n")
	renderSummary(&b, report)
	return b.String()
}

func renderVerdict(b *strings.Builder, v domain.CheckVerdict) {
	name := titleStyle.Render(v.Package)
	version := ""
	if v.Version != "" {
		version = "  " + dimStyle.Render("v"+v.Version)
	}

	if v.Pass() {
		fmt.Fprintf(b, "  %s %s%s\n\n", passStyle.Render("●"), name, version)
		return
	}

	fmt.Fprintf(b, "  %s %s%s\n", failStyle.Render("●"), name, version)
	for _, f := range v.Findings {
		renderFinding(b, f)
	}
	b.WriteString("\n")
}

func renderFinding(b *strings.Builder, f domain.Finding) {
	tag := updateTag(f.RequiredUpdate)
	fmt.Fprintf(b, "    %s %s\n", tag, ruleStyle.Render(f.RuleID))
	if f.Symbol != "" {
		fmt.Fprintf(b, "          %s\n", dimStyle.Render(f.Symbol))
	}
	fmt.Fprintf(b, "          %s\n", faintStyle.Render(f.Message))
}

func renderSummary(b *strings.Builder, report *domain.Report) {
	passed, failed := 0, 0
	for _, v := range report.Verdicts {
		if v.Pass() {
			passed++
		} else {
			failed++
		}
	}

	line := fmt.Sprintf("  %s checked", plural(len(report.Verdicts), "package"))
	if failed > 0 {
		line += "  " + failStyle.Render(fmt.Sprintf("%d failed", failed))
	}
	if passed > 0 {
		line += "  " + passStyle.Render(fmt.Sprintf("%d passed", passed))
	}
	b.WriteString(line + "\n")
}

// RenderRuleList renders the catalog as an aligned table.
func RenderRuleList(all []rules.Rule) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Rule Catalog") + "  " + dimStyle.Render(fmt.Sprintf("(%d rules)", len(all))))
	b.WriteString("\n")
	b.WriteString("  " + separatorLine + "\n\n")

	width := 0
	for _, r := range all {
		if len(r.ID) > width {
			width = len(r.ID)
		}
	}

	for _, r := range all {
		fmt.Fprintf(&b, "  %s  %s  %s\n",
			ruleStyle.Render(padRight(r.ID, width)),
			updateTag(r.RequiredUpdate),
			dimStyle.Render(r.Description),
		)
	}

	b.WriteString("\n")
	return b.String()
}

// RenderRuleDetail renders one rule the way `explain` presents it.
func RenderRuleDetail(r rules.Rule) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + ruleStyle.Render(r.ID) + "  " + updateTag(r.RequiredUpdate) + "\n\n")
	b.WriteString("  " + r.Description + "\n")

	if r.Reference != "" {
		b.WriteString("\n")
		b.WriteString("  " + dimStyle.Render(r.Reference) + "\n")
	}
	if r.ReferenceLink != "" {
		b.WriteString("\n")
		b.WriteString("  " + linkStyle.Render(r.ReferenceLink) + "\n")
	}

	b.WriteString("\n")
	return b.String()
}

func updateTag(u domain.RequiredUpdate) string {
	switch u {
	case domain.UpdateMajor:
		return majorTagStyle.Render("major")
	case domain.UpdateMinor:
		return minorTagStyle.Render("minor")
	default:
		return warnStyle.Render(string(u))
	}
}

func countFindings(report *domain.Report) int {
	n := 0
	for _, v := range report.Verdicts {
		n += len(v.Findings)
	}
	return n
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
