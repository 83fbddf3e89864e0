// Package snapshot adapts the external interface-snapshot generator tool and
// loads prebuilt snapshot documents.
package snapshot

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"

	"github.com/relcheck/relcheck/internal/domain"
)

// DefaultTool is the generator binary invoked when none is configured.
// It receives a package root and writes a snapshot document to stdout.
const DefaultTool = "apidump"

// Generator implements domain.SnapshotGenerator by shelling out to the
// snapshot tool.
type Generator struct {
	tool    string
	verbose bool
	logger  *log.Logger
}

// NewGenerator creates a Generator. An empty tool selects DefaultTool.
func NewGenerator(tool string, verbose bool, logger *log.Logger) *Generator {
	if tool == "" {
		tool = DefaultTool
	}
	return &Generator{tool: tool, verbose: verbose, logger: logger}
}

// Generate produces the snapshot of the package rooted at packageRoot.
// The tool's own diagnostics are suppressed unless running verbose.
func (g *Generator) Generate(ctx context.Context, packageRoot string, includeDeps bool) (*domain.APISnapshot, error) {
	args := []string{"--format", "json"}
	if !includeDeps {
		args = append(args, "--no-deps")
	}
	args = append(args, packageRoot)

	cmd := exec.CommandContext(ctx, g.tool, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if g.verbose {
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stderr = io.Discard
	}

	g.logger.Debug("Generating snapshot", "tool", g.tool, "root", packageRoot)
	if err := cmd.Run(); err != nil {
		return nil, domain.Errorf(domain.KindGeneration, "running %s on %s: %w", g.tool, packageRoot, err)
	}

	snap, err := domain.ParseSnapshot(stdout.Bytes())
	if err != nil {
		return nil, domain.Errorf(domain.KindGeneration, "%s produced an unreadable document for %s: %w", g.tool, packageRoot, err)
	}
	return snap, nil
}

// LoadFile reads a prebuilt snapshot document from disk.
func LoadFile(path string) (*domain.APISnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.Errorf(domain.KindFormat, "reading snapshot %s: %w", path, err)
	}
	snap, err := domain.ParseSnapshot(data)
	if err != nil {
		return nil, domain.Errorf(domain.KindFormat, "parsing snapshot %s: %w", path, err)
	}
	return snap, nil
}
