// Package gitcache materializes checkouts of the project's own history under
// fingerprinted cache directories.
package gitcache

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/relcheck/relcheck/internal/domain"
	"github.com/relcheck/relcheck/internal/util"
)

// Cache implements domain.RevisionCache using go-git.
type Cache struct {
	logger *log.Logger
}

// New creates a revision cache.
func New(logger *log.Logger) *Cache {
	return &Cache{logger: logger}
}

// EnsureCheckout ensures a checkout of rev exists under cacheRoot and
// returns its path. The fingerprint directory is published with a
// temp-then-rename so a partial checkout is never visible under the
// fingerprint: concurrent runs either see nothing or a complete checkout.
func (c *Cache) EnsureCheckout(ctx context.Context, sourceRoot, cacheRoot, rev string) (string, error) {
	slug := util.Slugify(rev)
	dest := filepath.Join(cacheRoot, "git-"+slug)

	if _, err := os.Stat(dest); err == nil {
		c.logger.Debug("Using cached checkout", "rev", rev, "path", dest)
		return dest, nil
	}

	repo, err := git.PlainOpen(sourceRoot)
	if err != nil {
		return "", domain.Errorf(domain.KindFetch, "opening git repository at %s: %w", sourceRoot, err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", domain.Errorf(domain.KindFetch, "resolving revision %q: %w", rev, err)
	}

	if err := os.MkdirAll(cacheRoot, 0755); err != nil {
		return "", domain.Errorf(domain.KindFetch, "creating cache root: %w", err)
	}
	tmp, err := os.MkdirTemp(cacheRoot, "git-"+slug+".tmp-")
	if err != nil {
		return "", domain.Errorf(domain.KindFetch, "creating staging directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	c.logger.Info("Checking out", "rev", rev, "hash", hash.String())
	cloned, err := git.PlainCloneContext(ctx, tmp, false, &git.CloneOptions{
		URL:        sourceRoot,
		NoCheckout: true,
	})
	if err != nil {
		return "", domain.Errorf(domain.KindFetch, "cloning %s: %w", sourceRoot, err)
	}
	worktree, err := cloned.Worktree()
	if err != nil {
		return "", domain.Errorf(domain.KindFetch, "opening worktree: %w", err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return "", domain.Errorf(domain.KindFetch, "checking out %s: %w", hash.String(), err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		// A concurrent run may have published the same fingerprint first;
		// its checkout is equally valid.
		if _, statErr := os.Stat(dest); statErr == nil {
			return dest, nil
		}
		return "", domain.Errorf(domain.KindFetch, "publishing checkout: %w", err)
	}
	return dest, nil
}
