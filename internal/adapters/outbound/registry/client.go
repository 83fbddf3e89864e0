// Package registry talks to the package registry over its sparse-index HTTP
// API and caches downloaded source trees on disk.
package registry

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	semver "github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/relcheck/relcheck/internal/domain"
)

// Client implements domain.RegistryClient against a sparse-index registry:
// a JSON version index per package name plus a tar.gz source download per
// version.
type Client struct {
	baseURL string
	root    string
	http    *http.Client
	logger  *log.Logger
}

// New creates a registry client caching downloads under root.
func New(baseURL, root string, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		root:    root,
		http:    &http.Client{},
		logger:  logger,
	}
}

type indexEntry struct {
	Version string `json:"version"`
	Yanked  bool   `json:"yanked,omitempty"`
}

type indexDoc struct {
	Versions []indexEntry `json:"versions"`
}

// LatestVersion resolves the highest published, non-yanked version of name.
func (c *Client) LatestVersion(ctx context.Context, name string) (*semver.Version, error) {
	versions, err := c.publishedVersions(ctx, name)
	if err != nil {
		return nil, err
	}

	var latest *semver.Version
	for _, v := range versions {
		if latest == nil || v.GreaterThan(latest) {
			latest = v
		}
	}
	if latest == nil {
		return nil, domain.Errorf(domain.KindResolution, "package %s has no published versions", name)
	}
	return latest, nil
}

func (c *Client) publishedVersions(ctx context.Context, name string) ([]*semver.Version, error) {
	url := fmt.Sprintf("%s/index/%s", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.Errorf(domain.KindFetch, "building index request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.Errorf(domain.KindFetch, "querying registry index for %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.Errorf(domain.KindResolution, "package %s has no published versions", name)
	default:
		return nil, domain.Errorf(domain.KindFetch, "registry index for %s: unexpected status %s", name, resp.Status)
	}

	var doc indexDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, domain.Errorf(domain.KindFetch, "decoding registry index for %s: %w", name, err)
	}

	versions := make([]*semver.Version, 0, len(doc.Versions))
	for _, entry := range doc.Versions {
		if entry.Yanked {
			continue
		}
		v, err := semver.NewVersion(entry.Version)
		if err != nil {
			// The registry published something we cannot order; skip it
			// rather than failing every consumer of the index.
			c.logger.Warn("Ignoring unparseable version in index", "package", name, "version", entry.Version)
			continue
		}
		versions = append(versions, v)
	}
	return versions, nil
}

// EnsureSource makes the published source of (name, version) present under
// its fingerprinted cache path and returns it. An existing download is
// reused as-is; fresh downloads are extracted into a staging directory and
// renamed into place so partial extractions never alias a valid entry.
func (c *Client) EnsureSource(ctx context.Context, name, version string) (string, error) {
	dest := filepath.Join(c.root, name+"-"+version)
	if _, err := os.Stat(dest); err == nil {
		c.logger.Debug("Using cached source", "package", name, "version", version)
		return dest, nil
	}

	url := fmt.Sprintf("%s/api/%s/%s/download", c.baseURL, name, version)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", domain.Errorf(domain.KindFetch, "building download request: %w", err)
	}
	c.logger.Info("Downloading", "package", name, "version", version)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", domain.Errorf(domain.KindFetch, "downloading %s v%s: %w", name, version, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", domain.Errorf(domain.KindResolution, "version %s of %s does not exist in the registry", version, name)
	default:
		return "", domain.Errorf(domain.KindFetch, "downloading %s v%s: unexpected status %s", name, version, resp.Status)
	}

	if err := os.MkdirAll(c.root, 0755); err != nil {
		return "", domain.Errorf(domain.KindFetch, "creating cache root: %w", err)
	}
	tmp, err := os.MkdirTemp(c.root, name+"-"+version+".tmp-")
	if err != nil {
		return "", domain.Errorf(domain.KindFetch, "creating staging directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := extractTarGz(resp.Body, tmp); err != nil {
		return "", domain.Errorf(domain.KindFetch, "extracting %s v%s: %w", name, version, err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		if _, statErr := os.Stat(dest); statErr == nil {
			return dest, nil
		}
		return "", domain.Errorf(domain.KindFetch, "publishing download: %w", err)
	}
	return dest, nil
}

// extractTarGz unpacks a gzipped tarball into dest, rejecting entries that
// would escape it.
func extractTarGz(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("reading gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}

		name := filepath.Clean(header.Name)
		if name == ".." || strings.HasPrefix(name, ".."+string(os.PathSeparator)) || filepath.IsAbs(name) {
			return fmt.Errorf("archive entry %q escapes the extraction root", header.Name)
		}
		target := filepath.Join(dest, name)

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode)&0777)
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		default:
			// Symlinks and other special entries have no business in a
			// published source archive.
			return fmt.Errorf("archive entry %q has unsupported type %d", header.Name, header.Typeflag)
		}
	}
}
