package assetcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"
	"go.uber.org/multierr"
)

// ErrUnexpectedStatus is returned when the origin answers with anything but 200 OK
var ErrUnexpectedStatus = errors.New("unexpected status")

// maxAssetBytes bounds a single cached asset
const maxAssetBytes = 32 << 20

// Cache is a versioned offline cache of remote assets. Each version lives in its own
// directory, <root>/<name>-v<version>, so a new version can be installed next to the one in
// use and the old one dropped on Activate.
type Cache struct {
	fs      afero.Fs
	root    string
	name    string
	version int
	client  *http.Client
	logger  *log.Logger
}

// Options configures a Cache
type Options struct {
	Fs      afero.Fs
	Root    string
	Name    string
	Version int
	Client  *http.Client
	Logger  *log.Logger
}

// New creates a Cache. Fs defaults to the OS filesystem and Client to http.DefaultClient.
func New(opts Options) *Cache {
	if opts.Logger == nil {
		panic("Cache: logger cannot be nil")
	}
	if opts.Name == "" {
		panic("Cache: name cannot be empty")
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &Cache{
		fs:      opts.Fs,
		root:    opts.Root,
		name:    opts.Name,
		version: opts.Version,
		client:  opts.Client,
		logger:  opts.Logger,
	}
}

// CacheName returns the directory name of the current version
func (c *Cache) CacheName() string {
	return fmt.Sprintf("%s-v%d", c.name, c.version)
}

func (c *Cache) dir() string {
	return path.Join(c.root, c.CacheName())
}

func (c *Cache) entryPath(url string) string {
	h := xxh3.HashString128(url)
	return path.Join(c.dir(), fmt.Sprintf("%016x%016x", h.Hi, h.Lo))
}

// Has reports whether url is cached in the current version
func (c *Cache) Has(url string) bool {
	ok, err := afero.Exists(c.fs, c.entryPath(url))
	return err == nil && ok
}

// Install populates the current version with every manifest URL. It keeps going after a
// failed URL and returns all failures combined.
func (c *Cache) Install(ctx context.Context, manifest []string) error {
	c.logger.Printf("AssetCache: installing %d assets into %q", len(manifest), c.CacheName())
	var err error
	for _, url := range manifest {
		if c.Has(url) {
			continue
		}
		data, fetchErr := c.download(ctx, url)
		if fetchErr != nil {
			multierr.AppendInto(&err, fetchErr)
			continue
		}
		multierr.AppendInto(&err, c.store(url, data))
	}
	if err != nil {
		c.logger.Printf("AssetCache: install incomplete: %v", err)
	}
	return err
}

// Fetch returns the cached asset, or downloads it and caches a successful response.
func (c *Cache) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, err := afero.ReadFile(c.fs, c.entryPath(url))
	if err == nil {
		c.logger.Printf("AssetCache: returning cached result for %q", url)
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read cached %s: %w", url, err)
	}

	data, err = c.download(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := c.store(url, data); err != nil {
		// The caller still gets the asset; only the cache write failed
		c.logger.Printf("AssetCache: %v", err)
	}
	return data, nil
}

// Activate deletes every cache directory under root other than the current version.
func (c *Cache) Activate() error {
	entries, err := afero.ReadDir(c.fs, c.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("list caches in %s: %w", c.root, err)
	}

	current := c.CacheName()
	var removeErr error
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == current {
			continue
		}
		c.logger.Printf("AssetCache: deleting stale cache %q", entry.Name())
		if err := c.fs.RemoveAll(path.Join(c.root, entry.Name())); err != nil {
			multierr.AppendInto(&removeErr, fmt.Errorf("delete cache %s: %w", entry.Name(), err))
		}
	}
	c.logger.Printf("AssetCache: cleared all caches except %q", current)
	return removeErr
}

func (c *Cache) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %w %d", url, ErrUnexpectedStatus, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

func (c *Cache) store(url string, data []byte) error {
	if err := c.fs.MkdirAll(c.dir(), 0o755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", c.dir(), err)
	}
	target := c.entryPath(url)
	tmp := target + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("cache %s: %w", url, err)
	}
	if err := c.fs.Rename(tmp, target); err != nil {
		return fmt.Errorf("cache %s: %w", url, err)
	}
	c.logger.Printf("AssetCache: stored %q (%d bytes)", shorten(url), len(data))
	return nil
}

func shorten(url string) string {
	if i := strings.Index(url, "?"); i >= 0 {
		return url[:i]
	}
	return url
}
