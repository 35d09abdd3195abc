// Package fetch downloads and unpacks zipped shapefile archives.
package fetch

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures a Fetcher.
type Options struct {
	Timeout        time.Duration
	RequestsPerSec float64
}

// Fetcher downloads shapefile archives over HTTP or FTP and extracts them.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a Fetcher with the given options.
func New(opts Options) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Minute
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 2
	}
	return &Fetcher{
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
	}
}

// Shapefile downloads the archive at rawURL into destDir, extracts it, and
// returns the path of the contained .shp file.
func (f *Fetcher) Shapefile(ctx context.Context, rawURL, destDir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: parse url %s", rawURL)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "fetch: create dest dir %s", destDir)
	}
	zipPath := filepath.Join(destDir, filepath.Base(u.Path))

	log := zap.L().With(zap.String("component", "fetch"))
	log.Info("downloading shapefile archive", zap.String("url", rawURL))

	switch u.Scheme {
	case "http", "https":
		err = withRetry(ctx, func(ctx context.Context) error {
			return f.downloadHTTP(ctx, rawURL, zipPath)
		})
	case "ftp":
		err = withRetry(ctx, func(context.Context) error {
			return downloadFTP(rawURL, zipPath)
		})
	default:
		return "", eris.Errorf("fetch: unsupported scheme %q", u.Scheme)
	}
	if err != nil {
		return "", err
	}

	extractDir := strings.TrimSuffix(zipPath, filepath.Ext(zipPath))
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", eris.Wrapf(err, "fetch: create extract dir %s", extractDir)
	}
	if err := extractZIP(zipPath, extractDir); err != nil {
		return "", err
	}

	shpPath, err := findFileByExt(extractDir, ".shp")
	if err != nil {
		return "", err
	}
	log.Info("shapefile ready", zap.String("path", shpPath))
	return shpPath, nil
}

// downloadHTTP fetches a URL to a local file, honoring the rate limiter.
func (f *Fetcher) downloadHTTP(ctx context.Context, rawURL, dest string) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "fetch: rate limiter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return eris.Wrap(err, "fetch: build request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "fetch: download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("fetch: download returned status %d", resp.StatusCode)
		if transientStatus(resp.StatusCode) {
			return &transientError{err: statusErr}
		}
		return statusErr
	}

	return writeFile(dest, resp.Body)
}

func writeFile(dest string, r io.Reader) error {
	out, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "fetch: create %s", dest)
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, r); err != nil {
		return eris.Wrapf(err, "fetch: write %s", dest)
	}
	return nil
}

// extractZIP extracts a ZIP archive flat into the destination directory.
func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "fetch: open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "fetch: open zip entry %s", f.Name)
		}
		if err := writeFile(destPath, rc); err != nil {
			_ = rc.Close()
			return err
		}
		_ = rc.Close()
	}

	return nil
}

// findFileByExt finds the first file with the given extension in a directory.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "fetch: read directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("fetch: no %s file found in %s", ext, dir)
}
