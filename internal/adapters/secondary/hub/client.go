package hub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"

	"partobjaverse-viewer/internal/config"
	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
)

type hubClient struct {
	endpoint string
	revision string
	token    string
	cacheDir string
	client   *retryablehttp.Client
	metrics  ports.MetricsRecorder
}

// NewHubClient creates a dataset hub adapter backed by a retrying HTTP client
func NewHubClient(cfg *config.HubConfig, metrics ports.MetricsRecorder) ports.HubClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = leveledLogger{entry: log.WithField("component", "hub")}

	revision := cfg.Revision
	if revision == "" {
		revision = "main"
	}

	return &hubClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		revision: revision,
		token:    cfg.Token,
		cacheDir: cfg.CacheDir,
		client:   rc,
		metrics:  metrics,
	}
}

// fileURL follows the hub's resolve scheme:
// {endpoint}/[datasets/]{repo}/resolve/{revision}/{filename}
func (c *hubClient) fileURL(repoID, filename string, repoType ports.RepoType) string {
	prefix := ""
	if repoType == ports.RepoTypeDataset {
		prefix = "datasets/"
	}
	return fmt.Sprintf("%s/%s%s/resolve/%s/%s",
		c.endpoint, prefix, repoID, url.PathEscape(c.revision), escapePath(filename))
}

// cachePath mirrors the hub cache naming: {type}s--{org}--{name}/{revision}/{filename}
func (c *hubClient) cachePath(repoID, filename string, repoType ports.RepoType) string {
	repoDir := string(repoType) + "s--" + strings.ReplaceAll(repoID, "/", "--")
	return filepath.Join(c.cacheDir, repoDir, c.revision, filepath.FromSlash(filename))
}

func (c *hubClient) Download(ctx context.Context, repoID, filename string, repoType ports.RepoType) (string, error) {
	dest := c.cachePath(repoID, filename, repoType)
	if _, err := os.Stat(dest); err == nil {
		log.WithField("file", dest).Debug("hub file cached")
		c.observe(filename, true)
		return dest, nil
	}

	src := c.fileURL(repoID, filename, repoType)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", fmt.Errorf("create hub request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log.WithFields(log.Fields{
		"repo": repoID,
		"file": filename,
	}).Info("downloading from hub")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("hub request %s: %w", filename, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%s/%s: %w", repoID, filename, domain.ErrHubFileNotFound)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("hub request %s: unexpected status %d", filename, resp.StatusCode)
	}

	if err := writeAtomic(dest, resp.Body); err != nil {
		return "", fmt.Errorf("store %s: %w", filename, err)
	}

	c.observe(filename, false)
	return dest, nil
}

func (c *hubClient) observe(filename string, cached bool) {
	if c.metrics != nil {
		c.metrics.ObserveDownload(filename, cached)
	}
}

// writeAtomic streams r into a temp file beside dest and renames it into place.
func writeAtomic(dest string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".partial-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// leveledLogger routes retryablehttp logging through logrus.
type leveledLogger struct {
	entry *log.Entry
}

func (l leveledLogger) fields(kv []interface{}) *log.Entry {
	f := log.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return l.entry.WithFields(f)
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.fields(kv).Error(msg) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.fields(kv).Debug(msg) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.fields(kv).Debug(msg) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.fields(kv).Warn(msg) }
