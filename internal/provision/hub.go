// Package provision fetches model weights from a model hub into a local
// directory before the engine loads them.
package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"batchgen/internal/common/fsutil"
)

// DefaultEndpoint is the public Hugging Face hub.
const DefaultEndpoint = "https://huggingface.co"

// Defaults applied when corresponding Client fields are unset.
const (
	defaultAttempts = 4
	defaultDelay    = 500 * time.Millisecond
	defaultMaxDelay = 10 * time.Second
)

// Request describes one snapshot to fetch.
type Request struct {
	Repo     string
	Revision string // defaults to "main"
	Dir      string
	Token    string
	// Allow keeps only files matching at least one pattern; empty keeps all.
	Allow []string
	// Ignore drops files matching any pattern; applied after Allow.
	Ignore []string
}

// Result lists what a snapshot did.
type Result struct {
	Dir        string
	Downloaded []string
	Skipped    []string
	Bytes      int64
}

// Client talks to the hub HTTP API.
type Client struct {
	Endpoint string
	HTTP     *http.Client
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
	Log      zerolog.Logger
}

// NewClient returns a client for endpoint (DefaultEndpoint when empty).
func NewClient(endpoint string, log zerolog.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint: strings.TrimRight(endpoint, "/"),
		HTTP:     &http.Client{Timeout: 0},
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
		Log:      log,
	}
}

type sibling struct {
	Name string `json:"rfilename"`
	Size int64  `json:"size"`
}

type modelInfo struct {
	ID       string    `json:"id"`
	SHA      string    `json:"sha"`
	Siblings []sibling `json:"siblings"`
}

// Snapshot downloads every selected file of the repository into req.Dir.
// Files already present with the expected size are skipped.
func (c *Client) Snapshot(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Repo) == "" {
		return Result{}, ErrProvisioningFailed("(unspecified)", "repository id is empty", nil)
	}
	if req.Revision == "" {
		req.Revision = "main"
	}
	for _, p := range append(append([]string{}, req.Allow...), req.Ignore...) {
		if !doublestar.ValidatePattern(p) {
			return Result{}, ErrProvisioningFailed(req.Repo, "invalid pattern "+p, nil)
		}
	}
	dir, err := fsutil.AbsDir(req.Dir)
	if err != nil {
		return Result{}, ErrProvisioningFailed(req.Repo, "resolve dir", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, ErrProvisioningFailed(req.Repo, "create dir", err)
	}

	info, err := c.info(ctx, req)
	if err != nil {
		return Result{}, ErrProvisioningFailed(req.Repo, "list files", err)
	}
	res := Result{Dir: dir}
	for _, s := range info.Siblings {
		if !Selected(s.Name, req.Allow, req.Ignore) {
			continue
		}
		dst, err := localPath(dir, s.Name)
		if err != nil {
			return res, ErrProvisioningFailed(req.Repo, "file "+s.Name, err)
		}
		if n, ok := fsutil.FileSize(dst); ok && (s.Size == 0 || n == s.Size) {
			res.Skipped = append(res.Skipped, s.Name)
			continue
		}
		n, err := c.download(ctx, req, s.Name, dst)
		if err != nil {
			return res, ErrProvisioningFailed(req.Repo, "download "+s.Name, err)
		}
		res.Downloaded = append(res.Downloaded, s.Name)
		res.Bytes += n
	}
	c.Log.Info().
		Str("repo", req.Repo).
		Str("revision", req.Revision).
		Str("sha", info.SHA).
		Int("downloaded", len(res.Downloaded)).
		Int("skipped", len(res.Skipped)).
		Int64("bytes", res.Bytes).
		Msg("snapshot complete")
	return res, nil
}

// Selected applies the allow and ignore patterns to a repository path.
func Selected(name string, allow, ignore []string) bool {
	if len(allow) > 0 && !matchAny(allow, name) {
		return false
	}
	return !matchAny(ignore, name)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// localPath maps a repository path under dir, rejecting escapes.
func localPath(dir, name string) (string, error) {
	p := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(name) {
		return "", fmt.Errorf("path %q escapes %s", name, dir)
	}
	return p, nil
}

func (c *Client) info(ctx context.Context, req Request) (modelInfo, error) {
	u := fmt.Sprintf("%s/api/models/%s/revision/%s?blobs=true", c.Endpoint, req.Repo, url.PathEscape(req.Revision))
	var info modelInfo
	err := c.retry(ctx, u, func() error {
		resp, err := c.get(ctx, u, req.Token)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		info = modelInfo{}
		return json.NewDecoder(resp.Body).Decode(&info)
	})
	return info, err
}

func (c *Client) download(ctx context.Context, req Request, name, dst string) (int64, error) {
	u := fmt.Sprintf("%s/%s/resolve/%s/%s", c.Endpoint, req.Repo, url.PathEscape(req.Revision), name)
	var written int64
	err := c.retry(ctx, u, func() error {
		resp, err := c.get(ctx, u, req.Token)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		return fsutil.WriteAtomic(dst, func(f *os.File) error {
			n, err := io.Copy(f, resp.Body)
			written = n
			return err
		})
	})
	return written, err
}

func (c *Client) get(ctx context.Context, u, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		se := statusError{url: u, status: resp.StatusCode}
		if se.permanent() {
			return nil, retry.Unrecoverable(se)
		}
		return nil, se
	}
	return resp, nil
}

// retry runs fn with exponential backoff. Permanent HTTP statuses and
// context cancellation stop immediately.
func (c *Client) retry(ctx context.Context, u string, fn func() error) error {
	attempts := c.Attempts
	if attempts == 0 {
		attempts = 1
	}
	return retry.Do(
		fn,
		retry.Attempts(attempts),
		retry.Delay(c.Delay),
		retry.MaxDelay(c.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return retry.IsRecoverable(err) &&
				!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.Log.Warn().Str("url", u).Uint("attempt", n+1).Err(err).Msg("hub request failed, retrying")
		}),
	)
}
