// Package github lists repository contents and fetches file blobs from the
// GitHub REST API. All access is unary request/response; failures map to a
// small typed set (not-found, rate-limited, generic HTTP) that callers
// propagate without further interpretation.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"marginalia/pkg/logger"
	"marginalia/pkg/models"
)

const defaultBaseURL = "https://api.github.com"

// identRe validates owner and repo segments before any request is issued.
var identRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Client is a rate-limited GitHub contents client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// Options configures a Client; zero values select sane defaults.
type Options struct {
	BaseURL string
	Token   string
	RPS     float64
	Burst   int
}

// New builds a Client.
func New(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	rps := opts.RPS
	if rps <= 0 {
		rps = 5
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 5
	}
	return &Client{
		baseURL: base,
		token:   opts.Token,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

type contentEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// List returns the entries at path within owner/repo. Folder ids are their
// paths; file ids are blob shas, the content-addressed FileID annotations
// use in remote mode.
func (c *Client) List(ctx context.Context, owner, repo, path string) ([]models.RemoteEntry, error) {
	if !identRe.MatchString(owner) || !identRe.MatchString(repo) {
		return nil, fmt.Errorf("invalid repository identifier %q/%q", owner, repo)
	}
	u := c.baseURL + "/repos/" + owner + "/" + repo + "/contents"
	if path != "" {
		u += "/" + url.PathEscape(path)
		// keep path separators readable in the request
		u = strings.ReplaceAll(u, "%2F", "/")
	}
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var entries []contentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		// single-file responses are an object, not an array
		var one contentEntry
		if err2 := json.Unmarshal(body, &one); err2 != nil {
			return nil, fmt.Errorf("unexpected listing payload: %w", err)
		}
		entries = []contentEntry{one}
	}
	out := make([]models.RemoteEntry, 0, len(entries))
	for _, e := range entries {
		isFolder := e.Type == "dir"
		id := e.SHA
		if isFolder {
			id = e.Path
		}
		out = append(out, models.RemoteEntry{
			ID:          id,
			Name:        e.Name,
			IsFolder:    isFolder,
			Path:        e.Path,
			DownloadURL: e.DownloadURL,
		})
	}
	logger.Debug("remote_listed", "owner", owner, "repo", repo, "path", path, "entries", len(out))
	return out, nil
}

// FetchContent downloads a file blob via its download URL.
func (c *Client) FetchContent(ctx context.Context, downloadURL string) (string, error) {
	if downloadURL == "" {
		return "", fmt.Errorf("empty download url")
	}
	body, err := c.get(ctx, downloadURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote request failed: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
	case res.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case res.StatusCode == http.StatusTooManyRequests,
		res.StatusCode == http.StatusForbidden && res.Header.Get("X-RateLimit-Remaining") == "0":
		return nil, ErrRateLimited
	default:
		return nil, &HTTPError{Status: res.StatusCode, URL: u}
	}
	return io.ReadAll(res.Body)
}
