package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/plugmarket/plugmarket/internal/logger"
	"github.com/plugmarket/plugmarket/internal/utils"
)

var (
	// ErrNotFound is returned when the requested file does not exist in the repository.
	ErrNotFound = errors.New("github: file not found")

	// ErrConflict is returned when a conditional update loses against a
	// concurrent write (sha token mismatch). Callers re-read and retry.
	ErrConflict = errors.New("github: sha conflict")
)

// StatusError is any other non-success Contents API response.
// Body is kept for server-side logging only and never surfaced to clients.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github: unexpected status %d", e.StatusCode)
}

// Options configures a Contents API client.
type Options struct {
	Token   string // bearer token, contents:write scope
	Repo    string // "owner/name"
	Branch  string // target branch for reads and writes
	BaseURL string // ex: https://api.github.com (overridable for tests)
	Timeout time.Duration
}

// Client is a minimal GitHub Contents API client: read a file with its
// sha token, create or update a file conditioned on that token.
type Client struct {
	http   *http.Client
	base   string
	token  string
	repo   string
	branch string
	logger logger.Logger
}

// File is a repository file as returned by the Contents API.
type File struct {
	Content []byte // decoded
	SHA     string // concurrency token for conditional updates
}

func New(opts Options, log logger.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Client{
		http:   &http.Client{Timeout: opts.Timeout},
		base:   strings.TrimRight(opts.BaseURL, "/"),
		token:  opts.Token,
		repo:   opts.Repo,
		branch: opts.Branch,
		logger: log,
	}
}

// Repo returns the configured "owner/name" repository identifier.
func (c *Client) Repo() string { return c.repo }

// Branch returns the configured target branch.
func (c *Client) Branch() string { return c.branch }

func (c *Client) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", c.base, c.repo, path)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
}

type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

// GetFile fetches a file from the target branch.
// Returns ErrNotFound when the path does not exist.
func (c *Client) GetFile(ctx context.Context, path string) (*File, error) {
	url := c.contentsURL(path) + "?ref=" + c.branch

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(resp, path)
	}

	var body contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode contents response: %w", err)
	}

	content, err := decodeContent(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return &File{Content: content, SHA: body.SHA}, nil
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"` // base64
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"` // required when updating an existing file
}

// PutFile creates or updates a file on the target branch.
// sha is the concurrency token of the currently-known version; pass ""
// when creating a new file. A token mismatch returns ErrConflict.
func (c *Client) PutFile(ctx context.Context, path, message string, content []byte, sha string) error {
	payload, err := json.Marshal(putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.branch,
		SHA:     sha,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal put request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", path, err)
	}
	defer utils.Close(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		// The sha token no longer matches the head of the branch.
		return fmt.Errorf("%w: %s", ErrConflict, path)
	default:
		return c.statusError(resp, path)
	}
}

// statusError drains the (truncated) upstream body into the error for
// server-side logging and returns a StatusError with the upstream code.
func (c *Client) statusError(resp *http.Response, path string) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	c.logger.Error("github api error",
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.String("body", string(detail)))
	return &StatusError{StatusCode: resp.StatusCode, Body: string(detail)}
}

// decodeContent handles GitHub's base64 payloads, which are wrapped with
// newlines every 60 characters.
func decodeContent(body contentResponse) ([]byte, error) {
	if body.Encoding != "" && body.Encoding != "base64" {
		return nil, fmt.Errorf("unsupported encoding %q", body.Encoding)
	}
	raw := strings.ReplaceAll(body.Content, "\n", "")
	return base64.StdEncoding.DecodeString(raw)
}
