// Package bitbucket implements the repository provisioner for self-hosted
// Bitbucket Server instances using the versioned REST API.
package bitbucket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	cleanhttp "github.com/hashicorp/go-cleanhttp"

	apperrors "stampkit/internal/errors"
	"stampkit/internal/scm"
)

// cloneProtocol is the link name of the clone URL selected from the creation
// response. The server may advertise several protocols; HTTP is the one the
// local publish driver can authenticate against with a token.
const cloneProtocol = "http"

// maxErrorBodyBytes caps how much of an error response is kept for diagnostics.
const maxErrorBodyBytes = 4096

// Client talks to one Bitbucket Server instance. It performs no retries: a
// failed call is surfaced to the caller as-is.
type Client struct {
	apiBaseURL string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given API base URL, authenticating every
// request with the token as a bearer credential.
func NewClient(apiBaseURL, token string) *Client {
	return &Client{
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		token:      token,
		httpClient: cleanhttp.DefaultPooledClient(),
	}
}

type link struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

type repositoryResponse struct {
	Links struct {
		Clone []link `json:"clone"`
		Self  []link `json:"self"`
	} `json:"links"`
}

// CreateRepository creates a repository inside the target's project and
// extracts the clone and browse URLs from the response's link collection.
func (c *Client) CreateRepository(ctx context.Context, target *scm.TargetDescriptor, opts scm.CreateOptions) (*scm.RepositoryCreation, error) {
	endpoint := fmt.Sprintf("%s/projects/%s/repos", c.apiBaseURL, url.PathEscape(target.Project))

	body, err := json.Marshal(map[string]any{
		"name":   target.Repo,
		"public": opts.Public,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode repository creation request: %w", err)
	}

	slog.Info("Creating Bitbucket Server repository", "host", target.Host, "project", target.Project, "repo", target.Repo, "public", opts.Public)

	resp, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, c.remoteError(target, "Repository creation request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.remoteStatusError(target, "Repository creation", resp)
	}

	var payload repositoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, c.remoteError(target, "Repository creation returned an unreadable response", err)
	}

	creation, err := extractURLs(&payload)
	if err != nil {
		return nil, c.remoteError(target, "Repository creation response is missing expected links", err)
	}

	slog.Info("Repository created", "cloneUrl", creation.CloneURL, "browseUrl", creation.BrowseURL)
	return creation, nil
}

// EnableLFS toggles large-file-storage support on the target repository via
// the admin endpoint. Anything but a success status fails the call; the
// caller decides what happens to the already-created repository.
func (c *Client) EnableLFS(ctx context.Context, target *scm.TargetDescriptor) error {
	endpoint := fmt.Sprintf("%s/git-lfs/admin/projects/%s/repos/%s/enabled",
		c.apiBaseURL, url.PathEscape(target.Project), url.PathEscape(target.Repo))

	slog.Info("Enabling LFS", "host", target.Host, "project", target.Project, "repo", target.Repo)

	resp, err := c.do(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return apperrors.NewRemoteError(
			"Failed to enable LFS",
			err.Error(),
			"Check that the server exposes the git-lfs admin endpoint",
			fmt.Errorf("Failed to enable LFS for %s/%s: %w", target.Project, target.Repo, err),
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readErrorBody(resp.Body)
		return apperrors.NewRemoteError(
			"Failed to enable LFS",
			fmt.Sprintf("The server responded with status %d", resp.StatusCode),
			"Check that the server exposes the git-lfs admin endpoint",
			fmt.Errorf("Failed to enable LFS for %s/%s: status %d: %s", target.Project, target.Repo, resp.StatusCode, detail),
		)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) remoteError(target *scm.TargetDescriptor, summary string, err error) error {
	return apperrors.NewRemoteError(
		fmt.Sprintf("%s for %s/%s on %s", summary, target.Project, target.Repo, target.Host),
		err.Error(),
		"Check the integration's apiBaseUrl and the server logs",
		fmt.Errorf("%s: %w", summary, err),
	)
}

func (c *Client) remoteStatusError(target *scm.TargetDescriptor, operation string, resp *http.Response) error {
	detail := readErrorBody(resp.Body)
	original := fmt.Errorf("%s failed for %s/%s: status %d: %s",
		strings.ToLower(operation), target.Project, target.Repo, resp.StatusCode, detail)
	return apperrors.NewRemoteError(
		fmt.Sprintf("%s failed for %s/%s on %s", operation, target.Project, target.Repo, target.Host),
		fmt.Sprintf("The server responded with status %d", resp.StatusCode),
		"Check the token's permissions and whether the repository already exists",
		original,
	)
}

// extractURLs picks the first self link as the browse URL and the first clone
// link advertising the HTTP protocol as the clone URL. The payload is treated
// as loosely structured; missing link kinds are an error, not a panic.
func extractURLs(payload *repositoryResponse) (*scm.RepositoryCreation, error) {
	if len(payload.Links.Self) == 0 || payload.Links.Self[0].Href == "" {
		return nil, fmt.Errorf("response contains no self link")
	}

	var cloneURL string
	for _, l := range payload.Links.Clone {
		if l.Name == cloneProtocol {
			cloneURL = l.Href
			break
		}
	}
	if cloneURL == "" {
		return nil, fmt.Errorf("response contains no %s clone link", cloneProtocol)
	}

	return &scm.RepositoryCreation{
		CloneURL:  cloneURL,
		BrowseURL: payload.Links.Self[0].Href,
	}, nil
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil || len(data) == 0 {
		return "<no body>"
	}
	return strings.TrimSpace(string(data))
}
