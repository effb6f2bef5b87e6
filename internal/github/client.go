package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"growthos/internal/config"

	"golang.org/x/sync/errgroup"
)

// Profile is the subset of the authenticated user's GitHub profile used for analysis
type Profile struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	Blog        string `json:"blog"`
	Location    string `json:"location"`
	Bio         string `json:"bio"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	HTMLURL     string `json:"html_url"`
	CreatedAt   string `json:"created_at"`
}

// Repo holds repository metadata from the REST API
type Repo struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	Fork        bool     `json:"fork"`
	Archived    bool     `json:"archived"`
	LastPush    string   `json:"pushed_at"`
	HTMLURL     string   `json:"html_url"`
}

// Snapshot is a profile together with its repositories
type Snapshot struct {
	Profile Profile
	Repos   []Repo
}

// StatusError is returned when GitHub answers with a non-200 status
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github API status %d for %s", e.StatusCode, e.Endpoint)
}

// Client calls the GitHub REST API on behalf of a user token
type Client struct {
	baseURL    string
	userAgent  string
	perPage    int
	httpClient *http.Client
}

// NewClient creates a GitHub client from configuration
func NewClient(cfg config.GitHubConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 30
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.APIBaseURL, "/"),
		userAgent:  cfg.UserAgent,
		perPage:    perPage,
		httpClient: httpClient,
	}
}

// FetchProfile fetches the authenticated user's profile
func (c *Client) FetchProfile(ctx context.Context, token string) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, token, "/user", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FetchRepos fetches the authenticated user's repositories, most recently updated first
func (c *Client) FetchRepos(ctx context.Context, token string) ([]Repo, error) {
	params := url.Values{
		"sort":     {"updated"},
		"per_page": {strconv.Itoa(c.perPage)},
	}
	var repos []Repo
	if err := c.get(ctx, token, "/user/repos", params, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// FetchSnapshot fetches the profile and repositories concurrently and waits for both.
// If either request fails the whole fetch fails and no partial result is returned.
func (c *Client) FetchSnapshot(ctx context.Context, token string) (*Snapshot, error) {
	var (
		profile *Profile
		repos   []Repo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.FetchProfile(gctx, token)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		r, err := c.FetchRepos(gctx, token)
		if err != nil {
			return err
		}
		repos = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Snapshot{Profile: *profile, Repos: repos}, nil
}

func (c *Client) get(ctx context.Context, token, endpoint string, params url.Values, out any) error {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("github request %s failed after %s: %w", endpoint, time.Since(start).Round(time.Millisecond), err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode github %s response: %w", endpoint, err)
	}
	return nil
}
