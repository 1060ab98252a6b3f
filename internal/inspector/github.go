package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shivanshukushwah/worknest-backend/pkg/logger"
	"github.com/valyala/fasthttp"
)

const maxExtraScore = 60

var (
	ErrUnsupportedProfile = errors.New("profile host is not supported for deep inspection")
	ErrProfileNotFound    = errors.New("profile not found")
)

// GithubInspector scores a github profile from the public repos API.
// Non-github hosts pass through with a zero delta; only github profiles
// carry enough public signal to inspect.
type GithubInspector struct {
	apiBase string
	token   string
	client  *fasthttp.Client
	timeout time.Duration
}

func NewGithubInspector(token string) *GithubInspector {
	return &GithubInspector{
		apiBase: "https://api.github.com",
		token:   token,
		client: &fasthttp.Client{
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 60 * time.Second,
		},
		timeout: 10 * time.Second,
	}
}

type repo struct {
	Name      string    `json:"name"`
	Stars     int       `json:"stargazers_count"`
	Fork      bool      `json:"fork"`
	PushedAt  time.Time `json:"pushed_at"`
	Language  string    `json:"language"`
	UpdatedAt time.Time `json:"updated_at"`
}

// signals is the inspection result blob stored on the application.
type signals struct {
	Username       string `json:"username"`
	RepoCount      int    `json:"repo_count"`
	TotalStars     int    `json:"total_stars"`
	RecentActivity int    `json:"recent_activity"`
	RelevantRepos  int    `json:"relevant_repos"`
	Extra          int    `json:"extra_score"`
}

// Inspect fetches the user's public repos and derives a 0-60 delta on
// top of the heuristic base score.
func (g *GithubInspector) Inspect(ctx context.Context, profileURL string) (int, string, error) {
	username, err := githubUsername(profileURL)
	if err != nil {
		return 0, "", err
	}

	repos, err := g.fetchRepos(ctx, username)
	if err != nil {
		return 0, "", err
	}

	sig := signals{Username: username}
	cutoff := time.Now().AddDate(0, -6, 0)
	for _, r := range repos {
		if r.Fork {
			continue
		}
		sig.RepoCount++
		sig.TotalStars += r.Stars
		if r.PushedAt.After(cutoff) {
			sig.RecentActivity++
		}
		if r.Language != "" {
			sig.RelevantRepos++
		}
	}

	extra := 0
	if sig.RepoCount >= 3 {
		extra += 15
	}
	if sig.TotalStars >= 10 {
		extra += 10
	}
	if sig.RecentActivity >= 1 {
		extra += 20
	}
	if sig.RelevantRepos >= 1 {
		extra += 15
	}
	if extra > maxExtraScore {
		extra = maxExtraScore
	}
	sig.Extra = extra

	raw, err := json.Marshal(sig)
	if err != nil {
		return extra, "", nil
	}
	logger.Debug("profile inspected", "username", username, "extra", extra)
	return extra, string(raw), nil
}

func (g *GithubInspector) fetchRepos(ctx context.Context, username string) ([]repo, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/users/%s/repos?per_page=100&sort=pushed", g.apiBase, url.PathEscape(username)))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(g.timeout)
	}
	if err := g.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("github request failed: %w", err)
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return nil, ErrProfileNotFound
	default:
		return nil, fmt.Errorf("github returned status %d", resp.StatusCode())
	}

	var repos []repo
	if err := json.Unmarshal(resp.Body(), &repos); err != nil {
		return nil, fmt.Errorf("decode github response: %w", err)
	}
	return repos, nil
}

func githubUsername(profileURL string) (string, error) {
	raw := strings.TrimSpace(profileURL)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrUnsupportedProfile
	}
	if !strings.Contains(strings.ToLower(u.Host), "github.") {
		return "", ErrUnsupportedProfile
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", ErrUnsupportedProfile
	}
	return parts[0], nil
}
