package services

import (
	"net/url"
	"strings"
)

// ProfileEvaluator scores profile URLs for online-job applications.
// Implementations must be synchronous and cheap; deep inspection happens
// asynchronously in the inspector.
type ProfileEvaluator interface {
	Evaluate(profileURL string) int
}

// HeuristicEvaluator scores a URL 0-100 from hostname and path signals
// alone, without fetching anything.
type HeuristicEvaluator struct{}

func NewHeuristicEvaluator() *HeuristicEvaluator {
	return &HeuristicEvaluator{}
}

func (e *HeuristicEvaluator) Evaluate(profileURL string) int {
	raw := strings.TrimSpace(profileURL)
	if raw == "" {
		return 0
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return 0
	}

	host := strings.ToLower(u.Host)
	score := 0
	switch {
	case strings.Contains(host, "linkedin."):
		score += 40
	case strings.Contains(host, "github."):
		score += 25
	case strings.Contains(host, "behance."),
		strings.Contains(host, "dribbble."),
		strings.Contains(host, "portfolio"):
		score += 30
	}

	if len(strings.Trim(u.Path, "/")) > 10 {
		score += 10
	}
	if u.RawQuery != "" || u.Fragment != "" {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}
