// Package githuburl decides whether a string is a plausible GitHub repository URL.
package githuburl

import (
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Reason explains why a candidate URL was rejected.
type Reason string

const (
	ReasonEmpty     Reason = "empty"
	ReasonMalformed Reason = "malformed"
)

const canonicalHost = "github.com"

var (
	ownerPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)
	repoPattern  = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// Outcome is the result of validating one candidate URL.
// Exactly one of URL (when Valid) or Reason (when not) is meaningful.
type Outcome struct {
	Valid  bool
	URL    string
	Owner  string
	Repo   string
	Reason Reason
}

func valid(owner, repo string) Outcome {
	return Outcome{
		Valid: true,
		URL:   "https://" + canonicalHost + "/" + owner + "/" + repo,
		Owner: owner,
		Repo:  repo,
	}
}

func invalid(r Reason) Outcome {
	return Outcome{Reason: r}
}

// Validate reports whether raw has the shape https://github.com/<owner>/<repo>,
// with an optional ".git" suffix and trailing slash. Surrounding whitespace is
// ignored; percent-encoded input is rejected rather than decoded. The returned
// URL is normalized to https://github.com/<owner>/<repo>.
func Validate(raw string) Outcome {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return invalid(ReasonEmpty)
	}
	if !strings.HasPrefix(strings.ToLower(candidate), "https://") || strings.ContainsAny(candidate, " \t\r\n%") {
		return invalid(ReasonMalformed)
	}

	ep, err := transport.NewEndpoint(candidate)
	if err != nil {
		return invalid(ReasonMalformed)
	}
	if ep.Protocol != "https" || ep.User != "" || ep.Password != "" || ep.Port != 0 {
		return invalid(ReasonMalformed)
	}
	host := strings.ToLower(ep.Host)
	if host != canonicalHost && host != "www."+canonicalHost {
		return invalid(ReasonMalformed)
	}

	owner, repo, ok := splitRepoPath(ep.Path)
	if !ok {
		return invalid(ReasonMalformed)
	}
	return valid(owner, repo)
}

// splitRepoPath accepts "/<owner>/<repo>[.git][/]" and nothing else.
func splitRepoPath(p string) (string, string, bool) {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	segments := strings.Split(p, "/")
	if len(segments) != 2 {
		return "", "", false
	}
	owner, repo := segments[0], strings.TrimSuffix(segments[1], ".git")
	if !ownerPattern.MatchString(owner) || strings.HasSuffix(owner, "-") {
		return "", "", false
	}
	if repo == "" || repo == "." || repo == ".." || !repoPattern.MatchString(repo) {
		return "", "", false
	}
	return owner, repo, true
}
