// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

// Package provision derives Grafana provisioning artifacts from a
// single validated configuration. All artifacts are projections of one
// Config, so the repository regex in the filter parameters and the
// organization list in the dashboard variables can never diverge.
package provision

import (
	"regexp"
	"strings"
)

// Environment keys recognized in .env files and process variables.
const (
	EnvToken         = "GITHUB_TOKEN"
	EnvRepos         = "REPOS"
	EnvServerURL     = "GF_SERVER_ROOT_URL"
	EnvServerDomain  = "GF_SERVER_DOMAIN"
	EnvEnforceDomain = "GF_SERVER_ENFORCE_DOMAIN"
	EnvSetupMode     = "SETUP_MODE"
)

// Server defaults used when the environment carries no override.
const (
	DefaultServerURL    = "http://localhost:3000"
	DefaultServerDomain = "localhost"
)

// repoPattern restricts repository entries to "owner/name" with a
// conservative character set.
var repoPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+/[A-Za-z0-9._-]+$`)

// Config is the validated, immutable configuration every artifact is
// derived from. Construct it with NewConfig or FromMap; the zero value
// is not usable.
type Config struct {
	// Token is the GitHub access token. It is passed through to the
	// environment file opaquely and never embedded in an artifact.
	Token string

	// Repositories is the ordered list of "owner/name" entries.
	Repositories []string

	ServerURL     string
	ServerDomain  string
	EnforceDomain bool
}

// NewConfig validates the inputs and returns an immutable Config.
// Organizations are not an input: they are always recomputed from the
// repository list (see Organizations).
func NewConfig(token string, repos []string, serverURL, serverDomain string, enforceDomain bool) (*Config, error) {
	if token == "" {
		return nil, configErrorf(EnvToken, "a GitHub token is required")
	}
	if len(repos) == 0 {
		return nil, configErrorf(EnvRepos, "at least one repository is required (format: owner/name)")
	}
	for _, repo := range repos {
		if !repoPattern.MatchString(repo) {
			return nil, configErrorf(EnvRepos, "malformed repository %q (want owner/name)", repo)
		}
	}
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	if serverDomain == "" {
		serverDomain = DefaultServerDomain
	}
	return &Config{
		Token:         token,
		Repositories:  append([]string(nil), repos...),
		ServerURL:     serverURL,
		ServerDomain:  serverDomain,
		EnforceDomain: enforceDomain,
	}, nil
}

// FromMap builds a Config from a flat string-keyed environment map,
// e.g. the result of reading a .env file merged with process variables.
func FromMap(env map[string]string) (*Config, error) {
	enforce := true
	if v, ok := env[EnvEnforceDomain]; ok {
		enforce = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return NewConfig(
		env[EnvToken],
		ParseRepositories(env[EnvRepos]),
		env[EnvServerURL],
		env[EnvServerDomain],
		enforce,
	)
}

// ParseRepositories splits a comma-separated repository list, trimming
// whitespace and surrounding quotes, dropping empty entries.
func ParseRepositories(s string) []string {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" {
		return nil
	}
	var repos []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			repos = append(repos, part)
		}
	}
	return repos
}

// ValidRepository reports whether repo matches the "owner/name" format
// with the restricted character set.
func ValidRepository(repo string) bool {
	return repoPattern.MatchString(repo)
}

// Organizations returns the distinct owner prefixes of repos in first-
// occurrence order. It is the single derivation used by setup, the
// generator and the validator, so the three can never disagree.
func Organizations(repos []string) []string {
	seen := make(map[string]bool, len(repos))
	var orgs []string
	for _, repo := range repos {
		owner, _, ok := strings.Cut(repo, "/")
		if !ok || owner == "" || seen[owner] {
			continue
		}
		seen[owner] = true
		orgs = append(orgs, owner)
	}
	return orgs
}

// Organizations returns the organizations derived from c.Repositories.
func (c *Config) Organizations() []string {
	return Organizations(c.Repositories)
}

// DefaultOrg returns the first derived organization, or "" when no
// repository carries an owner prefix.
func (c *Config) DefaultOrg() string {
	if orgs := c.Organizations(); len(orgs) > 0 {
		return orgs[0]
	}
	return ""
}

// RepoNames returns the bare repository names (the part after the
// slash), in repository order.
func (c *Config) RepoNames() []string {
	names := make([]string, 0, len(c.Repositories))
	for _, repo := range c.Repositories {
		if i := strings.LastIndex(repo, "/"); i >= 0 {
			names = append(names, repo[i+1:])
		} else {
			names = append(names, repo)
		}
	}
	return names
}

// MaskedToken returns the token reduced to its last six characters for
// display, e.g. "...abc123". The full secret is never echoed.
func (c *Config) MaskedToken() string {
	const keep = 6
	if len(c.Token) <= keep {
		return "..." + c.Token
	}
	return "..." + c.Token[len(c.Token)-keep:]
}
