// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

// Package setup collects the monitoring configuration interactively and
// persists it as the bundle's .env file. It is a thin collaborator over
// the provision package: every derived value goes through the same
// functions the generator and validator use.
package setup

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thmasq/github-monitor/pkg/provision"
)

// Setup modes. Basic skips the server questions; enterprise adds the
// domain-enforcement question.
const (
	ModeBasic      = "basic"
	ModeAdvanced   = "advanced"
	ModeEnterprise = "enterprise"
)

const minTokenLen = 20

// Token shapes GitHub hands out: fine-grained/app tokens and classic
// 40-hex tokens. A mismatch is advisory only; GitHub may introduce new
// prefixes.
var (
	tokenPattern   = regexp.MustCompile(`^gh[sp]_[A-Za-z0-9_]{36,}$`)
	classicPattern = regexp.MustCompile(`^[a-f0-9]{40}$`)
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Setup runs the interactive configuration flow. Input is injected so
// tests can script it.
type Setup struct {
	in      *bufio.Scanner
	out     io.Writer
	envPath string

	// Existing environment consulted for reuse prompts; typically the
	// process environment merged with a prior .env file.
	env map[string]string
}

// New returns a Setup reading answers from in and writing prompts to
// out. existing may be nil.
func New(in io.Reader, out io.Writer, envPath string, existing map[string]string) *Setup {
	if existing == nil {
		existing = map[string]string{}
	}
	return &Setup{
		in:      bufio.NewScanner(in),
		out:     out,
		envPath: envPath,
		env:     existing,
	}
}

// Result is the outcome of a completed setup run.
type Result struct {
	Config *provision.Config
	Mode   string
}

// Run walks the operator through mode selection, token and repository
// entry, and server configuration, then writes the .env file and prints
// a summary. The returned Config is validated.
func (s *Setup) Run() (Result, error) {
	fmt.Fprintln(s.out, headerStyle.Render("Interactive Configuration - GitHub Grafana Dashboard"))

	mode, err := s.chooseMode()
	if err != nil {
		return Result{}, err
	}
	token, err := s.promptToken()
	if err != nil {
		return Result{}, err
	}
	repos, err := s.promptRepositories()
	if err != nil {
		return Result{}, err
	}
	serverURL, serverDomain, enforce, err := s.promptServer(mode)
	if err != nil {
		return Result{}, err
	}

	cfg, err := provision.NewConfig(token, repos, serverURL, serverDomain, enforce)
	if err != nil {
		return Result{}, err
	}
	fmt.Fprintf(s.out, "\nOrganizations detected: %s\n", strings.Join(cfg.Organizations(), ", "))

	if err := provision.WriteEnvFile(s.envPath, cfg, mode); err != nil {
		return Result{}, err
	}
	fmt.Fprintf(s.out, "Configuration saved to: %s\n", s.envPath)

	s.printSummary(cfg, mode)
	return Result{Config: cfg, Mode: mode}, nil
}

// readLine returns the next trimmed input line. io.EOF means the
// operator ended the session.
func (s *Setup) readLine() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Setup) chooseMode() (string, error) {
	fmt.Fprintln(s.out, "\nChoose configuration mode:")
	fmt.Fprintln(s.out, "1. Basic      - simple setup to get started quickly")
	fmt.Fprintln(s.out, "2. Advanced   - custom server configuration")
	fmt.Fprintln(s.out, "3. Enterprise - complete setup for production use")

	for {
		fmt.Fprint(s.out, "\nChoose an option (1-3): ")
		choice, err := s.readLine()
		if err != nil {
			return "", err
		}
		switch choice {
		case "1":
			return ModeBasic, nil
		case "2":
			return ModeAdvanced, nil
		case "3":
			return ModeEnterprise, nil
		}
		fmt.Fprintln(s.out, errStyle.Render("Invalid option. Choose 1, 2, or 3."))
	}
}

func (s *Setup) promptToken() (string, error) {
	fmt.Fprintln(s.out, headerStyle.Render("\nGitHub Token Configuration"))
	fmt.Fprintln(s.out, hintStyle.Render("Create one at https://github.com/settings/tokens (scopes: repo, read:org, read:user)"))

	if existing := s.env[provision.EnvToken]; existing != "" {
		masked := existing
		if len(existing) > 6 {
			masked = "..." + existing[len(existing)-6:]
		}
		fmt.Fprintf(s.out, "\nToken found (%s). Use this one? (y/N): ", masked)
		answer, err := s.readLine()
		if err != nil {
			return "", err
		}
		if isYes(answer) {
			return existing, nil
		}
	}

	for {
		fmt.Fprint(s.out, "\nEnter your GitHub token: ")
		token, err := s.readLine()
		if err != nil {
			return "", err
		}
		if token == "" {
			fmt.Fprintln(s.out, errStyle.Render("Token cannot be empty."))
			continue
		}
		if len(token) < minTokenLen {
			fmt.Fprintln(s.out, errStyle.Render("Token too short. Check that you copied it completely."))
			continue
		}
		if !tokenPattern.MatchString(token) && !classicPattern.MatchString(token) {
			fmt.Fprintln(s.out, hintStyle.Render("Token format looks unusual, proceeding anyway."))
		}
		return token, nil
	}
}

func (s *Setup) promptRepositories() ([]string, error) {
	fmt.Fprintln(s.out, headerStyle.Render("\nRepository Configuration"))
	fmt.Fprintln(s.out, hintStyle.Render("Format: owner/name (e.g. docker/buildx); add as many as you like"))

	if existing := s.env[provision.EnvRepos]; existing != "" {
		fmt.Fprintf(s.out, "\nRepositories found: %s\nUse these repositories? (y/N): ", existing)
		answer, err := s.readLine()
		if err != nil {
			return nil, err
		}
		if isYes(answer) {
			return provision.ParseRepositories(existing), nil
		}
	}

	var repos []string
	for {
		fmt.Fprintf(s.out, "\nRepository #%d (or 'done' to finish): ", len(repos)+1)
		entry, err := s.readLine()
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(entry) {
		case "done", "finish", "end", "":
			if len(repos) > 0 {
				return repos, nil
			}
			fmt.Fprintln(s.out, errStyle.Render("Add at least one repository."))
			continue
		}
		if !provision.ValidRepository(entry) {
			fmt.Fprintln(s.out, errStyle.Render("Invalid format. Use owner/name."))
			continue
		}
		if contains(repos, entry) {
			fmt.Fprintln(s.out, hintStyle.Render("Repository already added."))
			continue
		}
		repos = append(repos, entry)
		fmt.Fprintln(s.out, okStyle.Render("Added: "+entry))
	}
}

func (s *Setup) promptServer(mode string) (serverURL, serverDomain string, enforce bool, err error) {
	if mode == ModeBasic {
		return provision.DefaultServerURL, provision.DefaultServerDomain, true, nil
	}

	fmt.Fprintln(s.out, headerStyle.Render("\nServer Configuration ("+mode+")"))

	fmt.Fprintf(s.out, "Server URL (%s): ", provision.DefaultServerURL)
	serverURL, err = s.readLine()
	if err != nil {
		return "", "", false, err
	}
	if serverURL == "" {
		serverURL = provision.DefaultServerURL
	}

	defaultDomain := domainFromURL(serverURL)
	fmt.Fprintf(s.out, "Domain (%s): ", defaultDomain)
	serverDomain, err = s.readLine()
	if err != nil {
		return "", "", false, err
	}
	if serverDomain == "" {
		serverDomain = defaultDomain
	}

	enforce = true
	if mode == ModeEnterprise {
		fmt.Fprint(s.out, "Enforce domain for security? (Y/n): ")
		answer, err := s.readLine()
		if err != nil {
			return "", "", false, err
		}
		enforce = !isNo(answer)
	}
	return serverURL, serverDomain, enforce, nil
}

func (s *Setup) printSummary(cfg *provision.Config, mode string) {
	orgs := cfg.Organizations()
	fmt.Fprintln(s.out, "")
	fmt.Fprintln(s.out, headerStyle.Render("CONFIGURATION SUMMARY"))
	fmt.Fprintf(s.out, "Setup mode:     %s\n", mode)
	fmt.Fprintf(s.out, "GitHub token:   configured (%s)\n", cfg.MaskedToken())
	fmt.Fprintf(s.out, "Organizations:  %d (%s)\n", len(orgs), strings.Join(orgs, ", "))
	fmt.Fprintf(s.out, "Repositories:   %d\n", len(cfg.Repositories))
	for i, repo := range cfg.Repositories {
		fmt.Fprintf(s.out, "  %2d. %s\n", i+1, repo)
	}
	fmt.Fprintf(s.out, "Server URL:     %s\n", cfg.ServerURL)
	fmt.Fprintf(s.out, "Domain:         %s\n", cfg.ServerDomain)
	fmt.Fprintf(s.out, "Enforce domain: %v\n", cfg.EnforceDomain)
}

// domainFromURL extracts the host portion of a server URL, defaulting
// to localhost when the URL has no scheme separator.
func domainFromURL(serverURL string) string {
	if strings.Contains(serverURL, "localhost") {
		return "localhost"
	}
	_, rest, ok := strings.Cut(serverURL, "//")
	if !ok {
		return provision.DefaultServerDomain
	}
	host, _, _ := strings.Cut(rest, ":")
	if host == "" {
		return provision.DefaultServerDomain
	}
	return strings.TrimSuffix(host, "/")
}

func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes", "s", "sim":
		return true
	}
	return false
}

func isNo(answer string) bool {
	switch strings.ToLower(answer) {
	case "n", "no", "nao", "não":
		return true
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
