// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package provision

import (
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is the environment file name at the bundle root.
const DefaultEnvFile = ".env"

// envTemplate renders the .env file written by setup. The hardening
// block is constant; only the top section comes from Config.
const envTemplate = `# GitHub Dashboard Grafana Configuration
# Automatically generated on {{.Timestamp}}

# GitHub access token (required)
GITHUB_TOKEN={{.Token}}

# Repositories to monitor (comma separated)
REPOS="{{.Repos}}"

# Grafana server configurations
GF_SERVER_ROOT_URL={{.ServerURL}}
GF_SERVER_DOMAIN={{.ServerDomain}}
GF_SERVER_ENFORCE_DOMAIN={{.EnforceDomain}}

# Security configuration
GF_AUTH_ANONYMOUS_ENABLED=true
GF_AUTH_ANONYMOUS_ORG_ROLE=Viewer
GF_AUTH_DISABLE_LOGIN_FORM=true
GF_USERS_ALLOW_SIGN_UP=false

# Configuration mode used
SETUP_MODE={{.SetupMode}}
`

var envTmpl = template.Must(template.New("env").Parse(envTemplate))

// ReadEnvFile parses a .env file into a flat map. A missing file is not
// an error; it returns an empty map so process variables alone can
// drive configuration.
func ReadEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return env, nil
}

// LoadConfig builds a Config from the .env file at path layered under
// the process environment for the keys the file does not set. File
// values win over inherited process variables, matching the loader the
// generator has always shipped with.
func LoadConfig(path string) (*Config, error) {
	env, err := ReadEnvFile(path)
	if err != nil {
		return nil, err
	}
	for _, key := range []string{EnvToken, EnvRepos, EnvServerURL, EnvServerDomain, EnvEnforceDomain} {
		if _, ok := env[key]; !ok {
			if v := os.Getenv(key); v != "" {
				env[key] = v
			}
		}
	}
	return FromMap(env)
}

// WriteEnvFile persists cfg to a .env file at path, overwriting any
// prior content. mode records which setup flow produced the file.
func WriteEnvFile(path string, cfg *Config, mode string) error {
	var b strings.Builder
	err := envTmpl.Execute(&b, struct {
		Timestamp     string
		Token         string
		Repos         string
		ServerURL     string
		ServerDomain  string
		EnforceDomain bool
		SetupMode     string
	}{
		Timestamp:     time.Now().Format("2006-01-02 15:04:05"),
		Token:         cfg.Token,
		Repos:         strings.Join(cfg.Repositories, ", "),
		ServerURL:     cfg.ServerURL,
		ServerDomain:  cfg.ServerDomain,
		EnforceDomain: cfg.EnforceDomain,
		SetupMode:     mode,
	})
	if err != nil {
		return fmt.Errorf("rendering env file: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("writing env file %s: %w", path, err)
	}
	return nil
}
