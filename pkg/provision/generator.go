// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package provision

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Grafana datasource constants. DatasourceType is the exact plugin
// identifier the validator matches against.
const (
	DatasourceName = "GitHub"
	DatasourceType = "grafana-github-datasource"
	tokenRef       = "${GITHUB_TOKEN}"
)

// Dashboard provider constants.
const (
	providerName      = "default"
	providerOrgID     = 1
	providerInterval  = 10
	grafanaDashboards = "/var/lib/grafana/dashboards"
)

// Access control constants.
const (
	roleName        = "restricted_viewer"
	roleDescription = "A viewer with no access to the Grafana API except for viewing dashboards"
	assignmentName  = "read_only_anon"
	assignmentTo    = "anonymous"
)

// ---------------------------------------------------------------------------
// Artifact document schemas
// ---------------------------------------------------------------------------

type datasourceDoc struct {
	APIVersion  int               `yaml:"apiVersion"`
	Datasources []datasourceEntry `yaml:"datasources"`
}

type datasourceEntry struct {
	Name      string         `yaml:"name"`
	Type      string         `yaml:"type"`
	Access    string         `yaml:"access"`
	IsDefault bool           `yaml:"isDefault"`
	Secure    secureJSONData `yaml:"secureJsonData"`
	Editable  bool           `yaml:"editable"`
}

type secureJSONData struct {
	// AccessToken carries the ${GITHUB_TOKEN} placeholder, resolved by
	// Grafana at startup. The literal secret never enters an artifact.
	AccessToken string `yaml:"accessToken"`
}

type providerDoc struct {
	APIVersion int             `yaml:"apiVersion"`
	Providers  []providerEntry `yaml:"providers"`
}

type providerEntry struct {
	Name                  string          `yaml:"name"`
	OrgID                 int             `yaml:"orgId"`
	Folder                string          `yaml:"folder"`
	Type                  string          `yaml:"type"`
	DisableDeletion       bool            `yaml:"disableDeletion"`
	UpdateIntervalSeconds int             `yaml:"updateIntervalSeconds"`
	AllowUIUpdates        bool            `yaml:"allowUiUpdates"`
	Options               providerOptions `yaml:"options"`
}

type providerOptions struct {
	Path                      string `yaml:"path"`
	FoldersFromFilesStructure bool   `yaml:"foldersFromFilesStructure"`
}

type accessControlDoc struct {
	APIVersion  int          `yaml:"apiVersion"`
	Roles       []roleEntry  `yaml:"roles"`
	Assignments []assignment `yaml:"assignments"`
}

type roleEntry struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Permissions []permission `yaml:"permissions"`
}

type permission struct {
	Action string `yaml:"action"`
	Scope  string `yaml:"scope"`
}

type assignment struct {
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
	Target string `yaml:"target"`
}

// FilterParams is the derived dashboard filter configuration written to
// dashboard_config.json and applied to dashboard templating variables.
type FilterParams struct {
	RepoRegex  string      `json:"repo_regex"`
	OrgOptions []OrgOption `json:"org_options"`
	DefaultOrg string      `json:"default_org"`
	OrgList    string      `json:"org_list"`
}

// OrgOption is one entry of the organization templating variable; the
// first derived organization is selected by default.
type OrgOption struct {
	Selected bool   `json:"selected"`
	Text     string `json:"text"`
	Value    string `json:"value"`
}

// serverTemplate is the grafana.ini deliverable. The [security], [auth]
// and [analytics] values are hardened constants, not configuration.
const serverTemplate = `[paths]
provisioning = /etc/grafana/provisioning

[server]
root_url = {{.ServerURL}}
domain = {{.ServerDomain}}
enforce_domain = {{.EnforceDomain}}

[security]
allow_embedding = true
disable_gravatar = true
cookie_secure = true
cookie_samesite = strict
disable_initial_admin_creation = true

[auth]
disable_login_form = true
oauth_auto_login = false

[auth.anonymous]
enabled = true
org_role = Viewer
hide_version = true

[dashboards]
default_home_dashboard_path = /var/lib/grafana/dashboards/github.json
min_refresh_interval = 1m

[analytics]
reporting_enabled = false
check_for_updates = false

[feature_toggles]
publicDashboards = false
accessTokenExpirationCheck = false
`

var serverTmpl = template.Must(template.New("grafana.ini").Parse(serverTemplate))

// ---------------------------------------------------------------------------
// Generator
// ---------------------------------------------------------------------------

// Generator materializes the provisioning artifacts for one Config
// under a bundle root. Every write is a full overwrite of its target,
// so re-running is idempotent.
type Generator struct {
	cfg  *Config
	root string
	log  *zap.SugaredLogger
}

// NewGenerator returns a Generator writing under root. A nil log
// disables logging.
func NewGenerator(cfg *Config, root string, log *zap.SugaredLogger) *Generator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Generator{cfg: cfg, root: root, log: log}
}

// EnsureLayout creates the provisioning directory skeleton. Existing
// directories and their content are left alone.
func (g *Generator) EnsureLayout() error {
	dirs := []string{
		filepath.Join(ProvisioningDir, "datasources"),
		filepath.Join(ProvisioningDir, "dashboards"),
		filepath.Join(ProvisioningDir, "access-control"),
		DashboardsDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(g.root, dir), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// GenerateDatasource writes the GitHub datasource definition.
func (g *Generator) GenerateDatasource() (Artifact, error) {
	doc := datasourceDoc{
		APIVersion: 1,
		Datasources: []datasourceEntry{{
			Name:      DatasourceName,
			Type:      DatasourceType,
			Access:    "proxy",
			IsDefault: true,
			Secure:    secureJSONData{AccessToken: tokenRef},
			Editable:  false,
		}},
	}
	return g.writeYAML(KindDatasource, DatasourceFile, doc)
}

// GenerateDashboardProvider writes the file-discovery provider entry.
func (g *Generator) GenerateDashboardProvider() (Artifact, error) {
	doc := providerDoc{
		APIVersion: 1,
		Providers: []providerEntry{{
			Name:                  providerName,
			OrgID:                 providerOrgID,
			Folder:                "",
			Type:                  "file",
			DisableDeletion:       true,
			UpdateIntervalSeconds: providerInterval,
			AllowUIUpdates:        false,
			Options: providerOptions{
				Path:                      grafanaDashboards,
				FoldersFromFilesStructure: true,
			},
		}},
	}
	return g.writeYAML(KindDashboardProvider, DashboardProviderFile, doc)
}

// GenerateAccessControl writes the read-only role and its binding to
// the anonymous principal.
func (g *Generator) GenerateAccessControl() (Artifact, error) {
	doc := accessControlDoc{
		APIVersion: 1,
		Roles: []roleEntry{{
			Name:        roleName,
			Description: roleDescription,
			Permissions: []permission{
				{Action: "dashboards:read", Scope: "dashboards:*"},
				{Action: "datasources:read", Scope: "datasources:*"},
			},
		}},
		Assignments: []assignment{{
			Name:   assignmentName,
			Role:   roleName,
			Target: assignmentTo,
		}},
	}
	return g.writeYAML(KindAccessControl, AccessControlFile, doc)
}

// GenerateServerTemplate writes grafana.ini.template at the bundle
// root. It is a top-level deliverable, not namespaced under
// provisioning/.
func (g *Generator) GenerateServerTemplate() (Artifact, error) {
	var b strings.Builder
	err := serverTmpl.Execute(&b, struct {
		ServerURL     string
		ServerDomain  string
		EnforceDomain bool
	}{g.cfg.ServerURL, g.cfg.ServerDomain, g.cfg.EnforceDomain})
	if err != nil {
		return Artifact{}, fmt.Errorf("rendering server template: %w", err)
	}
	return g.write(KindServerTemplate, ServerTemplateFile, []byte(b.String()))
}

// FilterParams derives the dashboard filter configuration. An empty
// repository list is a ConfigError: the regex would match nothing, and
// that is a broken configuration, not a valid filter.
func (g *Generator) FilterParams() (FilterParams, error) {
	names := g.cfg.RepoNames()
	if len(names) == 0 {
		return FilterParams{}, configErrorf(EnvRepos, "cannot derive filter parameters from an empty repository list")
	}
	orgs := g.cfg.Organizations()
	options := make([]OrgOption, len(orgs))
	for i, org := range orgs {
		options[i] = OrgOption{Selected: i == 0, Text: org, Value: org}
	}
	return FilterParams{
		RepoRegex:  "^(" + strings.Join(names, "|") + ")$",
		OrgOptions: options,
		DefaultOrg: g.cfg.DefaultOrg(),
		OrgList:    strings.Join(orgs, ","),
	}, nil
}

// GenerateFilterParams writes dashboard_config.json at the bundle root.
func (g *Generator) GenerateFilterParams() (Artifact, error) {
	params, err := g.FilterParams()
	if err != nil {
		return Artifact{}, err
	}
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("marshaling filter params: %w", err)
	}
	return g.write(KindFilterParams, FilterParamsFile, append(data, '\n'))
}

// GenerateAll runs every generator in fixed order. A directory-layout
// failure aborts the run; a failure in an individual artifact is
// recorded and the remaining artifacts are still attempted, without
// rolling back anything already written. Returns the artifacts written
// and the joined errors, if any.
func (g *Generator) GenerateAll() ([]Artifact, error) {
	if err := g.EnsureLayout(); err != nil {
		return nil, err
	}

	steps := []struct {
		name string
		run  func() (Artifact, error)
	}{
		{"datasource", g.GenerateDatasource},
		{"dashboard provider", g.GenerateDashboardProvider},
		{"access control", g.GenerateAccessControl},
		{"server template", g.GenerateServerTemplate},
		{"filter params", g.GenerateFilterParams},
	}

	var artifacts []Artifact
	var errs []error
	for _, step := range steps {
		artifact, err := step.run()
		if err != nil {
			g.log.Errorw("artifact generation failed", "artifact", step.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		g.log.Infow("generated", "artifact", artifact.Kind.String(), "path", artifact.Path)
		artifacts = append(artifacts, artifact)
	}
	return artifacts, errors.Join(errs...)
}

func (g *Generator) writeYAML(kind Kind, rel string, doc any) (Artifact, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return Artifact{}, fmt.Errorf("marshaling %s: %w", kind, err)
	}
	return g.write(kind, rel, data)
}

func (g *Generator) write(kind Kind, rel string, data []byte) (Artifact, error) {
	path := filepath.Join(g.root, rel)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("writing %s: %w", rel, err)
	}
	return Artifact{Kind: kind, Path: path, Payload: data}, nil
}
