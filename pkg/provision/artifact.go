// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package provision

// Kind identifies one of the fixed provisioning artifact types.
type Kind int

const (
	KindDatasource Kind = iota
	KindDashboardProvider
	KindAccessControl
	KindServerTemplate
	KindFilterParams
)

func (k Kind) String() string {
	switch k {
	case KindDatasource:
		return "datasource"
	case KindDashboardProvider:
		return "dashboard-provider"
	case KindAccessControl:
		return "access-control"
	case KindServerTemplate:
		return "server-template"
	case KindFilterParams:
		return "filter-params"
	}
	return "unknown"
}

// Artifact is one generated provisioning document. Payload holds the
// rendered bytes exactly as written to Path; regenerating from an
// unchanged Config yields byte-identical payloads.
type Artifact struct {
	Kind    Kind
	Path    string
	Payload []byte
}

// Bundle paths, relative to the output root. The validator reads the
// same layout, so these are part of the contract with it.
const (
	ProvisioningDir       = "provisioning"
	DashboardsDir         = "dashboards"
	DatasourceFile        = "provisioning/datasources/datasource.yaml"
	DashboardProviderFile = "provisioning/dashboards/dashboard.yaml"
	AccessControlFile     = "provisioning/access-control/api-permissions.yaml"
	ServerTemplateFile    = "grafana.ini.template"
	FilterParamsFile      = "dashboard_config.json"
)
