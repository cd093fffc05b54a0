package config

import (
	"fmt"
	"strings"

	"github.com/kilianp07/rolloutplan/core/rollout"
)

const (
	DefaultCompanyName = "RIANA GROUP"
	DefaultProjectName = "QMS, CX & SELF SERVICE SYSTEM INSTALLATION"
	DefaultBranches    = 10
)

// PlanConfig holds the defaults used for new plans and sessions.
type PlanConfig struct {
	CompanyName     string `json:"company_name"`
	ProjectName     string `json:"project_name"`
	ShowCompanyName bool   `json:"show_company_name"`
	Branches        int    `json:"branches"`
}

// SetDefaults fills the heading and, unless explicitly configured, the
// branch count.
func (c *PlanConfig) SetDefaults(branchesSet bool) {
	if strings.TrimSpace(c.CompanyName) == "" {
		c.CompanyName = DefaultCompanyName
	}
	if strings.TrimSpace(c.ProjectName) == "" {
		c.ProjectName = DefaultProjectName
	}
	if !branchesSet {
		c.Branches = DefaultBranches
	}
}

// Validate checks the branch count.
func (c PlanConfig) Validate() error {
	if err := rollout.ValidateBranches(c.Branches); err != nil {
		return fmt.Errorf("branches: %w", err)
	}
	return nil
}
