package bootstrap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
)

// SeedConfig describes one organization to seed: its admin, projects,
// and any further profiles. Profiles reference managers by email and
// projects by name so the file stays readable.
type SeedConfig struct {
	Organization string        `yaml:"organization"`
	Admin        SeedProfile   `yaml:"admin"`
	Projects     []SeedProject `yaml:"projects,omitempty"`
	Profiles     []SeedProfile `yaml:"profiles,omitempty"`
}

type SeedProfile struct {
	Email        string      `yaml:"email"`
	FullName     string      `yaml:"full_name"`
	Role         models.Role `yaml:"role,omitempty"`
	HourlyRate   *float64    `yaml:"hourly_rate,omitempty"`
	ManagerEmail string      `yaml:"manager_email,omitempty"`
	Projects     []string    `yaml:"projects,omitempty"`
}

type SeedProject struct {
	Name      string           `yaml:"name"`
	WeekStart models.WeekStart `yaml:"week_start,omitempty"`
}

// LoadSeedConfig reads and validates a seed file.
func LoadSeedConfig(path string) (*SeedConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var cfg SeedConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *SeedConfig) Validate() error {
	if c.Organization == "" {
		return fmt.Errorf("organization name is required")
	}
	if c.Admin.Email == "" || c.Admin.FullName == "" {
		return fmt.Errorf("admin email and full_name are required")
	}
	if c.Admin.HourlyRate != nil {
		return fmt.Errorf("admin %q: hourly rate is only valid for contractors", c.Admin.Email)
	}

	names := make(map[string]bool, len(c.Projects))
	for _, p := range c.Projects {
		if p.Name == "" {
			return fmt.Errorf("project name is required")
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate project %q", p.Name)
		}
		names[p.Name] = true
		if p.WeekStart != "" && !p.WeekStart.Valid() {
			return fmt.Errorf("project %q: unknown week start %q", p.Name, p.WeekStart)
		}
	}

	for _, p := range c.Profiles {
		if p.Email == "" || p.FullName == "" {
			return fmt.Errorf("profile email and full_name are required")
		}
		role := p.Role
		if role == "" {
			role = models.RoleContractor
		}
		if !role.Valid() {
			return fmt.Errorf("profile %q: unknown role %q", p.Email, p.Role)
		}
		if p.HourlyRate != nil && role != models.RoleContractor {
			return fmt.Errorf("profile %q: hourly rate is only valid for contractors", p.Email)
		}
		for _, name := range p.Projects {
			if !names[name] {
				return fmt.Errorf("profile %q references unknown project %q", p.Email, name)
			}
		}
	}

	return nil
}
