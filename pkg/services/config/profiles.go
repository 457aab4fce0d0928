package config

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Profile is one business profile an agent can run under. Sector,
// company and team size feed pattern detection context.
type Profile struct {
	Name         string
	AgentID      string
	Sector       string
	CompanyName  string
	TeamSize     int
	Capabilities []string
}

// Registry exposes the profiles declared in the `.dashis/profiles`
// ini file, one section per profile.
type Registry interface {
	GetProfiles(ctx context.Context) ([]Profile, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type profileRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &profileRegistry{cfg: cfg}, nil
}

func (pr *profileRegistry) GetProfiles(_ context.Context) ([]Profile, error) {
	var profiles []Profile
	for _, section := range pr.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		profiles = append(profiles, sectionToProfile(section))
	}
	return profiles, nil
}

func (pr *profileRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	section, err := pr.cfg.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", name)
	}
	profile := sectionToProfile(section)
	return &profile, nil
}

func sectionToProfile(section *ini.Section) Profile {
	p := Profile{
		Name:        section.Name(),
		AgentID:     section.Key("agent_id").String(),
		Sector:      section.Key("sector").String(),
		CompanyName: section.Key("company_name").String(),
		TeamSize:    section.Key("team_size").MustInt(0),
	}
	if raw := section.Key("capabilities").String(); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(c); trimmed != "" {
				p.Capabilities = append(p.Capabilities, trimmed)
			}
		}
	}
	return p
}
