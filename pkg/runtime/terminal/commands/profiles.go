package commands

import (
	"fmt"
	"strings"

	"github.com/finsight/dashis/pkg/services/config"
	"github.com/spf13/cobra"
)

type ProfilesCmd struct {
	profilePath string
}

// NewProfilesCmd lists the business profiles declared in the registry.
func NewProfilesCmd() *cobra.Command {
	pc := &ProfilesCmd{}
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List configured business profiles",
		RunE:  pc.run,
	}
	cmd.Flags().StringVar(&pc.profilePath, "profiles", "profiles.ini", "Path to the profile registry")
	return cmd
}

func (pc *ProfilesCmd) run(cmd *cobra.Command, _ []string) error {
	registry, err := config.NewRegistry(pc.profilePath)
	if err != nil {
		return fmt.Errorf("failed to load profile registry: %w", err)
	}

	profiles, err := registry.GetProfiles(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range profiles {
		fmt.Fprintf(out, "%s: sector=%s company=%s team=%d capabilities=%s\n",
			p.Name, p.Sector, p.CompanyName, p.TeamSize, strings.Join(p.Capabilities, ","))
	}
	return nil
}
