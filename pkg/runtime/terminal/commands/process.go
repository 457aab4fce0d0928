package commands

import (
	"time"

	"github.com/finsight/dashis/pkg/adapters"
	"github.com/finsight/dashis/pkg/ingest"
	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/spf13/cobra"
)

type ProcessCmd struct {
	flags    CommonFlags
	reporter Reporter
}

// NewProcessCmd ingests a raw records file and renders the KPI
// overview.
func NewProcessCmd(reporter Reporter) *cobra.Command {
	pc := &ProcessCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Normalize raw records and compute KPIs",
		RunE:  pc.run,
	}
	bindCommonFlags(cmd, &pc.flags)
	return cmd
}

func (pc *ProcessCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	ag, err := BuildAgent(ctx, pc.flags)
	if err != nil {
		return err
	}
	raw, err := ingest.LoadFile(pc.flags.RecordsPath)
	if err != nil {
		return err
	}

	snap, err := ag.ProcessData(ctx, raw)
	if err != nil {
		return err
	}

	report := adapters.MapKPIReportToReport(domain.KPIReport{
		KPIs: snap.KPIs,
		Metadata: domain.KPIMetadata{
			CalculatedAt: time.Now(),
			RecordCount:  len(snap.Dataset.Records),
			Period:       snap.Dataset.Period,
		},
	}, *snap.Charts)
	return pc.reporter.Handle(report)
}

func bindCommonFlags(cmd *cobra.Command, flags *CommonFlags) {
	cmd.Flags().StringVarP(&flags.ConfigPath, "config", "c", "dashis.yaml", "Path to the agent config file")
	cmd.Flags().StringVar(&flags.ProfilePath, "profiles", "profiles.ini", "Path to the profile registry")
	cmd.Flags().StringVar(&flags.Profile, "profile", "", "Business profile to run under")
	cmd.Flags().StringVarP(&flags.RecordsPath, "records", "r", "", "Path to the raw records JSON file")
	_ = cmd.MarkFlagRequired("records")
}
