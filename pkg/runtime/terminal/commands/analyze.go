package commands

import (
	"github.com/finsight/dashis/pkg/adapters"
	"github.com/finsight/dashis/pkg/ingest"
	"github.com/spf13/cobra"
)

type AnalyzeCmd struct {
	flags    CommonFlags
	parallel bool
	reporter Reporter
}

// NewAnalyzeCmd runs the full pipeline and the four-stage analysis
// over a raw records file.
func NewAnalyzeCmd(reporter Reporter) *cobra.Command {
	ac := &AnalyzeCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run anomaly, prediction, pattern and scoring analysis",
		RunE:  ac.run,
	}
	bindCommonFlags(cmd, &ac.flags)
	cmd.Flags().BoolVar(&ac.parallel, "parallel", false, "Dispatch the four analyzer stages concurrently")
	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	ag, err := BuildAgent(ctx, ac.flags)
	if err != nil {
		return err
	}
	raw, err := ingest.LoadFile(ac.flags.RecordsPath)
	if err != nil {
		return err
	}

	snap, err := ag.ProcessData(ctx, raw)
	if err != nil {
		return err
	}

	analyze := ag.Analyze
	if ac.parallel {
		analyze = ag.AnalyzeParallel
	}
	result, err := analyze(ctx, nil)
	if err != nil {
		return err
	}

	return ac.reporter.Handle(adapters.MapAnalysisToReport(result, snap.Dataset.Period))
}
