package commands

import (
	"github.com/finsight/dashis/pkg/adapters"
	"github.com/finsight/dashis/pkg/ingest"
	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/spf13/cobra"
)

type SimulateCmd struct {
	flags    CommonFlags
	params   domain.SimulationParams
	reporter Reporter
}

// NewSimulateCmd applies the what-if levers to a processed records
// file.
func NewSimulateCmd(reporter Reporter) *cobra.Command {
	sc := &SimulateCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Apply what-if levers to the computed KPIs",
		RunE:  sc.run,
	}
	bindCommonFlags(cmd, &sc.flags)
	cmd.Flags().Float64Var(&sc.params.ChargesReduction, "charges-reduction", 0,
		"Expense reduction in percent (0-30)")
	cmd.Flags().Float64Var(&sc.params.PaymentAcceleration, "payment-acceleration", 0,
		"Payment acceleration in days (0-15)")
	cmd.Flags().Float64Var(&sc.params.PriceIncrease, "price-increase", 0,
		"Price increase in percent (0-15)")
	return cmd
}

func (sc *SimulateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	ag, err := BuildAgent(ctx, sc.flags)
	if err != nil {
		return err
	}
	raw, err := ingest.LoadFile(sc.flags.RecordsPath)
	if err != nil {
		return err
	}

	snap, err := ag.ProcessData(ctx, raw)
	if err != nil {
		return err
	}

	result, err := ag.Simulate(ctx, sc.params)
	if err != nil {
		return err
	}

	return sc.reporter.Handle(adapters.MapSimulationToReport(result, snap.Dataset.Period))
}
