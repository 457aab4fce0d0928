package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/finsight/dashis/pkg/adapters"
	"github.com/finsight/dashis/pkg/ingest"
	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/spf13/cobra"
)

type ScenariosCmd struct {
	flags         CommonFlags
	scenariosPath string
	reporter      Reporter
}

// NewScenariosCmd ranks a set of what-if scenarios and renders the
// best one.
func NewScenariosCmd(reporter Reporter) *cobra.Command {
	sc := &ScenariosCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Rank what-if scenarios and show the best one",
		RunE:  sc.run,
	}
	bindCommonFlags(cmd, &sc.flags)
	cmd.Flags().StringVar(&sc.scenariosPath, "scenarios", "", "Path to a JSON file of named scenarios")
	_ = cmd.MarkFlagRequired("scenarios")
	return cmd
}

func (sc *ScenariosCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	scenarios, err := loadScenarios(sc.scenariosPath)
	if err != nil {
		return err
	}

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

	best, err := ag.FindBestScenario(ctx, scenarios)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Best scenario: %s (score %.2f)\n", best.Scenario.Name, best.Score)
	return sc.reporter.Handle(adapters.MapSimulationToReport(best.Result, snap.Dataset.Period))
}

func loadScenarios(path string) ([]domain.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios file: %w", err)
	}
	var scenarios []domain.Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("scenarios file is not a JSON array: %w", err)
	}
	return scenarios, nil
}
