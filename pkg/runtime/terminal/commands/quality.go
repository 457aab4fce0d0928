package commands

import (
	"fmt"

	"github.com/finsight/dashis/pkg/ingest"
	"github.com/finsight/dashis/pkg/services/normalizer"
	"github.com/spf13/cobra"
)

type QualityCmd struct {
	flags CommonFlags
}

// NewQualityCmd runs the dataset quality checks without the rest of
// the pipeline.
func NewQualityCmd() *cobra.Command {
	qc := &QualityCmd{}
	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Assess the quality of a raw records file",
		RunE:  qc.run,
	}
	bindCommonFlags(cmd, &qc.flags)
	return cmd
}

func (qc *QualityCmd) run(cmd *cobra.Command, _ []string) error {
	raw, err := ingest.LoadFile(qc.flags.RecordsPath)
	if err != nil {
		return err
	}

	norm := normalizer.New()
	ds := norm.Process(cmd.Context(), raw)
	quality := norm.ValidateQuality(ds)
	enriched := norm.Enrich(ds)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Records kept: %d of %d\n", len(ds.Records), len(raw))
	fmt.Fprintf(out, "Quality: %s (valid: %t)\n", quality.Quality, quality.Valid)
	for _, issue := range quality.Issues {
		fmt.Fprintf(out, "  - %s\n", issue)
	}
	fmt.Fprintf(out, "Average amount: %.2f\n", enriched.Stats.AvgTransactionAmount)
	fmt.Fprintf(out, "Categories: %d, clients: %d\n",
		enriched.Stats.UniqueCategories, enriched.Stats.UniqueClients)
	return nil
}
