package agent

import (
	"encoding/json"
	"fmt"

	"github.com/finsight/dashis/pkg/models/api"
	"github.com/finsight/dashis/pkg/models/domain"
)

// ExportState serializes the agent's identity and state into the
// schema-versioned envelope. The result is the only persisted form of
// an agent; consumers must assume same-version compatibility only.
func (a *Agent) ExportState() ([]byte, error) {
	envelope := api.ExportedState{
		SchemaVersion: api.SchemaVersion,
		ID:            a.identity.ID,
		Version:       a.identity.Version,
		State: api.StatePayload{
			Current:    api.AgentStatus(a.state.current),
			Error:      a.state.errMsg,
			Dataset:    a.state.dataset,
			KPIs:       a.state.kpis,
			Charts:     a.state.charts,
			Analysis:   a.state.analysis,
			Simulation: a.state.simulation,
		},
		Config: api.AgentConfigPayload{
			Sector:       a.identity.Sector,
			CompanyName:  a.identity.CompanyName,
			TeamSize:     a.identity.TeamSize,
			Capabilities: a.identity.Capabilities,
		},
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize agent state: %w", err)
	}
	return data, nil
}

// ImportState replaces the agent's state from an exported envelope.
// The envelope must carry the current schema version and the same
// agent id, and its payload must pass structural validation before
// anything is overwritten.
func (a *Agent) ImportState(data []byte) error {
	var envelope api.ExportedState
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to parse exported state: %w", err)
	}

	if envelope.SchemaVersion != api.SchemaVersion {
		return fmt.Errorf("unsupported state schema version %d (expected %d)",
			envelope.SchemaVersion, api.SchemaVersion)
	}
	if envelope.ID != a.identity.ID {
		return fmt.Errorf("state belongs to agent %q, not %q", envelope.ID, a.identity.ID)
	}
	if err := validatePayload(envelope.State); err != nil {
		return fmt.Errorf("invalid state payload: %w", err)
	}

	a.state = state{
		current:    Status(envelope.State.Current),
		errMsg:     envelope.State.Error,
		dataset:    envelope.State.Dataset,
		kpis:       envelope.State.KPIs,
		charts:     envelope.State.Charts,
		analysis:   envelope.State.Analysis,
		simulation: envelope.State.Simulation,
	}
	return nil
}

// validatePayload checks the structural invariants an imported state
// must satisfy: a known lifecycle status, canonical records with
// positive amounts and resolvable dates, and identified KPIs.
func validatePayload(p api.StatePayload) error {
	if !ValidStatus(Status(p.Current)) {
		return fmt.Errorf("unknown lifecycle status %q", p.Current)
	}

	if p.Dataset != nil {
		for i, r := range p.Dataset.Records {
			if r.Amount <= 0 {
				return fmt.Errorf("record %d has non-positive amount %f", i, r.Amount)
			}
			if r.Date.IsZero() {
				return fmt.Errorf("record %d has no date", i)
			}
			if r.Kind != domain.KindIncome && r.Kind != domain.KindExpense {
				return fmt.Errorf("record %d has unknown kind %q", i, r.Kind)
			}
		}
		if p.Dataset.TotalIncome < 0 || p.Dataset.TotalExpense < 0 {
			return fmt.Errorf("negative dataset totals")
		}
		if p.Dataset.Period.End.Before(p.Dataset.Period.Start) {
			return fmt.Errorf("period end precedes period start")
		}
	}

	for i, k := range p.KPIs {
		if k.ID == "" {
			return fmt.Errorf("KPI %d has no id", i)
		}
	}
	return nil
}
