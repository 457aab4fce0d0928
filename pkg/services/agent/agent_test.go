package agent

import (
	"context"
	"testing"

	"github.com/finsight/dashis/pkg/models/domain"
	"github.com/finsight/dashis/pkg/services/analysis"
	"github.com/finsight/dashis/pkg/services/analysis/anomaly"
	"github.com/finsight/dashis/pkg/services/analysis/forecast"
	"github.com/finsight/dashis/pkg/services/analysis/patterns"
	"github.com/finsight/dashis/pkg/services/analysis/scoring"
	"github.com/finsight/dashis/pkg/services/kpi"
	"github.com/finsight/dashis/pkg/services/normalizer"
	"github.com/finsight/dashis/pkg/services/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgent(t *testing.T, identity Identity) *Agent {
	t.Helper()
	orchestrator := analysis.NewOrchestrator(
		anomaly.NewDetector(),
		forecast.NewPredictor(),
		patterns.NewDetector(),
		scoring.NewScorer(),
		analysis.DefaultConfig(),
	)
	return New(identity, normalizer.New(), kpi.New(), orchestrator, simulation.New())
}

func testIdentity() Identity {
	return Identity{
		ID:           "agent-test",
		Version:      "1.0.0",
		Sector:       "services",
		CompanyName:  "Test SARL",
		Capabilities: []string{"kpi", "analysis", "simulation"},
	}
}

func rawFixture() []domain.RawRecord {
	raw := []domain.RawRecord{}
	for month := 1; month <= 4; month++ {
		for d := 0; d < 3; d++ {
			raw = append(raw,
				domain.RawRecord{
					"date": formatDay(month, 5+d), "type": "income",
					"amount": 2000.0, "client": "Acme", "status": "paid",
				},
				domain.RawRecord{
					"date": formatDay(month, 10+d), "type": "expense",
					"amount": 700.0, "category": "Operations",
				},
			)
		}
	}
	return raw
}

func formatDay(month, day int) string {
	return "2024-" + pad(month) + "-" + pad(day)
}

func pad(n int) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

func TestAgent_StartsIdle(t *testing.T) {
	ag := newTestAgent(t, testIdentity())

	snap := ag.State()

	assert.Equal(t, StatusIdle, snap.Current)
	assert.Nil(t, snap.Dataset)
	assert.Empty(t, snap.KPIs)
}

func TestProcessData_LoadsAndReachesReady(t *testing.T) {
	// Given
	ag := newTestAgent(t, testIdentity())

	// When
	snap, err := ag.ProcessData(context.Background(), rawFixture())

	// Then
	require.NoError(t, err)
	assert.Equal(t, StatusReady, snap.Current)
	require.NotNil(t, snap.Dataset)
	assert.Len(t, snap.Dataset.Records, 24)
	assert.NotEmpty(t, snap.KPIs)
	require.NotNil(t, snap.Charts)
	assert.NotEmpty(t, snap.Charts.MonthlySeries)
}

func TestProcessData_ReplacesStateWholesale(t *testing.T) {
	ag := newTestAgent(t, testIdentity())
	_, err := ag.ProcessData(context.Background(), rawFixture())
	require.NoError(t, err)
	_, err = ag.Analyze(context.Background(), nil)
	require.NoError(t, err)

	// A second load clears the previous analysis.
	snap, err := ag.ProcessData(context.Background(), rawFixture()[:4])
	require.NoError(t, err)

	assert.Nil(t, snap.Analysis)
	assert.Nil(t, snap.Simulation)
	assert.Len(t, snap.Dataset.Records, 4)
}

func TestAnalyze_RequiresDataset(t *testing.T) {
	ag := newTestAgent(t, testIdentity())

	_, err := ag.Analyze(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNoDataset)
	assert.Equal(t, StatusIdle, ag.State().Current, "precondition failures leave the state untouched")
}

func TestAnalyze_StoresResultAndReturnsToReady(t *testing.T) {
	ag := newTestAgent(t, testIdentity())
	_, err := ag.ProcessData(context.Background(), rawFixture())
	require.NoError(t, err)

	result, err := ag.Analyze(context.Background(), nil)

	require.NoError(t, err)
	assert.NotEmpty(t, result.Metadata.ModulesExecuted)
	snap := ag.State()
	assert.Equal(t, StatusReady, snap.Current)
	require.NotNil(t, snap.Analysis)
}

func TestAnalyzeParallel_StoresResult(t *testing.T) {
	ag := newTestAgent(t, testIdentity())
	_, err := ag.ProcessData(context.Background(), rawFixture())
	require.NoError(t, err)

	result, err := ag.AnalyzeParallel(context.Background(), nil)

	require.NoError(t, err)
	assert.NotEmpty(t, result.Metadata.ModulesExecuted)
	assert.Equal(t, StatusReady, ag.State().Current)
}

func TestSimulate_RequiresDatasetAndValidParams(t *testing.T) {
	ag := newTestAgent(t, testIdentity())

	_, err := ag.Simulate(context.Background(), domain.SimulationParams{})
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = ag.ProcessData(context.Background(), rawFixture())
	require.NoError(t, err)

	_, err = ag.Simulate(context.Background(), domain.SimulationParams{ChargesReduction: 99})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "charges reduction")
	assert.Equal(t, StatusReady, ag.State().Current, "invalid params are rejected before any transition")
}

func TestSimulate_StoresResult(t *testing.T) {
	ag := newTestAgent(t, testIdentity())
	_, err := ag.ProcessData(context.Background(), rawFixture())
	require.NoError(t, err)

	result, err := ag.Simulate(context.Background(), domain.SimulationParams{ChargesReduction: 10})

	require.NoError(t, err)
	assert.Equal(t, "Charges reduced by 10%", result.Summary)
	snap := ag.State()
	assert.Equal(t, StatusReady, snap.Current)
	require.NotNil(t, snap.Simulation)
}

func TestFindBestScenario_ReturnsTopScenario(t *testing.T) {
	ag := newTestAgent(t, testIdentity())
	_, err := ag.ProcessData(context.Background(), rawFixture())
	require.NoError(t, err)

	best, err := ag.FindBestScenario(context.Background(), []domain.Scenario{
		{Name: "small", Params: domain.SimulationParams{ChargesReduction: 1}},
		{Name: "big", Params: domain.SimulationParams{ChargesReduction: 25, PriceIncrease: 10}},
	})

	require.NoError(t, err)
	assert.Equal(t, "big", best.Scenario.Name)
	assert.Positive(t, best.Score)
}

func TestFindBestScenario_RequiresScenarios(t *testing.T) {
	ag := newTestAgent(t, testIdentity())
	_, err := ag.ProcessData(context.Background(), rawFixture())
	require.NoError(t, err)

	_, err = ag.FindBestScenario(context.Background(), nil)

	assert.ErrorIs(t, err, ErrNoScenarios)
}

func TestStateTransitions_Table(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusIdle, StatusLoading, true},
		{StatusIdle, StatusReady, false},
		{StatusIdle, StatusAnalyzing, false},
		{StatusLoading, StatusReady, true},
		{StatusLoading, StatusError, true},
		{StatusLoading, StatusSimulating, false},
		{StatusReady, StatusAnalyzing, true},
		{StatusReady, StatusSimulating, true},
		{StatusReady, StatusLoading, true},
		{StatusAnalyzing, StatusReady, true},
		{StatusAnalyzing, StatusSimulating, false},
		{StatusSimulating, StatusReady, true},
		{StatusError, StatusLoading, true},
		{StatusError, StatusReady, false},
	}
	for _, tc := range cases {
		s := state{current: tc.from}
		err := s.transition(tc.to)
		if tc.allowed {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, s.current)
		} else {
			assert.Error(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.from, s.current, "failed transition must not move the state")
		}
	}
}

func TestErrorStateRecoversThroughLoading(t *testing.T) {
	ag := newTestAgent(t, testIdentity())
	ag.state.fail("boom")
	require.Equal(t, StatusError, ag.State().Current)
	require.Equal(t, "boom", ag.State().Error)

	snap, err := ag.ProcessData(context.Background(), rawFixture())

	require.NoError(t, err)
	assert.Equal(t, StatusReady, snap.Current)
	assert.Empty(t, snap.Error)
}

func TestSnapshot_IsolatedFromAgentState(t *testing.T) {
	ag := newTestAgent(t, testIdentity())
	_, err := ag.ProcessData(context.Background(), rawFixture())
	require.NoError(t, err)

	snap := ag.State()
	snap.KPIs[0].NumericValue = -1
	snap.Dataset.Records[0].Amount = -1

	fresh := ag.State()
	assert.NotEqual(t, -1.0, fresh.KPIs[0].NumericValue)
	assert.NotEqual(t, -1.0, fresh.Dataset.Records[0].Amount)
}

func TestSnapshot_NestedStructuresIsolated(t *testing.T) {
	// Given an agent carrying charts, analysis and simulation results
	ag := newTestAgent(t, testIdentity())
	_, err := ag.ProcessData(context.Background(), rawFixture())
	require.NoError(t, err)
	_, err = ag.Analyze(context.Background(), nil)
	require.NoError(t, err)
	_, err = ag.Simulate(context.Background(), domain.SimulationParams{ChargesReduction: 10})
	require.NoError(t, err)

	// When the nested slices of a snapshot are mutated
	snap := ag.State()
	require.NotEmpty(t, snap.Charts.MonthlySeries)
	require.NotNil(t, snap.Analysis.Score)
	require.NotEmpty(t, snap.Simulation.SimulatedKPIs)
	snap.Charts.MonthlySeries[0].Income = -1
	snap.Charts.CashFlow.Nodes[0].Label = "tampered"
	snap.Analysis.Score.Grade = "Z"
	snap.Analysis.Score.Weaknesses = append(snap.Analysis.Score.Weaknesses, "tampered")
	snap.Simulation.SimulatedKPIs[0].DisplayValue = "tampered"

	// Then the agent's own state is untouched
	fresh := ag.State()
	assert.NotEqual(t, -1.0, fresh.Charts.MonthlySeries[0].Income)
	assert.NotEqual(t, "tampered", fresh.Charts.CashFlow.Nodes[0].Label)
	assert.NotEqual(t, "Z", fresh.Analysis.Score.Grade)
	assert.NotContains(t, fresh.Analysis.Score.Weaknesses, "tampered")
	assert.NotEqual(t, "tampered", fresh.Simulation.SimulatedKPIs[0].DisplayValue)
}

func TestExportImport_RoundTrip(t *testing.T) {
	// Given a fully processed, analyzed and simulated agent
	ag := newTestAgent(t, testIdentity())
	_, err := ag.ProcessData(context.Background(), rawFixture())
	require.NoError(t, err)
	_, err = ag.Analyze(context.Background(), nil)
	require.NoError(t, err)
	_, err = ag.Simulate(context.Background(), domain.SimulationParams{ChargesReduction: 5})
	require.NoError(t, err)

	// When exported and imported into a fresh agent with the same id
	data, err := ag.ExportState()
	require.NoError(t, err)

	fresh := newTestAgent(t, testIdentity())
	require.NoError(t, fresh.ImportState(data))

	// Then the restored state matches
	snap := fresh.State()
	assert.Equal(t, StatusReady, snap.Current)
	require.NotNil(t, snap.Dataset)
	assert.Len(t, snap.Dataset.Records, 24)
	assert.NotEmpty(t, snap.KPIs)
	require.NotNil(t, snap.Analysis)
	require.NotNil(t, snap.Simulation)
}

func TestImportState_RejectsForeignAgent(t *testing.T) {
	ag := newTestAgent(t, testIdentity())
	_, err := ag.ProcessData(context.Background(), rawFixture())
	require.NoError(t, err)
	data, err := ag.ExportState()
	require.NoError(t, err)

	other := testIdentity()
	other.ID = "someone-else"
	stranger := newTestAgent(t, other)

	err = stranger.ImportState(data)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent-test")
	assert.Equal(t, StatusIdle, stranger.State().Current, "rejected imports leave the state untouched")
}

func TestImportState_RejectsWrongSchemaVersion(t *testing.T) {
	ag := newTestAgent(t, testIdentity())

	err := ag.ImportState([]byte(`{"schemaVersion": 99, "id": "agent-test", "state": {"current": "ready"}}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version")
}

func TestImportState_RejectsCorruptPayload(t *testing.T) {
	ag := newTestAgent(t, testIdentity())

	err := ag.ImportState([]byte(`{"schemaVersion": 1, "id": "agent-test", "state": {"current": "flying"}}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "lifecycle status")
}

func TestImportState_RejectsMalformedJSON(t *testing.T) {
	ag := newTestAgent(t, testIdentity())

	err := ag.ImportState([]byte(`{not json`))

	assert.Error(t, err)
}

func TestCanFuseWith_AllowList(t *testing.T) {
	id := testIdentity()
	id.FuseAllowList = []string{"partner-a", "partner-b"}
	ag := newTestAgent(t, id)

	assert.True(t, ag.CanFuseWith("partner-a"))
	assert.False(t, ag.CanFuseWith("stranger"))
}

func TestCompatibilityScore_Jaccard(t *testing.T) {
	id := testIdentity()
	id.FuseAllowList = []string{"agent-other"}
	ag := newTestAgent(t, id)

	otherID := testIdentity()
	otherID.ID = "agent-other"
	otherID.Capabilities = []string{"kpi", "analysis", "reporting"}
	other := newTestAgent(t, otherID)

	// Shared {kpi, analysis} over union of four capabilities.
	assert.InDelta(t, 0.5, ag.CompatibilityScore(other), 1e-9)
}

func TestCompatibilityScore_ZeroOutsideAllowList(t *testing.T) {
	ag := newTestAgent(t, testIdentity())
	other := newTestAgent(t, Identity{ID: "agent-other", Capabilities: []string{"kpi"}})

	assert.Zero(t, ag.CompatibilityScore(other))
	assert.Zero(t, ag.CompatibilityScore(nil))
}
