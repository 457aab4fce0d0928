package agent

import (
	"fmt"

	"github.com/finsight/dashis/pkg/models/domain"
)

// Status is the agent lifecycle tag.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusLoading    Status = "loading"
	StatusAnalyzing  Status = "analyzing"
	StatusReady      Status = "ready"
	StatusSimulating Status = "simulating"
	StatusError      Status = "error"
)

// allowedTransitions is the explicit lifecycle table. Error is
// reachable from every active state and recoverable through loading;
// no state is terminal.
var allowedTransitions = map[Status][]Status{
	StatusIdle:       {StatusLoading},
	StatusLoading:    {StatusReady, StatusError},
	StatusReady:      {StatusLoading, StatusAnalyzing, StatusSimulating, StatusError},
	StatusAnalyzing:  {StatusReady, StatusError},
	StatusSimulating: {StatusReady, StatusError},
	StatusError:      {StatusLoading},
}

// ValidStatus reports whether s is one of the lifecycle statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusIdle, StatusLoading, StatusAnalyzing, StatusReady, StatusSimulating, StatusError:
		return true
	}
	return false
}

// state is the single mutable owner of the latest pipeline outputs.
type state struct {
	current    Status
	errMsg     string
	dataset    *domain.Dataset
	kpis       []domain.KPI
	charts     *domain.ChartBundle
	analysis   *domain.AnalysisResult
	simulation *domain.SimulationResult
}

func newState() state {
	return state{current: StatusIdle}
}

// transition moves the lifecycle tag along the allowed-transition
// table. A successful transition clears any previous error message.
func (s *state) transition(to Status) error {
	for _, next := range allowedTransitions[s.current] {
		if next == to {
			s.current = to
			if to != StatusError {
				s.errMsg = ""
			}
			return nil
		}
	}
	return fmt.Errorf("invalid transition from %q to %q", s.current, to)
}

// fail forces the error state with a message. It bypasses the table on
// purpose: errors are reachable from anywhere.
func (s *state) fail(msg string) {
	s.current = StatusError
	s.errMsg = msg
}

// Snapshot is a deep-enough copy of the agent state handed to
// callers. Mutating a snapshot never touches the agent's own state.
type Snapshot struct {
	Current    Status
	Error      string
	Dataset    *domain.Dataset
	KPIs       []domain.KPI
	Charts     *domain.ChartBundle
	Analysis   *domain.AnalysisResult
	Simulation *domain.SimulationResult
}

func (s *state) snapshot() Snapshot {
	snap := Snapshot{
		Current: s.current,
		Error:   s.errMsg,
	}
	if s.dataset != nil {
		ds := *s.dataset
		ds.Records = append([]domain.CanonicalRecord(nil), s.dataset.Records...)
		snap.Dataset = &ds
	}
	if s.kpis != nil {
		snap.KPIs = append([]domain.KPI(nil), s.kpis...)
	}
	if s.charts != nil {
		snap.Charts = cloneCharts(s.charts)
	}
	if s.analysis != nil {
		snap.Analysis = cloneAnalysis(s.analysis)
	}
	if s.simulation != nil {
		simulation := *s.simulation
		simulation.SimulatedKPIs = cloneSlice(s.simulation.SimulatedKPIs)
		snap.Simulation = &simulation
	}
	return snap
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append([]T(nil), in...)
}

func cloneCharts(in *domain.ChartBundle) *domain.ChartBundle {
	out := *in
	out.MonthlySeries = cloneSlice(in.MonthlySeries)
	out.CategoryBreakdown = cloneSlice(in.CategoryBreakdown)
	out.MarginEvolution = cloneSlice(in.MarginEvolution)
	out.TopClients = cloneSlice(in.TopClients)
	out.Outstanding = cloneSlice(in.Outstanding)
	out.StatusBreakdown = cloneSlice(in.StatusBreakdown)
	out.CashFlow.Nodes = cloneSlice(in.CashFlow.Nodes)
	out.CashFlow.Edges = cloneSlice(in.CashFlow.Edges)
	out.Hierarchy = cloneHierarchy(in.Hierarchy)
	return &out
}

func cloneHierarchy(in domain.HierarchyNode) domain.HierarchyNode {
	out := in
	if in.Children != nil {
		out.Children = make([]domain.HierarchyNode, len(in.Children))
		for i, child := range in.Children {
			out.Children[i] = cloneHierarchy(child)
		}
	}
	return out
}

func cloneAnalysis(in *domain.AnalysisResult) *domain.AnalysisResult {
	out := *in
	out.Anomalies = cloneSlice(in.Anomalies)
	for i := range out.Anomalies {
		if tx := out.Anomalies[i].Transaction; tx != nil {
			copied := *tx
			out.Anomalies[i].Transaction = &copied
		}
		if rng := out.Anomalies[i].ExpectedRange; rng != nil {
			copied := *rng
			out.Anomalies[i].ExpectedRange = &copied
		}
	}
	out.CashFlowPredictions = cloneSlice(in.CashFlowPredictions)
	for i := range out.CashFlowPredictions {
		if src := out.CashFlowPredictions[i].Breakdown; src != nil {
			copied := make(map[string]float64, len(src))
			for k, v := range src {
				copied[k] = v
			}
			out.CashFlowPredictions[i].Breakdown = copied
		}
	}
	out.PredictionAlerts = cloneSlice(in.PredictionAlerts)
	out.Patterns = cloneSlice(in.Patterns)
	for i := range out.Patterns {
		out.Patterns[i].Recommendations = cloneSlice(in.Patterns[i].Recommendations)
	}
	if in.Score != nil {
		score := *in.Score
		score.Recommendations = cloneSlice(in.Score.Recommendations)
		score.Strengths = cloneSlice(in.Score.Strengths)
		score.Weaknesses = cloneSlice(in.Score.Weaknesses)
		out.Score = &score
	}
	return &out
}
