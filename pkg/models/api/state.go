package api

import (
	"github.com/finsight/dashis/pkg/models/domain"
)

// SchemaVersion is the exported-state envelope version. ImportState
// rejects envelopes whose version it does not know how to read.
const SchemaVersion = 1

// AgentStatus mirrors the agent lifecycle tag in serialized form.
type AgentStatus string

// StatePayload is the serializable body of an agent's state. Pointers
// are nil for results that were never produced.
type StatePayload struct {
	Current    AgentStatus              `json:"current"`
	Error      string                   `json:"error,omitempty"`
	Dataset    *domain.Dataset          `json:"dataset,omitempty"`
	KPIs       []domain.KPI             `json:"kpis,omitempty"`
	Charts     *domain.ChartBundle      `json:"charts,omitempty"`
	Analysis   *domain.AnalysisResult   `json:"analysis,omitempty"`
	Simulation *domain.SimulationResult `json:"simulation,omitempty"`
}

// AgentConfigPayload is the serializable slice of agent configuration
// carried inside an export.
type AgentConfigPayload struct {
	Sector       string   `json:"sector,omitempty"`
	CompanyName  string   `json:"companyName,omitempty"`
	TeamSize     int      `json:"teamSize,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// ExportedState is the full agent export envelope.
type ExportedState struct {
	SchemaVersion int                `json:"schemaVersion"`
	ID            string             `json:"id"`
	Version       string             `json:"version"`
	State         StatePayload       `json:"state"`
	Config        AgentConfigPayload `json:"config"`
}
