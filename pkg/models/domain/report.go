package domain

import "time"

// Report is the renderable projection of a pipeline run, consumed by
// the terminal reporter. Adapters build one from KPI, analysis and
// simulation outputs.
type Report struct {
	Title       string
	Period      TimePeriod
	Sections    []ReportSection
	GeneratedAt time.Time
	Currency    string
}

// TimePeriod is the date range a report covers.
type TimePeriod struct {
	Start    time.Time
	End      time.Time
	Duration int // in days
}

// ReportSection is one logical block of a report.
type ReportSection struct {
	Title   string
	Summary map[string]any
	Details []ReportDetail
}

// ReportDetail is a single labelled figure within a section.
type ReportDetail struct {
	Name        string
	Value       any
	Unit        string
	Description string
}
