// Package model defines the core domain types shared across leadscout.
package model

import (
	"time"
)

// LeadStatus represents where a lead sits in the qualification funnel.
type LeadStatus string

const (
	LeadStatusProspected  LeadStatus = "prospected"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusUnqualified LeadStatus = "unqualified"
)

// Valid reports whether s is one of the known statuses.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusProspected, LeadStatusQualified, LeadStatusUnqualified:
		return true
	}
	return false
}

// Metadata keys attached to leads by the analysis pipeline.
const (
	MetaConfigID        = "config_id"
	MetaConfigName      = "config_name"
	MetaProductFocus    = "product_focus"
	MetaClientName      = "client_name"
	MetaExcluded        = "excluded"
	MetaExclusionReason = "exclusion_reason"
)

// OpportunityDetail is a single AI-identified opportunity. Instances are
// produced only by response parsing and validation; once attached to an
// AnalysisResult they are never mutated.
type OpportunityDetail struct {
	Opportunity     string  `json:"opportunity"`
	Problem         string  `json:"problem"`
	Solution        string  `json:"solution"`
	ROITimeline     string  `json:"roi_timeline"`
	EstimatedImpact float64 `json:"estimated_impact"` // annual USD, non-negative
}

// GroundingSource is a web citation returned alongside a model answer.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ReferralPotential captures the referral-network assessment for
// specialist-focused personas.
type ReferralPotential struct {
	Type  string `json:"type,omitempty"`  // receiver|generator|both|none
	Score string `json:"score,omitempty"` // low|medium|high
	Notes string `json:"notes,omitempty"`
}

// AnalysisResult is the validated outcome of analyzing one company.
type AnalysisResult struct {
	OpportunityScore   float64             `json:"opportunity_score"` // 0-100
	KeyOpportunities   []OpportunityDetail `json:"key_opportunities"`
	EstimatedAnnualROI float64             `json:"estimated_annual_roi"` // USD
	KeyInsights        []string            `json:"key_insights,omitempty"`
	Sources            []GroundingSource   `json:"sources,omitempty"`

	// Persona-specific fields, present only when the active persona asks
	// the model for them.
	PracticeType              string             `json:"practice_type,omitempty"`
	PracticeTypeJustification string             `json:"practice_type_justification,omitempty"`
	IsTargetPractice          *bool              `json:"is_target_practice,omitempty"`
	ReferralPotential         *ReferralPotential `json:"referral_potential,omitempty"`
}

// Lead is the persisted result of analyzing one company. It exclusively
// owns its Company and AnalysisResult snapshots; later edits to the
// company list or to personas never change a materialized lead.
type Lead struct {
	ID        string            `json:"id"`
	Company   Company           `json:"company"`
	Analysis  AnalysisResult    `json:"analysis"`
	Status    LeadStatus        `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// SetMeta attaches a metadata entry, allocating the map on first use.
func (l *Lead) SetMeta(key, value string) {
	if l.Metadata == nil {
		l.Metadata = make(map[string]string)
	}
	l.Metadata[key] = value
}

// Excluded reports whether this lead was synthesized for a failed or
// categorically disqualified analysis.
func (l *Lead) Excluded() bool {
	return l.Metadata[MetaExcluded] == "true"
}

// BatchError records a single company that failed during a batch run.
type BatchError struct {
	Company Company `json:"company"`
	Error   string  `json:"error"`
}

// BatchProgress is a snapshot of a running (or finished) batch analysis.
type BatchProgress struct {
	Total     int          `json:"total"`
	Completed int          `json:"completed"`
	Failed    int          `json:"failed"`
	Results   []*Lead      `json:"results"`
	Errors    []BatchError `json:"errors"`
}
