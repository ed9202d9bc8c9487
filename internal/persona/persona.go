// Package persona manages analysis personas: named bundles of prompt
// text, scoring rules, and opportunity templates that control how a
// company is analyzed. Built-in personas are process constants; custom
// personas live in a Repository and shadow built-ins by id.
package persona

import (
	"time"

	"github.com/rotisserie/eris"
)

// Indicator is a weighted keyword used by the scoring overlay.
type Indicator struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Points  int    `json:"points" yaml:"points"`
}

// ScoringCriteria drives the deterministic rescoring pass applied after
// AI scoring. Disqualifiers are an absolute override: any match forces
// the score to zero regardless of accumulated points.
type ScoringCriteria struct {
	HighPriorityIndicators   []Indicator `json:"high_priority_indicators,omitempty" yaml:"high_priority_indicators,omitempty"`
	MediumPriorityIndicators []Indicator `json:"medium_priority_indicators,omitempty" yaml:"medium_priority_indicators,omitempty"`
	ReferralIndicators       []Indicator `json:"referral_indicators,omitempty" yaml:"referral_indicators,omitempty"`
	Disqualifiers            []string    `json:"disqualifiers,omitempty" yaml:"disqualifiers,omitempty"`
}

// DollarRange is an inclusive USD range.
type DollarRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// MonthRange is an inclusive range of months.
type MonthRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// OpportunityTemplate is a hint template enumerated into the prompt so
// the model anchors its opportunities on known offerings.
type OpportunityTemplate struct {
	ID                   string      `json:"id" yaml:"id"`
	Title                string      `json:"title" yaml:"title"`
	ProblemTemplate      string      `json:"problem_template" yaml:"problem_template"`
	SolutionTemplate     string      `json:"solution_template" yaml:"solution_template"`
	EstimatedImpactRange DollarRange `json:"estimated_impact_range" yaml:"estimated_impact_range"`
	TimelineMonths       MonthRange  `json:"timeline_months" yaml:"timeline_months"`
	ApplicableWhen       []string    `json:"applicable_when,omitempty" yaml:"applicable_when,omitempty"`
}

// SearchQueryTemplates group the grounding search hints by intent.
type SearchQueryTemplates struct {
	CompanyType []string `json:"company_type,omitempty" yaml:"company_type,omitempty"`
	Technology  []string `json:"technology,omitempty" yaml:"technology,omitempty"`
	Services    []string `json:"services,omitempty" yaml:"services,omitempty"`
	Referrals   []string `json:"referrals,omitempty" yaml:"referrals,omitempty"`
}

// IndustryConfig is one analysis persona. The SystemPrompt may contain
// {companyName} and {websiteUrl} placeholders, substituted at prompt
// build time.
type IndustryConfig struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	ClientName   string `json:"client_name,omitempty" yaml:"client_name,omitempty"`
	ProductFocus string `json:"product_focus,omitempty" yaml:"product_focus,omitempty"`

	TargetCompanyTypes   []string `json:"target_company_types,omitempty" yaml:"target_company_types,omitempty"`
	ExcludedCompanyTypes []string `json:"excluded_company_types,omitempty" yaml:"excluded_company_types,omitempty"`

	SearchQueryTemplates SearchQueryTemplates `json:"search_query_templates" yaml:"search_query_templates"`

	SystemPrompt           string `json:"system_prompt" yaml:"system_prompt"`
	ReferralAnalysisPrompt string `json:"referral_analysis_prompt,omitempty" yaml:"referral_analysis_prompt,omitempty"`

	ScoringCriteria      ScoringCriteria       `json:"scoring_criteria" yaml:"scoring_criteria"`
	OpportunityTemplates []OpportunityTemplate `json:"opportunity_templates,omitempty" yaml:"opportunity_templates,omitempty"`

	// ZeroScoreExcludes marks personas where a zero score or zero ROI is
	// a meaningful terminal value (categorical exclusion) rather than a
	// validation failure.
	ZeroScoreExcludes bool `json:"zero_score_excludes,omitempty" yaml:"zero_score_excludes,omitempty"`

	Enabled   bool      `json:"enabled" yaml:"enabled"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Validate checks the minimum shape required for a persona to be usable.
func (c IndustryConfig) Validate() error {
	if c.ID == "" {
		return eris.New("persona: config id is required")
	}
	if c.Name == "" {
		return eris.Errorf("persona: config %q has no name", c.ID)
	}
	if c.SystemPrompt == "" {
		return eris.Errorf("persona: config %q has no system prompt", c.ID)
	}
	for _, tpl := range c.OpportunityTemplates {
		if tpl.Title == "" {
			return eris.Errorf("persona: config %q has an untitled opportunity template", c.ID)
		}
	}
	return nil
}
