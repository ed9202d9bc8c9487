package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/internal/persona"
)

func scoringConfig() persona.IndustryConfig {
	cfg := plainConfig()
	cfg.ScoringCriteria = persona.ScoringCriteria{
		HighPriorityIndicators: []persona.Indicator{
			{Keyword: "periodontal", Points: 20},
			{Keyword: "laser", Points: 15},
		},
		MediumPriorityIndicators: []persona.Indicator{
			{Keyword: "implants", Points: 10},
		},
		ReferralIndicators: []persona.Indicator{
			{Keyword: "referral", Points: 5},
		},
		Disqualifiers: []string{"orthodontist", "pediatric"},
	}
	return cfg
}

func scoredLead(score float64, insights ...string) *model.Lead {
	return &model.Lead{
		ID:      "lead-1",
		Company: model.Company{Name: "Acme Dental"},
		Analysis: model.AnalysisResult{
			OpportunityScore: score,
			KeyInsights:      insights,
		},
		Status: model.LeadStatusProspected,
	}
}

func TestRescore_SmallDeltaKeepsAIScore(t *testing.T) {
	// Keyword pass: 70 + 10 (implants) = 80, within the threshold of 70.
	lead := scoredLead(70, "The practice places implants.")
	Rescore(lead, scoringConfig())

	assert.Equal(t, float64(70), lead.Analysis.OpportunityScore)
	assert.Equal(t, model.LeadStatusProspected, lead.Status)
}

func TestRescore_LargeDeltaOverridesUp(t *testing.T) {
	// Keyword pass: 60 + 20 + 15 = 95, delta 35 > threshold.
	lead := scoredLead(60, "Heavy periodontal caseload, no laser in use.")
	Rescore(lead, scoringConfig())

	assert.Equal(t, float64(95), lead.Analysis.OpportunityScore)
}

func TestRescore_LargeDeltaOverridesDown(t *testing.T) {
	// No indicators match: keyword score equals the AI score, so no
	// override can fire from matches alone. A zero AI score rebases at
	// 50, which is a delta of 50 downward-to-upward.
	lead := scoredLead(0, "Nothing relevant here.")
	Rescore(lead, scoringConfig())

	assert.Equal(t, float64(50), lead.Analysis.OpportunityScore)
	assert.Equal(t, model.LeadStatusProspected, lead.Status)
}

// P5: a disqualifier match forces a zero score no matter what the
// indicators would add.
func TestRescore_DisqualifierWinsOverIndicators(t *testing.T) {
	lead := scoredLead(85,
		"Leading periodontal and laser practice.",
		"The owner is an Orthodontist by training.",
	)
	Rescore(lead, scoringConfig())

	assert.Equal(t, float64(0), lead.Analysis.OpportunityScore)
	assert.Equal(t, model.LeadStatusUnqualified, lead.Status)
	assert.Equal(t, "true", lead.Metadata[model.MetaExcluded])
	assert.Contains(t, lead.Metadata[model.MetaExclusionReason], "orthodontist")
}

func TestRescore_DisqualifierMatchesOpportunityText(t *testing.T) {
	lead := scoredLead(85)
	lead.Analysis.KeyOpportunities = []model.OpportunityDetail{{
		Opportunity:     "Expand services",
		Problem:         "Patients referred out to a pediatric specialist",
		Solution:        "Hire in-house",
		EstimatedImpact: 50000,
	}}
	Rescore(lead, scoringConfig())

	assert.Equal(t, float64(0), lead.Analysis.OpportunityScore)
	assert.Equal(t, model.LeadStatusUnqualified, lead.Status)
}

func TestRescore_ClampsAtHundred(t *testing.T) {
	// 90 + 20 + 15 + 10 + 5 clamps to 100, delta 10 is under the
	// threshold so the AI score stands.
	lead := scoredLead(90, "periodontal laser implants referral")
	Rescore(lead, scoringConfig())
	assert.Equal(t, float64(90), lead.Analysis.OpportunityScore)

	// At a lower AI score the clamped 100 overrides.
	lead = scoredLead(60, "periodontal laser implants referral")
	Rescore(lead, scoringConfig())
	assert.Equal(t, float64(100), lead.Analysis.OpportunityScore)
}

func TestRescore_CaseInsensitive(t *testing.T) {
	lead := scoredLead(50, "PERIODONTAL disease specialists using LASER therapy")
	Rescore(lead, scoringConfig())
	assert.Equal(t, float64(85), lead.Analysis.OpportunityScore)
}

func TestRescore_NoCriteriaNoChange(t *testing.T) {
	lead := scoredLead(77, "any text at all")
	Rescore(lead, plainConfig())

	require.Equal(t, float64(77), lead.Analysis.OpportunityScore)
	assert.Equal(t, model.LeadStatusProspected, lead.Status)
}
