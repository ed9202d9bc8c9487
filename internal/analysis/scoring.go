package analysis

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/internal/persona"
)

const (
	// baseScore is used when the model provided no score at all.
	baseScore = 50

	// overrideThreshold is how far the keyword score must diverge from
	// the AI score before it replaces it. Small deltas keep the model's
	// nuance instead of trusting a substring heuristic.
	overrideThreshold = 15
)

// Rescore applies the persona's deterministic keyword scoring pass to a
// lead, after AI scoring. Indicator keywords add their points to the AI
// score; any disqualifier match forces the score to zero outright. The
// recomputed score only replaces the AI score when they differ by more
// than the override threshold. A final score of zero marks the lead
// unqualified with an explicit exclusion reason.
func Rescore(lead *model.Lead, cfg persona.IndustryConfig) {
	computed, disqualifier := keywordScore(lead, cfg)

	if delta := computed - lead.Analysis.OpportunityScore; delta > overrideThreshold || delta < -overrideThreshold {
		zap.L().Info("analysis: keyword score overrides AI score",
			zap.String("lead_id", lead.ID),
			zap.Float64("ai_score", lead.Analysis.OpportunityScore),
			zap.Float64("keyword_score", computed),
		)
		lead.Analysis.OpportunityScore = computed
	}

	if lead.Analysis.OpportunityScore == 0 {
		lead.Status = model.LeadStatusUnqualified
		reason := "scored zero by analysis"
		if disqualifier != "" {
			reason = fmt.Sprintf("matched disqualifier %q", disqualifier)
		}
		lead.SetMeta(model.MetaExcluded, "true")
		lead.SetMeta(model.MetaExclusionReason, reason)
	}
}

// keywordScore computes the persona score for a lead and reports the
// first matching disqualifier, if any.
func keywordScore(lead *model.Lead, cfg persona.IndustryConfig) (score float64, disqualifier string) {
	var corpus strings.Builder
	corpus.WriteString(lead.Company.Name)
	corpus.WriteByte(' ')
	corpus.WriteString(strings.Join(lead.Analysis.KeyInsights, " "))
	for _, op := range lead.Analysis.KeyOpportunities {
		corpus.WriteByte(' ')
		corpus.WriteString(op.Opportunity)
		corpus.WriteByte(' ')
		corpus.WriteString(op.Problem)
		corpus.WriteByte(' ')
		corpus.WriteString(op.Solution)
	}
	text := strings.ToLower(corpus.String())

	// Disqualifiers are an absolute override, not an additive penalty.
	for _, d := range cfg.ScoringCriteria.Disqualifiers {
		if d != "" && strings.Contains(text, strings.ToLower(d)) {
			return 0, d
		}
	}

	score = lead.Analysis.OpportunityScore
	if score == 0 {
		score = baseScore
	}

	for _, group := range [][]persona.Indicator{
		cfg.ScoringCriteria.HighPriorityIndicators,
		cfg.ScoringCriteria.MediumPriorityIndicators,
		cfg.ScoringCriteria.ReferralIndicators,
	} {
		for _, ind := range group {
			if ind.Keyword != "" && strings.Contains(text, strings.ToLower(ind.Keyword)) {
				score += float64(ind.Points)
			}
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, ""
}
