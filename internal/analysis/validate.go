package analysis

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/internal/persona"
)

// defaultScore is the documented fallback when the model omits a score.
const defaultScore = 75

// ValidateResult coerces a parsed response into a typed AnalysisResult,
// applying the fallback and rejection rules:
//
//   - a missing or non-numeric score defaults to 75 (not an error);
//   - opportunities missing a title, problem, or solution, or with a
//     non-numeric impact, are dropped; zero survivors is a failure;
//   - the total ROI is the model's value when usable, otherwise the sum
//     of the surviving opportunity impacts (sum, not max: the derivation
//     matches the generation prompt, which asks the model to sum);
//   - a zero total ROI is a failure unless the persona treats zero as a
//     meaningful exclusion value.
//
// Requested ROI ceilings are prompt-side only; values violating them are
// reported as returned, never clamped.
func ValidateResult(raw *RawResult, cfg persona.IndustryConfig) (*model.AnalysisResult, error) {
	result := &model.AnalysisResult{
		KeyInsights:               raw.KeyInsights,
		PracticeType:              raw.PracticeType,
		PracticeTypeJustification: raw.PracticeTypeJustification,
		IsTargetPractice:          raw.IsTargetPractice,
		ReferralPotential:         raw.ReferralPotential,
	}

	if score, ok := asNumber(raw.OpportunityScore); ok {
		result.OpportunityScore = score
	} else {
		zap.L().Warn("analysis: response missing opportunity score, using default",
			zap.Int("default", defaultScore),
		)
		result.OpportunityScore = defaultScore
	}

	for _, op := range raw.Opportunities {
		if op.Opportunity == "" || op.Problem == "" || op.Solution == "" {
			continue
		}
		impact, ok := currencyValue(op.EstimatedImpact)
		if !ok {
			continue
		}
		result.KeyOpportunities = append(result.KeyOpportunities, model.OpportunityDetail{
			Opportunity:     op.Opportunity,
			Problem:         op.Problem,
			Solution:        op.Solution,
			ROITimeline:     op.ROITimeline,
			EstimatedImpact: impact,
		})
	}
	if len(result.KeyOpportunities) == 0 {
		return nil, eris.Wrap(ErrIncompleteAnalysis, "validate: no usable opportunities")
	}

	if roi, ok := currencyValue(raw.EstimatedAnnualROI); ok {
		result.EstimatedAnnualROI = roi
	} else {
		zap.L().Warn("analysis: response missing total ROI, deriving from opportunities")
		for _, op := range result.KeyOpportunities {
			result.EstimatedAnnualROI += op.EstimatedImpact
		}
	}

	if result.EstimatedAnnualROI == 0 && !cfg.ZeroScoreExcludes {
		return nil, eris.Wrapf(ErrZeroValue, "validate: config %s", cfg.ID)
	}

	return result, nil
}

// asNumber coerces JSON-decoded values to float64.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// currencyValue coerces a raw number or a currency-formatted string into
// a float. Returns false when neither applies.
func currencyValue(v any) (float64, bool) {
	if n, ok := asNumber(v); ok {
		return n, true
	}
	if s, ok := v.(string); ok {
		return ParseCurrency(s), true
	}
	return 0, false
}

// ParseCurrency extracts a USD amount from a formatted string such as
// "$150,000" or "$150,000 - $200,000". For ranges the first number (the
// lower bound) wins, never the average or upper bound. Strings with no
// digits parse to 0.
func ParseCurrency(s string) float64 {
	// Take the lower bound of a range.
	if i := strings.Index(s, "-"); i != -1 {
		s = s[:i]
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return n
}
