package analysis

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/gaen-tech/leadscout/internal/model"
)

// RawOpportunity is one opportunity as parsed from model output, before
// type coercion. Impact may be a number or a currency string.
type RawOpportunity struct {
	Opportunity string `json:"opportunity"`
	Problem     string `json:"problem"`
	Solution    string `json:"solution"`
	ROITimeline string `json:"roiTimeline"`

	EstimatedImpact any `json:"estimatedImpact"`
}

// rawOpportunityWire accepts both historical field-name shapes for an
// opportunity item. Normalization into RawOpportunity happens once at
// the parser boundary; variant names never propagate past it.
type rawOpportunityWire struct {
	Opportunity     string `json:"opportunity"`
	Title           string `json:"title"`
	Problem         string `json:"problem"`
	Solution        string `json:"solution"`
	ROITimeline     string `json:"roiTimeline"`
	Timeline        string `json:"timeline"`
	EstimatedImpact any    `json:"estimatedImpact"`
}

// RawResult is the normalized but not yet validated analysis payload.
type RawResult struct {
	OpportunityScore   any
	Opportunities      []RawOpportunity
	EstimatedAnnualROI any
	KeyInsights        []string

	PracticeType              string
	PracticeTypeJustification string
	IsTargetPractice          *bool
	ReferralPotential         *model.ReferralPotential
}

type rawResultWire struct {
	OpportunityScore   any                  `json:"opportunityScore"`
	AIOpportunityScore any                  `json:"aiOpportunityScore"`
	KeyOpportunities   []rawOpportunityWire `json:"keyOpportunities"`
	Opportunities      []rawOpportunityWire `json:"opportunities"`
	EstimatedAnnualROI any                  `json:"estimatedAnnualROI"`
	EstimatedRoi       any                  `json:"estimatedRoi"`
	KeyInsights        []string             `json:"keyInsights"`

	PracticeType              string                   `json:"practiceType"`
	PracticeTypeJustification string                   `json:"practiceTypeJustification"`
	IsTargetPractice          *bool                    `json:"isTargetPractice"`
	ReferralPotential         *model.ReferralPotential `json:"referralPotential"`
}

// ParseResponse extracts the JSON object from arbitrary model text and
// normalizes historical field-name variants into one canonical shape.
// The payload may be wrapped in prose, a markdown fence, or both.
func ParseResponse(raw string) (*RawResult, error) {
	text := stripFence(strings.TrimSpace(raw))

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end < start {
		return nil, eris.Wrap(ErrMalformedResponse, "parse: no JSON object found")
	}
	text = text[start : end+1]

	var wire rawResultWire
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, eris.Wrap(ErrParse, err.Error())
	}

	return normalize(wire), nil
}

// stripFence removes a markdown code fence when the entire payload is
// wrapped in one.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	rest := text[3:]
	// Optional language tag on the opening fence line.
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		first := strings.TrimSpace(rest[:nl])
		if first == "" || !strings.ContainsAny(first, "{}") {
			rest = rest[nl+1:]
		}
	}
	if i := strings.LastIndex(rest, "```"); i != -1 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

func normalize(wire rawResultWire) *RawResult {
	out := &RawResult{
		OpportunityScore:          wire.OpportunityScore,
		EstimatedAnnualROI:        wire.EstimatedAnnualROI,
		KeyInsights:               wire.KeyInsights,
		PracticeType:              wire.PracticeType,
		PracticeTypeJustification: wire.PracticeTypeJustification,
		IsTargetPractice:          wire.IsTargetPractice,
		ReferralPotential:         wire.ReferralPotential,
	}
	if out.OpportunityScore == nil {
		out.OpportunityScore = wire.AIOpportunityScore
	}
	if out.EstimatedAnnualROI == nil {
		out.EstimatedAnnualROI = wire.EstimatedRoi
	}

	items := wire.KeyOpportunities
	if len(items) == 0 {
		items = wire.Opportunities
	}
	for _, item := range items {
		op := RawOpportunity{
			Opportunity:     item.Opportunity,
			Problem:         item.Problem,
			Solution:        item.Solution,
			ROITimeline:     item.ROITimeline,
			EstimatedImpact: item.EstimatedImpact,
		}
		if op.Opportunity == "" {
			op.Opportunity = item.Title
		}
		if op.ROITimeline == "" {
			op.ROITimeline = item.Timeline
		}
		out.Opportunities = append(out.Opportunities, op)
	}

	return out
}
