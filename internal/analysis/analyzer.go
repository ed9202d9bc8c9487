package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/internal/persona"
)

// LeadSaver persists finished leads. Persistence is best-effort: a save
// failure is logged and never fails an analysis.
type LeadSaver interface {
	SaveLead(ctx context.Context, lead *model.Lead) error
}

// Analyzer composes the full pipeline for one company: active persona,
// prompt construction, model invocation, parsing, validation, and
// rescoring. It is the single place where pipeline errors are caught;
// callers receive a renderable lead even on total failure, never an
// error, except when the context itself was canceled (abandonment is
// the caller discarding the result, not a failure to synthesize).
type Analyzer struct {
	gateway Gateway
	configs *persona.Store
	saver   LeadSaver
	now     func() time.Time
	newID   func() string
}

// NewAnalyzer creates an Analyzer. saver may be nil to skip persistence.
func NewAnalyzer(gateway Gateway, configs *persona.Store, saver LeadSaver) *Analyzer {
	return &Analyzer{
		gateway: gateway,
		configs: configs,
		saver:   saver,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
	}
}

// Analyze runs the full analysis for one company and returns a fully
// formed lead. The returned error is non-nil only for context
// cancellation.
func (a *Analyzer) Analyze(ctx context.Context, company model.Company) (*model.Lead, error) {
	cfg := a.configs.Active(ctx)
	log := zap.L().With(
		zap.String("company", company.Name),
		zap.String("website", company.Website),
		zap.String("config_id", cfg.ID),
	)
	log.Info("analysis: starting")

	lead, err := a.analyze(ctx, company, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "analysis: abandoned")
		}
		log.Warn("analysis: failed, synthesizing excluded lead", zap.Error(err))
		lead = a.excludedLead(company, cfg, nil, eris.Cause(err).Error())
	}

	a.persist(ctx, lead)
	log.Info("analysis: complete",
		zap.String("lead_id", lead.ID),
		zap.String("status", string(lead.Status)),
		zap.Float64("score", lead.Analysis.OpportunityScore),
		zap.Float64("roi", lead.Analysis.EstimatedAnnualROI),
	)
	return lead, nil
}

// analyze runs the fallible stages: invoke, parse, validate, score.
func (a *Analyzer) analyze(ctx context.Context, company model.Company, cfg persona.IndustryConfig) (*model.Lead, error) {
	systemInstruction := BuildPrompt(cfg, company)
	prompt := BuildUserMessage(company)

	out, err := a.gateway.Generate(ctx, prompt, systemInstruction)
	if err != nil {
		return nil, err
	}

	raw, err := ParseResponse(out.Text)
	if err != nil {
		return nil, err
	}

	result, err := ValidateResult(raw, cfg)
	if err != nil {
		return nil, err
	}
	result.Sources = out.Sources

	// A zero score from a persona that models exclusion that way is a
	// categorical verdict, not a low-opportunity lead.
	if result.OpportunityScore == 0 && cfg.ZeroScoreExcludes {
		return a.excludedLead(company, cfg, result,
			"determined to be a non-target company type by AI analysis"), nil
	}

	lead := &model.Lead{
		ID:        a.newID(),
		Company:   company,
		Analysis:  *result,
		Status:    model.LeadStatusProspected,
		CreatedAt: a.now(),
	}
	lead.SetMeta(model.MetaConfigID, cfg.ID)
	lead.SetMeta(model.MetaConfigName, cfg.Name)
	if cfg.ProductFocus != "" {
		lead.SetMeta(model.MetaProductFocus, cfg.ProductFocus)
	}
	if cfg.ClientName != "" {
		lead.SetMeta(model.MetaClientName, cfg.ClientName)
	}

	Rescore(lead, cfg)
	return lead, nil
}

// excludedLead synthesizes a renderable lead for a failed or
// categorically excluded analysis. baseAnalysis, when non-nil, keeps
// whatever the model did return (practice type, insights, sources).
func (a *Analyzer) excludedLead(company model.Company, cfg persona.IndustryConfig, baseAnalysis *model.AnalysisResult, reason string) *model.Lead {
	analysis := model.AnalysisResult{}
	if baseAnalysis != nil {
		analysis = *baseAnalysis
	}
	analysis.OpportunityScore = 0
	analysis.EstimatedAnnualROI = 0
	analysis.KeyOpportunities = []model.OpportunityDetail{{
		Opportunity: "Analysis Halted",
		Problem:     reason,
		Solution:    "This company was identified as a non-target or an error occurred during analysis.",
		ROITimeline: "N/A",
	}}
	analysis.KeyInsights = append(analysis.KeyInsights, "Company was excluded: "+reason)

	lead := &model.Lead{
		ID:        a.newID(),
		Company:   company,
		Analysis:  analysis,
		Status:    model.LeadStatusUnqualified,
		CreatedAt: a.now(),
	}
	lead.SetMeta(model.MetaExcluded, "true")
	lead.SetMeta(model.MetaExclusionReason, reason)
	lead.SetMeta(model.MetaConfigID, cfg.ID)
	return lead
}

func (a *Analyzer) persist(ctx context.Context, lead *model.Lead) {
	if a.saver == nil {
		return
	}
	if err := a.saver.SaveLead(ctx, lead); err != nil {
		zap.L().Warn("analysis: saving lead failed",
			zap.String("lead_id", lead.ID),
			zap.Error(err),
		)
	}
}
