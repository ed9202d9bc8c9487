package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/internal/persona"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Generate(ctx context.Context, prompt, systemInstruction string) (*GenerateOutput, error) {
	args := m.Called(ctx, prompt, systemInstruction)
	if out := args.Get(0); out != nil {
		return out.(*GenerateOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type memRepo struct {
	activeID string
	custom   map[string]persona.IndustryConfig
}

func (r *memRepo) ActiveID(ctx context.Context) (string, error) { return r.activeID, nil }
func (r *memRepo) SetActiveID(ctx context.Context, id string) error {
	r.activeID = id
	return nil
}
func (r *memRepo) Custom(ctx context.Context) (map[string]persona.IndustryConfig, error) {
	return r.custom, nil
}
func (r *memRepo) SaveCustom(ctx context.Context, cfg persona.IndustryConfig) error {
	if r.custom == nil {
		r.custom = map[string]persona.IndustryConfig{}
	}
	r.custom[cfg.ID] = cfg
	return nil
}
func (r *memRepo) DeleteCustom(ctx context.Context, id string) error {
	delete(r.custom, id)
	return nil
}

type captureSaver struct {
	saved []*model.Lead
	err   error
}

func (s *captureSaver) SaveLead(ctx context.Context, lead *model.Lead) error {
	s.saved = append(s.saved, lead)
	return s.err
}

func testAnalyzer(gateway Gateway, store *persona.Store, saver LeadSaver) *Analyzer {
	a := NewAnalyzer(gateway, store, saver)
	a.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	n := 0
	a.newID = func() string {
		n++
		return "lead-00" + string(rune('0'+n))
	}
	return a
}

const goodResponse = `Here is the analysis:
{
  "opportunityScore": 82,
  "keyOpportunities": [
    {
      "opportunity": "Automate intake",
      "problem": "Manual data entry",
      "solution": "Deploy workflow tooling",
      "roiTimeline": "3-6 months",
      "estimatedImpact": 120000
    }
  ],
  "estimatedAnnualROI": 120000,
  "keyInsights": ["Growing fast"]
}`

func TestAnalyze_Success(t *testing.T) {
	gateway := &mockGateway{}
	gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(&GenerateOutput{
			Text:    goodResponse,
			Sources: []model.GroundingSource{{URI: "https://example.com", Title: "Example"}},
		}, nil).Once()

	saver := &captureSaver{}
	store := persona.NewStore(&memRepo{activeID: persona.DefaultID})
	analyzer := testAnalyzer(gateway, store, saver)

	lead, err := analyzer.Analyze(context.Background(), model.Company{
		Name: "Acme", Website: "acme.com", Industry: "Technology",
	})
	require.NoError(t, err)
	require.NotNil(t, lead)

	assert.Equal(t, model.LeadStatusProspected, lead.Status)
	assert.Equal(t, float64(82), lead.Analysis.OpportunityScore)
	assert.Equal(t, float64(120000), lead.Analysis.EstimatedAnnualROI)
	assert.Equal(t, persona.DefaultID, lead.Metadata[model.MetaConfigID])
	require.Len(t, lead.Analysis.Sources, 1)
	assert.Equal(t, "https://example.com", lead.Analysis.Sources[0].URI)

	require.Len(t, saver.saved, 1)
	assert.Same(t, lead, saver.saved[0])
	gateway.AssertExpectations(t)
}

// Every failure mode inside the pipeline resolves to an unqualified
// lead with an exclusion reason; Analyze itself does not fail.
func TestAnalyze_GatewayFailureSynthesizesLead(t *testing.T) {
	gateway := &mockGateway{}
	gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, eris.New("upstream unavailable"))

	saver := &captureSaver{}
	store := persona.NewStore(&memRepo{activeID: persona.DefaultID})
	analyzer := testAnalyzer(gateway, store, saver)

	lead, err := analyzer.Analyze(context.Background(), model.Company{Name: "Acme", Website: "acme.com"})
	require.NoError(t, err)
	require.NotNil(t, lead)

	assert.Equal(t, model.LeadStatusUnqualified, lead.Status)
	assert.Equal(t, float64(0), lead.Analysis.OpportunityScore)
	assert.Equal(t, "true", lead.Metadata[model.MetaExcluded])
	assert.NotEmpty(t, lead.Metadata[model.MetaExclusionReason])
	require.Len(t, lead.Analysis.KeyOpportunities, 1)
	assert.Equal(t, "Analysis Halted", lead.Analysis.KeyOpportunities[0].Opportunity)
	require.Len(t, saver.saved, 1)
}

func TestAnalyze_UnparseableResponseSynthesizesLead(t *testing.T) {
	gateway := &mockGateway{}
	gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(&GenerateOutput{Text: "I could not find any information about this company."}, nil)

	store := persona.NewStore(&memRepo{activeID: persona.DefaultID})
	analyzer := testAnalyzer(gateway, store, nil)

	lead, err := analyzer.Analyze(context.Background(), model.Company{Name: "Ghost", Website: "ghost.example"})
	require.NoError(t, err)

	assert.Equal(t, model.LeadStatusUnqualified, lead.Status)
	assert.Contains(t, lead.Analysis.KeyInsights[len(lead.Analysis.KeyInsights)-1], "Company was excluded: ")
}

func TestAnalyze_ZeroScoreExclusionPersona(t *testing.T) {
	cfg := plainConfig()
	cfg.ID = "screening"
	cfg.Name = "Screening"
	cfg.ZeroScoreExcludes = true

	gateway := &mockGateway{}
	gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(&GenerateOutput{Text: `{
			"opportunityScore": 0,
			"keyOpportunities": [
				{"opportunity": "None", "problem": "Out of segment", "solution": "N/A", "estimatedImpact": 0}
			],
			"estimatedAnnualROI": 0,
			"keyInsights": ["Practice is out of segment"]
		}`}, nil)

	repo := &memRepo{activeID: cfg.ID, custom: map[string]persona.IndustryConfig{cfg.ID: cfg}}
	analyzer := testAnalyzer(gateway, persona.NewStore(repo), nil)

	lead, err := analyzer.Analyze(context.Background(), model.Company{Name: "Offtarget", Website: "offtarget.example"})
	require.NoError(t, err)

	assert.Equal(t, model.LeadStatusUnqualified, lead.Status)
	assert.Equal(t, "determined to be a non-target company type by AI analysis",
		lead.Metadata[model.MetaExclusionReason])
	// Whatever the model did return survives on the excluded lead.
	assert.Contains(t, lead.Analysis.KeyInsights, "Practice is out of segment")
}

func TestAnalyze_CancellationReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	gateway := &mockGateway{}
	gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)

	store := persona.NewStore(&memRepo{activeID: persona.DefaultID})
	analyzer := testAnalyzer(gateway, store, nil)

	lead, err := analyzer.Analyze(ctx, model.Company{Name: "Acme", Website: "acme.com"})
	require.Error(t, err)
	assert.Nil(t, lead)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_SaveFailureIsNotFatal(t *testing.T) {
	gateway := &mockGateway{}
	gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(&GenerateOutput{Text: goodResponse}, nil)

	saver := &captureSaver{err: eris.New("disk full")}
	store := persona.NewStore(&memRepo{activeID: persona.DefaultID})
	analyzer := testAnalyzer(gateway, store, saver)

	lead, err := analyzer.Analyze(context.Background(), model.Company{Name: "Acme", Website: "acme.com"})
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusProspected, lead.Status)
}
