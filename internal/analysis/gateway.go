package analysis

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/pkg/anthropic"
	"github.com/gaen-tech/leadscout/pkg/gemini"
)

// GenerateOutput is what the pipeline needs back from a model call: the
// raw text and the grounding citations that back it.
type GenerateOutput struct {
	Text    string
	Sources []model.GroundingSource
}

// Gateway is the trust boundary to the generative model. Implementations
// must request web-search grounding and must surface ErrNoContent when
// the remote capability returns zero candidates, as distinct from any
// downstream parse failure.
type Gateway interface {
	Generate(ctx context.Context, prompt, systemInstruction string) (*GenerateOutput, error)
}

// geminiGateway backs Gateway with the Gemini generateContent API.
type geminiGateway struct {
	client      gemini.Client
	model       string
	temperature float64
}

// NewGeminiGateway creates a Gateway over a Gemini client.
func NewGeminiGateway(client gemini.Client, modelID string, temperature float64) Gateway {
	return &geminiGateway{client: client, model: modelID, temperature: temperature}
}

func (g *geminiGateway) Generate(ctx context.Context, prompt, systemInstruction string) (*GenerateOutput, error) {
	req := gemini.GenerateContentRequest{
		Model: g.model,
		Contents: []gemini.Content{
			{Role: "user", Parts: []gemini.Part{{Text: prompt}}},
		},
		Tools:            []gemini.Tool{{GoogleSearch: &gemini.GoogleSearch{}}},
		GenerationConfig: &gemini.GenerationConfig{Temperature: &g.temperature},
	}
	if systemInstruction != "" {
		req.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: systemInstruction}}}
	}

	resp, err := g.client.GenerateContent(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "gateway: gemini generate")
	}
	if len(resp.Candidates) == 0 {
		return nil, eris.Wrap(ErrNoContent, "gateway: gemini returned zero candidates")
	}

	out := &GenerateOutput{Text: resp.Text()}
	if gm := resp.Candidates[0].GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk.Web == nil {
				continue
			}
			out.Sources = append(out.Sources, model.GroundingSource{
				URI:   chunk.Web.URI,
				Title: chunk.Web.Title,
			})
		}
	}
	return out, nil
}

// anthropicGateway backs Gateway with the Anthropic Messages API and its
// server-side web search tool.
type anthropicGateway struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicGateway creates a Gateway over an Anthropic client.
func NewAnthropicGateway(client anthropic.Client, modelID string, maxTokens int64, temperature float64) Gateway {
	return &anthropicGateway{client: client, model: modelID, maxTokens: maxTokens, temperature: temperature}
}

func (g *anthropicGateway) Generate(ctx context.Context, prompt, systemInstruction string) (*GenerateOutput, error) {
	temp := g.temperature
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		System:      systemInstruction,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
		WebSearch:   true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gateway: anthropic create message")
	}
	if len(resp.Content) == 0 {
		return nil, eris.Wrap(ErrNoContent, "gateway: anthropic returned no content blocks")
	}

	out := &GenerateOutput{Text: resp.Text()}
	for _, cite := range resp.AllCitations() {
		out.Sources = append(out.Sources, model.GroundingSource{
			URI:   cite.URL,
			Title: cite.Title,
		})
	}
	return out, nil
}
