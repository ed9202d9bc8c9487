package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gaen-tech/leadscout/pkg/anthropic"
	anthropicmocks "github.com/gaen-tech/leadscout/pkg/anthropic/mocks"
	"github.com/gaen-tech/leadscout/pkg/gemini"
	geminimocks "github.com/gaen-tech/leadscout/pkg/gemini/mocks"
)

func TestGeminiGateway_RequestsGrounding(t *testing.T) {
	client := new(geminimocks.MockClient)
	client.On("GenerateContent", mock.Anything, mock.MatchedBy(func(req gemini.GenerateContentRequest) bool {
		return len(req.Tools) == 1 && req.Tools[0].GoogleSearch != nil &&
			req.SystemInstruction != nil &&
			req.SystemInstruction.Parts[0].Text == "be thorough" &&
			req.Contents[0].Parts[0].Text == "analyze acme"
	})).Return(&gemini.GenerateContentResponse{
		Candidates: []gemini.Candidate{{
			Content: gemini.Content{Parts: []gemini.Part{{Text: "{}"}}},
			GroundingMetadata: &gemini.GroundingMetadata{
				GroundingChunks: []gemini.GroundingChunk{
					{Web: &gemini.WebSource{URI: "https://a.example", Title: "A"}},
					{Web: nil},
				},
			},
		}},
	}, nil).Once()

	gw := NewGeminiGateway(client, "gemini-2.5-flash", 0.3)
	out, err := gw.Generate(context.Background(), "analyze acme", "be thorough")
	require.NoError(t, err)

	assert.Equal(t, "{}", out.Text)
	require.Len(t, out.Sources, 1)
	assert.Equal(t, "https://a.example", out.Sources[0].URI)
	client.AssertExpectations(t)
}

func TestGeminiGateway_ZeroCandidates(t *testing.T) {
	client := new(geminimocks.MockClient)
	client.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&gemini.GenerateContentResponse{}, nil)

	gw := NewGeminiGateway(client, "gemini-2.5-flash", 0.3)
	_, err := gw.Generate(context.Background(), "p", "s")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestAnthropicGateway_WebSearchAndCitations(t *testing.T) {
	client := new(anthropicmocks.MockClient)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.WebSearch && req.System == "sys" && req.Messages[0].Content == "prompt"
	})).Return(&anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{
			Type: "text",
			Text: `{"opportunityScore": 10}`,
			Citations: []anthropic.Citation{
				{URL: "https://b.example", Title: "B"},
			},
		}},
	}, nil).Once()

	gw := NewAnthropicGateway(client, "claude-sonnet-4-5", 8192, 0.3)
	out, err := gw.Generate(context.Background(), "prompt", "sys")
	require.NoError(t, err)

	assert.Equal(t, `{"opportunityScore": 10}`, out.Text)
	require.Len(t, out.Sources, 1)
	assert.Equal(t, "https://b.example", out.Sources[0].URI)
	client.AssertExpectations(t)
}

func TestAnthropicGateway_NoContentBlocks(t *testing.T) {
	client := new(anthropicmocks.MockClient)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(&anthropic.MessageResponse{}, nil)

	gw := NewAnthropicGateway(client, "claude-sonnet-4-5", 8192, 0.3)
	_, err := gw.Generate(context.Background(), "p", "s")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoContent)
}
