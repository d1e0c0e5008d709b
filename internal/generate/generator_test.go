package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/campaign-intel/internal/insight"
	"github.com/ignite/campaign-intel/internal/summary"
)

// spyBackend records every submitted request and returns a canned result.
type spyBackend struct {
	calls    []insight.EmailCampaignRequest
	response *insight.EmailCampaignResult
	err      error
}

func (s *spyBackend) GenerateCampaign(ctx context.Context, req insight.EmailCampaignRequest) (*insight.EmailCampaignResult, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	if s.response != nil {
		return s.response, nil
	}
	return &insight.EmailCampaignResult{CampaignID: "c1", CampaignName: "Generated"}, nil
}

func TestGenerateFromScratchRequiresObjectiveAndProducts(t *testing.T) {
	tests := []struct {
		name string
		req  insight.EmailCampaignRequest
	}{
		{"missing both", insight.EmailCampaignRequest{}},
		{"missing objective", insight.EmailCampaignRequest{Products: []string{"p-1"}}},
		{"missing products", insight.EmailCampaignRequest{Objective: "promote spring line"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyBackend{}
			g := NewGenerator(spy)

			_, err := g.Generate(context.Background(), tt.req, Source{})

			var validationErr *insight.ValidationError
			require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
			assert.Empty(t, spy.calls, "validation failure must not reach the backend")
		})
	}
}

func TestGenerateFromExperimentAllowsEmptyObjective(t *testing.T) {
	spy := &spyBackend{}
	g := NewGenerator(spy)

	_, err := g.Generate(context.Background(), insight.EmailCampaignRequest{}, Source{ExperimentRunID: "r1"})
	require.NoError(t, err)

	require.Len(t, spy.calls, 1)
	assert.Equal(t, DefaultObjective, spy.calls[0].Objective)
	assert.Equal(t, "r1", spy.calls[0].ExperimentRunID)
}

func TestGenerateFromExperimentKeepsExplicitObjective(t *testing.T) {
	spy := &spyBackend{}
	g := NewGenerator(spy)

	_, err := g.Generate(context.Background(),
		insight.EmailCampaignRequest{Objective: "clear winter stock"},
		Source{ExperimentRunID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, "clear winter stock", spy.calls[0].Objective)
}

func TestGenerateEnrichesFromSummary(t *testing.T) {
	spy := &spyBackend{}
	g := NewGenerator(spy)

	src := Source{
		ExperimentRunID: "r1",
		Summary: &summary.KeyFeatureSummary{
			HeroImagePrompts:    []string{"shoe on white", "sunrise trail"},
			TextPrompts:         []string{"lead with the benefit", "keep it short"},
			CallToActionPrompts: []string{"Shop now", "See the collection"},
		},
	}

	_, err := g.Generate(context.Background(), insight.EmailCampaignRequest{}, src)
	require.NoError(t, err)

	sent := spy.calls[0]
	assert.Equal(t, "shoe on white\nsunrise trail", sent.HeroImagePrompt)
	assert.True(t, sent.GenerateHeroImage, "hero prompts imply hero image generation")
	assert.Equal(t, "Shop now | See the collection", sent.CallToAction)
	assert.Equal(t, "lead with the benefit\nkeep it short", sent.KeyMessage)
}

func TestGenerateUserKeyMessageWinsOverTextPrompts(t *testing.T) {
	spy := &spyBackend{}
	g := NewGenerator(spy)

	src := Source{
		ExperimentRunID: "r1",
		Summary: &summary.KeyFeatureSummary{
			TextPrompts: []string{"derived message"},
		},
	}

	_, err := g.Generate(context.Background(),
		insight.EmailCampaignRequest{KeyMessage: "hand-written message"}, src)
	require.NoError(t, err)
	assert.Equal(t, "hand-written message", spy.calls[0].KeyMessage)
}

func TestGenerateEmptySummaryLeavesRequestUntouched(t *testing.T) {
	spy := &spyBackend{}
	g := NewGenerator(spy)

	_, err := g.Generate(context.Background(),
		insight.EmailCampaignRequest{},
		Source{ExperimentRunID: "r1", Summary: &summary.KeyFeatureSummary{}})
	require.NoError(t, err)

	sent := spy.calls[0]
	assert.Empty(t, sent.HeroImagePrompt)
	assert.False(t, sent.GenerateHeroImage)
	assert.Empty(t, sent.CallToAction)
	assert.Empty(t, sent.KeyMessage)
}

func TestGenerateAppliesDefaults(t *testing.T) {
	spy := &spyBackend{}
	g := NewGenerator(spy)

	_, err := g.Generate(context.Background(),
		insight.EmailCampaignRequest{Objective: "promote", Products: []string{"p-1"}},
		Source{})
	require.NoError(t, err)

	sent := spy.calls[0]
	assert.Equal(t, "professional", sent.Tone)
	assert.Equal(t, 3, sent.NumSimilarCampaigns)
	assert.Equal(t, 3, sent.SubjectLineSuggestions)
}

func TestGeneratePropagatesBackendError(t *testing.T) {
	spy := &spyBackend{err: &insight.ServerError{StatusCode: 503, Detail: "generation pipeline busy"}}
	g := NewGenerator(spy)

	_, err := g.Generate(context.Background(),
		insight.EmailCampaignRequest{Objective: "promote", Products: []string{"p-1"}},
		Source{})

	var serverErr *insight.ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, 503, serverErr.StatusCode)
}
