// Package generate composes email-generation requests from experiment
// summaries and user input, validates them locally, and submits them to
// the backend generation endpoint.
package generate

import (
	"context"
	"strings"

	"github.com/ignite/campaign-intel/internal/insight"
	"github.com/ignite/campaign-intel/internal/pkg/logger"
	"github.com/ignite/campaign-intel/internal/summary"
)

// DefaultObjective is substituted when generating from an experiment run
// whose summary carries the intent, so the user is not forced to restate it.
const DefaultObjective = "Generate an email campaign based on the experiment analysis results"

const (
	defaultTone                = "professional"
	defaultNumSimilarCampaigns = 3
	defaultSubjectSuggestions  = 3
)

// Backend is the slice of the insight client the generator needs.
type Backend interface {
	GenerateCampaign(ctx context.Context, req insight.EmailCampaignRequest) (*insight.EmailCampaignResult, error)
}

// Source identifies where a generation request draws its intent from:
// an experiment run (accept-and-generate flow), optionally with the
// extracted summary for request enrichment, or nothing (from scratch).
type Source struct {
	ExperimentRunID string
	Summary         *summary.KeyFeatureSummary
}

// Generator validates and enriches generation requests before submission.
type Generator struct {
	backend Backend
}

// NewGenerator creates a Generator backed by the given client.
func NewGenerator(backend Backend) *Generator {
	return &Generator{backend: backend}
}

// Generate validates the request, enriches it from the summary when one is
// supplied, and submits it.
//
// Validation is mode-dependent. With an experiment run as source, the
// objective may be empty: a default placeholder is substituted because the
// summary itself carries enough intent. From scratch, the objective must be
// non-empty and at least one product must be chosen; violations fail
// locally with ValidationError before any network call.
func (g *Generator) Generate(ctx context.Context, req insight.EmailCampaignRequest, src Source) (*insight.EmailCampaignResult, error) {
	fromExperiment := strings.TrimSpace(src.ExperimentRunID) != ""

	if fromExperiment {
		if strings.TrimSpace(req.Objective) == "" {
			req.Objective = DefaultObjective
		}
		req.ExperimentRunID = strings.TrimSpace(src.ExperimentRunID)
	} else {
		if strings.TrimSpace(req.Objective) == "" {
			return nil, &insight.ValidationError{Field: "objective", Reason: "must not be empty when generating without an experiment"}
		}
		if len(req.Products) == 0 {
			return nil, &insight.ValidationError{Field: "products", Reason: "requires at least one product when generating without an experiment"}
		}
	}

	if src.Summary != nil {
		enrichFromSummary(&req, *src.Summary)
	}

	if req.Tone == "" {
		req.Tone = defaultTone
	}
	if req.NumSimilarCampaigns == 0 {
		req.NumSimilarCampaigns = defaultNumSimilarCampaigns
	}
	if req.SubjectLineSuggestions == 0 {
		req.SubjectLineSuggestions = defaultSubjectSuggestions
	}

	logger.Info("generate: submitting campaign generation",
		"from_experiment", fromExperiment,
		"products", len(req.Products),
		"hero_image", req.GenerateHeroImage)

	return g.backend.GenerateCampaign(ctx, req)
}

// enrichFromSummary folds the extracted prompts into the request.
// Explicit user edits always win over derived defaults: KeyMessage is only
// populated from text prompts when the caller left it empty.
func enrichFromSummary(req *insight.EmailCampaignRequest, s summary.KeyFeatureSummary) {
	if len(s.HeroImagePrompts) > 0 {
		req.HeroImagePrompt = strings.Join(s.HeroImagePrompts, "\n")
		req.GenerateHeroImage = true
	}
	if len(s.CallToActionPrompts) > 0 {
		req.CallToAction = strings.Join(s.CallToActionPrompts, " | ")
	}
	if req.KeyMessage == "" && len(s.TextPrompts) > 0 {
		req.KeyMessage = strings.Join(s.TextPrompts, "\n")
	}
}
