package insight

import "encoding/json"

// Query is the user-supplied input to an experiment. Exactly one form is
// the executable one: a raw SQL text, or a natural-language prompt that
// the caller resolves to SQL first. The original prompt is retained for
// display even after resolution.
type Query struct {
	SQL    string `json:"sql,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

// ResolvedQuery is the output of the prompt-to-SQL endpoint. The SQL text
// is used verbatim; no client-side rewriting is applied.
type ResolvedQuery struct {
	Prompt  string  `json:"prompt"`
	SQL     string  `json:"sql"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// SubmitOptions carries the optional parameters of an experiment submission.
type SubmitOptions struct {
	ImageDirectory string `json:"image_directory,omitempty"`
	RunName        string `json:"experiment_name,omitempty"`
}

// ExperimentRun is the handle returned by an experiment submission. It is
// immutable once returned; each fetch is a fresh snapshot, never an
// incremental update.
type ExperimentRun struct {
	RunID               string   `json:"run_id"`
	Status              string   `json:"status"`
	CampaignsAnalyzed   int      `json:"campaigns_analyzed"`
	ImagesAnalyzed      int      `json:"images_analyzed"`
	VisualElementsFound int      `json:"visual_elements_found"`
	CampaignIDs         []string `json:"campaign_ids"`
	ProductsPromoted    []string `json:"products_promoted"`

	// ResultsSummary is a loosely-typed digest whose shape is not
	// contractually guaranteed field-by-field. It is normalized into a
	// typed summary by the summary package, never read ad hoc.
	ResultsSummary map[string]any `json:"results_summary,omitempty"`
}

// CampaignMetrics holds the per-campaign performance numbers.
type CampaignMetrics struct {
	OpenRate       float64 `json:"open_rate"`
	ClickRate      float64 `json:"click_rate"`
	ConversionRate float64 `json:"conversion_rate"`
	Revenue        float64 `json:"revenue"`
}

// CampaignAnalysis is one campaign performance record in a results bundle.
type CampaignAnalysis struct {
	CampaignID      string           `json:"campaign_id"`
	CampaignName    string           `json:"campaign_name,omitempty"`
	Metrics         *CampaignMetrics `json:"metrics,omitempty"`
	RawQueryResults map[string]any   `json:"raw_query_results,omitempty"`
}

// ImageAnalysis is one per-image visual analysis in a results bundle.
type ImageAnalysis struct {
	CampaignID          string   `json:"campaign_id,omitempty"`
	ImageID             string   `json:"image_id"`
	OverallDescription  string   `json:"overall_description,omitempty"`
	DominantColors      []string `json:"dominant_colors"`
	CompositionAnalysis string   `json:"composition_analysis,omitempty"`
}

// Correlation is a backend-inferred relationship between a visual element
// and a performance outcome. Always derived, never user-edited.
type Correlation struct {
	ElementType        string `json:"element_type"`
	ElementDescription string `json:"element_description,omitempty"`
	PerformanceImpact  string `json:"performance_impact,omitempty"`
	Recommendation     string `json:"recommendation,omitempty"`
	CampaignCount      int    `json:"campaign_count,omitempty"`
}

// ResultsBundle is the full result set of one experiment run. The three
// collections are independently optional; absence of one never invalidates
// the others, and absent collections decode to empty slices, never nil.
//
// Newer backend versions promote the three prompt arrays from
// results_summary to the top level. Both shapes are kept working: the
// fields are held raw here and the summary package resolves precedence.
type ResultsBundle struct {
	Run              ExperimentRun      `json:"experiment_run"`
	CampaignAnalyses []CampaignAnalysis `json:"campaign_analyses"`
	ImageAnalyses    []ImageAnalysis    `json:"image_analyses"`
	Correlations     []Correlation      `json:"correlations"`

	HeroImagePrompts    json.RawMessage `json:"hero_image_prompts,omitempty"`
	TextPrompts         json.RawMessage `json:"text_prompts,omitempty"`
	CallToActionPrompts json.RawMessage `json:"call_to_action_prompts,omitempty"`
}

// Normalize defaults every optional collection exactly once, at the parse
// boundary, so consumers can iterate unconditionally.
func (b *ResultsBundle) Normalize() {
	if b.CampaignAnalyses == nil {
		b.CampaignAnalyses = []CampaignAnalysis{}
	}
	if b.ImageAnalyses == nil {
		b.ImageAnalyses = []ImageAnalysis{}
	}
	if b.Correlations == nil {
		b.Correlations = []Correlation{}
	}
	if b.Run.CampaignIDs == nil {
		b.Run.CampaignIDs = []string{}
	}
	if b.Run.ProductsPromoted == nil {
		b.Run.ProductsPromoted = []string{}
	}
	for i := range b.ImageAnalyses {
		if b.ImageAnalyses[i].DominantColors == nil {
			b.ImageAnalyses[i].DominantColors = []string{}
		}
	}
}

// Product is one promotable product as listed by the backend catalog.
type Product struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Price       float64 `json:"price,omitempty"`
}

// ProductImage pairs a product with its creative asset. ImageURL may be a
// transient local preview reference before the pairing is confirmed.
type ProductImage struct {
	ProductID string `json:"product_id"`
	ImageURL  string `json:"image_url"`
	AltText   string `json:"alt_text,omitempty"`
}

// EmailCampaignRequest is the wire request of the email-generation endpoint.
type EmailCampaignRequest struct {
	Objective              string   `json:"objective"`
	Products               []string `json:"products"`
	KeyMessage             string   `json:"key_message,omitempty"`
	DesignGuidance         string   `json:"design_guidance,omitempty"`
	Tone                   string   `json:"tone"`
	UsePastCampaigns       bool     `json:"use_past_campaigns"`
	NumSimilarCampaigns    int      `json:"num_similar_campaigns"`
	SubjectLineSuggestions int      `json:"subject_line_suggestions"`
	IncludePreviewText     bool     `json:"include_preview_text"`
	HeroImagePrompt        string   `json:"hero_image_prompt,omitempty"`
	GenerateHeroImage      bool     `json:"generate_hero_image,omitempty"`
	CallToAction           string   `json:"call_to_action,omitempty"`
	ExperimentRunID        string   `json:"experiment_run_id,omitempty"`
}

// EmailContent is the body of a generated email artifact.
type EmailContent struct {
	SubjectLine  string `json:"subject_line"`
	PreviewText  string `json:"preview_text,omitempty"`
	Body         string `json:"body"`
	CallToAction string `json:"call_to_action"`
	HTMLTemplate string `json:"html_template,omitempty"`
	HeroImageURL string `json:"hero_image_url,omitempty"`
}

// EmailCampaignResult is the terminal artifact of the pipeline. Immutable
// once returned; the backend persists it as the system of record.
type EmailCampaignResult struct {
	CampaignID             string       `json:"campaign_id"`
	CampaignName           string       `json:"campaign_name"`
	EmailContent           EmailContent `json:"email_content"`
	SubjectLineVariations  []string     `json:"subject_line_variations"`
	DesignRecommendations  []string     `json:"design_recommendations"`
	PastCampaignReferences []string     `json:"past_campaign_references"`
}

// Normalize defaults the optional collections of a generation result.
func (r *EmailCampaignResult) Normalize() {
	if r.SubjectLineVariations == nil {
		r.SubjectLineVariations = []string{}
	}
	if r.DesignRecommendations == nil {
		r.DesignRecommendations = []string{}
	}
	if r.PastCampaignReferences == nil {
		r.PastCampaignReferences = []string{}
	}
}
