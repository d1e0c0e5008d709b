package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/campaign-intel/internal/cache"
	"github.com/ignite/campaign-intel/internal/generate"
	"github.com/ignite/campaign-intel/internal/insight"
	"github.com/ignite/campaign-intel/internal/metrics"
	"github.com/ignite/campaign-intel/internal/pkg/httputil"
	"github.com/ignite/campaign-intel/internal/pkg/logger"
	"github.com/ignite/campaign-intel/internal/preview"
	"github.com/ignite/campaign-intel/internal/summary"
	"github.com/ignite/campaign-intel/internal/warehouse"
	"github.com/ignite/campaign-intel/internal/workflow"
)

// Handlers holds every dependency of the console API. The cache and the
// warehouse are optional; nil disables the feature.
type Handlers struct {
	client    *insight.Client
	generator *generate.Generator
	sanitizer *preview.Sanitizer
	shell     *preview.ShellRenderer
	cache     *cache.ResultsCache
	warehouse *warehouse.Client

	// flow tracks the experiment workflow the console UI steps through.
	// UI-driven moves (data uploaded, images attached) arrive via the
	// workflow endpoints; pipeline handlers advance it on their own
	// completions.
	flowMu sync.Mutex
	flow   *workflow.Machine
}

// NewHandlers wires the handler set.
func NewHandlers(client *insight.Client, resultsCache *cache.ResultsCache, wh *warehouse.Client) *Handlers {
	return &Handlers{
		client:    client,
		generator: generate.NewGenerator(client),
		sanitizer: preview.NewSanitizer(),
		shell:     preview.NewShellRenderer(),
		cache:     resultsCache,
		warehouse: wh,
		flow:      workflow.NewMachine(),
	}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "healthy", "service": "campaign-intel"})
}

// writeInsightError maps the backend client error taxonomy onto HTTP
// responses. Upstream status codes are passed through in the details so
// the UI can surface them directly.
func writeInsightError(w http.ResponseWriter, err error) {
	var validationErr *insight.ValidationError
	var timeoutErr *insight.TimeoutError
	var serverErr *insight.ServerError
	var networkErr *insight.NetworkError

	switch {
	case errors.As(err, &validationErr):
		httputil.ErrorWithCode(w, http.StatusBadRequest, "validation_error", validationErr.Error())
	case errors.Is(err, insight.ErrSubmitInFlight):
		httputil.ErrorWithCode(w, http.StatusConflict, "submit_in_flight", err.Error())
	case errors.As(err, &timeoutErr):
		httputil.ErrorWithCode(w, http.StatusGatewayTimeout, "timeout", timeoutErr.Error())
	case errors.As(err, &serverErr):
		httputil.JSON(w, http.StatusBadGateway, httputil.ErrorResponse{
			Error:   serverErr.Detail,
			Code:    "upstream_error",
			Details: map[string]int{"upstream_status": serverErr.StatusCode},
		})
	case errors.As(err, &networkErr):
		httputil.ErrorWithCode(w, http.StatusBadGateway, "network_error", networkErr.Error())
	default:
		httputil.InternalError(w, err)
	}
}

type resolveRequest struct {
	Prompt       string `json:"prompt"`
	PreviewRows  bool   `json:"preview_rows"`
	PreviewLimit int    `json:"preview_limit"`
}

type resolveResponse struct {
	Prompt           string                  `json:"prompt"`
	SQL              string                  `json:"sql"`
	Columns          []string                `json:"columns"`
	Rows             [][]any                 `json:"rows"`
	WarehousePreview *warehouse.QueryPreview `json:"warehouse_preview,omitempty"`
}

// ResolveQuery turns a natural-language prompt into SQL via the backend.
// When a warehouse connection is configured and preview rows are requested,
// the resolved SQL is additionally previewed directly; preview failures are
// soft and only logged.
func (h *Handlers) ResolveQuery(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	resolved, err := h.client.ResolvePrompt(r.Context(), req.Prompt)
	if err != nil {
		writeInsightError(w, err)
		return
	}

	resp := resolveResponse{
		Prompt:  resolved.Prompt,
		SQL:     resolved.SQL,
		Columns: resolved.Columns,
		Rows:    resolved.Rows,
	}

	if req.PreviewRows && h.warehouse != nil && resolved.SQL != "" {
		wp, err := h.warehouse.PreviewQuery(r.Context(), resolved.SQL, req.PreviewLimit)
		if err != nil {
			logger.Warn("api: warehouse preview failed", "error", err)
		} else {
			resp.WarehousePreview = wp
		}
	}

	httputil.OK(w, resp)
}

type submitRequest struct {
	SQLQuery       string `json:"sql_query"`
	PromptQuery    string `json:"prompt_query"`
	ImageDirectory string `json:"image_directory"`
	ExperimentName string `json:"experiment_name"`
}

type experimentResponse struct {
	Run     *insight.ExperimentRun     `json:"run"`
	Bundle  *insight.ResultsBundle     `json:"bundle,omitempty"`
	Summary *summary.KeyFeatureSummary `json:"summary,omitempty"`
	Cached  bool                       `json:"cached,omitempty"`
}

// SubmitExperiment runs the full pipeline head: resolve the prompt when no
// SQL was supplied, submit the experiment, then fetch and summarize the
// results. Results are fetched only after the submission resolved with a
// non-empty run ID.
func (h *Handlers) SubmitExperiment(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	query := insight.Query{SQL: req.SQLQuery, Prompt: req.PromptQuery}
	if strings.TrimSpace(query.SQL) == "" && strings.TrimSpace(query.Prompt) != "" {
		resolved, err := h.client.ResolvePrompt(r.Context(), query.Prompt)
		if err != nil {
			writeInsightError(w, err)
			return
		}
		query.SQL = resolved.SQL
	}

	name := strings.TrimSpace(req.ExperimentName)
	if name == "" {
		name = "experiment-" + uuid.NewString()[:8]
	}

	run, err := h.client.SubmitExperiment(r.Context(), query, insight.SubmitOptions{
		ImageDirectory: req.ImageDirectory,
		RunName:        name,
	})
	if err != nil {
		writeInsightError(w, err)
		return
	}

	resp := experimentResponse{Run: run}

	if run.RunID != "" {
		bundle, err := h.client.FetchResults(r.Context(), run.RunID)
		if err != nil {
			// The run exists; surface it with the fetch failure logged so
			// the user can refresh instead of resubmitting.
			logger.Error("api: results fetch after submit failed", "run_id", run.RunID, "error", err)
		} else {
			extracted := summary.Extract(bundle)
			resp.Bundle = bundle
			resp.Summary = &extracted
			if h.cache != nil {
				h.cache.Put(r.Context(), run.RunID, bundle)
			}
			h.trackWorkflow(workflow.StateDataReady, workflow.StateAnalyzing, workflow.StateResultsReady)
		}
	}

	httputil.Created(w, resp)
}

// GetExperiment returns the results bundle and summary for a known run,
// serving from the cache when possible.
func (h *Handlers) GetExperiment(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	var bundle *insight.ResultsBundle
	cached := false
	if h.cache != nil {
		bundle, cached = h.cache.Get(r.Context(), runID)
	}
	if bundle == nil {
		var err error
		bundle, err = h.client.FetchResults(r.Context(), runID)
		if err != nil {
			writeInsightError(w, err)
			return
		}
		if h.cache != nil {
			h.cache.Put(r.Context(), runID, bundle)
		}
	}

	extracted := summary.Extract(bundle)
	httputil.OK(w, experimentResponse{
		Run:     &bundle.Run,
		Bundle:  bundle,
		Summary: &extracted,
		Cached:  cached,
	})
}

// RefreshExperiment bypasses and replaces the cached bundle for a run.
func (h *Handlers) RefreshExperiment(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	bundle, err := h.client.FetchResults(r.Context(), runID)
	if err != nil {
		writeInsightError(w, err)
		return
	}
	if h.cache != nil {
		h.cache.Put(r.Context(), runID, bundle)
	}

	extracted := summary.Extract(bundle)
	httputil.OK(w, experimentResponse{Run: &bundle.Run, Bundle: bundle, Summary: &extracted})
}

// ListExperiments returns the experiment history.
func (h *Handlers) ListExperiments(w http.ResponseWriter, r *http.Request) {
	bundles, err := h.client.ListExperiments(r.Context())
	if err != nil {
		writeInsightError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"experiments": bundles})
}

// ListProducts returns the promotable product catalog.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.client.ListProducts(r.Context())
	if err != nil {
		writeInsightError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"products": products})
}

type generateRequest struct {
	insight.EmailCampaignRequest
	ExperimentRunID string                     `json:"experiment_run_id"`
	Summary         *summary.KeyFeatureSummary `json:"summary,omitempty"`
}

type generateResponse struct {
	Result      *insight.EmailCampaignResult `json:"result"`
	PreviewHTML string                       `json:"preview_html"`
}

// GenerateCampaign validates, enriches, and submits a generation request,
// then returns the artifact along with a sanitized preview document.
func (h *Handlers) GenerateCampaign(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	result, err := h.generator.Generate(r.Context(), req.EmailCampaignRequest, generate.Source{
		ExperimentRunID: req.ExperimentRunID,
		Summary:         req.Summary,
	})
	if err != nil {
		writeInsightError(w, err)
		return
	}

	resp := generateResponse{Result: result}
	if rendered, err := h.shell.Render(result); err != nil {
		logger.Error("api: preview render failed", "campaign_id", result.CampaignID, "error", err)
	} else {
		resp.PreviewHTML = preview.Document(h.sanitizer.Prepare(rendered))
	}

	if req.ExperimentRunID != "" {
		h.trackWorkflow(workflow.StateGenerating, workflow.StateDone)
	}

	httputil.Created(w, resp)
}

type previewRequest struct {
	HTML string `json:"html"`
}

// PreviewCampaign sanitizes arbitrary campaign HTML and wraps it in a
// sandboxed preview document.
func (h *Handlers) PreviewCampaign(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	safe := h.sanitizer.Prepare(req.HTML)
	httputil.OK(w, map[string]string{
		"html":    preview.Document(safe),
		"sandbox": preview.IframeSandbox,
	})
}

type workflowResponse struct {
	State workflow.State   `json:"state"`
	Next  []workflow.State `json:"next"`
}

type workflowAdvanceRequest struct {
	To workflow.State `json:"to"`
}

// GetWorkflow returns the current workflow state and the legal next steps.
func (h *Handlers) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	h.flowMu.Lock()
	resp := workflowResponse{State: h.flow.Current(), Next: h.flow.Next()}
	h.flowMu.Unlock()
	httputil.OK(w, resp)
}

// AdvanceWorkflow moves the workflow to the requested state. Illegal
// transitions are rejected with a conflict so the UI cannot skip steps.
func (h *Handlers) AdvanceWorkflow(w http.ResponseWriter, r *http.Request) {
	var req workflowAdvanceRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	h.flowMu.Lock()
	defer h.flowMu.Unlock()

	if err := h.flow.Advance(req.To); err != nil {
		var terr *workflow.TransitionError
		if errors.As(err, &terr) {
			httputil.ErrorWithCode(w, http.StatusConflict, "illegal_transition", terr.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, workflowResponse{State: h.flow.Current(), Next: h.flow.Next()})
}

// ResetWorkflow returns the workflow to the initial state.
func (h *Handlers) ResetWorkflow(w http.ResponseWriter, r *http.Request) {
	h.flowMu.Lock()
	h.flow.Reset()
	resp := workflowResponse{State: h.flow.Current(), Next: h.flow.Next()}
	h.flowMu.Unlock()
	httputil.OK(w, resp)
}

// trackWorkflow walks the machine along the given path, taking each step
// only when it is legal from wherever the machine currently is. Pipeline
// completions move the tracked flow without ever failing the request.
func (h *Handlers) trackWorkflow(path ...workflow.State) {
	h.flowMu.Lock()
	defer h.flowMu.Unlock()
	for _, s := range path {
		if h.flow.Current() == s {
			continue
		}
		if h.flow.CanAdvance(s) {
			if err := h.flow.Advance(s); err != nil {
				logger.Warn("api: workflow tracking failed", "to", s, "error", err)
				return
			}
		}
	}
}

// GetDashboardKPIs collects the dashboard KPI panel. Each metric is
// fetched independently and defaulted individually on failure.
func (h *Handlers) GetDashboardKPIs(w http.ResponseWriter, r *http.Request) {
	kpis := metrics.CollectKPIs(r.Context(), h.kpiSources())
	httputil.OK(w, map[string]any{"kpis": kpis})
}

// kpiSources derives the dashboard metrics from experiment history: the
// latest run against the one before it. Every source issues its own fetch
// so one failing metric cannot blank the panel.
func (h *Handlers) kpiSources() []metrics.KPISource {
	return []metrics.KPISource{
		h.historyKPI("Campaigns analyzed", func(run insight.ExperimentRun) float64 {
			return float64(run.CampaignsAnalyzed)
		}),
		h.historyKPI("Images analyzed", func(run insight.ExperimentRun) float64 {
			return float64(run.ImagesAnalyzed)
		}),
		h.historyKPI("Visual elements found", func(run insight.ExperimentRun) float64 {
			return float64(run.VisualElementsFound)
		}),
	}
}

// historyKPI builds a KPI source that compares a run metric between the
// two most recent experiments.
func (h *Handlers) historyKPI(label string, pick func(run insight.ExperimentRun) float64) metrics.KPISource {
	return metrics.KPISource{
		Label: label,
		Fetch: func(ctx context.Context) (float64, float64, error) {
			bundles, err := h.client.ListExperiments(ctx)
			if err != nil {
				return 0, 0, err
			}
			var current, previous float64
			if len(bundles) > 0 {
				current = pick(bundles[0].Run)
			}
			if len(bundles) > 1 {
				previous = pick(bundles[1].Run)
			}
			return current, previous, nil
		},
	}
}
