// Command stub-backend is a hardcoded stand-in for the insight backend,
// for local development of the console without the real analysis pipeline.
// All responses are canned.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

func main() {
	log.Println("WARNING: stub insight backend, all responses are hardcoded.")

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "healthy", "service": "insight-stub"})
	})

	mux.HandleFunc("POST /v1/analytics/prompt-sql", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
			http.Error(w, `{"detail":"prompt is required"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{
			"sql":     "SELECT campaign_id, open_rate, click_rate, revenue FROM campaign_performance ORDER BY open_rate DESC LIMIT 25",
			"columns": []string{"campaign_id", "open_rate", "click_rate", "revenue"},
			"rows": [][]any{
				{"cmp-1042", 0.41, 0.12, 18250.0},
				{"cmp-0987", 0.38, 0.09, 15400.0},
			},
		})
	})

	mux.HandleFunc("POST /v1/experiments/run", func(w http.ResponseWriter, r *http.Request) {
		// Simulate analysis latency
		time.Sleep(500 * time.Millisecond)
		writeJSON(w, map[string]any{
			"run_id":                uuid.NewString(),
			"status":                "completed",
			"campaigns_analyzed":    5,
			"images_analyzed":       3,
			"visual_elements_found": 11,
			"campaign_ids":          []string{"cmp-1042", "cmp-0987", "cmp-0771"},
			"products_promoted":     []string{"Trail Runner 2", "Summit Pack 35L"},
		})
	})

	mux.HandleFunc("GET /v1/experiments/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{stubBundle()})
	})

	mux.HandleFunc("GET /v1/experiments/{runID}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, stubBundle())
	})

	mux.HandleFunc("GET /v1/products/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"products": []map[string]any{
				{"product_id": "p-101", "product_name": "Trail Runner 2", "price": 129.0},
				{"product_id": "p-204", "product_name": "Summit Pack 35L", "price": 179.0},
			},
		})
	})

	mux.HandleFunc("POST /v1/campaigns/generate", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"detail":"invalid request"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{
			"campaign_id":   uuid.NewString(),
			"campaign_name": "Peak Season Push",
			"email_content": map[string]any{
				"subject_line":   "Hit the trail with 20% off",
				"preview_text":   "Our best sellers, analyzed and back in stock",
				"body":           "Your next adventure starts with the gear our top campaigns keep proving out.",
				"call_to_action": "Shop the collection",
				"html_template":  "<div><h1>Hit the trail with 20% off</h1><p>Our best sellers are back.</p></div>",
			},
			"subject_line_variations":  []string{"Trail-tested picks, 20% off", "Gear up: top sellers inside"},
			"design_recommendations":   []string{"Lead with a single product hero shot on a light background"},
			"past_campaign_references": []string{"cmp-1042"},
		})
	})

	addr := ":" + port
	log.Printf("stub insight backend listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("stub backend exited: %v", err)
	}
}

func stubBundle() map[string]any {
	return map[string]any{
		"experiment_run": map[string]any{
			"run_id":                "run-stub-1",
			"status":                "completed",
			"campaigns_analyzed":    5,
			"images_analyzed":       3,
			"visual_elements_found": 11,
			"results_summary": map[string]any{
				"summary":      "High-performing campaigns lead with a single hero product on a light background.",
				"key_features": []string{"single product focus", "light backgrounds", "short subject lines"},
				"patterns": map[string]any{
					"visual":    "hero product photography with generous whitespace",
					"messaging": "benefit-led subject lines under 45 characters",
					"design":    "one primary call to action above the fold",
				},
				"recommendations":        []string{"Feature one product per send", "Keep subject lines under 45 characters"},
				"text_prompts":           []string{"Lead with the single strongest benefit"},
				"call_to_action_prompts": []string{"Shop the collection"},
			},
		},
		"hero_image_prompts": []string{
			"A single trail running shoe on a white studio background, soft shadow",
			"Hiker silhouette at sunrise with backpack, warm tones",
		},
		"campaign_analyses": []map[string]any{
			{"campaign_id": "cmp-1042", "campaign_name": "Spring Kickoff", "metrics": map[string]any{"open_rate": 0.41, "click_rate": 0.12, "conversion_rate": 0.031, "revenue": 18250.0}},
			{"campaign_id": "cmp-0987", "campaign_name": "Members Early Access", "metrics": map[string]any{"open_rate": 0.38, "click_rate": 0.09, "conversion_rate": 0.026, "revenue": 15400.0}},
			{"campaign_id": "cmp-0771", "campaign_name": "Weekend Flash", "metrics": map[string]any{"open_rate": 0.29, "click_rate": 0.07, "conversion_rate": 0.019, "revenue": 9100.0}},
		},
		"image_analyses": []map[string]any{
			{"image_id": "img-1", "campaign_id": "cmp-1042", "overall_description": "Single shoe, white background", "dominant_colors": []string{"#ffffff", "#e8492a"}},
			{"image_id": "img-2", "campaign_id": "cmp-0987", "overall_description": "Lifestyle trail shot", "dominant_colors": []string{"#4a6741", "#d9c7a0"}},
		},
		"correlations": []map[string]any{
			{"element_type": "background", "element_description": "light/white backdrop", "performance_impact": "+22% click rate vs busy backgrounds", "recommendation": "Prefer studio shots for hero images", "campaign_count": 4},
		},
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
	}
}
