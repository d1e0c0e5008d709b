// Package summary normalizes the backend's free-form results summary into
// a fixed-shape digest. Extraction is total: missing or mistyped fields
// degrade to empty values, never to an error, because the summary shape is
// not contractually guaranteed field-by-field.
package summary

import (
	"encoding/json"

	"github.com/ignite/campaign-intel/internal/insight"
	"github.com/ignite/campaign-intel/internal/pkg/logger"
)

// Patterns holds the cross-campaign patterns the analysis surfaced.
type Patterns struct {
	Visual    string `json:"visual,omitempty"`
	Messaging string `json:"messaging,omitempty"`
	Design    string `json:"design,omitempty"`
}

// KeyFeatureSummary is the normalized digest of an experiment's findings
// and generation prompts. Every field is always present (possibly empty)
// so downstream consumers never branch on missing-vs-empty.
type KeyFeatureSummary struct {
	Summary             string   `json:"summary"`
	KeyFeatures         []string `json:"key_features"`
	Patterns            Patterns `json:"patterns"`
	Recommendations     []string `json:"recommendations"`
	HeroImagePrompts    []string `json:"hero_image_prompts"`
	TextPrompts         []string `json:"text_prompts"`
	CallToActionPrompts []string `json:"call_to_action_prompts"`
}

// IsEmpty reports whether extraction found nothing usable.
func (s KeyFeatureSummary) IsEmpty() bool {
	return s.Summary == "" &&
		len(s.KeyFeatures) == 0 &&
		len(s.Recommendations) == 0 &&
		len(s.HeroImagePrompts) == 0 &&
		len(s.TextPrompts) == 0 &&
		len(s.CallToActionPrompts) == 0 &&
		s.Patterns == (Patterns{})
}

// Extract derives a KeyFeatureSummary from a results bundle.
//
// For each of the three prompt categories the candidate sources are
// consulted in a fixed order:
//
//  1. the top-level bundle field, if present and an array
//  2. the same-named field nested inside results_summary
//  3. the empty array
//
// Top-level wins over nested because newer backend versions promote these
// fields to the top level while older ones nest them; both shapes must
// keep working without client-side version checks.
func Extract(bundle *insight.ResultsBundle) KeyFeatureSummary {
	out := KeyFeatureSummary{
		KeyFeatures:         []string{},
		Recommendations:     []string{},
		HeroImagePrompts:    []string{},
		TextPrompts:         []string{},
		CallToActionPrompts: []string{},
	}
	if bundle == nil {
		return out
	}

	rs := bundle.Run.ResultsSummary

	out.Summary = stringField(rs, "summary")
	out.KeyFeatures = stringSliceField(rs, "key_features")
	out.Recommendations = stringSliceField(rs, "recommendations")
	out.Patterns = extractPatterns(rs)

	out.HeroImagePrompts = resolvePrompts(bundle.HeroImagePrompts, rs, "hero_image_prompts")
	out.TextPrompts = resolvePrompts(bundle.TextPrompts, rs, "text_prompts")
	out.CallToActionPrompts = resolvePrompts(bundle.CallToActionPrompts, rs, "call_to_action_prompts")

	return out
}

// resolvePrompts applies the top-level-wins precedence for one prompt
// category. A top-level value that is present but not an array falls
// through to the nested field; JSON null counts as absent, not as an
// empty array, because some backends emit null for fields they skipped.
func resolvePrompts(topLevel json.RawMessage, rs map[string]any, key string) []string {
	if len(topLevel) > 0 {
		var arr []any
		if err := json.Unmarshal(topLevel, &arr); err == nil && arr != nil {
			return stringValues(arr)
		}
	}
	if rs != nil {
		if nested, ok := rs[key].([]any); ok {
			return stringValues(nested)
		}
	}
	return []string{}
}

// extractPatterns accepts patterns only as a plain key/value object.
// Anything else is discarded silently: this is recoverable degradation,
// not a user-facing failure.
func extractPatterns(rs map[string]any) Patterns {
	if rs == nil {
		return Patterns{}
	}
	raw, present := rs["patterns"]
	if !present {
		return Patterns{}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		logger.Debug("summary: discarding non-object patterns field", "type", typeName(raw))
		return Patterns{}
	}
	return Patterns{
		Visual:    stringField(obj, "visual"),
		Messaging: stringField(obj, "messaging"),
		Design:    stringField(obj, "design"),
	}
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func stringSliceField(m map[string]any, key string) []string {
	if m == nil {
		return []string{}
	}
	arr, ok := m[key].([]any)
	if !ok {
		return []string{}
	}
	return stringValues(arr)
}

// stringValues keeps only string elements; mistyped entries are dropped.
func stringValues(arr []any) []string {
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	case []any:
		return "array"
	case nil:
		return "null"
	default:
		return "object"
	}
}
