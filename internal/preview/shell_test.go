package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/campaign-intel/internal/insight"
)

func TestRenderPrefersBackendTemplate(t *testing.T) {
	r := NewShellRenderer()
	result := &insight.EmailCampaignResult{
		EmailContent: insight.EmailContent{
			SubjectLine:  "Spring sale",
			HTMLTemplate: `<html><body><h1>Backend template</h1></body></html>`,
		},
	}

	out, err := r.Render(result)

	require.NoError(t, err)
	assert.Equal(t, result.EmailContent.HTMLTemplate, out)
}

func TestRenderShellFromStructuredContent(t *testing.T) {
	r := NewShellRenderer()
	result := &insight.EmailCampaignResult{
		EmailContent: insight.EmailContent{
			SubjectLine:  "Spring sale",
			PreviewText:  "Save 20% this week",
			Body:         "Line one\nLine two",
			CallToAction: "Shop now",
			HeroImageURL: "https://cdn.example.com/hero.png",
		},
	}

	out, err := r.Render(result)

	require.NoError(t, err)
	assert.Contains(t, out, "Spring sale")
	assert.Contains(t, out, "Save 20% this week")
	assert.Contains(t, out, "Line one<br />")
	assert.Contains(t, out, "Line two")
	assert.Contains(t, out, "Shop now")
	assert.Contains(t, out, `src="https://cdn.example.com/hero.png"`)
}

func TestRenderShellOmitsAbsentPieces(t *testing.T) {
	r := NewShellRenderer()
	result := &insight.EmailCampaignResult{
		EmailContent: insight.EmailContent{
			SubjectLine: "Bare subject",
			Body:        "Body only",
		},
	}

	out, err := r.Render(result)

	require.NoError(t, err)
	assert.Contains(t, out, "Bare subject")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "call_to_action")
}

func TestRenderShellEscapesContent(t *testing.T) {
	r := NewShellRenderer()
	result := &insight.EmailCampaignResult{
		EmailContent: insight.EmailContent{
			SubjectLine: `<script>alert(1)</script>`,
			Body:        "text",
		},
	}

	out, err := r.Render(result)

	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}
