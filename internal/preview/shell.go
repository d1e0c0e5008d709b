package preview

import (
	"fmt"
	"sync"

	"github.com/osteele/liquid"

	"github.com/ignite/campaign-intel/internal/insight"
)

// shellTemplate renders a plain preview document for generation results
// that carry no backend htmlTemplate. Layout only; the interesting HTML
// comes from the backend when present.
const shellTemplate = `<div style="max-width:600px;margin:0 auto;font-family:Arial,Helvetica,sans-serif;color:#222;">
  {% if hero_image_url != "" %}<img src="{{ hero_image_url }}" alt="" style="width:100%;display:block;">{% endif %}
  <h1 style="font-size:22px;margin:16px 0 4px;">{{ subject_line | escape }}</h1>
  {% if preview_text != "" %}<p style="color:#777;font-size:13px;margin:0 0 16px;">{{ preview_text | escape }}</p>{% endif %}
  <div style="font-size:15px;line-height:1.5;">{{ body_text | escape | newline_to_br }}</div>
  {% if call_to_action != "" %}<p style="margin:24px 0;"><span style="background:#1a73e8;color:#fff;padding:12px 24px;border-radius:4px;display:inline-block;">{{ call_to_action | escape }}</span></p>{% endif %}
</div>`

// ShellRenderer renders the fallback preview shell with a cached parsed
// template.
type ShellRenderer struct {
	engine *liquid.Engine

	once sync.Once
	tpl  *liquid.Template
	err  error
}

// NewShellRenderer creates a renderer with a fresh Liquid engine.
func NewShellRenderer() *ShellRenderer {
	return &ShellRenderer{engine: liquid.NewEngine()}
}

// Render produces the preview body for a generation result. When the
// backend supplied a full HTML template that wins; otherwise the shell is
// rendered from the structured email content.
func (r *ShellRenderer) Render(result *insight.EmailCampaignResult) (string, error) {
	if result.EmailContent.HTMLTemplate != "" {
		return result.EmailContent.HTMLTemplate, nil
	}

	r.once.Do(func() {
		r.tpl, r.err = r.engine.ParseTemplate([]byte(shellTemplate))
	})
	if r.err != nil {
		return "", fmt.Errorf("failed to parse preview shell template: %w", r.err)
	}

	out, err := r.tpl.Render(liquid.Bindings{
		"subject_line":   result.EmailContent.SubjectLine,
		"preview_text":   result.EmailContent.PreviewText,
		"body_text":      result.EmailContent.Body,
		"call_to_action": result.EmailContent.CallToAction,
		"hero_image_url": result.EmailContent.HeroImageURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render preview shell: %w", err)
	}
	return string(out), nil
}
