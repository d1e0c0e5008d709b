package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrepareStripsScriptTags(t *testing.T) {
	s := NewSanitizer()

	out := s.Prepare(`<p>Hello</p><script>document.cookie</script>`)

	assert.Contains(t, string(out), "<p>Hello</p>")
	assert.NotContains(t, string(out), "<script")
	assert.NotContains(t, string(out), "document.cookie")
}

func TestPrepareStripsEventHandlers(t *testing.T) {
	s := NewSanitizer()

	out := s.Prepare(`<img src="https://cdn.example.com/hero.png" onclick="steal()" onerror="steal()">`)

	assert.Contains(t, string(out), `src="https://cdn.example.com/hero.png"`)
	assert.NotContains(t, string(out), "onclick")
	assert.NotContains(t, string(out), "onerror")
}

func TestPrepareStripsJavascriptURLs(t *testing.T) {
	s := NewSanitizer()

	out := s.Prepare(`<a href="javascript:alert(1)">click</a><a href="https://example.com">ok</a>`)

	assert.NotContains(t, string(out), "javascript:")
	assert.Contains(t, string(out), `href="https://example.com"`)
}

func TestPrepareKeepsEmailLayoutConstructs(t *testing.T) {
	s := NewSanitizer()
	in := `<table width="600" cellpadding="0" cellspacing="0" bgcolor="#ffffff">` +
		`<tr><td align="center" style="padding:20px;font-family:Arial;">Offer</td></tr></table>` +
		`<img src="https://cdn.example.com/a.png" width="600" style="display:block;">`

	out := string(s.Prepare(in))

	assert.Contains(t, out, `width="600"`)
	assert.Contains(t, out, `align="center"`)
	assert.Contains(t, out, "style=")
	assert.Contains(t, out, "padding")
	assert.Contains(t, out, `bgcolor="#ffffff"`)
	assert.Contains(t, out, "<img")
}

func TestDocumentCarriesSandboxCSP(t *testing.T) {
	doc := Document(SafeHTML("<p>body</p>"))

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, `http-equiv="Content-Security-Policy"`)
	assert.Contains(t, doc, SandboxCSP)
	assert.Contains(t, doc, "<p>body</p>")
}
