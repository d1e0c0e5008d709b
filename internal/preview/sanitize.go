// Package preview prepares generated email HTML for safe inline rendering.
// Generated HTML originates from a trusted backend but is still
// attacker-reachable if that backend is ever compromised or if a user
// pastes arbitrary HTML into the generation inputs, so this is a
// defense-in-depth boundary: sanitize first, then render in a context
// that cannot execute scripts or reach the host page's credentials.
package preview

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// SafeHTML is a sanitized HTML fragment. Values of this type have passed
// through the sanitizer; nothing else should be rendered inline.
type SafeHTML string

// Sanitizer neutralizes script-executing and credential-bearing constructs
// in campaign HTML.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds the sanitization policy for email previews: common
// formatting and layout elements plus images, no scripts, no event
// handlers, no javascript: URLs, inline styles allowed since email HTML
// depends on them.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AllowTables()
	p.AllowAttrs("style").Globally()
	p.AllowAttrs("width", "height", "align", "valign", "bgcolor", "cellpadding", "cellspacing", "border").Globally()
	p.AllowURLSchemes("http", "https", "mailto")
	return &Sanitizer{policy: p}
}

// Prepare sanitizes a raw HTML string for inline rendering.
func (s *Sanitizer) Prepare(rawHTML string) SafeHTML {
	return SafeHTML(s.policy.Sanitize(rawHTML))
}

// SandboxCSP is the Content-Security-Policy embedded in every preview
// document: no script sources, no frames, images and inline styles only.
const SandboxCSP = "default-src 'none'; img-src http: https: data:; style-src 'unsafe-inline'"

// IframeSandbox is the sandbox attribute value for the rendering surface.
// Empty means every restriction applies: no scripts, no forms, no popups,
// and a unique opaque origin so the parent page's storage and cookies are
// unreachable.
const IframeSandbox = ""

// Document wraps sanitized content in a standalone HTML document carrying
// the sandbox CSP, suitable for srcdoc rendering in a sandboxed iframe.
func Document(content SafeHTML) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta http-equiv="Content-Security-Policy" content="` + SandboxCSP + `">` + "\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(string(content))
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
