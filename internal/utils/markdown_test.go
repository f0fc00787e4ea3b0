package utils

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	html := string(RenderMarkdown("# Title\n\n**bold** text"))
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("unexpected render: %s", html)
	}
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	html := string(RenderMarkdown("hello <script>alert(1)</script>"))
	if strings.Contains(html, "<script") {
		t.Errorf("script tag survived sanitization: %s", html)
	}
}
