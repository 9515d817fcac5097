package handlers

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/felo/eml-extractor/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHTMLBodySanitization tests that hostile markup in an extracted
// HTML body never reaches the rendered page
func TestHTMLBodySanitization(t *testing.T) {
	h, _ := setupTestHandlers(t)

	tests := []struct {
		name             string
		input            string
		shouldContain    []string
		shouldNotContain []string
	}{
		{
			name:             "Script tag removal",
			input:            "<p>Hello</p><script>alert('XSS')</script>",
			shouldContain:    []string{"<p>Hello</p>"},
			shouldNotContain: []string{"<script>", "alert"},
		},
		{
			name:             "Event handler removal",
			input:            `<img src="x" onerror="alert('XSS')">`,
			shouldNotContain: []string{"onerror", "alert"},
		},
		{
			name:             "JavaScript protocol removal",
			input:            `<a href="javascript:alert('XSS')">Click</a>`,
			shouldContain:    []string{"Click"},
			shouldNotContain: []string{"javascript:"},
		},
		{
			name:             "Iframe removal",
			input:            `<iframe src="https://evil.test"></iframe>`,
			shouldNotContain: []string{"<iframe", "evil.test"},
		},
		{
			name:             "Safe content preservation",
			input:            `<p>Safe text</p><a href="https://example.com">Link</a>`,
			shouldContain:    []string{"<p>Safe text</p>", "https://example.com", "Link"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sanitized := h.htmlPolicy.Sanitize(tt.input)

			for _, expected := range tt.shouldContain {
				assert.Contains(t, sanitized, expected)
			}
			for _, notExpected := range tt.shouldNotContain {
				assert.NotContains(t, sanitized, notExpected)
			}
		})
	}
}

// TestViewExtraction_SanitizesHTMLBody tests sanitization through the
// real detail page render, not just the policy in isolation
func TestViewExtraction_SanitizesHTMLBody(t *testing.T) {
	h, db := setupTestHandlers(t)

	outputDir := t.TempDir()
	hostile := `<p>Visible paragraph</p><script>document.location='https://evil.test'</script>`
	require.NoError(t, os.WriteFile(
		filepath.Join(outputDir, "body_html.html"), []byte(hostile), 0644))

	e := catalog.CreateTestExtraction("Hostile HTML", "attacker@test.com")
	e.OutputDir = outputDir
	e.HasPlainBody = false
	e.HasHTMLBody = true
	catalog.InsertTestExtractions(t, db, []*catalog.Extraction{e})

	req := withURLParams(
		httptest.NewRequest("GET", "/extraction/1", nil),
		map[string]string{"id": "1"})
	w := httptest.NewRecorder()
	h.ViewExtraction(w, req)

	assert.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Visible paragraph")
	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "document.location")
}
