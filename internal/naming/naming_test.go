package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSanitizeFolderName tests conversion of source filenames to safe folder names
func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain filename with .eml extension",
			input:    "invoice.eml",
			expected: "invoice",
		},
		{
			name:     "Uppercase extension",
			input:    "Invoice.EML",
			expected: "Invoice",
		},
		{
			name:     "No extension",
			input:    "invoice",
			expected: "invoice",
		},
		{
			name:     "Invalid characters replaced",
			input:    `re: what? "a/b"\c|d*.eml`,
			expected: "re_ what_ _a_b__c_d_",
		},
		{
			name:     "Leading and trailing dots and spaces trimmed",
			input:    " ..report.. .eml",
			expected: "report",
		},
		{
			name:     "Spaces preserved inside",
			input:    "Q1 Report.eml",
			expected: "Q1 Report",
		},
		{
			name:     "Only dots and spaces falls back",
			input:    " ... .eml",
			expected: "message",
		},
		{
			name:     "Extension not stripped mid-name",
			input:    "my.eml.backup",
			expected: "my.eml.backup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFolderName(tt.input))
		})
	}
}

// TestSanitizeAttachmentFilename tests attachment name sanitization
func TestSanitizeAttachmentFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple filename unchanged",
			input:    "report.pdf",
			expected: "report.pdf",
		},
		{
			name:     "Empty filename falls back",
			input:    "",
			expected: "unnamed_attachment",
		},
		{
			name:     "Forward slashes replaced",
			input:    "../../etc/passwd",
			expected: "_.._etc_passwd",
		},
		{
			name:     "Backslashes replaced",
			input:    `C:\Users\victim\file.exe`,
			expected: "C__Users_victim_file.exe",
		},
		{
			name:     "Colon replaced",
			input:    "report:final.pdf",
			expected: "report_final.pdf",
		},
		{
			name:     "All invalid characters replaced",
			input:    `a:b*c?d"e<f>g|h`,
			expected: "a_b_c_d_e_f_g_h",
		},
		{
			name:     "Trimmed to nothing falls back",
			input:    ". . .",
			expected: "unnamed_attachment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeAttachmentFilename(tt.input))
		})
	}
}

// existsIn builds an ExistsFunc over a fixed set of taken names
func existsIn(taken ...string) ExistsFunc {
	set := make(map[string]bool, len(taken))
	for _, name := range taken {
		set[name] = true
	}
	return func(name string) bool { return set[name] }
}

// TestResolveFolderName tests counter-based folder collision resolution
func TestResolveFolderName(t *testing.T) {
	t.Run("No collision returns base", func(t *testing.T) {
		assert.Equal(t, "invoice", ResolveFolderName("invoice", existsIn()))
	})

	t.Run("First collision appends _1", func(t *testing.T) {
		assert.Equal(t, "invoice_1", ResolveFolderName("invoice", existsIn("invoice")))
	})

	t.Run("Counters are not chained", func(t *testing.T) {
		// invoice and invoice_1 taken: next is invoice_2, not invoice_1_1
		got := ResolveFolderName("invoice", existsIn("invoice", "invoice_1"))
		assert.Equal(t, "invoice_2", got)
	})

	t.Run("Gap in counters is used", func(t *testing.T) {
		got := ResolveFolderName("invoice", existsIn("invoice", "invoice_2"))
		assert.Equal(t, "invoice_1", got)
	})
}

// TestResolveAttachmentFilename tests counter placement before the extension
func TestResolveAttachmentFilename(t *testing.T) {
	t.Run("No collision returns name", func(t *testing.T) {
		assert.Equal(t, "file.pdf", ResolveAttachmentFilename("file.pdf", existsIn()))
	})

	t.Run("Counter inserted before extension", func(t *testing.T) {
		got := ResolveAttachmentFilename("file.pdf", existsIn("file.pdf"))
		assert.Equal(t, "file_1.pdf", got)
	})

	t.Run("Counters derive from original stem", func(t *testing.T) {
		got := ResolveAttachmentFilename("file.pdf", existsIn("file.pdf", "file_1.pdf"))
		assert.Equal(t, "file_2.pdf", got)
	})

	t.Run("No extension", func(t *testing.T) {
		got := ResolveAttachmentFilename("README", existsIn("README"))
		assert.Equal(t, "README_1", got)
	})

	t.Run("Multiple dots keeps last extension", func(t *testing.T) {
		got := ResolveAttachmentFilename("archive.tar.gz", existsIn("archive.tar.gz"))
		assert.Equal(t, "archive.tar_1.gz", got)
	})
}
