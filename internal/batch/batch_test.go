package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/felo/eml-extractor/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeEML writes a minimal valid message to the input directory
func writeEML(t *testing.T, dir, name, subject, body string) {
	t.Helper()

	content := fmt.Sprintf("From: sender@test.com\r\n"+
		"To: recipient@test.com\r\n"+
		"Subject: %s\r\n"+
		"Date: Mon, 1 Jan 2024 10:00:00 +0000\r\n"+
		"Message-ID: <%s@test.com>\r\n"+
		"Content-Type: text/plain; charset=utf-8\r\n"+
		"\r\n"+
		"%s\r\n", subject, name, body)

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// TestRun_ExtractsAllFiles tests a clean batch over two messages
func TestRun_ExtractsAllFiles(t *testing.T) {
	inputDir := t.TempDir()
	outputBase := filepath.Join(t.TempDir(), "extracted")

	writeEML(t, inputDir, "alpha.eml", "Alpha", "first body")
	writeEML(t, inputDir, "beta.eml", "Beta", "second body")

	stats, err := NewRunner(inputDir, outputBase).Run()
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 0, stats.Failed)

	for _, dir := range []string{"alpha", "beta"} {
		headers, err := os.ReadFile(filepath.Join(outputBase, dir, "headers.txt"))
		require.NoError(t, err, "headers.txt for %s", dir)
		assert.Contains(t, string(headers), "From: sender@test.com\n")
	}
}

// TestRun_DuplicateFolderNames tests counter suffixing when two source
// files sanitize to the same folder base name
func TestRun_DuplicateFolderNames(t *testing.T) {
	inputDir := t.TempDir()
	outputBase := filepath.Join(t.TempDir(), "extracted")

	// Both sanitize to "report"; scan order is sorted, so report.EML
	// claims the bare name and report.eml gets the counter
	writeEML(t, inputDir, "report.EML", "Upper", "upper body")
	writeEML(t, inputDir, "report.eml", "Lower", "lower body")

	stats, err := NewRunner(inputDir, outputBase).Run()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Successful)

	_, err = os.Stat(filepath.Join(outputBase, "report"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputBase, "report_1"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputBase, "report_2"))
	assert.True(t, os.IsNotExist(err), "Only two directories should exist")
}

// TestRun_ExistingDirectoryFromEarlierRun tests collision resolution
// against directories already on disk
func TestRun_ExistingDirectoryFromEarlierRun(t *testing.T) {
	inputDir := t.TempDir()
	outputBase := filepath.Join(t.TempDir(), "extracted")

	require.NoError(t, os.MkdirAll(filepath.Join(outputBase, "invoice"), 0755))
	writeEML(t, inputDir, "invoice.eml", "Invoice", "body")

	stats, err := NewRunner(inputDir, outputBase).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Successful)

	_, err = os.Stat(filepath.Join(outputBase, "invoice_1", "headers.txt"))
	assert.NoError(t, err, "Second run's message should land in invoice_1")
}

// TestRun_FailedFileDoesNotAbortBatch tests that an unparsable file is
// counted as failed while the rest of the batch completes
func TestRun_FailedFileDoesNotAbortBatch(t *testing.T) {
	inputDir := t.TempDir()
	outputBase := filepath.Join(t.TempDir(), "extracted")

	writeEML(t, inputDir, "good.eml", "Good", "body")
	garbage := filepath.Join(inputDir, "broken.eml")
	require.NoError(t, os.WriteFile(garbage, []byte("no header block here\x00\x01"), 0644))

	stats, err := NewRunner(inputDir, outputBase).Run()
	require.NoError(t, err, "Per-file failures must not fail the batch")

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Successful)
	assert.Equal(t, 1, stats.Failed)

	_, err = os.Stat(filepath.Join(outputBase, "good", "body_plain.txt"))
	assert.NoError(t, err)
}

// TestRun_EmptyInputDirectory tests that an empty batch does nothing
func TestRun_EmptyInputDirectory(t *testing.T) {
	inputDir := t.TempDir()
	outputBase := filepath.Join(t.TempDir(), "extracted")

	stats, err := NewRunner(inputDir, outputBase).Run()
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Total)
	_, err = os.Stat(outputBase)
	assert.True(t, os.IsNotExist(err), "Output base is not created for an empty batch")
}

// TestRun_MissingInputDirectory tests the batch-level error
func TestRun_MissingInputDirectory(t *testing.T) {
	_, err := NewRunner(filepath.Join(t.TempDir(), "nope"), t.TempDir()).Run()
	assert.Error(t, err)
}

// TestRunWithProgress tests that progress fires once per file
func TestRunWithProgress(t *testing.T) {
	inputDir := t.TempDir()
	outputBase := filepath.Join(t.TempDir(), "extracted")

	writeEML(t, inputDir, "one.eml", "One", "body")
	writeEML(t, inputDir, "two.eml", "Two", "body")
	writeEML(t, inputDir, "three.eml", "Three", "body")

	var calls int
	var lastTotal int
	stats, err := NewRunner(inputDir, outputBase).
		WithConcurrency(2).
		RunWithProgress(func(current, total int, res FileResult) {
			calls++
			lastTotal = total
			assert.NotEmpty(t, res.File)
		})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, lastTotal)
	assert.Equal(t, 3, stats.Successful)
}

// TestRun_StopBeforeStart tests that a requested stop leaves files unprocessed
func TestRun_StopBeforeStart(t *testing.T) {
	inputDir := t.TempDir()
	outputBase := filepath.Join(t.TempDir(), "extracted")

	writeEML(t, inputDir, "one.eml", "One", "body")
	writeEML(t, inputDir, "two.eml", "Two", "body")

	r := NewRunner(inputDir, outputBase)
	r.Stop()

	stats, err := r.Run()
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 0, stats.Successful)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 2, stats.Stopped)

	_, err = os.Stat(filepath.Join(outputBase, "one"))
	assert.True(t, os.IsNotExist(err), "Stopped files must not be extracted")
}

// TestRun_RecordsCatalog tests catalog rows for success and failure
func TestRun_RecordsCatalog(t *testing.T) {
	inputDir := t.TempDir()
	outputBase := filepath.Join(t.TempDir(), "extracted")

	db := catalog.SetupTestDB(t)
	defer catalog.CleanupTestDB(t, db)

	writeEML(t, inputDir, "good.eml", "Catalog Test", "body")
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "bad.eml"), []byte("\x00garbage"), 0644))

	stats, err := NewRunner(inputDir, outputBase).WithCatalog(db).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Successful)
	assert.Equal(t, 1, stats.Failed)

	entries, err := db.ListExtractions(10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byStatus := make(map[string]*catalog.Extraction)
	for _, e := range entries {
		byStatus[e.Status] = e
	}

	ok := byStatus[catalog.StatusExtracted]
	require.NotNil(t, ok)
	assert.Equal(t, "Catalog Test", ok.Subject)
	assert.Equal(t, "sender@test.com", ok.Sender)
	assert.True(t, ok.HasPlainBody)
	assert.Equal(t, filepath.Join(outputBase, "good"), ok.OutputDir)

	failed := byStatus[catalog.StatusFailed]
	require.NotNil(t, failed)
	assert.NotEmpty(t, failed.Error)
}

// TestDecodeMIMEWord tests the header display decoder
func TestDecodeMIMEWord(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "UTF-8 Quoted-Printable",
			input:    "=?UTF-8?Q?Invitaci=C3=B3n?=",
			expected: "Invitación",
		},
		{
			name:     "Plain text (no encoding)",
			input:    "Simple Subject",
			expected: "Simple Subject",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeMIMEWord(tt.input))
		})
	}
}
