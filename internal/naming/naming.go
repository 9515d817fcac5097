// Package naming provides filesystem-safe name sanitization and
// counter-based collision resolution for message output directories
// and attachment files.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FallbackAttachmentName is used when an attachment declares no usable filename.
const FallbackAttachmentName = "unnamed_attachment"

// FallbackFolderName is used when a source filename sanitizes to nothing.
const FallbackFolderName = "message"

// folderInvalid covers characters that are invalid in directory names
// on at least one supported platform.
var folderInvalid = []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*"}

// attachmentInvalid is applied after path separators are stripped.
var attachmentInvalid = []string{":", "*", "?", "\"", "<", ">", "|"}

// ExistsFunc reports whether a candidate name is already taken in the
// target scope. Callers inject filesystem checks, in-memory claim sets,
// or both.
type ExistsFunc func(name string) bool

// SanitizeFolderName converts a message source filename into a safe
// directory name. A trailing ".eml" extension is dropped
// (case-insensitive), invalid characters become underscores, and
// leading/trailing dots and spaces are trimmed.
func SanitizeFolderName(filename string) string {
	name := filename
	if len(name) >= 4 && strings.EqualFold(name[len(name)-4:], ".eml") {
		name = name[:len(name)-4]
	}
	for _, ch := range folderInvalid {
		name = strings.ReplaceAll(name, ch, "_")
	}
	name = strings.Trim(name, ". ")
	if name == "" {
		return FallbackFolderName
	}
	return name
}

// SanitizeAttachmentFilename converts a declared attachment filename
// into a safe file name. Path separators are replaced first so a
// hostile filename can never escape the attachments directory or
// create subdirectories.
func SanitizeAttachmentFilename(filename string) string {
	if filename == "" {
		return FallbackAttachmentName
	}

	safe := strings.ReplaceAll(filename, "\\", "_")
	safe = strings.ReplaceAll(safe, "/", "_")

	for _, ch := range attachmentInvalid {
		safe = strings.ReplaceAll(safe, ch, "_")
	}

	safe = strings.Trim(safe, ". ")

	if safe == "" {
		return FallbackAttachmentName
	}
	return safe
}

// ResolveFolderName returns the first non-taken directory name for the
// sanitized base: the base itself, then base_1, base_2, ... Counters
// always derive from the original base, never from a previous
// counter's result.
func ResolveFolderName(base string, exists ExistsFunc) string {
	if !exists(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !exists(candidate) {
			return candidate
		}
	}
}

// ResolveAttachmentFilename returns the first non-taken file name for
// the sanitized attachment name. Counters are inserted before the
// extension (report_1.pdf, not report.pdf_1) and always derive from
// the original sanitized name.
func ResolveAttachmentFilename(name string, exists ExistsFunc) string {
	if !exists(name) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !exists(candidate) {
			return candidate
		}
	}
}
