package extractor

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/felo/eml-extractor/internal/naming"
)

// Artifact names within one message's output directory.
const (
	HeadersFileName    = "headers.txt"
	PlainBodyFileName  = "body_plain.txt"
	HTMLBodyFileName   = "body_html.html"
	AttachmentsDirName = "attachments"
)

// ExtractSingle parses a raw message and materializes it under
// targetDir, which must already be collision-resolved by the caller.
// It returns an error only when the message cannot be parsed at all or
// an output directory cannot be created; individual artifact failures
// are logged and skipped.
func ExtractSingle(raw []byte, targetDir string) (*ExtractionResult, error) {
	parsed, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return Materialize(parsed, targetDir)
}

// ExtractFile reads an .eml file and extracts it under targetDir.
func ExtractFile(filePath, targetDir string) (*ExtractionResult, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ExtractSingle(raw, targetDir)
}

// Materialize writes all artifacts of a parsed message to targetDir
// and returns a summary of what was actually written. The attachments
// subdirectory is created lazily, only when at least one named
// attachment exists.
func Materialize(msg *ParsedMessage, targetDir string) (*ExtractionResult, error) {
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExtractionResult{
		Headers: append([]Header(nil), msg.Headers...),
	}

	if err := writeHeaders(msg.Headers, filepath.Join(targetDir, HeadersFileName)); err != nil {
		log.Printf("Warning: failed to write headers: %v", err)
	}

	if msg.PlainBody != nil {
		path := filepath.Join(targetDir, PlainBodyFileName)
		if err := os.WriteFile(path, []byte(msg.PlainBody.Text), 0644); err != nil {
			log.Printf("Warning: failed to write plain body: %v", err)
		} else {
			result.HasPlainBody = true
		}
	}

	if msg.HTMLBody != nil {
		path := filepath.Join(targetDir, HTMLBodyFileName)
		if err := os.WriteFile(path, []byte(msg.HTMLBody.Text), 0644); err != nil {
			log.Printf("Warning: failed to write HTML body: %v", err)
		} else {
			result.HasHTMLBody = true
		}
	}

	if len(msg.Attachments) > 0 {
		count, err := writeAttachments(msg.Attachments, filepath.Join(targetDir, AttachmentsDirName))
		if err != nil {
			return nil, err
		}
		result.AttachmentCount = count
	}

	return result, nil
}

// writeHeaders writes the recognized header block, one "Key: Value"
// line per header in declaration order.
func writeHeaders(headers []Header, path string) error {
	var buf bytes.Buffer
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\n", h.Name, h.Value)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// writeAttachments writes every attachment under dir with a
// collision-resolved sanitized filename and returns how many were
// written. A failed write skips that one attachment only.
func writeAttachments(attachments []AttachmentPart, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create attachments directory: %w", err)
	}

	// Claimed names cover in-message collisions; the stat check covers
	// files left by a previous run against the same directory.
	claimed := make(map[string]bool)
	exists := func(name string) bool {
		if claimed[name] {
			return true
		}
		_, err := os.Stat(filepath.Join(dir, name))
		return err == nil
	}

	count := 0
	for _, att := range attachments {
		safeName := naming.SanitizeAttachmentFilename(att.Filename)
		finalName := naming.ResolveAttachmentFilename(safeName, exists)
		claimed[finalName] = true

		path := filepath.Join(dir, finalName)
		if err := os.WriteFile(path, att.Data, 0644); err != nil {
			log.Printf("Warning: could not save attachment %q: %v", att.Filename, err)
			continue
		}
		count++
	}

	return count, nil
}
