package extractor

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	"golang.org/x/text/encoding/charmap"
)

func init() {
	// Register additional charsets that are commonly used in emails
	charset.RegisterEncoding("windows-1252", charmap.Windows1252)
	charset.RegisterEncoding("iso-8859-1", charmap.ISO8859_1)
	charset.RegisterEncoding("iso-8859-15", charmap.ISO8859_15)
}

// ParseFile parses an .eml file and returns a ParsedMessage
func ParseFile(filePath string) (*ParsedMessage, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse parses a message from a reader into its header block, body
// candidates and attachments. The MIME tree is walked depth-first in
// document order; classification follows Content-Disposition first,
// then content type, with the first part of each body type winning.
func Parse(r io.Reader) (*ParsedMessage, error) {
	entity, err := message.Read(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	parsed := &ParsedMessage{
		Headers: extractHeaders(entity.Header),
	}
	walkEntity(entity, parsed)

	return parsed, nil
}

// extractHeaders captures the recognized headers in declaration order,
// substituting the sentinel for absent ones. Values are taken as the
// parsing layer returns them, with no extra encoded-word handling.
func extractHeaders(h message.Header) []Header {
	headers := make([]Header, 0, len(RecognizedHeaders))
	for _, name := range RecognizedHeaders {
		value := strings.TrimSpace(h.Get(name))
		if value == "" {
			value = MissingHeaderValue
		}
		headers = append(headers, Header{Name: name, Value: value})
	}
	return headers
}

// walkEntity visits one node of the MIME tree. Multipart containers
// produce no artifact themselves; their children are visited in order.
// For a non-multipart message the root is classified as the single
// node, so an attachment-only message with no body is valid.
func walkEntity(e *message.Entity, parsed *ParsedMessage) {
	if mr := e.MultipartReader(); mr != nil {
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil && !message.IsUnknownCharset(err) {
				// A broken part must not abort the whole message;
				// keep what was classified so far.
				log.Printf("Warning: failed to read message part: %v", err)
				break
			}
			walkEntity(part, parsed)
		}
		return
	}

	classifyLeaf(e, parsed)
}

// classifyLeaf applies the classification rules to one leaf node.
// An attachment disposition takes precedence over content type, so a
// text/plain part marked as an attachment is an attachment, not a
// body candidate.
func classifyLeaf(e *message.Entity, parsed *ParsedMessage) {
	disposition := e.Header.Get("Content-Disposition")
	if strings.Contains(strings.ToLower(disposition), "attachment") {
		filename := partFilename(e.Header)
		if filename == "" {
			// Attachments without a declared filename are skipped
			return
		}

		data, err := io.ReadAll(e.Body)
		if err != nil {
			log.Printf("Warning: failed to decode attachment %q: %v", filename, err)
			return
		}

		parsed.Attachments = append(parsed.Attachments, AttachmentPart{
			Filename: filename,
			Data:     data,
		})
		return
	}

	contentType := partContentType(e.Header)
	switch {
	case contentType == "text/plain" && parsed.PlainBody == nil:
		text, err := io.ReadAll(e.Body)
		if err != nil {
			log.Printf("Warning: failed to decode text body: %v", err)
			return
		}
		parsed.PlainBody = &BodyPart{Kind: BodyPlain, Text: string(text)}

	case contentType == "text/html" && parsed.HTMLBody == nil:
		text, err := io.ReadAll(e.Body)
		if err != nil {
			log.Printf("Warning: failed to decode HTML body: %v", err)
			return
		}
		parsed.HTMLBody = &BodyPart{Kind: BodyHTML, Text: string(text)}
	}
	// All other leaf types produce no artifact
}

// partContentType returns the part's media type, defaulting to
// text/plain when no Content-Type header is present (RFC 2045).
func partContentType(h message.Header) string {
	if h.Get("Content-Type") == "" {
		return "text/plain"
	}
	contentType, _, err := h.ContentType()
	if err != nil {
		return ""
	}
	return contentType
}

// partFilename returns the filename an attachment declares, checking
// the Content-Disposition filename parameter first and falling back to
// the Content-Type name parameter.
func partFilename(h message.Header) string {
	if _, params, err := h.ContentDisposition(); err == nil {
		if filename := params["filename"]; filename != "" {
			return filename
		}
	}
	if _, params, err := h.ContentType(); err == nil {
		if name := params["name"]; name != "" {
			return name
		}
	}
	return ""
}
