package extractor

// RecognizedHeaders is the fixed set of headers captured from every
// message, in the order they are written to headers.txt.
var RecognizedHeaders = []string{"From", "To", "Subject", "Date", "Cc", "Message-ID"}

// MissingHeaderValue is substituted for any recognized header absent
// from a message, so consumers never branch on missing keys.
const MissingHeaderValue = "N/A"

// Header is one "Name: Value" entry of the recognized header block.
type Header struct {
	Name  string
	Value string
}

// BodyKind identifies which body slot a text part fills.
type BodyKind int

const (
	BodyPlain BodyKind = iota
	BodyHTML
)

// BodyPart is a decoded text body candidate.
type BodyPart struct {
	Kind BodyKind
	Text string
}

// AttachmentPart is a decoded attachment with its declared filename.
// Parts with an attachment disposition but no filename are dropped
// during classification and never reach this type.
type AttachmentPart struct {
	Filename string
	Data     []byte
}

// ParsedMessage is the in-memory decomposition of one raw message.
// At most one body part per kind is retained (first occurrence in
// document order wins); a nil body slot means no such part was found.
type ParsedMessage struct {
	Headers     []Header
	PlainBody   *BodyPart
	HTMLBody    *BodyPart
	Attachments []AttachmentPart
}

// ExtractionResult summarizes what was actually written to disk for
// one message. Constructed once per extraction, never mutated after.
type ExtractionResult struct {
	Headers         []Header
	HasPlainBody    bool
	HasHTMLBody     bool
	AttachmentCount int
}

// Header returns the captured value for a recognized header name, or
// the empty string for a name outside the recognized set.
func (r *ExtractionResult) Header(name string) string {
	for _, h := range r.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}
