package catalog

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Extraction statuses
const (
	StatusExtracted = "extracted"
	StatusFailed    = "failed"
)

// NullTime is a custom type that handles both string and time.Time from SQLite
type NullTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner for NullTime
func (nt *NullTime) Scan(value interface{}) error {
	if value == nil {
		nt.Time, nt.Valid = time.Time{}, false
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		nt.Time, nt.Valid = v, true
		return nil
	case string:
		// Try multiple time formats
		formats := []string{
			time.RFC3339,
			time.RFC3339Nano,
			"2006-01-02 15:04:05.999999999 -0700 -0700",
			"2006-01-02 15:04:05 -0700 -0700",
			"2006-01-02 15:04:05.999999999 -0700",
			"2006-01-02 15:04:05 -0700",
			"2006-01-02 15:04:05.999999999",
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05Z",
		}

		var t time.Time
		var err error
		for _, format := range formats {
			t, err = time.Parse(format, v)
			if err == nil {
				nt.Time, nt.Valid = t, true
				return nil
			}
		}

		return fmt.Errorf("failed to parse time string %q: %w", v, err)
	default:
		return fmt.Errorf("unsupported Scan type for NullTime: %T", value)
	}
}

// Value implements driver.Valuer for NullTime
func (nt NullTime) Value() (driver.Value, error) {
	if !nt.Valid {
		return nil, nil
	}
	return nt.Time, nil
}

// Extraction represents one processed message in the catalog.
// Header values carry the "N/A" sentinel for headers the message
// lacked; Subject is stored MIME-word decoded for display and search.
type Extraction struct {
	ID              int64
	FilePath        string
	OutputDir       string
	Subject         string
	Sender          string
	Recipients      string
	CC              string
	Date            string
	MessageID       string
	HasPlainBody    bool
	HasHTMLBody     bool
	AttachmentCount int
	Status          string
	Error           string
	ExtractedAt     NullTime
}

// Succeeded reports whether this extraction completed
func (e *Extraction) Succeeded() bool {
	return e.Status == StatusExtracted
}

// Stats summarizes the catalog contents
type Stats struct {
	TotalExtractions int
	Successful       int
	Failed           int
	WithAttachments  int
	LastExtracted    time.Time
}

// InsertExtraction inserts a new extraction record
func (db *DB) InsertExtraction(e *Extraction) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO extractions (
			file_path, output_dir, subject, sender, recipients, cc,
			date, message_id, has_plain_body, has_html_body,
			attachment_count, status, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.FilePath, e.OutputDir, e.Subject, e.Sender, e.Recipients, e.CC,
		e.Date, e.MessageID, e.HasPlainBody, e.HasHTMLBody,
		e.AttachmentCount, e.Status, e.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert extraction: %w", err)
	}

	return result.LastInsertId()
}

const extractionColumns = `
	id, file_path, output_dir, subject, sender, recipients, cc,
	date, message_id, has_plain_body, has_html_body,
	attachment_count, status, error, extracted_at
`

// scanExtraction scans one row into an Extraction
func scanExtraction(row interface{ Scan(...interface{}) error }) (*Extraction, error) {
	e := &Extraction{}
	err := row.Scan(
		&e.ID, &e.FilePath, &e.OutputDir, &e.Subject, &e.Sender, &e.Recipients, &e.CC,
		&e.Date, &e.MessageID, &e.HasPlainBody, &e.HasHTMLBody,
		&e.AttachmentCount, &e.Status, &e.Error, &e.ExtractedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetExtractionByID retrieves an extraction record by its ID
func (db *DB) GetExtractionByID(id int64) (*Extraction, error) {
	row := db.QueryRow(
		"SELECT "+extractionColumns+" FROM extractions WHERE id = ?", id)

	e, err := scanExtraction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}
	return e, nil
}

// ListExtractions returns extraction records, most recent first
func (db *DB) ListExtractions(limit, offset int) ([]*Extraction, error) {
	rows, err := db.Query(
		"SELECT "+extractionColumns+" FROM extractions ORDER BY id DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list extractions: %w", err)
	}
	defer rows.Close()

	var extractions []*Extraction
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}
		extractions = append(extractions, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extractions: %w", err)
	}

	return extractions, nil
}

// CountExtractions returns the total number of extraction records
func (db *DB) CountExtractions() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM extractions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count extractions: %w", err)
	}
	return count, nil
}

// GetStats returns summary statistics for the catalog
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	err := db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN attachment_count > 0 THEN 1 ELSE 0 END), 0)
		FROM extractions
	`, StatusExtracted, StatusFailed).Scan(
		&stats.TotalExtractions, &stats.Successful, &stats.Failed, &stats.WithAttachments)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	var last NullTime
	err = db.QueryRow("SELECT MAX(extracted_at) FROM extractions").Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last extraction time: %w", err)
	}
	if last.Valid {
		stats.LastExtracted = last.Time
	}

	return stats, nil
}

// ExtractionSearchResult represents a search result with snippet
type ExtractionSearchResult struct {
	Extraction
	Snippet string
}

// SearchExtractions performs a full-text search over subject, sender
// and recipients using FTS5
func (db *DB) SearchExtractions(query string, limit int) ([]*ExtractionSearchResult, error) {
	if query == "" {
		// If no query, just return recent extractions
		extractions, err := db.ListExtractions(limit, 0)
		if err != nil {
			return nil, err
		}

		results := make([]*ExtractionSearchResult, len(extractions))
		for i, e := range extractions {
			results[i] = &ExtractionSearchResult{Extraction: *e, Snippet: e.Subject}
		}
		return results, nil
	}

	// Add wildcards to each term for fuzzy matching: "john doe" -> "john* doe*"
	terms := strings.Fields(query)
	fuzzyTerms := make([]string, len(terms))
	for i, term := range terms {
		// Escape special FTS5 characters
		term = strings.ReplaceAll(term, `"`, `""`)
		fuzzyTerms[i] = term + "*"
	}
	fuzzyQuery := strings.Join(fuzzyTerms, " ")

	rows, err := db.Query(`
		SELECT
			e.id, e.file_path, e.output_dir, e.subject, e.sender, e.recipients, e.cc,
			e.date, e.message_id, e.has_plain_body, e.has_html_body,
			e.attachment_count, e.status, e.error, e.extracted_at,
			snippet(extractions_fts, 0, '<mark>', '</mark>', '...', 32) as snippet
		FROM extractions e
		JOIN extractions_fts ON e.id = extractions_fts.rowid
		WHERE extractions_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, fuzzyQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search extractions: %w", err)
	}
	defer rows.Close()

	var results []*ExtractionSearchResult
	for rows.Next() {
		result := &ExtractionSearchResult{}
		err := rows.Scan(
			&result.ID, &result.FilePath, &result.OutputDir, &result.Subject,
			&result.Sender, &result.Recipients, &result.CC,
			&result.Date, &result.MessageID, &result.HasPlainBody, &result.HasHTMLBody,
			&result.AttachmentCount, &result.Status, &result.Error, &result.ExtractedAt,
			&result.Snippet,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}
