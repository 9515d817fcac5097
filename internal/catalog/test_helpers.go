package catalog

import (
	"fmt"
	"testing"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database
func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	if err := db.Close(); err != nil {
		t.Errorf("Failed to close test database: %v", err)
	}
}

// CreateTestExtraction creates a successful extraction record with default values
func CreateTestExtraction(subject, sender string) *Extraction {
	return &Extraction{
		FilePath:        fmt.Sprintf("/test/%s.eml", subject),
		OutputDir:       fmt.Sprintf("/test/out/%s", subject),
		Subject:         subject,
		Sender:          sender,
		Recipients:      "recipient@test.com",
		CC:              "N/A",
		Date:            "Mon, 1 Jan 2024 10:00:00 +0000",
		MessageID:       fmt.Sprintf("<%s@test.com>", subject),
		HasPlainBody:    true,
		HasHTMLBody:     false,
		AttachmentCount: 0,
		Status:          StatusExtracted,
	}
}

// InsertTestExtractions inserts multiple records and returns them with IDs set
func InsertTestExtractions(t *testing.T, db *DB, extractions []*Extraction) []*Extraction {
	t.Helper()

	for i, e := range extractions {
		id, err := db.InsertExtraction(e)
		if err != nil {
			t.Fatalf("Failed to insert test extraction %d: %v", i, err)
		}
		extractions[i].ID = id
	}

	return extractions
}
