package catalog

// One row per processed message. Artifacts (headers.txt, bodies,
// attachments) live under output_dir; the catalog stores the summary
// needed for listing and search.
const schema = `
-- Extraction records
CREATE TABLE IF NOT EXISTS extractions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_path TEXT NOT NULL,
    output_dir TEXT NOT NULL,
    subject TEXT,
    sender TEXT,
    recipients TEXT,
    cc TEXT,
    date TEXT,
    message_id TEXT,
    has_plain_body BOOLEAN DEFAULT 0,
    has_html_body BOOLEAN DEFAULT 0,
    attachment_count INTEGER DEFAULT 0,
    status TEXT NOT NULL,
    error TEXT,
    extracted_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Full-text search virtual table
CREATE VIRTUAL TABLE IF NOT EXISTS extractions_fts USING fts5(
    subject,
    sender,
    recipients,
    content='extractions',
    content_rowid='id'
);

-- Triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS extractions_ai AFTER INSERT ON extractions BEGIN
    INSERT INTO extractions_fts(rowid, subject, sender, recipients)
    VALUES (new.id, new.subject, new.sender, new.recipients);
END;

CREATE TRIGGER IF NOT EXISTS extractions_ad AFTER DELETE ON extractions BEGIN
    DELETE FROM extractions_fts WHERE rowid = old.id;
END;

CREATE TRIGGER IF NOT EXISTS extractions_au AFTER UPDATE ON extractions BEGIN
    UPDATE extractions_fts
    SET subject = new.subject,
        sender = new.sender,
        recipients = new.recipients
    WHERE rowid = new.id;
END;

-- Settings table (for storing folder paths, preferences)
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Indexes for performance
CREATE INDEX IF NOT EXISTS idx_extractions_extracted_at ON extractions(extracted_at DESC);
CREATE INDEX IF NOT EXISTS idx_extractions_sender ON extractions(sender);
CREATE INDEX IF NOT EXISTS idx_extractions_status ON extractions(status);
CREATE INDEX IF NOT EXISTS idx_extractions_file_path ON extractions(file_path);
`
