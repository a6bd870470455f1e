package store

const schema = `
CREATE TABLE IF NOT EXISTS preferences (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS capture_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    test_id TEXT NOT NULL,
    filename TEXT NOT NULL,
    display_id INTEGER NOT NULL,
    area TEXT,
    captured_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_capture_test ON capture_events(test_id);
CREATE INDEX IF NOT EXISTS idx_capture_time ON capture_events(captured_at);
`
