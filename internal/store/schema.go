package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS events (
    id          TEXT PRIMARY KEY,
    event_date  TEXT NOT NULL,
    type        TEXT NOT NULL CHECK (type IN ('classpass', 'solidcore')),
    amount      INTEGER NOT NULL CHECK (amount > 0),
    created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_date ON events(event_date);
`
