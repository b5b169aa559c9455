package database

// PostgresSchema creates the tables, indexes and triggers used by the bot
var PostgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS activities (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		date DATE NOT NULL,
		start_time TIME,
		end_time TIME,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT activities_name_date_key UNIQUE (name, date),
		CONSTRAINT activities_time_order CHECK (start_time IS NULL OR end_time IS NULL OR start_time < end_time)
	)`,

	`CREATE TABLE IF NOT EXISTS reminder_groups (
		group_id VARCHAR(64) PRIMARY KEY,
		group_name VARCHAR(255) NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_created_at ON activities(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_name ON activities(name)`,
	`CREATE INDEX IF NOT EXISTS idx_reminder_groups_active ON reminder_groups(is_active, created_at)`,

	`CREATE OR REPLACE FUNCTION set_updated_at() RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,

	`DROP TRIGGER IF EXISTS activities_updated_at ON activities`,
	`CREATE TRIGGER activities_updated_at BEFORE UPDATE ON activities
		FOR EACH ROW EXECUTE FUNCTION set_updated_at()`,

	`DROP TRIGGER IF EXISTS reminder_groups_updated_at ON reminder_groups`,
	`CREATE TRIGGER reminder_groups_updated_at BEFORE UPDATE ON reminder_groups
		FOR EACH ROW EXECUTE FUNCTION set_updated_at()`,
}

// PostgresDropSchema removes everything PostgresSchema creates
var PostgresDropSchema = []string{
	`DROP TABLE IF EXISTS activities CASCADE`,
	`DROP TABLE IF EXISTS reminder_groups CASCADE`,
	`DROP FUNCTION IF EXISTS set_updated_at() CASCADE`,
}

// SQLiteSchema mirrors PostgresSchema for local development and tests.
// Dates and times are stored as text in the same formats the API uses.
var SQLiteSchema = []string{
	`CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT,
		end_time TEXT,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
		UNIQUE (name, date)
	)`,

	`CREATE TABLE IF NOT EXISTS reminder_groups (
		group_id TEXT PRIMARY KEY,
		group_name TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date)`,
	`CREATE INDEX IF NOT EXISTS idx_reminder_groups_active ON reminder_groups(is_active, created_at)`,
}
