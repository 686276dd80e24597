package store

// Migration is a single schema step. Statements run first, then column changes,
// then indexes, all inside one transaction. Column and index steps check the
// live schema, so tables created by older deployments upgrade in place.
type Migration struct {
	Version     int
	Description string
	Statements  []string
	Columns     []ColumnChange
	Indexes     []Index
}

// ColumnChange adds Column with Definition when missing, or drops it when
// Definition is empty and the column exists.
type ColumnChange struct {
	Table      string
	Column     string
	Definition string
}

type Index struct {
	Name    string
	Table   string
	Columns string
}

// Stale payment columns left by the first checkout flow.
var stalePaymentColumns = []ColumnChange{
	{Table: "payments", Column: "name"},
	{Table: "payments", Column: "stripe_session_id"},
	{Table: "payments", Column: "amount_cents"},
	{Table: "payments", Column: "status"},
}

var ledgerIndexes = []Index{
	{Name: "idx_requests_service", Table: "requests", Columns: "service"},
	{Name: "idx_payments_email_tier", Table: "payments", Columns: "email, tier"},
}

// Append new migrations to the end of both lists with incrementing versions.
var mysqlMigrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS requests (
    id INT AUTO_INCREMENT PRIMARY KEY,
    service VARCHAR(100),
    email VARCHAR(255) NOT NULL,
    name VARCHAR(255),
    input TEXT,
    result TEXT,
    score INT,
    rounds INT,
    duration_ms INT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`,
			"CREATE TABLE IF NOT EXISTS `usage` (" + `
    id INT AUTO_INCREMENT PRIMARY KEY,
    email VARCHAR(255) NOT NULL UNIQUE,
    request_count INT DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`,
			`CREATE TABLE IF NOT EXISTS payments (
    id INT AUTO_INCREMENT PRIMARY KEY,
    email VARCHAR(255) NOT NULL,
    tier VARCHAR(50) NOT NULL DEFAULT 'per_use',
    amount INT NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`,
			`CREATE TABLE IF NOT EXISTS checkouts (
    id INT AUTO_INCREMENT PRIMARY KEY,
    service VARCHAR(100),
    email VARCHAR(255) NOT NULL,
    name VARCHAR(255),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`,
		},
	},
	{
		Version:     2,
		Description: "upgrade legacy tables, request ids, indexes",
		Columns: append([]ColumnChange{
			{Table: "payments", Column: "tier", Definition: "VARCHAR(50) NOT NULL DEFAULT 'per_use'"},
			{Table: "payments", Column: "amount", Definition: "INT NOT NULL DEFAULT 0"},
			{Table: "requests", Column: "service", Definition: "VARCHAR(100)"},
			{Table: "requests", Column: "duration_ms", Definition: "INT"},
			{Table: "requests", Column: "request_id", Definition: "CHAR(36)"},
		}, stalePaymentColumns...),
		Indexes: ledgerIndexes,
	},
}

var sqliteMigrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS requests (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    service TEXT,
    email TEXT NOT NULL,
    name TEXT,
    input TEXT,
    result TEXT,
    score INTEGER,
    rounds INTEGER,
    duration_ms INTEGER,
    created_at TEXT DEFAULT (datetime('now'))
)`,
			`CREATE TABLE IF NOT EXISTS usage (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE,
    request_count INTEGER DEFAULT 0,
    created_at TEXT DEFAULT (datetime('now')),
    updated_at TEXT DEFAULT (datetime('now'))
)`,
			`CREATE TABLE IF NOT EXISTS payments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL,
    tier TEXT NOT NULL DEFAULT 'per_use',
    amount INTEGER NOT NULL DEFAULT 0,
    created_at TEXT DEFAULT (datetime('now'))
)`,
			`CREATE TABLE IF NOT EXISTS checkouts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    service TEXT,
    email TEXT NOT NULL,
    name TEXT,
    created_at TEXT DEFAULT (datetime('now'))
)`,
		},
	},
	{
		Version:     2,
		Description: "upgrade legacy tables, request ids, indexes",
		Columns: append([]ColumnChange{
			{Table: "payments", Column: "tier", Definition: "TEXT NOT NULL DEFAULT 'per_use'"},
			{Table: "payments", Column: "amount", Definition: "INTEGER NOT NULL DEFAULT 0"},
			{Table: "requests", Column: "service", Definition: "TEXT"},
			{Table: "requests", Column: "duration_ms", Definition: "INTEGER"},
			{Table: "requests", Column: "request_id", Definition: "TEXT"},
		}, stalePaymentColumns...),
		Indexes: ledgerIndexes,
	},
}

func latestVersion(ms []Migration) int {
	if len(ms) == 0 {
		return 0
	}
	return ms[len(ms)-1].Version
}
