package store

import (
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

// Dialect holds the statements that differ between MariaDB/MySQL and SQLite.
type Dialect struct {
	Name        string
	driver      string
	upsertUsage string
	hasColumn   string // args: table, column
	hasIndex    string // args: table, index
	migrations  []Migration
}

var (
	MySQL = Dialect{
		Name:   "mysql",
		driver: "mysql",
		upsertUsage: "INSERT INTO `usage` (email, request_count) VALUES (?, 1) " +
			"ON DUPLICATE KEY UPDATE request_count = request_count + 1",
		hasColumn: "SELECT COUNT(*) FROM information_schema.COLUMNS " +
			"WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?",
		hasIndex: "SELECT COUNT(*) FROM information_schema.STATISTICS " +
			"WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND INDEX_NAME = ?",
		migrations: mysqlMigrations,
	}
	SQLite = Dialect{
		Name:   "sqlite",
		driver: "sqlite",
		upsertUsage: "INSERT INTO `usage` (email, request_count) VALUES (?, 1) " +
			"ON CONFLICT(email) DO UPDATE SET request_count = request_count + 1, updated_at = datetime('now')",
		hasColumn:  "SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?",
		hasIndex:   "SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND name = ?",
		migrations: sqliteMigrations,
	}
)

func DialectByName(name string) (Dialect, error) {
	switch name {
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", name)
}

// MySQLDSN builds a DSN for the MariaDB/MySQL driver.
func MySQLDSN(host string, port int, user, password, database string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = host + ":" + strconv.Itoa(port)
	cfg.DBName = database
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}
