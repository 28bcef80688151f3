package storage

import (
	"database/sql"
	"fmt"

	"github.com/BenjaminSRussell/macwinua/internal/types"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage keeps an agent table in a SQLite database
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database at dbPath
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS agents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		platform TEXT NOT NULL,
		os_version TEXT NOT NULL,
		version TEXT NOT NULL,
		user_agent TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_agents_platform ON agents(platform);

	CREATE TABLE IF NOT EXISTS sec_ua (
		major TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// SaveTable replaces the stored table with table
func (s *SQLiteStorage) SaveTable(table types.Table) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM agents"); err != nil {
		return fmt.Errorf("failed to clear agents: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sec_ua"); err != nil {
		return fmt.Errorf("failed to clear sec_ua: %w", err)
	}

	agentStmt, err := tx.Prepare("INSERT INTO agents (platform, os_version, version, user_agent) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare agent insert: %w", err)
	}
	defer agentStmt.Close()

	for _, a := range table.Agents {
		if _, err := agentStmt.Exec(string(a.Platform), a.OSVersion, a.Version.String(), a.UserAgent); err != nil {
			return fmt.Errorf("failed to insert agent: %w", err)
		}
	}

	secStmt, err := tx.Prepare("INSERT INTO sec_ua (major, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare sec_ua insert: %w", err)
	}
	defer secStmt.Close()

	for major, value := range table.SecUA {
		if _, err := secStmt.Exec(major, value); err != nil {
			return fmt.Errorf("failed to insert sec_ua: %w", err)
		}
	}

	return tx.Commit()
}

// LoadTable reads the stored table, agents in insertion order
func (s *SQLiteStorage) LoadTable() (types.Table, error) {
	table := types.Table{
		Agents: make([]types.Agent, 0),
		SecUA:  make(map[string]string),
	}

	rows, err := s.db.Query("SELECT platform, os_version, version, user_agent FROM agents ORDER BY id")
	if err != nil {
		return types.Table{}, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a types.Agent
		var platform, version string
		if err := rows.Scan(&platform, &a.OSVersion, &version, &a.UserAgent); err != nil {
			return types.Table{}, fmt.Errorf("failed to scan agent: %w", err)
		}
		a.Platform = types.Platform(platform)
		if a.Version, err = types.ParseBrowserVersion(version); err != nil {
			return types.Table{}, err
		}
		table.Agents = append(table.Agents, a)
	}
	if err := rows.Err(); err != nil {
		return types.Table{}, fmt.Errorf("failed to read agents: %w", err)
	}

	secRows, err := s.db.Query("SELECT major, value FROM sec_ua")
	if err != nil {
		return types.Table{}, fmt.Errorf("failed to query sec_ua: %w", err)
	}
	defer secRows.Close()

	for secRows.Next() {
		var major, value string
		if err := secRows.Scan(&major, &value); err != nil {
			return types.Table{}, fmt.Errorf("failed to scan sec_ua: %w", err)
		}
		table.SecUA[major] = value
	}
	if err := secRows.Err(); err != nil {
		return types.Table{}, fmt.Errorf("failed to read sec_ua: %w", err)
	}

	return table, nil
}

// GetStats returns row counts per table
func (s *SQLiteStorage) GetStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var agents int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM agents").Scan(&agents); err != nil {
		return nil, err
	}
	stats["agents"] = agents

	var platforms int
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT platform) FROM agents").Scan(&platforms); err != nil {
		return nil, err
	}
	stats["platforms"] = platforms

	var secUA int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sec_ua").Scan(&secUA); err != nil {
		return nil, err
	}
	stats["sec_ua"] = secUA

	return stats, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
