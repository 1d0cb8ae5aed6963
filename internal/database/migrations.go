package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are embedded and applied in version order inside a transaction.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_projects",
		SQL: `
			CREATE TABLE IF NOT EXISTS projects (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				organization_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				address TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'planned',
				budget_amount REAL NOT NULL DEFAULT 0,
				latitude REAL,
				longitude REAL,
				planned_value REAL NOT NULL DEFAULT 0,
				earned_value REAL NOT NULL DEFAULT 0,
				actual_cost REAL NOT NULL DEFAULT 0,
				start_date TIMESTAMP,
				end_date TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_projects_org_coords
				ON projects (organization_id, latitude, longitude);
			CREATE INDEX IF NOT EXISTS idx_projects_org_status
				ON projects (organization_id, status);
		`,
	},
	{
		Version: 2,
		Name:    "create_project_address_components",
		SQL: `
			CREATE TABLE IF NOT EXISTS project_address_components (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
				component TEXT NOT NULL,
				value TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_address_components_project
				ON project_address_components (project_id, component);
			CREATE INDEX IF NOT EXISTS idx_address_components_value
				ON project_address_components (component, value);
		`,
	},
	{
		Version: 3,
		Name:    "create_completed_works",
		SQL: `
			CREATE TABLE IF NOT EXISTS completed_works (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
				title TEXT NOT NULL DEFAULT '',
				completed_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_completed_works_project_time
				ON completed_works (project_id, completed_at);
		`,
	},
}

// Migrate applies pending migrations in version order.
func Migrate(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		err := Transaction(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.SQL); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
			}
			if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		log.Printf("applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}

func initMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
