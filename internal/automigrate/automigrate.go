// Package automigrate runs pending database migrations on startup.
package automigrate

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Run applies all pending up migrations from the given directory.
func Run(db *sql.DB, migrationsDir string) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}

	// A schema_migrations table created by golang-migrate carries a NOT NULL
	// dirty column, so inserts must supply it.
	hasDirty, err := hasDirtyColumn(db)
	if err != nil {
		return fmt.Errorf("inspect schema_migrations: %w", err)
	}

	type migration struct {
		name    string
		version int
	}
	var pending []migration
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		// Numeric prefix, e.g. "004" from "004_create_tickets.up.sql"
		parts := strings.SplitN(name, "_", 2)
		if len(parts) == 0 {
			continue
		}
		ver, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		if !applied[ver] {
			pending = append(pending, migration{name: name, version: ver})
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].version < pending[j].version })

	if len(pending) == 0 {
		log.Printf("✅ Database up to date (%d migrations applied)", len(applied))
		return nil
	}

	log.Printf("📦 Applying %d pending migration(s)...", len(pending))
	for _, m := range pending {
		path := filepath.Join(migrationsDir, m.name)
		sqlBytes, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", m.name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for %s: %w", m.name, err)
		}

		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			tx.Rollback()
			// A migration that was applied out of band shows up as
			// "already exists"; record it and move on.
			errStr := err.Error()
			if strings.Contains(errStr, "already exists") || strings.Contains(errStr, "duplicate key") {
				log.Printf("  ⏭️  Skipped (already applied): %d", m.version)
				db.Exec("INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT DO NOTHING", m.version)
				continue
			}
			return fmt.Errorf("apply %s: %w", m.name, err)
		}

		if err := recordVersion(tx, m.version, hasDirty); err != nil {
			tx.Rollback()
			return fmt.Errorf("record %s: %w", m.name, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", m.name, err)
		}

		log.Printf("  ✅ Applied: %d", m.version)
	}

	log.Printf("✅ All migrations applied (%d new, %d total)", len(pending), len(applied)+len(pending))
	return nil
}

func hasDirtyColumn(db *sql.DB) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (
		SELECT 1 FROM information_schema.columns
		WHERE table_name = 'schema_migrations' AND column_name = 'dirty'
	)`).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func recordVersion(tx *sql.Tx, version int, hasDirty bool) error {
	if hasDirty {
		_, err := tx.Exec("INSERT INTO schema_migrations (version, dirty) VALUES ($1, false)", version)
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", version)
	return err
}
