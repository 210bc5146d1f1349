package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_files",
		SQL: `CREATE TABLE IF NOT EXISTS files (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  path         TEXT        NOT NULL UNIQUE,
  filename     TEXT        NOT NULL,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  checksum     TEXT        NOT NULL,
  encoded      BOOLEAN     NOT NULL DEFAULT FALSE,
  description  TEXT        NOT NULL DEFAULT '',
  tags         JSONB       NOT NULL DEFAULT '[]',
  project_id   TEXT        NOT NULL DEFAULT '',
  created_by   TEXT        NOT NULL DEFAULT 'anonymous',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  expire_at    TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_index_files_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_created_at ON files (created_at);`,
	},
	{
		Name: "create_index_files_expire_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_expire_at ON files (expire_at);`,
	},
	{
		Name: "create_index_files_project_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_project_id ON files (project_id);`,
	},
	{
		// file_id cascades: deleting a file removes its edges in the same
		// statement. The unique index is what makes linking idempotent; the
		// repository relies on ON CONFLICT against it.
		Name: "create_table_attachments",
		SQL: `CREATE TABLE IF NOT EXISTS attachments (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  file_id      UUID        NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  entity_type  TEXT        NOT NULL,
  entity_id    UUID        NOT NULL,
  entity_title TEXT        NOT NULL DEFAULT '',
  description  TEXT        NOT NULL DEFAULT '',
  created_by   TEXT        NOT NULL DEFAULT 'anonymous',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_unique_index_attachments_edge",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_attachments_edge ON attachments (file_id, entity_type, entity_id);`,
	},
	{
		Name: "create_index_attachments_file_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_attachments_file_id ON attachments (file_id);`,
	},
	{
		Name: "create_index_attachments_entity",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_attachments_entity ON attachments (entity_type, entity_id);`,
	},
}

// EnsureMigrated checks if the 'files' table exists and runs migrations if it
// doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.files') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
