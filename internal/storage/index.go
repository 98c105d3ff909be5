/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"

	"screenwriter/internal/domain"
	applog "screenwriter/internal/log"
	"screenwriter/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName holds the derived per-script databases next to the scripts.
	IndexDirName = ".swr"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// IndexPath returns the index database file of the script at scriptPath.
func IndexPath(scriptPath string) string {
	name := strings.TrimSuffix(filepath.Base(scriptPath), FileExt)
	return filepath.Join(filepath.Dir(scriptPath), IndexDirName, name+".sqlite")
}

// InitOrOpenIndex ensures the script's SQLite index exists, opens it,
// enables WAL mode and brings the schema up to date.
// Callers close the returned *sql.DB.
func InitOrOpenIndex(scriptPath string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("script", scriptPath),
	)
	if strings.TrimSpace(scriptPath) == "" {
		return nil, errors.New("script path is required")
	}
	path := IndexPath(scriptPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create index dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	// Use a URI with a busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, multierr.Append(fmt.Errorf("enable WAL: %w", err), db.Close())
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, multierr.Append(err, db.Close())
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, multierr.Append(err, db.Close())
	}
	if err := runMigrations(ctx, db); err != nil {
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, multierr.Append(err, db.Close())
	}

	l.Debug("index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// fresh databases start at schema 1 and migrate forward
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// SchemaVersion reports the schema version stored in an open index.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	cur, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_paragraphs_style ON paragraphs(style);`,
				`CREATE INDEX IF NOT EXISTS idx_paragraphs_speaker ON paragraphs(speaker);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return multierr.Append(fmt.Errorf("migration %d stmt failed: %w", next, err), tx.Rollback())
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return multierr.Append(fmt.Errorf("migration %d update version: %w", next, err), tx.Rollback())
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// ensureIndexSchema creates the index tables and FTS structures if missing.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// One row per script paragraph. speaker is the character a Dialogue or
		// Parenthetical paragraph belongs to.
		`CREATE TABLE IF NOT EXISTS paragraphs (
			para_id  INTEGER PRIMARY KEY,
			idx      INTEGER NOT NULL,
			style    TEXT,
			speaker  TEXT,
			text     TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_paragraphs_idx ON paragraphs(idx);`,

		// External-content FTS5 index fed from paragraphs via triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_paragraphs USING fts5(
			text,
			content='paragraphs',
			content_rowid='para_id',
			tokenize = 'unicode61'
		);`,

		// Script snapshots (history of script text for change tracking)
		`CREATE TABLE IF NOT EXISTS script_snapshots (
			id    INTEGER PRIMARY KEY,
			ts    TEXT    NOT NULL,
			label TEXT,
			text  TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_script_snapshots_ts ON script_snapshots(ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS paragraphs_ai AFTER INSERT ON paragraphs BEGIN
			INSERT INTO fts_paragraphs(rowid, text) VALUES (new.para_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS paragraphs_ad AFTER DELETE ON paragraphs BEGIN
			INSERT INTO fts_paragraphs(fts_paragraphs, rowid, text) VALUES ('delete', old.para_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS paragraphs_au AFTER UPDATE OF text ON paragraphs BEGIN
			INSERT INTO fts_paragraphs(fts_paragraphs, rowid, text) VALUES ('delete', old.para_id, old.text);
			INSERT INTO fts_paragraphs(rowid, text) VALUES (new.para_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// DetectAndRebuildIndex checks the index for corruption or a missing schema
// and rebuilds it from the script if needed. It reports whether a rebuild
// happened.
func DetectAndRebuildIndex(ctx context.Context, h *ScriptHandle) (bool, error) {
	if h == nil {
		return false, errors.New("nil ScriptHandle")
	}
	path := IndexPath(h.Path)
	db, err := InitOrOpenIndex(h.Path)
	if err != nil {
		backupIndexFile(path)
		_ = os.Remove(path)
		if rbErr := RebuildIndex(ctx, h); rbErr != nil {
			return false, fmt.Errorf("rebuild after open failure: %w (open err: %v)", rbErr, err)
		}
		return true, nil
	}
	needs := false
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM paragraphs LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if cerr := db.Close(); cerr != nil {
		return false, fmt.Errorf("close index: %w", cerr)
	}
	if !needs {
		return false, nil
	}
	backupIndexFile(path)
	_ = os.Remove(path)
	if err := RebuildIndex(ctx, h); err != nil {
		return false, err
	}
	return true, nil
}

// backupIndexFile copies the current index file into .swr/backups.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// RebuildIndex replaces the paragraph rows with the content of h.Script.
// Text snapshots are kept.
func RebuildIndex(ctx context.Context, h *ScriptHandle) (err error) {
	if h == nil {
		return errors.New("nil ScriptHandle")
	}
	db, err := InitOrOpenIndex(h.Path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()
	return replaceParagraphs(ctx, db, h.Script)
}

type paragraphRow struct {
	idx     int
	style   sql.NullString
	speaker sql.NullString
	text    string
}

// paragraphRows flattens a screenplay into index rows. Empty paragraphs are
// skipped; indexes refer to the paragraph position in the script.
func paragraphRows(sp domain.Screenplay) []paragraphRow {
	rows := make([]paragraphRow, 0, len(sp.Paragraphs))
	speaker := ""
	for i, p := range sp.Paragraphs {
		var b strings.Builder
		for _, r := range p.Runs {
			b.WriteString(r.Text)
		}
		text := strings.TrimSpace(b.String())
		switch p.Style {
		case "Character":
			speaker = strings.ToUpper(text)
		case "Dialogue", "Parenthetical":
		default:
			speaker = ""
		}
		if text == "" {
			continue
		}
		row := paragraphRow{idx: i, text: text}
		if p.Style != "" {
			row.style = sql.NullString{String: p.Style, Valid: true}
		}
		if speaker != "" && (p.Style == "Dialogue" || p.Style == "Parenthetical") {
			row.speaker = sql.NullString{String: speaker, Valid: true}
		}
		rows = append(rows, row)
	}
	return rows
}

func replaceParagraphs(ctx context.Context, db *sql.DB, sp domain.Screenplay) error {
	rows := paragraphRows(sp)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM paragraphs;"); err != nil {
		return multierr.Append(fmt.Errorf("clear paragraphs: %w", err), tx.Rollback())
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO paragraphs(idx, style, speaker, text) VALUES(?,?,?,?);")
	if err != nil {
		return multierr.Append(fmt.Errorf("prepare insert: %w", err), tx.Rollback())
	}
	for _, r := range rows {
		if _, err := ins.ExecContext(ctx, r.idx, r.style, r.speaker, r.text); err != nil {
			return multierr.Combine(fmt.Errorf("insert paragraph: %w", err), ins.Close(), tx.Rollback())
		}
	}
	if err := ins.Close(); err != nil {
		return multierr.Append(fmt.Errorf("close insert: %w", err), tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
