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
	"time"

	"go.uber.org/multierr"
)

// language=SQL
// dialect=SQLite
const insertScriptSnapshotSQL = `INSERT INTO script_snapshots(ts, label, text) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestScriptSnapshotSQL = `SELECT ts, COALESCE(label,''), text FROM script_snapshots ORDER BY ts DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listScriptSnapshotsSQL = `SELECT ts, COALESCE(label,''), text FROM script_snapshots ORDER BY ts DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldScriptSnapshotsSQL = `DELETE FROM script_snapshots WHERE id NOT IN (
	SELECT id FROM script_snapshots ORDER BY ts DESC LIMIT ?
)`

// snapshotTSLayout is fixed width so that text order matches time order.
const snapshotTSLayout = "2006-01-02T15:04:05.000000000Z"

// ScriptSnapshot is one entry of the text history.
type ScriptSnapshot struct {
	TS    time.Time
	Label string
	Text  string
}

// SaveScriptSnapshot stores the full plain text of the script with a timestamp.
// The history lives in the derived index and is meant for change tracking,
// not as canonical storage.
func SaveScriptSnapshot(ctx context.Context, h *ScriptHandle, label, text string, ts time.Time) (err error) {
	if h == nil {
		return errors.New("nil ScriptHandle")
	}
	db, err := InitOrOpenIndex(h.Path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()
	_, err = db.ExecContext(ctx, insertScriptSnapshotSQL, ts.UTC().Format(snapshotTSLayout), label, text)
	return err
}

// GetLatestScriptSnapshot returns the newest snapshot, or a zero value if
// there is none.
func GetLatestScriptSnapshot(ctx context.Context, h *ScriptHandle) (snap ScriptSnapshot, err error) {
	if h == nil {
		return ScriptSnapshot{}, errors.New("nil ScriptHandle")
	}
	db, err := InitOrOpenIndex(h.Path)
	if err != nil {
		return ScriptSnapshot{}, err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()
	var tsStr string
	err = db.QueryRowContext(ctx, selectLatestScriptSnapshotSQL).Scan(&tsStr, &snap.Label, &snap.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return ScriptSnapshot{}, nil
	}
	if err != nil {
		return ScriptSnapshot{}, err
	}
	snap.TS, _ = time.Parse(snapshotTSLayout, tsStr)
	return snap, nil
}

// ListScriptSnapshots returns up to limit most recent snapshots, newest first.
func ListScriptSnapshots(ctx context.Context, h *ScriptHandle, limit int) (out []ScriptSnapshot, err error) {
	if h == nil {
		return nil, errors.New("nil ScriptHandle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(h.Path)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()
	rows, err := db.QueryContext(ctx, listScriptSnapshotsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, rows.Close()) }()
	for rows.Next() {
		var tsStr string
		var s ScriptSnapshot
		if err := rows.Scan(&tsStr, &s.Label, &s.Text); err != nil {
			return nil, err
		}
		s.TS, _ = time.Parse(snapshotTSLayout, tsStr)
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneOldScriptSnapshots keeps at most keepLast snapshots and deletes older ones.
func PruneOldScriptSnapshots(ctx context.Context, h *ScriptHandle, keepLast int) (n int64, err error) {
	if h == nil {
		return 0, errors.New("nil ScriptHandle")
	}
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := InitOrOpenIndex(h.Path)
	if err != nil {
		return 0, err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()
	res, err := db.ExecContext(ctx, pruneOldScriptSnapshotsSQL, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
