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
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newIndexedScript(t *testing.T) *ScriptHandle {
	t.Helper()
	h, err := Create(filepath.Join(t.TempDir(), "kitchen.writer"), sampleScript())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := RebuildIndex(ctx, h); err != nil {
		t.Fatalf("RebuildIndex error: %v", err)
	}
	return h
}

func TestIndexPathSitsNextToScript(t *testing.T) {
	got := IndexPath(filepath.Join("scripts", "my-play.writer"))
	want := filepath.Join("scripts", IndexDirName, "my-play.sqlite")
	if got != want {
		t.Fatalf("IndexPath = %s, want %s", got, want)
	}
}

func TestInitOrOpenIndexMigratesFreshDatabase(t *testing.T) {
	h := newIndexedScript(t)
	db, err := InitOrOpenIndex(h.Path)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	v, err := SchemaVersion(ctx, db)
	if err != nil || v != schemaVersion {
		t.Fatalf("expected schema %d, got %d (err=%v)", schemaVersion, v, err)
	}
	var cnt int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name IN ('idx_paragraphs_style','idx_paragraphs_speaker')`).Scan(&cnt); err != nil {
		t.Fatalf("query indexes: %v", err)
	}
	if cnt != 2 {
		t.Fatalf("expected migration indexes, got %d", cnt)
	}
}

func TestMigrationsUpgradeV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.writer")
	idx := IndexPath(path)
	if err := os.MkdirAll(filepath.Dir(idx), 0o755); err != nil {
		t.Fatalf("mk index dir: %v", err)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)", filepath.ToSlash(idx)))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE paragraphs (para_id INTEGER PRIMARY KEY, idx INTEGER NOT NULL, style TEXT, speaker TEXT, text TEXT NOT NULL);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	db.Close()

	mdb, err := InitOrOpenIndex(path)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer mdb.Close()
	if v, _ := SchemaVersion(ctx, mdb); v != 2 {
		t.Fatalf("expected schema 2 after migration, got %d", v)
	}
}

func TestSearchParagraphs(t *testing.T) {
	h := newIndexedScript(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := Search(ctx, h.Path, SearchQuery{Text: "soup"})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(res) != 2 || res[0].Index != 1 || res[1].Index != 3 {
		t.Fatalf("unexpected results: %+v", res)
	}
	if res[1].Speaker != "ALEX" || res[1].Style != "Dialogue" {
		t.Fatalf("expected ALEX dialogue, got %+v", res[1])
	}
	if res[0].Snippet == "" {
		t.Fatalf("expected snippet for FTS match")
	}

	res, err = Search(ctx, h.Path, SearchQuery{Speaker: "beth"})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(res) != 2 || res[0].Text != "(tasting)" || res[1].Text != "Needs more salt." {
		t.Fatalf("unexpected speaker results: %+v", res)
	}

	res, err = Search(ctx, h.Path, SearchQuery{Styles: []string{"Heading", "Transition"}})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(res) != 2 || res[1].Text != "CUT TO:" {
		t.Fatalf("unexpected style results: %+v", res)
	}
}

func TestRebuildIndexReplacesRows(t *testing.T) {
	h := newIndexedScript(t)
	ctx := context.Background()
	h.Script.Paragraphs = h.Script.Paragraphs[:2]
	if err := RebuildIndex(ctx, h); err != nil {
		t.Fatalf("RebuildIndex error: %v", err)
	}
	res, err := Search(ctx, h.Path, SearchQuery{})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected 2 rows after rebuild, got %d", len(res))
	}
	if res, _ := Search(ctx, h.Path, SearchQuery{Text: "salt"}); len(res) != 0 {
		t.Fatalf("stale FTS rows after rebuild: %+v", res)
	}
}

func TestDetectAndRebuildIndexOnCorruption(t *testing.T) {
	h := newIndexedScript(t)
	idx := IndexPath(h.Path)
	_ = os.Remove(idx + "-wal")
	_ = os.Remove(idx + "-shm")
	if err := os.WriteFile(idx, []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rebuilt, err := DetectAndRebuildIndex(ctx, h)
	if err != nil {
		t.Fatalf("DetectAndRebuildIndex: %v", err)
	}
	if !rebuilt {
		t.Fatalf("expected rebuild to occur")
	}
	res, err := Search(ctx, h.Path, SearchQuery{Text: "salt"})
	if err != nil || len(res) != 1 {
		t.Fatalf("expected rebuilt index to find salt, got %v (err=%v)", res, err)
	}
	entries, _ := os.ReadDir(filepath.Join(filepath.Dir(idx), "backups"))
	if len(entries) == 0 {
		t.Fatalf("expected backup of the corrupt index")
	}

	again, err := DetectAndRebuildIndex(ctx, h)
	if err != nil || again {
		t.Fatalf("healthy index should not be rebuilt: rebuilt=%v err=%v", again, err)
	}
}

func TestScriptSnapshots(t *testing.T) {
	h := newIndexedScript(t)
	ctx := context.Background()
	if s, err := GetLatestScriptSnapshot(ctx, h); err != nil || s.Text != "" {
		t.Fatalf("expected no snapshot yet, got %+v (err=%v)", s, err)
	}
	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, txt := range []string{"one", "two", "three"} {
		if err := SaveScriptSnapshot(ctx, h, "save", txt, t0.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("SaveScriptSnapshot: %v", err)
		}
	}
	latest, err := GetLatestScriptSnapshot(ctx, h)
	if err != nil || latest.Text != "three" || !latest.TS.Equal(t0.Add(2*time.Second)) || latest.Label != "save" {
		t.Fatalf("unexpected latest snapshot %+v (err=%v)", latest, err)
	}
	n, err := PruneOldScriptSnapshots(ctx, h, 2)
	if err != nil || n != 1 {
		t.Fatalf("expected one pruned snapshot, got %d (err=%v)", n, err)
	}
	list, err := ListScriptSnapshots(ctx, h, 10)
	if err != nil || len(list) != 2 || list[0].Text != "three" || list[1].Text != "two" {
		t.Fatalf("unexpected snapshot list %+v (err=%v)", list, err)
	}
}
