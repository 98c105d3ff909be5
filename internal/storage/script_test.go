/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"screenwriter/internal/domain"
)

func para(style, text string) domain.Paragraph {
	f := domain.CharFormat{Family: "Courier", Size: 12, Capitalization: "mixed", LetterSpacing: 100}
	return domain.Paragraph{Style: style, Format: f, Block: domain.Block{Alignment: "left"}, Runs: []domain.Run{{Text: text, Format: f}}}
}

func sampleScript() domain.Screenplay {
	return domain.Screenplay{
		Title:      "My Play",
		Author:     "Jane",
		Characters: []string{"ALEX", "BETH"},
		Paragraphs: []domain.Paragraph{
			para("Heading", "INT. KITCHEN - NIGHT"),
			para("Action", "Alex stirs a pot of soup."),
			para("Character", "ALEX"),
			para("Dialogue", "Is the soup ready?"),
			para("Character", "BETH"),
			para("Parenthetical", "(tasting)"),
			para("Dialogue", "Needs more salt."),
			para("", ""),
			para("Transition", "CUT TO:"),
		},
	}
}

func TestCreateOpenSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "my-play.writer")
	h, err := Create(path, sampleScript())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if h.Script.ID == "" || h.Script.FormatVersion != domain.FormatVersion {
		t.Fatalf("expected id and format version to be filled, got %+v", h.Script)
	}
	if _, err := Create(path, sampleScript()); err == nil {
		t.Fatalf("expected Create to refuse an existing file")
	}

	got, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if got.Script.ID != h.Script.ID || got.Script.Title != "My Play" || len(got.Script.Paragraphs) != 9 {
		t.Fatalf("round trip mismatch: %+v", got.Script)
	}
	if got.Script.Paragraphs[3].Runs[0].Text != "Is the soup ready?" {
		t.Fatalf("unexpected paragraph text %q", got.Script.Paragraphs[3].Runs[0].Text)
	}

	got.Script.Title = "Renamed"
	if err := Save(got); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	ents, err := os.ReadDir(BackupsDir(path))
	if err != nil || len(ents) == 0 {
		t.Fatalf("expected a backup after second save, err=%v", err)
	}
}

func TestOpenFallsBackToLatestBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.writer")
	h, err := Create(path, sampleScript())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	// the second save backs up the first version
	if err := Save(h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt script: %v", err)
	}
	got, err := Open(path)
	if err != nil {
		t.Fatalf("Open should recover from backup: %v", err)
	}
	if got.Script.Title != "My Play" {
		t.Fatalf("unexpected title from backup: %q", got.Script.Title)
	}
}

func TestOpenRejectsSchemaViolationWithoutBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.writer")
	if err := os.WriteFile(path, []byte(`{"id":"x","formatVersion":1,"characters":[],"paragraphs":[{"runs":[]}]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(path); err == nil || !strings.Contains(err.Error(), "schema") {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestSavedFileConformsToSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.writer")
	if _, err := Create(path, domain.Screenplay{}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Fatalf("saved script invalid: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["characters"].([]any); !ok {
		t.Fatalf("characters should serialize as an array, got %T", raw["characters"])
	}
}

func TestSaveAsMovesHandle(t *testing.T) {
	dir := t.TempDir()
	h, err := Create(filepath.Join(dir, "a.writer"), sampleScript())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	target := filepath.Join(dir, "nested", "b.writer")
	if err := SaveAs(h, target); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}
	if h.Path != target {
		t.Fatalf("handle path not updated: %s", h.Path)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("target missing: %v", err)
	}
}

func TestSuggestFileName(t *testing.T) {
	cases := map[string]string{
		"My Play":                 "my-play.writer",
		"  Night of the Hunter! ": "night-of-the-hunter.writer",
		"":                        "untitled.writer",
	}
	for in, want := range cases {
		if got := SuggestFileName(in); got != want {
			t.Fatalf("SuggestFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAutosaveCrashCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crashy.writer")
	h := &ScriptHandle{Path: path, Script: sampleScript()}
	out, err := AutosaveCrashCopy(h)
	if err != nil {
		t.Fatalf("AutosaveCrashCopy error: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(out), "crashy.crash-") || filepath.Dir(out) != BackupsDir(path) {
		t.Fatalf("unexpected crash copy path %s", out)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("script file itself must not be written")
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read crash copy: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Fatalf("crash copy invalid: %v", err)
	}
}
