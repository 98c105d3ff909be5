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
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/multierr"

	"screenwriter/internal/domain"
)

const (
	FileExt        = ".writer"
	BackupsDirName = "backups"
)

// ScriptHandle keeps track of a script loaded from or saved to disk.
// Path is the .writer file; backups live in a sibling backups folder.
type ScriptHandle struct {
	Path   string
	Script domain.Screenplay
}

// BackupsDir returns the backups folder used for the script at path.
func BackupsDir(path string) string {
	return filepath.Join(filepath.Dir(path), BackupsDirName)
}

// SuggestFileName derives a file name from a script title.
func SuggestFileName(title string) string {
	s := slug.Make(title)
	if s == "" {
		s = "untitled"
	}
	return s + FileExt
}

// Create writes a new script file at path. It fails if the file exists.
func Create(path string, sp domain.Screenplay) (*ScriptHandle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("script path is required")
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("create script: %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create script dir: %w", err)
	}
	h := &ScriptHandle{Path: path, Script: sp}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads a script. If the file cannot be read, parsed or validated, the
// latest backup is tried.
func Open(path string) (*ScriptHandle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		sp, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open script: %w; backup attempt: %v", err, berr)
		}
		return &ScriptHandle{Path: path, Script: *sp}, nil
	}
	sp, perr := decode(b)
	if perr != nil {
		sp, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("parse script: %w; backup attempt: %v", perr, berr)
		}
		return &ScriptHandle{Path: path, Script: *sp}, nil
	}
	return &ScriptHandle{Path: path, Script: *sp}, nil
}

func decode(b []byte) (*domain.Screenplay, error) {
	if err := Validate(b); err != nil {
		return nil, err
	}
	var sp domain.Screenplay
	if err := json.Unmarshal(b, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

// normalize fills the fields the schema requires.
func normalize(sp *domain.Screenplay) {
	if sp.ID == "" {
		sp.ID = uuid.NewString()
	}
	if sp.FormatVersion == 0 {
		sp.FormatVersion = domain.FormatVersion
	}
	if sp.Characters == nil {
		sp.Characters = []string{}
	}
	if sp.Paragraphs == nil {
		sp.Paragraphs = []domain.Paragraph{}
	}
	for i := range sp.Paragraphs {
		if sp.Paragraphs[i].Runs == nil {
			sp.Paragraphs[i].Runs = []domain.Run{}
		}
	}
}

// Save writes h.Script with transactional semantics and a timestamped backup
// of the previous file (if present).
func Save(h *ScriptHandle) error {
	if h == nil {
		return errors.New("nil ScriptHandle")
	}
	if h.Path == "" {
		return errors.New("invalid ScriptHandle: missing path")
	}
	normalize(&h.Script)
	h.Script.Metadata.Updated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(h.Script, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal script: %w", err)
	}
	data = append(data, '\n')
	if err := Validate(data); err != nil {
		return err
	}

	bdir := BackupsDir(h.Path)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	base := filepath.Base(h.Path)
	if _, statErr := os.Stat(h.Path); statErr == nil {
		stamp := time.Now().Format("20060102-150405.000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", base, stamp))
		if cerr := copyFile(h.Path, bpath); cerr != nil {
			return fmt.Errorf("backup current script: %w", cerr)
		}
	}

	// write to a temp file in the same directory, then rename over the target
	temp := filepath.Join(filepath.Dir(h.Path), fmt.Sprintf(".%s.tmp-%d-%d", base, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp script: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(h.Path); err == nil {
		_ = os.Remove(h.Path)
	}
	if rerr := os.Rename(temp, h.Path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace script: %w", rerr)
	}
	return nil
}

// SaveAs writes the script to a new path and updates the handle.
func SaveAs(h *ScriptHandle, newPath string) error {
	if h == nil {
		return errors.New("nil ScriptHandle")
	}
	if newPath == "" {
		return errors.New("new path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("create target dir: %w", err)
	}
	h.Path = newPath
	return Save(h)
}

// AutosaveCrashCopy writes the in-memory script next to the backups without
// touching the script file itself. It returns the written path.
func AutosaveCrashCopy(h *ScriptHandle) (string, error) {
	if h == nil || h.Path == "" {
		return "", errors.New("no script to autosave")
	}
	normalize(&h.Script)
	data, err := json.MarshalIndent(h.Script, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal script: %w", err)
	}
	bdir := BackupsDir(h.Path)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(h.Path), FileExt)
	out := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s%s", name, time.Now().Format("20060102-150405"), FileExt))
	if err := writeFileSync(out, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write crash copy: %w", err)
	}
	return out, nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, sf.Close()) }()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, df.Close()) }()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// openFromLatestBackup tries the newest timestamped backup of the script.
func openFromLatestBackup(path string) (*domain.Screenplay, error) {
	bdir := BackupsDir(path)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	sp, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return sp, nil
}
