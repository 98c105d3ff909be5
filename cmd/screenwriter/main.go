/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"screenwriter/internal/config"
	"screenwriter/internal/crash"
	"screenwriter/internal/editor"
	applog "screenwriter/internal/log"
	"screenwriter/internal/storage"
	"screenwriter/internal/telemetry"
	"screenwriter/internal/undo"
)

// app holds what one invocation works on: the loaded config and at most one
// open script with its editing session.
type app struct {
	cfg     config.AppConfig
	log     *slog.Logger
	handle  *storage.ScriptHandle
	session *editor.Session
}

// current is the crash.Source of the app. The handle is refreshed from the
// session so the autosave carries unsaved edits.
func (a *app) current() *storage.ScriptHandle {
	if a.handle == nil {
		return nil
	}
	if a.session != nil {
		a.handle.Script = a.session.ToScreenplay()
	}
	return a.handle
}

func (a *app) options() editor.Options {
	return editor.Options{
		Editor: a.cfg.Editor,
		History: undo.NewManager(undo.Config{
			MaxBytes:  a.cfg.History.UndoMaxBytes,
			MaxPerDoc: a.cfg.History.UndoMaxDepth,
		}),
		Logger: applog.WithComponent("editor"),
	}
}

// open loads the script at path, checks its index and starts a session.
func (a *app) open(ctx context.Context, path string) (context.Context, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ctx, fmt.Errorf("resolve %s: %w", path, err)
	}
	h, err := storage.Open(abs)
	if err != nil {
		return ctx, err
	}
	ctx = applog.ContextWithScript(ctx, abs)
	a.handle = h
	a.session = editor.Open(h.Script, a.options())
	if rebuilt, err := storage.DetectAndRebuildIndex(ctx, h); err != nil {
		a.log.WarnContext(ctx, "index check failed", slog.Any("err", err))
	} else if rebuilt {
		a.log.InfoContext(ctx, "index rebuilt")
	}
	return ctx, nil
}

// commit writes the session back to disk, then refreshes the index.
func (a *app) commit(ctx context.Context, label string) error {
	a.handle.Script = a.session.ToScreenplay()
	if err := storage.Save(a.handle); err != nil {
		return err
	}
	a.log.InfoContext(ctx, "script saved", slog.String("label", label), slog.Int("paragraphs", len(a.handle.Script.Paragraphs)))
	return a.index(ctx, label)
}

// index refreshes the paragraph index and appends to the text history.
// Failures here do not undo the save; they are returned together.
func (a *app) index(ctx context.Context, label string) error {
	l := applog.WithOperation(a.log, "index")
	err := storage.RebuildIndex(ctx, a.handle)
	err = multierr.Append(err, storage.SaveScriptSnapshot(ctx, a.handle, label, a.session.Text(), time.Now()))
	if keep := a.cfg.History.KeepSnapshots; keep > 0 {
		n, perr := storage.PruneOldScriptSnapshots(ctx, a.handle, keep)
		err = multierr.Append(err, perr)
		if n > 0 {
			l.DebugContext(ctx, "snapshots pruned", slog.Int64("deleted", n))
		}
	}
	if err != nil {
		return fmt.Errorf("update index: %w", err)
	}
	return nil
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "screenwriter",
		Short: "Screenplay formatting editor",
		Long: `Screenwriter keeps every paragraph of a script in one of the six
screenplay styles: Action, Character, Dialogue, Parenthetical, Heading and
Transition. Each command opens a .writer file, edits it through the
formatting engine and saves it with a backup of the previous version.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			applog.Init(applog.Options{
				Level:     cfg.Logging.Level,
				Format:    cfg.Logging.Format,
				AddSource: cfg.Logging.Source,
				File:      cfg.Logging.File,
				Console:   cmd.ErrOrStderr(),
			})
			a.log = applog.WithComponent("cli")
			a.log.Debug("start", slog.String("command", cmd.CommandPath()), slog.Int("args", len(args)))
			return nil
		},
	}
	root.AddCommand(
		newNewCommand(a),
		newShowCommand(a),
		newFormatCommand(a),
		newCycleCommand(a),
		newContinueCommand(a),
		newDetectCommand(a),
		newTypeCommand(a),
		newHeaderCommand(a),
		newCharactersCommand(a),
		newImportCommand(a),
		newSearchCommand(a),
		newHistoryCommand(a),
		newVersionCommand(),
	)
	return root
}

func main() {
	a := &app{}
	defer crash.Recover(a.current)

	tel := telemetry.Default()
	start := time.Now()
	cmd, err := newRootCommand(a).ExecuteC()
	if cmd != nil {
		tel.Command(cmd.CommandPath(), time.Since(start), err)
	}
	tel.Flush(context.Background())
	tel.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
