/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report and an autosave of the
// script that was open when it happened.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"go.uber.org/multierr"

	applog "screenwriter/internal/log"
	"screenwriter/internal/storage"
	"screenwriter/internal/telemetry"
	"screenwriter/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Source returns the script to autosave, with its in-memory content, or nil
// when nothing is open.
type Source func() *storage.ScriptHandle

// Recover captures a panic, logs an error with stacktrace,
// writes an error report file, and attempts a crash-safe autosave
// of the open script (if src yields one). Opted-in users also upload
// the report.
//
// Usage: defer crash.Recover(src)
func Recover(src Source) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		h := current(src, l)
		reportPath, err := writeReport(h, r, stack)
		if err != nil {
			l.Error("write crash report failed", slog.Any("err", err))
		} else if data, rerr := os.ReadFile(reportPath); rerr == nil {
			telemetry.Default().UploadCrash(data)
		}
		if h != nil {
			if path, err := storage.AutosaveCrashCopy(h); err != nil {
				l.Error("autosave crash copy failed", slog.Any("err", err))
			} else {
				l.Info("autosave crash copy written", slog.String("path", path))
			}
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

// current asks src for the open script. A second panic inside src is
// swallowed; the report is still written.
func current(src Source, l *slog.Logger) (h *storage.ScriptHandle) {
	if src == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			l.Error("script source panicked", slog.Any("panic", r))
			h = nil
		}
	}()
	return src()
}

func writeReport(h *storage.ScriptHandle, panicVal any, stack []byte) (path string, err error) {
	dir := os.TempDir()
	if h != nil && h.Path != "" {
		dir = storage.BackupsDir(h.Path)
		_ = os.MkdirAll(dir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	path = filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Screenwriter Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if h != nil {
		_, _ = fmt.Fprintf(&buf, "Script: %s\n", h.Path)
		_, _ = fmt.Fprintf(&buf, "Paragraphs: %d\n", len(h.Script.Paragraphs))
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	return path, f.Sync()
}
