/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type EditorConfig struct {
	TabFormat             bool     `yaml:"tab_format"`   // Tab cycles styles
	EnterFormat           bool     `yaml:"enter_format"` // Enter continues with the follow-up style
	AutoCaptureCharacters bool     `yaml:"auto_capture_characters"`
	DefaultAuthor         string   `yaml:"default_author"`
	StartWithDefaults     bool     `yaml:"start_with_default_characters"`
	DefaultCharacters     []string `yaml:"default_characters"`
	FontFamily            string   `yaml:"font_family"`
	FontSize              float64  `yaml:"font_size"`
}

type HistoryConfig struct {
	UndoMaxBytes  int `yaml:"undo_max_bytes"`
	UndoMaxDepth  int `yaml:"undo_max_depth"`
	KeepSnapshots int `yaml:"keep_snapshots"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	History       HistoryConfig `yaml:"history"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor: EditorConfig{
			TabFormat:             true,
			EnterFormat:           true,
			AutoCaptureCharacters: true,
			StartWithDefaults:     true,
			DefaultCharacters:     []string{"ALEX", "CHARLIE", "FRANKIE", "JESSIE"},
			FontFamily:            "Courier",
			FontSize:              12,
		},
		History: HistoryConfig{UndoMaxBytes: 32 << 20, UndoMaxDepth: 200, KeepSnapshots: 50},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath    = "SWR_CONFIG"
	EnvTabFormat     = "SWR_TAB_FORMAT"
	EnvEnterFormat   = "SWR_ENTER_FORMAT"
	EnvDefaultAuthor = "SWR_DEFAULT_AUTHOR"
	EnvAutoCapture   = "SWR_AUTO_CAPTURE"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "SWR_LOG_LEVEL"
	EnvLogFormat = "SWR_LOG_FORMAT"
	EnvLogSource = "SWR_LOG_SOURCE"
	EnvLogFile   = "SWR_LOG_FILE"
)

// ConfigPath returns the per-user config file path. SWR_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Screenwriter")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Screenwriter")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "screenwriter")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "screenwriter")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A missing file is not an error; a malformed one is.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg, data)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config: %w", err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// mergeInto copies the values of a parsed file over dst. raw is the file
// content; booleans are only taken when the key is present so that a file
// written before a flag existed keeps its default.
func mergeInto(dst *AppConfig, src *AppConfig, raw []byte) {
	var present struct {
		Editor  map[string]any `yaml:"editor"`
		Logging map[string]any `yaml:"logging"`
	}
	_ = yaml.Unmarshal(raw, &present)
	has := func(m map[string]any, key string) bool {
		_, ok := m[key]
		return ok
	}

	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// editor
	if has(present.Editor, "tab_format") {
		dst.Editor.TabFormat = src.Editor.TabFormat
	}
	if has(present.Editor, "enter_format") {
		dst.Editor.EnterFormat = src.Editor.EnterFormat
	}
	if has(present.Editor, "auto_capture_characters") {
		dst.Editor.AutoCaptureCharacters = src.Editor.AutoCaptureCharacters
	}
	if has(present.Editor, "start_with_default_characters") {
		dst.Editor.StartWithDefaults = src.Editor.StartWithDefaults
	}
	if strings.TrimSpace(src.Editor.DefaultAuthor) != "" {
		dst.Editor.DefaultAuthor = strings.TrimSpace(src.Editor.DefaultAuthor)
	}
	if src.Editor.DefaultCharacters != nil {
		dst.Editor.DefaultCharacters = src.Editor.DefaultCharacters
	}
	if strings.TrimSpace(src.Editor.FontFamily) != "" {
		dst.Editor.FontFamily = strings.TrimSpace(src.Editor.FontFamily)
	}
	if src.Editor.FontSize > 0 {
		dst.Editor.FontSize = src.Editor.FontSize
	}
	// history
	if src.History.UndoMaxBytes != 0 {
		dst.History.UndoMaxBytes = src.History.UndoMaxBytes
	}
	if src.History.UndoMaxDepth != 0 {
		dst.History.UndoMaxDepth = src.History.UndoMaxDepth
	}
	if src.History.KeepSnapshots != 0 {
		dst.History.KeepSnapshots = src.History.KeepSnapshots
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	if has(present.Logging, "source") {
		dst.Logging.Source = src.Logging.Source
	}
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTabFormat)); v != "" {
		cfg.Editor.TabFormat = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvEnterFormat)); v != "" {
		cfg.Editor.EnterFormat = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutoCapture)); v != "" {
		cfg.Editor.AutoCaptureCharacters = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDefaultAuthor)); v != "" {
		cfg.Editor.DefaultAuthor = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "editor.tab_format":
		env = EnvTabFormat
	case "editor.enter_format":
		env = EnvEnterFormat
	case "editor.auto_capture_characters":
		env = EnvAutoCapture
	case "editor.default_author":
		env = EnvDefaultAuthor
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
