/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor binds the formatting engine, the character registry and the
// undo history to one document and routes key presses to them.
package editor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"screenwriter/internal/characters"
	"screenwriter/internal/config"
	"screenwriter/internal/document"
	"screenwriter/internal/domain"
	"screenwriter/internal/format"
	applog "screenwriter/internal/log"
	"screenwriter/internal/script"
	"screenwriter/internal/style"
	"screenwriter/internal/undo"
)

// Undo labels of the edits that are not reformats. Reformats use
// format.ChangeLabel.
const (
	LabelTyping = "Typing"
	LabelHeader = "Inserting header"
	LabelImport = "Importing text"
)

// Options configures a Session. Only Editor is required.
type Options struct {
	Editor    config.EditorConfig
	History   *undo.Manager
	Completer characters.Completer
	Indicator format.Indicator
	Logger    *slog.Logger
}

// Session is one open script: the document, a cursor into it and everything
// that reacts to edits. Like the engine it is driven from a single goroutine.
type Session struct {
	doc      *document.Document
	cur      *document.Cursor
	engine   *format.Engine
	registry *characters.Registry
	header   *format.HeaderGenerator
	history  *undo.Manager

	completer characters.Completer
	prefix    string
	matches   []string

	cfg      config.EditorConfig
	title    string
	author   string
	lastEdit *format.Edit
	now      func() time.Time
	log      *slog.Logger
}

// New starts a session on an empty document. The registry is seeded with the
// configured default characters.
func New(opts Options) *Session {
	s := newSession(document.New(), opts)
	if opts.Editor.StartWithDefaults {
		for _, n := range opts.Editor.DefaultCharacters {
			s.registry.Add(n)
		}
	}
	s.engine.Start(s.cur)
	return s
}

// Open starts a session on a stored screenplay.
func Open(sp domain.Screenplay, opts Options) *Session {
	s := newSession(document.Import(sp.ID, sp.Paragraphs), opts)
	for _, n := range sp.Characters {
		s.registry.Add(n)
	}
	s.title = sp.Title
	if sp.Author != "" {
		s.author = sp.Author
	}
	s.engine.Start(s.cur)
	return s
}

func newSession(doc *document.Document, opts Options) *Session {
	l := opts.Logger
	if l == nil {
		l = applog.WithComponent("editor")
	}
	h := opts.History
	if h == nil {
		h = undo.NewManager(undo.Config{MaxBytes: 32 * 1024 * 1024, MaxPerDoc: 200})
	}
	s := &Session{
		doc:       doc,
		cur:       doc.NewCursor(),
		registry:  characters.NewRegistry(),
		history:   h,
		completer: opts.Completer,
		cfg:       opts.Editor,
		author:    opts.Editor.DefaultAuthor,
		now:       time.Now,
		log:       l,
	}
	s.engine = format.NewEngine(style.NewCatalog(opts.Editor.FontFamily, opts.Editor.FontSize), format.Options{
		Indicator: opts.Indicator,
		Journal:   s,
		Logger:    opts.Logger,
	})
	s.header = format.NewHeaderGenerator(s.engine, s.registry)
	if s.completer != nil {
		s.registry.Subscribe(s.completer.SetCandidates)
	}
	s.cur.OnMove(func(c *document.Cursor) { s.engine.Sync(c) })
	return s
}

// Record implements format.Journal.
func (s *Session) Record(e format.Edit) { s.lastEdit = &e }

// LastEdit returns the most recent reformat.
func (s *Session) LastEdit() (format.Edit, bool) {
	if s.lastEdit == nil {
		return format.Edit{}, false
	}
	return *s.lastEdit, true
}

func (s *Session) Document() *document.Document { return s.doc }

func (s *Session) Cursor() *document.Cursor { return s.cur }

func (s *Session) Engine() *format.Engine { return s.engine }

func (s *Session) Registry() *characters.Registry { return s.registry }

func (s *Session) History() *undo.Manager { return s.history }

func (s *Session) State() format.State { return s.engine.State() }

// Text returns the plain text, one line per paragraph.
func (s *Session) Text() string { return s.doc.Text() }

func (s *Session) Title() string { return s.title }

func (s *Session) Author() string { return s.author }

func (s *Session) SetTitle(t string) { s.title = strings.TrimSpace(t) }

func (s *Session) SetAuthor(a string) { s.author = strings.TrimSpace(a) }

// CompletionMatches returns the names currently offered, if any.
func (s *Session) CompletionMatches() []string { return append([]string(nil), s.matches...) }

// ParagraphInfo describes one paragraph for display.
type ParagraphInfo struct {
	Index int
	Style style.Style
	Text  string
}

// Paragraphs classifies every paragraph of the document.
func (s *Session) Paragraphs() []ParagraphInfo {
	out := make([]ParagraphInfo, s.doc.ParagraphCount())
	for i := range out {
		p := s.doc.Paragraph(i)
		out[i] = ParagraphInfo{Index: i, Style: s.engine.Detector().Classify(s.doc.CharFormatAt(p.Start)), Text: p.Text}
	}
	return out
}

// SetPosition moves the cursor. Moving runs detection like any cursor move.
func (s *Session) SetPosition(pos int) { s.cur.SetPosition(pos) }

// Select selects [anchor, pos].
func (s *Session) Select(anchor, pos int) { s.cur.Select(anchor, pos) }

// ChangeFormatTo applies st to the paragraphs under the selection.
func (s *Session) ChangeFormatTo(st style.Style) {
	s.checkpoint(format.ChangeLabel)
	s.engine.ChangeFormatTo(s.cur, st, false)
	s.hideCompletion()
}

// CycleStyle applies the next style in catalog order.
func (s *Session) CycleStyle() style.Style {
	s.checkpoint(format.ChangeLabel)
	st := s.engine.CycleStyle(s.cur)
	s.hideCompletion()
	return st
}

// AutoContinue starts a new paragraph in the continuation style, whatever
// the Enter setting says.
func (s *Session) AutoContinue() style.Style {
	s.enter(true)
	return s.engine.Current()
}

// Detect classifies the paragraph under the cursor.
func (s *Session) Detect() style.Style { return s.engine.Detect(s.cur) }

// RegisterCharacter adds a name to the registry.
func (s *Session) RegisterCharacter(name string) bool { return s.registry.Add(name) }

// UnregisterCharacter removes a stored name; the match is exact.
func (s *Session) UnregisterCharacter(name string) bool { return s.registry.Remove(name) }

// GenerateHeader writes the title page preamble. Empty Title and Author fall
// back to the session's.
func (s *Session) GenerateHeader(opts format.HeaderOptions) {
	if opts.Title == "" {
		opts.Title = s.title
	}
	if opts.Author == "" {
		opts.Author = s.author
	}
	s.checkpoint(LabelHeader)
	release := s.engine.Guard().Suspend()
	defer release()
	s.header.InsertHeader(s.cur, opts)
}

// Import appends a plain-text screenplay, one paragraph per parsed block,
// each formatted through the engine. Speakers are registered and the front
// matter fills an empty title or author.
func (s *Session) Import(text string) []script.Error {
	sc, errs := script.Parse(text)
	if len(sc.Blocks) == 0 {
		return errs
	}
	s.checkpoint(LabelImport)
	release := s.engine.Guard().Suspend()
	defer release()

	reuse := s.doc.ParagraphCount() == 1 && s.doc.Len() == 0
	for i, b := range sc.Blocks {
		s.cur.SetPosition(s.doc.Len())
		if i > 0 || !reuse {
			attrs := s.engine.Catalog().Of(b.Style)
			s.cur.InsertParagraph(attrs.Block, attrs.Char)
		}
		s.cur.ReplaceParagraphText(b.Text)
		s.engine.ChangeFormatTo(s.cur, b.Style, false)
	}
	for _, n := range sc.Speakers() {
		s.registry.Add(n)
	}
	if s.title == "" {
		s.title = sc.Title
	}
	if s.author == "" {
		s.author = sc.Author
	}
	s.log.Info("imported text", slog.Int("blocks", len(sc.Blocks)), slog.Int("errors", len(errs)))
	return errs
}

// HandleKey routes one key press. While completions are offered, Enter and
// Tab accept the first one and Escape dismisses them.
func (s *Session) HandleKey(k Key) {
	if len(s.matches) > 0 && !k.Alt {
		switch k.Code {
		case KeyEnter, KeyTab:
			s.AcceptCompletion(s.matches[0])
			return
		case KeyEscape:
			s.hideCompletion()
			return
		}
	}

	switch {
	case k.Alt && k.Code == KeyRune && k.Rune >= '1' && k.Rune <= '6':
		s.ChangeFormatTo(style.All()[k.Rune-'1'])
	case k.Alt && k.Code == KeyRune && k.Rune == '`':
		s.CycleStyle()
	case k.Alt && k.Code == KeyEnter:
		s.enter(true)
	case k.Alt:
		// unbound shortcut
	case k.Code == KeyTab:
		if s.cfg.TabFormat {
			s.CycleStyle()
		} else {
			s.typeRune('\t')
		}
	case k.Code == KeyEnter:
		s.enter(s.cfg.EnterFormat)
	case k.Code == KeyBackspace:
		s.checkpoint(LabelTyping)
		s.cur.DeletePreviousChar()
		s.refreshCompletion(0)
	case k.Code == KeyDelete:
		s.checkpoint(LabelTyping)
		s.cur.DeleteChar()
		s.hideCompletion()
	case k.Code == KeyEscape:
	case k.Code == KeyRune:
		s.typeRune(k.Rune)
	default:
		s.move(k.Code)
	}
}

// HandleKeys routes a sequence of key presses.
func (s *Session) HandleKeys(keys []Key) {
	for _, k := range keys {
		s.HandleKey(k)
	}
}

// Type feeds text as key presses. Line breaks press Enter and tabs Tab.
func (s *Session) Type(text string) {
	for _, r := range text {
		switch r {
		case '\n':
			s.HandleKey(Key{Code: KeyEnter})
		case '\t':
			s.HandleKey(Key{Code: KeyTab})
		case '\r':
		default:
			s.HandleKey(Key{Code: KeyRune, Rune: r})
		}
	}
}

func (s *Session) move(code KeyCode) {
	s.hideCompletion()
	switch code {
	case KeyLeft:
		s.cur.MoveLeft()
	case KeyRight:
		s.cur.MoveRight()
	case KeyUp:
		s.cur.MoveToPreviousParagraph()
	case KeyDown:
		s.cur.MoveToNextParagraph()
	case KeyHome:
		s.cur.MoveToParagraphStart()
	case KeyEnd:
		s.cur.MoveToParagraphEnd()
	}
}

func (s *Session) typeRune(r rune) {
	s.checkpoint(LabelTyping)
	s.cur.InsertText(string(r))
	s.refreshCompletion(r)
}

// enter ends the paragraph, either through the engine's continuation table
// or as a plain split, then captures a finished character cue.
func (s *Session) enter(reformat bool) {
	s.hideCompletion()
	if reformat {
		s.checkpoint(format.ChangeLabel)
		s.engine.AutoContinue(s.cur)
	} else {
		s.checkpoint(LabelTyping)
		s.cur.SplitParagraph()
	}
	s.captureCharacter()
}

// captureCharacter registers the paragraph above the cursor when the
// paragraph break left a Character line.
func (s *Session) captureCharacter() {
	if !s.cfg.AutoCaptureCharacters {
		return
	}
	if s.engine.Current() != style.Character && s.engine.Previous() != style.Character {
		return
	}
	i := s.cur.ParagraphIndex() - 1
	if i < 0 {
		return
	}
	name := strings.TrimSpace(s.doc.Paragraph(i).Text)
	if name == "" {
		return
	}
	if s.registry.Add(name) {
		s.log.Debug("character captured", slog.String("name", characters.Canonical(name)))
	}
}

// refreshCompletion updates the offered names after an edit. r is the typed
// rune, 0 after a deletion.
func (s *Session) refreshCompletion(r rune) {
	if s.engine.Current() != style.Character || (r != 0 && characters.EndsWord(r)) {
		s.hideCompletion()
		return
	}
	prefix := characters.PrefixAt(s.cur.ParagraphText(), s.cur.Position()-s.cur.ParagraphStart())
	matches := s.registry.Complete(prefix)
	if len(matches) == 0 {
		s.hideCompletion()
		return
	}
	s.prefix, s.matches = prefix, matches
	if s.completer != nil {
		s.completer.Show(prefix, matches)
	}
}

func (s *Session) hideCompletion() {
	if s.matches == nil {
		return
	}
	s.prefix, s.matches = "", nil
	if s.completer != nil {
		s.completer.Hide()
	}
}

// AcceptCompletion inserts the part of name that is still missing after the
// typed prefix. It reports false when name does not extend the prefix.
func (s *Session) AcceptCompletion(name string) bool {
	suffix := characters.Suffix(name, s.prefix)
	s.hideCompletion()
	if suffix == "" {
		return false
	}
	s.checkpoint(LabelTyping)
	s.cur.InsertText(suffix)
	return true
}

// sessionState is the undo snapshot of a session.
type sessionState struct {
	Paragraphs []domain.Paragraph `json:"paragraphs"`
	Position   int                `json:"position"`
	Anchor     int                `json:"anchor"`
	Current    style.Style        `json:"current"`
	Previous   style.Style        `json:"previous"`
}

func (s *Session) encode() ([]byte, error) {
	st := s.engine.State()
	return json.Marshal(sessionState{
		Paragraphs: s.doc.Export(nil),
		Position:   s.cur.Position(),
		Anchor:     s.cur.Anchor(),
		Current:    st.Current,
		Previous:   st.Previous,
	})
}

func (s *Session) restore(blob []byte) error {
	var st sessionState
	if err := json.Unmarshal(blob, &st); err != nil {
		return fmt.Errorf("decode undo snapshot: %w", err)
	}
	release := s.engine.Guard().Suspend()
	defer release()
	s.hideCompletion()
	s.doc.Restore(st.Paragraphs)
	s.cur.Select(st.Anchor, st.Position)
	s.engine.SetState(st.Current, st.Previous)
	return nil
}

// checkpoint records the state before an edit. Typing bursts coalesce in
// the history manager.
func (s *Session) checkpoint(label string) {
	blob, err := s.encode()
	if err != nil {
		s.log.Warn("undo snapshot failed", slog.String("label", label), slog.Any("err", err))
		return
	}
	s.history.PushSnapshot(undo.Snapshot{Doc: s.doc.ID(), Label: label, Blob: blob, TS: s.now()})
}

// Undo reverts the latest edit and returns its label.
func (s *Session) Undo() (string, bool) {
	return s.step(s.history.Undo, "undo")
}

// Redo reapplies the latest undone edit and returns its label.
func (s *Session) Redo() (string, bool) {
	return s.step(s.history.Redo, "redo")
}

func (s *Session) step(pop func(string, []byte) (undo.Snapshot, bool), op string) (string, bool) {
	cur, err := s.encode()
	if err != nil {
		s.log.Error(op+" failed", slog.Any("err", err))
		return "", false
	}
	snap, ok := pop(s.doc.ID(), cur)
	if !ok {
		return "", false
	}
	if err := s.restore(snap.Blob); err != nil {
		s.log.Error(op+" failed", slog.Any("err", err))
		return "", false
	}
	return snap.Label, true
}

// ToScreenplay exports the session for storage.
func (s *Session) ToScreenplay() domain.Screenplay {
	return domain.Screenplay{
		ID:            s.doc.ID(),
		FormatVersion: domain.FormatVersion,
		Title:         s.title,
		Author:        s.author,
		Characters:    s.registry.List(),
		Paragraphs:    s.doc.Export(s.engine.Detector().Classify),
	}
}
