/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

import (
	"fmt"
	"log/slog"

	applog "screenwriter/internal/log"
	"screenwriter/internal/style"
)

// ChangeLabel describes every reformat in the edit journal.
const ChangeLabel = "Changing preset format"

// Edit describes one completed reformat.
type Edit struct {
	Label        string
	Target       style.Style
	Previous     style.Style
	NewParagraph bool
	// FirstParagraph and LastParagraph are the inclusive paragraph span.
	FirstParagraph int
	LastParagraph  int
	DriftStart     int
	DriftEnd       int
}

// Journal is told about every reformat once it has been applied.
type Journal interface {
	Record(e Edit)
}

// Indicator reflects the active style, e.g. a checked toolbar entry.
type Indicator interface {
	StyleChanged(s style.Style)
}

// IndicatorFunc adapts a func to Indicator.
type IndicatorFunc func(style.Style)

func (f IndicatorFunc) StyleChanged(s style.Style) { f(s) }

// Options configures an Engine. Zero values are fine.
type Options struct {
	Indicator Indicator
	Journal   Journal
	Logger    *slog.Logger
}

// State is a copy of the engine's editor state.
type State struct {
	Current          style.Style
	Previous         style.Style
	DetectionEnabled bool
}

// Engine is the per-document style state machine. It is not safe for
// concurrent use; all calls are expected from one event loop.
type Engine struct {
	catalog  style.Catalog
	guard    *Guard
	detector *Detector

	current  style.Style
	previous style.Style

	indicator Indicator
	journal   Journal
	log       *slog.Logger
}

func NewEngine(catalog style.Catalog, opts Options) *Engine {
	g := &Guard{}
	e := &Engine{
		catalog:   catalog,
		guard:     g,
		detector:  NewDetector(catalog, g),
		indicator: opts.Indicator,
		journal:   opts.Journal,
		log:       opts.Logger,
	}
	if e.log == nil {
		e.log = applog.WithComponent("format")
	}
	return e
}

func (e *Engine) Catalog() style.Catalog { return e.catalog }

func (e *Engine) Guard() *Guard { return e.guard }

func (e *Engine) Detector() *Detector { return e.detector }

func (e *Engine) Current() style.Style { return e.current }

func (e *Engine) Previous() style.Style { return e.previous }

func (e *Engine) State() State {
	return State{Current: e.current, Previous: e.previous, DetectionEnabled: e.guard.Enabled()}
}

// SetState replaces current and previous style, e.g. after an undo restored
// an older document state. The indicator is notified.
func (e *Engine) SetState(current, previous style.Style) {
	e.current, e.previous = current, previous
	e.notify()
}

// Detect classifies the paragraph under c without touching the state.
func (e *Engine) Detect(c Cursor) style.Style { return e.detector.Detect(c) }

// Sync is the cursor-moved hook. A recognised style becomes the current one;
// NoStyle re-applies the current style to the paragraph. Nothing happens
// while a reformat is in progress.
func (e *Engine) Sync(c Cursor) style.Style {
	if !e.guard.Enabled() {
		return style.NoStyle
	}
	s := e.detector.Detect(c)
	if s == style.NoStyle {
		if !e.current.Valid() {
			return style.NoStyle
		}
		e.ChangeFormatTo(c, e.current, false)
		return e.current
	}
	if s != e.current {
		e.current = s
		e.notify()
	}
	return s
}

// Start sets the initial state of a freshly opened document: the detected
// style if there is one, Action otherwise.
func (e *Engine) Start(c Cursor) style.Style {
	if s := e.detector.Detect(c); s != style.NoStyle {
		e.current = s
		e.notify()
		return s
	}
	e.ChangeFormatTo(c, style.Action, false)
	return style.Action
}

// CycleStyle applies the style after the current one in catalog order.
func (e *Engine) CycleStyle(c Cursor) style.Style {
	next := e.current.Next()
	e.ChangeFormatTo(c, next, false)
	return next
}

// AutoContinue starts a new paragraph in the continuation style of the
// current one.
func (e *Engine) AutoContinue(c Cursor) style.Style {
	next := e.current.Continuation()
	e.ChangeFormatTo(c, next, true)
	return next
}

// ChangeFormatTo applies target to every paragraph touched by the selection
// of c, optionally after starting a new paragraph at the cursor. Decorations
// of the style being left are removed and those of target added; the
// selection is restored to the same logical text. It panics if target is not
// a catalog style.
func (e *Engine) ChangeFormatTo(c Cursor, target style.Style, newParagraph bool) {
	attrs := e.catalog.Of(target)

	release := e.guard.Suspend()
	defer release()

	if newParagraph {
		c.InsertParagraph(attrs.Block, attrs.Char)
	}

	start, end := c.SelectionStart(), c.SelectionEnd()
	point := start == end
	tr := NewOffsetTracker(start, end)

	c.SetPosition(end)
	last := c.ParagraphIndex()
	c.SetPosition(start)
	first := c.ParagraphIndex()
	emptyPoint := point && c.ParagraphText() == ""

	for i := first; i <= last; i++ {
		if got := c.ParagraphIndex(); got != i {
			panic(fmt.Sprintf("format: expected paragraph %d, cursor is in %d", i, got))
		}
		e.apply(c, target, attrs, tr)
		if i < last && !c.MoveToNextParagraph() {
			panic(fmt.Sprintf("format: paragraph %d of span %d..%d does not exist", i+1, first, last))
		}
	}

	if point {
		pos := tr.CorrectedStart()
		if emptyPoint && target == style.Parenthetical {
			pos++
		}
		c.SetPosition(pos)
	} else {
		c.Select(tr.CorrectedStart(), tr.CorrectedEnd())
	}

	prev := e.current
	e.previous, e.current = e.current, target
	e.log.Debug("reformat",
		slog.String("op", "change_format"),
		slog.String("target", target.String()),
		slog.Int("first", first),
		slog.Int("last", last),
		slog.Int("drift_start", tr.DriftStart()),
		slog.Int("drift_end", tr.DriftEnd()),
	)
	if e.journal != nil {
		e.journal.Record(Edit{
			Label:          ChangeLabel,
			Target:         target,
			Previous:       prev,
			NewParagraph:   newParagraph,
			FirstParagraph: first,
			LastParagraph:  last,
			DriftStart:     tr.DriftStart(),
			DriftEnd:       tr.DriftEnd(),
		})
	}
	e.notify()
}

// apply rewrites the paragraph under c and leaves c at its start.
func (e *Engine) apply(c Cursor, target style.Style, attrs style.Attributes, tr *OffsetTracker) {
	c.SetPosition(c.ParagraphStart())

	from := e.detector.Classify(c.CharFormat())
	if from == style.NoStyle {
		from = e.current
	}
	if from == style.Parenthetical && target != style.Parenthetical {
		WrapParentheses(c, false, tr)
	}
	if from == style.Transition && target != style.Transition {
		ColonSuffix(c, false, tr)
	}

	text := c.ParagraphText()
	if text == "" {
		c.SetBlockCharFormat(attrs.Char)
	} else if target == style.Action || target == style.Dialogue {
		if capped := Capitalize(text); capped != text {
			c.ReplaceParagraphText(capped)
		}
	}

	c.SetParagraphCharFormat(attrs.Char)
	c.SetBlockFormat(attrs.Block)

	switch target {
	case style.Parenthetical:
		WrapParentheses(c, true, tr)
	case style.Transition:
		ColonSuffix(c, true, tr)
	}
	c.SetPosition(c.ParagraphStart())
}

func (e *Engine) notify() {
	if e.indicator != nil {
		e.indicator.StyleChanged(e.current)
	}
}
