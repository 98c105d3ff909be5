/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

import (
	"testing"

	"github.com/stretchr/testify/require"

	"screenwriter/internal/document"
	applog "screenwriter/internal/log"
	"screenwriter/internal/style"
)

type journal struct{ edits []Edit }

func (j *journal) Record(e Edit) { j.edits = append(j.edits, e) }

type nameList []string

func (n nameList) List() []string { return n }

func newEngine(opts Options) *Engine {
	opts.Logger = applog.Discard()
	return NewEngine(style.DefaultCatalog(), opts)
}

func styleOf(t *testing.T, e *Engine, d *document.Document, i int) style.Style {
	t.Helper()
	return e.Catalog().Match(d.Paragraph(i).Format)
}

func TestEveryStyleRoundTripsThroughDetection(t *testing.T) {
	for _, s := range style.All() {
		e := newEngine(Options{})
		c := document.New().NewCursor()
		e.ChangeFormatTo(c, s, false)
		require.Equal(t, s, e.Detect(c), "style %v", s)
		require.Equal(t, e.Catalog().Of(s).Block, c.BlockFormat())
	}
}

func TestChangeFormatToPanicsOnNoStyle(t *testing.T) {
	e := newEngine(Options{})
	c := document.New().NewCursor()
	require.Panics(t, func() { e.ChangeFormatTo(c, style.NoStyle, false) })
	require.True(t, e.Guard().Enabled(), "guard must be released after a panic")
}

func TestDetectIsSilentWhileSuspended(t *testing.T) {
	e := newEngine(Options{})
	c := document.New().NewCursor()
	e.ChangeFormatTo(c, style.Heading, false)
	release := e.Guard().Suspend()
	require.Equal(t, style.NoStyle, e.Detect(c))
	require.Equal(t, style.NoStyle, e.Sync(c))
	release()
	require.Equal(t, style.Heading, e.Detect(c))
}

func TestCycleReturnsToStartAfterSixSteps(t *testing.T) {
	for _, start := range style.All() {
		e := newEngine(Options{})
		c := document.FromText("Hello there").NewCursor()
		e.ChangeFormatTo(c, start, false)
		before := c.Document().Text()
		for i := 0; i < 6; i++ {
			e.CycleStyle(c)
		}
		require.Equal(t, start, e.Current())
		require.Equal(t, start, e.Detect(c))
		require.Equal(t, before, c.Document().Text(), "start %v", start)
	}
}

func TestCycleDecoratesAlongTheWay(t *testing.T) {
	e := newEngine(Options{})
	c := document.FromText("hello").NewCursor()
	e.ChangeFormatTo(c, style.Action, false)
	want := []string{"Hello", "Hello", "(Hello)", "Hello", "Hello:", "Hello"}
	for i, w := range want {
		e.CycleStyle(c)
		require.Equal(t, w, c.Document().Text(), "step %d (%v)", i, e.Current())
	}
}

func TestParentheticalWrapAndUnwrap(t *testing.T) {
	e := newEngine(Options{})
	c := document.FromText("whispering").NewCursor()
	e.ChangeFormatTo(c, style.Parenthetical, false)
	require.Equal(t, "(whispering)", c.Document().Text())

	e.ChangeFormatTo(c, style.Character, false)
	require.Equal(t, "whispering", c.Document().Text())

	e.ChangeFormatTo(c, style.Parenthetical, false)
	e.ChangeFormatTo(c, style.Action, false)
	require.Equal(t, "Whispering", c.Document().Text())
}

func TestPointSelectionIsPreserved(t *testing.T) {
	e := newEngine(Options{})
	c := document.FromText("Some action text").NewCursor()
	c.SetPosition(5)
	for _, s := range []style.Style{style.Character, style.Heading, style.Transition, style.Dialogue, style.Action} {
		e.ChangeFormatTo(c, s, false)
		require.Equal(t, 5, c.Position(), "after %v", s)
	}
	require.Equal(t, "Some action text", c.Document().Text())
}

func TestPointSelectionFollowsDecorationDrift(t *testing.T) {
	e := newEngine(Options{})
	c := document.FromText("whispering").NewCursor()
	c.SetPosition(4)
	e.ChangeFormatTo(c, style.Parenthetical, false)
	require.Equal(t, "(whispering)", c.Document().Text())
	require.Equal(t, 5, c.Position())

	e.ChangeFormatTo(c, style.Dialogue, false)
	require.Equal(t, 4, c.Position())
}

func TestEmptyParentheticalPlacesCursorInside(t *testing.T) {
	e := newEngine(Options{})
	c := document.FromText("ALEX").NewCursor()
	c.SetPosition(4)
	e.ChangeFormatTo(c, style.Character, false)
	e.ChangeFormatTo(c, style.Parenthetical, true)
	require.Equal(t, "ALEX\n()", c.Document().Text())
	require.Equal(t, 6, c.Position())
	require.Equal(t, style.Character, styleOf(t, e, c.Document(), 0))
}

func TestRangeSelectionSpansParagraphs(t *testing.T) {
	e := newEngine(Options{})
	d := document.FromText("one\ntwo\nthree")
	c := d.NewCursor()
	c.Select(1, 9)
	e.ChangeFormatTo(c, style.Parenthetical, false)

	require.Equal(t, "(one)\n(two)\n(three)", d.Text())
	require.Equal(t, 2, c.SelectionStart())
	require.Equal(t, 14, c.SelectionEnd())
	for i := 0; i < 3; i++ {
		require.Equal(t, style.Parenthetical, styleOf(t, e, d, i))
	}

	e.ChangeFormatTo(c, style.Transition, false)
	require.Equal(t, "one:\ntwo:\nthree:", d.Text())
	require.Equal(t, 1, c.SelectionStart())
	require.Equal(t, 11, c.SelectionEnd())
}

func TestAutoContinueCharacterToDialogue(t *testing.T) {
	j := &journal{}
	var seen []style.Style
	e := newEngine(Options{Journal: j, Indicator: IndicatorFunc(func(s style.Style) { seen = append(seen, s) })})
	c := document.FromText("ALEX").NewCursor()
	c.SetPosition(4)
	e.ChangeFormatTo(c, style.Character, false)

	got := e.AutoContinue(c)
	require.Equal(t, style.Dialogue, got)
	require.Equal(t, 2, c.Document().ParagraphCount())
	require.Equal(t, 1, c.ParagraphIndex())
	require.Equal(t, style.Dialogue, e.Detect(c))
	require.Equal(t, State{Current: style.Dialogue, Previous: style.Character, DetectionEnabled: true}, e.State())

	require.Len(t, j.edits, 2)
	require.Equal(t, ChangeLabel, j.edits[1].Label)
	require.True(t, j.edits[1].NewParagraph)
	require.Equal(t, style.Character, j.edits[1].Previous)
	require.Equal(t, []style.Style{style.Character, style.Dialogue}, seen)
}

func TestContinuationTable(t *testing.T) {
	want := map[style.Style]style.Style{
		style.Action:        style.Action,
		style.Character:     style.Dialogue,
		style.Dialogue:      style.Action,
		style.Parenthetical: style.Dialogue,
		style.Heading:       style.Action,
		style.Transition:    style.Action,
	}
	for from, to := range want {
		e := newEngine(Options{})
		c := document.New().NewCursor()
		e.ChangeFormatTo(c, from, false)
		require.Equal(t, to, e.AutoContinue(c), "from %v", from)
		require.Equal(t, to, e.Detect(c))
	}
}

func TestSyncReassertsCurrentOnUnknownFormat(t *testing.T) {
	e := newEngine(Options{})
	d := document.FromText("INT. HOUSE\nplain text")
	c := d.NewCursor()
	e.ChangeFormatTo(c, style.Heading, false)

	c.SetPosition(12)
	require.Equal(t, style.Heading, e.Sync(c))
	require.Equal(t, style.Heading, styleOf(t, e, d, 1))
	require.Equal(t, 12, c.Position())

	c.SetPosition(0)
	require.Equal(t, style.Heading, e.Sync(c))
}

func TestSyncAdoptsDetectedStyle(t *testing.T) {
	e := newEngine(Options{})
	d := document.FromText("ALEX\nHello")
	c := d.NewCursor()
	e.ChangeFormatTo(c, style.Character, false)
	c.SetPosition(6)
	e.ChangeFormatTo(c, style.Dialogue, false)

	c.SetPosition(1)
	require.Equal(t, style.Character, e.Sync(c))
	require.Equal(t, style.Character, e.Current())
	require.Equal(t, style.Character, e.Previous())
}

func TestStartFormatsUnknownParagraphAsAction(t *testing.T) {
	e := newEngine(Options{})
	d := document.FromText("once upon a time")
	c := d.NewCursor()
	require.Equal(t, style.Action, e.Start(c))
	require.Equal(t, "Once upon a time", d.Text())
	require.Equal(t, style.Action, e.Detect(c))

	e2 := newEngine(Options{})
	require.Equal(t, style.Action, e2.Start(c))
	require.Equal(t, style.Action, e2.Current())
	require.Equal(t, style.NoStyle, e2.Previous())
}

func TestInsertHeaderOrder(t *testing.T) {
	e := newEngine(Options{})
	d := document.FromText("FADE IN")
	c := d.NewCursor()
	h := NewHeaderGenerator(e, nameList{"ALEX", "BETH"})
	h.InsertHeader(c, HeaderOptions{Title: "My Play", Author: "Jane", IncludeTitle: true, IncludeAuthor: true, IncludeCharacters: true})

	type line struct {
		text string
		s    style.Style
	}
	var got []line
	for i := 0; i < d.ParagraphCount(); i++ {
		p := d.Paragraph(i)
		if p.Text == "" {
			continue
		}
		got = append(got, line{p.Text, styleOf(t, e, d, i)})
	}
	require.Equal(t, []line{
		{"My Play", style.Heading},
		{"By Jane", style.Parenthetical},
		{"Character list:", style.Dialogue},
		{"ALEX", style.Character},
		{"BETH", style.Character},
		{"FADE IN", style.NoStyle},
	}, got)
	n := d.ParagraphCount()
	require.Equal(t, "FADE IN", d.Paragraph(n-1).Text)
	require.Equal(t, "", d.Paragraph(n-2).Text)
	require.Equal(t, "", d.Paragraph(n-3).Text)
	require.Equal(t, "BETH", d.Paragraph(n-4).Text)
	require.True(t, e.Guard().Enabled())
}

func TestInsertHeaderWithNothingSelected(t *testing.T) {
	e := newEngine(Options{})
	d := document.FromText("FADE IN")
	NewHeaderGenerator(e, nameList{"ALEX"}).InsertHeader(d.NewCursor(), HeaderOptions{})
	require.Equal(t, "\n\nFADE IN", d.Text())
}

func TestInsertHeaderWithoutCharacters(t *testing.T) {
	e := newEngine(Options{})
	d := document.New()
	c := d.NewCursor()
	NewHeaderGenerator(e, nameList{}).InsertHeader(c, HeaderOptions{Title: "T", IncludeTitle: true, IncludeCharacters: true})
	require.Equal(t, "T\n\n\n", d.Text())
	require.Equal(t, style.Heading, styleOf(t, e, d, 0))
}
