/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"fmt"

	"screenwriter/internal/style"
)

// Cursor is an editing position with an optional selection anchor. Every
// change of position is reported to the OnMove callback, mirroring the
// cursor-moved notification of a rich-text widget.
type Cursor struct {
	doc    *Document
	pos    int
	anchor int
	onMove func(*Cursor)
}

// NewCursor returns a cursor at offset 0.
func (d *Document) NewCursor() *Cursor { return &Cursor{doc: d} }

// Document returns the document the cursor edits.
func (c *Cursor) Document() *Document { return c.doc }

// OnMove registers the position-change callback (nil clears it).
func (c *Cursor) OnMove(fn func(*Cursor)) { c.onMove = fn }

func (c *Cursor) place(anchor, pos int) {
	n := c.doc.Len()
	if pos < 0 || pos > n || anchor < 0 || anchor > n {
		panic(fmt.Sprintf("cursor: selection (%d,%d) outside [0,%d]", anchor, pos, n))
	}
	old := c.pos
	c.anchor, c.pos = anchor, pos
	if c.onMove != nil && old != pos {
		c.onMove(c)
	}
}

// Position returns the cursor offset.
func (c *Cursor) Position() int { return c.pos }

// Anchor returns the selection anchor; equal to Position without selection.
func (c *Cursor) Anchor() int { return c.anchor }

// HasSelection reports whether anchor and position differ.
func (c *Cursor) HasSelection() bool { return c.pos != c.anchor }

// SelectionStart returns the lower selection bound.
func (c *Cursor) SelectionStart() int { return min(c.pos, c.anchor) }

// SelectionEnd returns the upper selection bound.
func (c *Cursor) SelectionEnd() int { return max(c.pos, c.anchor) }

// SetPosition moves the cursor and clears the selection.
func (c *Cursor) SetPosition(pos int) { c.place(pos, pos) }

// Select sets the anchor and moves the position, keeping the anchor.
func (c *Cursor) Select(anchor, pos int) { c.place(anchor, pos) }

// SelectedText returns the selected text; breaks are returned as "\n".
func (c *Cursor) SelectedText() string {
	s, e := c.SelectionStart(), c.SelectionEnd()
	if s == e {
		return ""
	}
	return string([]rune(c.doc.Text())[s:e])
}

// ParagraphIndex returns the index of the paragraph holding the position.
func (c *Cursor) ParagraphIndex() int { return c.doc.ParagraphAt(c.pos) }

// ParagraphText returns the text of the paragraph holding the position.
func (c *Cursor) ParagraphText() string {
	i, _ := c.doc.locate(c.pos)
	return string(c.doc.paras[i].text)
}

// ParagraphStart returns the offset of the first character of the paragraph.
func (c *Cursor) ParagraphStart() int {
	i, _ := c.doc.locate(c.pos)
	return c.doc.offsets()[i]
}

// ParagraphEnd returns the offset just past the last character of the paragraph.
func (c *Cursor) ParagraphEnd() int {
	i, _ := c.doc.locate(c.pos)
	return c.doc.offsets()[i] + len(c.doc.paras[i].text)
}

// MoveToParagraphStart moves to the start of the current paragraph.
func (c *Cursor) MoveToParagraphStart() { c.SetPosition(c.ParagraphStart()) }

// MoveToParagraphEnd moves to the end of the current paragraph.
func (c *Cursor) MoveToParagraphEnd() { c.SetPosition(c.ParagraphEnd()) }

// MoveToNextParagraph moves to the start of the next paragraph; false at the last one.
func (c *Cursor) MoveToNextParagraph() bool {
	i := c.ParagraphIndex()
	if i+1 >= c.doc.ParagraphCount() {
		return false
	}
	c.SetPosition(c.doc.offsets()[i+1])
	return true
}

// MoveToPreviousParagraph moves to the start of the previous paragraph; false at the first one.
func (c *Cursor) MoveToPreviousParagraph() bool {
	i := c.ParagraphIndex()
	if i == 0 {
		return false
	}
	c.SetPosition(c.doc.offsets()[i-1])
	return true
}

// MoveLeft moves one offset left; false at the document start.
func (c *Cursor) MoveLeft() bool {
	if c.pos == 0 {
		return false
	}
	c.SetPosition(c.pos - 1)
	return true
}

// MoveRight moves one offset right; false at the document end.
func (c *Cursor) MoveRight() bool {
	if c.pos == c.doc.Len() {
		return false
	}
	c.SetPosition(c.pos + 1)
	return true
}

// CharFormat returns the effective character format at the position.
func (c *Cursor) CharFormat() style.CharFormat { return c.doc.CharFormatAt(c.pos) }

// BlockFormat returns the paragraph format of the current paragraph.
func (c *Cursor) BlockFormat() style.BlockFormat {
	i, _ := c.doc.locate(c.pos)
	return c.doc.paras[i].block
}

// SetParagraphCharFormat applies f to every character of the current
// paragraph and to its empty-run format.
func (c *Cursor) SetParagraphCharFormat(f style.CharFormat) {
	i, _ := c.doc.locate(c.pos)
	p := c.doc.paras[i]
	for k := range p.fmts {
		p.fmts[k] = f
	}
	p.format = f
	c.doc.touch()
}

// SetBlockCharFormat sets only the empty-run format of the current paragraph,
// which is what text typed into an empty paragraph inherits.
func (c *Cursor) SetBlockCharFormat(f style.CharFormat) {
	i, _ := c.doc.locate(c.pos)
	c.doc.paras[i].format = f
	c.doc.touch()
}

// SetBlockFormat sets the paragraph format of the current paragraph.
func (c *Cursor) SetBlockFormat(b style.BlockFormat) {
	i, _ := c.doc.locate(c.pos)
	c.doc.paras[i].block = b
	c.doc.touch()
}

// RemoveSelectedText deletes the selection and collapses the cursor.
func (c *Cursor) RemoveSelectedText() {
	s, e := c.SelectionStart(), c.SelectionEnd()
	for k := s; k < e; k++ {
		c.doc.deleteAt(s)
	}
	c.place(s, s)
}

// InsertText replaces the selection (if any) with s, formatted with the
// character format effective at the insertion point.
func (c *Cursor) InsertText(s string) {
	if c.HasSelection() {
		c.RemoveSelectedText()
	}
	if s == "" {
		return
	}
	f := c.CharFormat()
	n := c.doc.insertText(c.pos, s, f)
	c.SetPosition(c.pos + n)
}

// DeleteChar removes the selection, or the character after the position.
func (c *Cursor) DeleteChar() {
	if c.HasSelection() {
		c.RemoveSelectedText()
		return
	}
	c.doc.deleteAt(c.pos)
}

// DeletePreviousChar removes the selection, or the character before the position.
func (c *Cursor) DeletePreviousChar() {
	if c.HasSelection() {
		c.RemoveSelectedText()
		return
	}
	if c.pos == 0 {
		return
	}
	c.doc.deleteAt(c.pos - 1)
	c.SetPosition(c.pos - 1)
}

// InsertParagraph splits the paragraph at the position. The new paragraph
// takes the given formats and the cursor moves to its start.
func (c *Cursor) InsertParagraph(b style.BlockFormat, f style.CharFormat) {
	if c.HasSelection() {
		c.RemoveSelectedText()
	}
	c.doc.split(c.pos, b, f)
	c.SetPosition(c.pos + 1)
}

// SplitParagraph splits the paragraph keeping the current formats.
func (c *Cursor) SplitParagraph() {
	c.InsertParagraph(c.BlockFormat(), c.CharFormat())
}

// ReplaceParagraphText replaces the whole text of the current paragraph with
// s in a single run of the paragraph's leading format. Inline formatting
// inside the paragraph is lost. The cursor keeps its offset within the
// paragraph, clamped to the new length.
func (c *Cursor) ReplaceParagraphText(s string) {
	i, off := c.doc.locate(c.pos)
	p := c.doc.paras[i]
	f := p.format
	if len(p.fmts) > 0 {
		f = p.fmts[0]
	}
	r := []rune(s)
	p.text = r
	p.fmts = make([]style.CharFormat, len(r))
	for k := range p.fmts {
		p.fmts[k] = f
	}
	c.doc.touch()
	c.SetPosition(c.doc.offsets()[i] + min(off, len(r)))
}
