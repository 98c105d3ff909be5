/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document is an in-memory rich-text document: a list of paragraphs,
// each with a uniform paragraph format and per-character formatting, addressed
// by a linear offset. A paragraph break occupies one offset, so a document
// with paragraphs "ab" and "c" has offsets 0..4 and the break sits at 2.
package document

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"screenwriter/internal/style"
)

type paragraph struct {
	text   []rune
	fmts   []style.CharFormat // one per rune
	format style.CharFormat   // used for insertion into an empty paragraph
	block  style.BlockFormat
}

// Document holds the paragraphs. It is not safe for concurrent use; the
// editor drives it from a single event loop.
type Document struct {
	id     string
	paras  []*paragraph
	starts []int
	stale  bool
}

// New returns a document with a single empty, unformatted paragraph.
func New() *Document {
	return &Document{id: uuid.NewString(), paras: []*paragraph{{}}, stale: true}
}

// FromText builds an unformatted document, one paragraph per line.
func FromText(text string) *Document {
	d := New()
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	d.paras = d.paras[:0]
	for _, l := range lines {
		r := []rune(l)
		d.paras = append(d.paras, &paragraph{text: r, fmts: make([]style.CharFormat, len(r))})
	}
	return d
}

// ID identifies the document across undo snapshots and storage.
func (d *Document) ID() string { return d.id }

// SetID replaces the identity, used when loading a stored script.
func (d *Document) SetID(id string) {
	if strings.TrimSpace(id) != "" {
		d.id = id
	}
}

// ParagraphCount returns the number of paragraphs (at least one).
func (d *Document) ParagraphCount() int { return len(d.paras) }

// Len returns the largest valid cursor offset.
func (d *Document) Len() int {
	n := len(d.paras) - 1
	for _, p := range d.paras {
		n += len(p.text)
	}
	return n
}

// Text returns the plain text with paragraphs joined by newlines.
func (d *Document) Text() string {
	parts := make([]string, len(d.paras))
	for i, p := range d.paras {
		parts[i] = string(p.text)
	}
	return strings.Join(parts, "\n")
}

// ParagraphView is a read-only copy of one paragraph.
type ParagraphView struct {
	Index  int
	Start  int
	Text   string
	Format style.CharFormat
	Block  style.BlockFormat
	Runs   []Run
}

// Run is a stretch of text with one character format.
type Run struct {
	Text   string
	Format style.CharFormat
}

// Paragraph returns a view of paragraph i. It panics when i is out of range.
func (d *Document) Paragraph(i int) ParagraphView {
	d.checkIndex(i)
	p := d.paras[i]
	return ParagraphView{
		Index:  i,
		Start:  d.offsets()[i],
		Text:   string(p.text),
		Format: p.format,
		Block:  p.block,
		Runs:   runsOf(p),
	}
}

// ParagraphAt returns the index of the paragraph containing pos.
func (d *Document) ParagraphAt(pos int) int {
	i, _ := d.locate(pos)
	return i
}

// CharFormatAt returns the effective character format at pos: the format of
// the character before pos, the first character when pos starts a non-empty
// paragraph, or the paragraph's empty-run format.
func (d *Document) CharFormatAt(pos int) style.CharFormat {
	i, off := d.locate(pos)
	p := d.paras[i]
	switch {
	case off > 0:
		return p.fmts[off-1]
	case len(p.fmts) > 0:
		return p.fmts[0]
	default:
		return p.format
	}
}

// MergeCharFormat rewrites the character format of every character in
// [start, end) through fn. Paragraph breaks inside the range are skipped.
func (d *Document) MergeCharFormat(start, end int, fn func(style.CharFormat) style.CharFormat) {
	if end < start {
		start, end = end, start
	}
	for pos := start; pos < end; pos++ {
		i, off := d.locate(pos)
		p := d.paras[i]
		if off < len(p.fmts) {
			p.fmts[off] = fn(p.fmts[off])
		}
	}
	d.touch()
}

func (d *Document) touch() {
	d.stale = true
}

func (d *Document) offsets() []int {
	if !d.stale && len(d.starts) == len(d.paras) {
		return d.starts
	}
	if cap(d.starts) < len(d.paras) {
		d.starts = make([]int, len(d.paras))
	}
	d.starts = d.starts[:len(d.paras)]
	pos := 0
	for i, p := range d.paras {
		d.starts[i] = pos
		pos += len(p.text) + 1
	}
	d.stale = false
	return d.starts
}

// locate maps an offset to (paragraph index, offset within paragraph).
func (d *Document) locate(pos int) (int, int) {
	if pos < 0 || pos > d.Len() {
		panic(fmt.Sprintf("document: offset %d outside [0,%d]", pos, d.Len()))
	}
	starts := d.offsets()
	i := sort.Search(len(starts), func(k int) bool { return starts[k] > pos }) - 1
	return i, pos - starts[i]
}

func (d *Document) checkIndex(i int) {
	if i < 0 || i >= len(d.paras) {
		panic(fmt.Sprintf("document: paragraph %d outside [0,%d)", i, len(d.paras)))
	}
}

func (d *Document) insertText(pos int, s string, f style.CharFormat) int {
	i, off := d.locate(pos)
	p := d.paras[i]
	r := []rune(s)
	fs := make([]style.CharFormat, len(r))
	for k := range fs {
		fs[k] = f
	}
	p.text = append(p.text[:off], append(r, p.text[off:]...)...)
	p.fmts = append(p.fmts[:off], append(fs, p.fmts[off:]...)...)
	d.touch()
	return len(r)
}

// deleteAt removes the character at pos, or joins the next paragraph when pos
// is a paragraph break. It reports false at the end of the document.
func (d *Document) deleteAt(pos int) bool {
	i, off := d.locate(pos)
	p := d.paras[i]
	if off < len(p.text) {
		p.text = append(p.text[:off], p.text[off+1:]...)
		p.fmts = append(p.fmts[:off], p.fmts[off+1:]...)
		d.touch()
		return true
	}
	if i == len(d.paras)-1 {
		return false
	}
	next := d.paras[i+1]
	p.text = append(p.text, next.text...)
	p.fmts = append(p.fmts, next.fmts...)
	d.paras = append(d.paras[:i+1], d.paras[i+2:]...)
	d.touch()
	return true
}

func (d *Document) split(pos int, block style.BlockFormat, f style.CharFormat) {
	i, off := d.locate(pos)
	p := d.paras[i]
	np := &paragraph{
		text:   append([]rune(nil), p.text[off:]...),
		fmts:   append([]style.CharFormat(nil), p.fmts[off:]...),
		format: f,
		block:  block,
	}
	p.text = p.text[:off]
	p.fmts = p.fmts[:off]
	d.paras = append(d.paras[:i+1], append([]*paragraph{np}, d.paras[i+1:]...)...)
	d.touch()
}

func runsOf(p *paragraph) []Run {
	var out []Run
	for k, r := range p.text {
		f := p.fmts[k]
		if n := len(out); n > 0 && out[n-1].Format == f {
			out[n-1].Text += string(r)
			continue
		}
		out = append(out, Run{Text: string(r), Format: f})
	}
	return out
}
