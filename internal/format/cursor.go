/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package format classifies screenplay paragraphs and reformats them while
// keeping the user's selection in place.
package format

import "screenwriter/internal/style"

// Cursor is the document cursor the engine works through. Offsets are
// absolute text offsets where a paragraph break counts as one position.
// Implementations panic on offsets outside the document.
type Cursor interface {
	Position() int
	SelectionStart() int
	SelectionEnd() int
	SetPosition(pos int)
	Select(anchor, pos int)

	ParagraphIndex() int
	ParagraphText() string
	ParagraphStart() int
	ParagraphEnd() int
	MoveToNextParagraph() bool

	CharFormat() style.CharFormat
	BlockFormat() style.BlockFormat
	SetParagraphCharFormat(f style.CharFormat)
	SetBlockCharFormat(f style.CharFormat)
	SetBlockFormat(b style.BlockFormat)

	InsertText(s string)
	DeleteChar()
	InsertParagraph(b style.BlockFormat, f style.CharFormat)
	ReplaceParagraphText(s string)
}

// Guard suppresses detection while the engine mutates the document.
// Suspensions nest; detection is enabled again once every release has run.
type Guard struct {
	depth int
}

// Enabled reports whether detection may act.
func (g *Guard) Enabled() bool { return g.depth == 0 }

// Suspend disables detection until the returned release func is called.
// Calling release more than once has no further effect.
func (g *Guard) Suspend() (release func()) {
	g.depth++
	done := false
	return func() {
		if done {
			return
		}
		done = true
		g.depth--
	}
}
