/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

import "screenwriter/internal/style"

// CharacterSource lists known character names in display order.
type CharacterSource interface {
	List() []string
}

type HeaderOptions struct {
	Title  string
	Author string

	IncludeTitle      bool
	IncludeAuthor     bool
	IncludeCharacters bool
}

// HeaderGenerator writes a title page preamble at the start of a document.
type HeaderGenerator struct {
	engine *Engine
	names  CharacterSource
}

func NewHeaderGenerator(engine *Engine, names CharacterSource) *HeaderGenerator {
	return &HeaderGenerator{engine: engine, names: names}
}

// InsertHeader opens two blank paragraphs at the document start and writes
// the preamble above them: the title as Heading, "By <author>" as
// Parenthetical, then "Character list:" as Dialogue followed by one Character
// paragraph per name. The character list is skipped when there are no names.
// The cursor ends on the last written line.
func (h *HeaderGenerator) InsertHeader(c Cursor, opts HeaderOptions) {
	c.SetPosition(0)
	block, char := c.BlockFormat(), c.CharFormat()
	c.InsertParagraph(block, char)
	c.InsertParagraph(block, char)

	var names []string
	if opts.IncludeCharacters && h.names != nil {
		names = h.names.List()
	}

	first := true
	line := func(s style.Style, text string) {
		if first {
			// the blanks stay below the preamble
			c.SetPosition(0)
			c.InsertParagraph(block, char)
			c.SetPosition(0)
		}
		h.engine.ChangeFormatTo(c, s, !first)
		first = false
		c.ReplaceParagraphText(text)
		c.SetPosition(c.ParagraphEnd())
	}

	if opts.IncludeTitle {
		line(style.Heading, opts.Title)
	}
	if opts.IncludeAuthor {
		line(style.Parenthetical, "By "+opts.Author)
	}
	if len(names) > 0 {
		if !first {
			line(style.Dialogue, "")
		}
		line(style.Dialogue, "Character list:")
		for _, n := range names {
			line(style.Character, n)
		}
	}
}
