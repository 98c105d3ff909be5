/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"strings"

	"screenwriter/internal/style"
)

// Script is a plain-text screenplay split into styled blocks.
// Inspired by Fountain/Markdown-like conventions: the importer guesses a
// style per line so that the editor can apply the catalog formats.
type Script struct {
	Title  string
	Author string
	Blocks []Block
	Notes  []Note
}

// Block is one future paragraph. Text never contains a line break;
// continuation lines are joined with a single space.
type Block struct {
	Style  style.Style
	Text   string
	LineNo int // 1-based starting line number in the source
}

// Note is an author note (a line starting with ";"). Notes are not imported
// as paragraphs.
type Note struct {
	Text   string
	LineNo int
}

// Error represents a parse error with position context.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
}

// Speakers returns the names of all Character blocks, uppercased, without
// duplicates and in order of first appearance.
func (s Script) Speakers() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, b := range s.Blocks {
		if b.Style != style.Character {
			continue
		}
		name := strings.ToUpper(strings.TrimSpace(b.Text))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
