/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

import (
	"strings"
	"unicode"
)

// Recorder receives every decoration edit before it is applied.
type Recorder interface {
	RecordEdit(offset, delta int)
}

type nopRecorder struct{}

func (nopRecorder) RecordEdit(int, int) {}

// Parenthesized reports whether the trimmed text starts with "(" and ends
// with ")".
func Parenthesized(text string) bool {
	t := strings.TrimSpace(text)
	return len(t) >= 2 && strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")")
}

// ColonTerminated reports whether the trimmed text ends with ":".
func ColonTerminated(text string) bool {
	return strings.HasSuffix(strings.TrimSpace(text), ":")
}

// WrapParentheses makes the paragraph under c parenthesized (present) or not.
// Insertion puts "(" at the paragraph start and ")" at its end; removal deletes
// the outermost brackets of the trimmed text. It reports whether the text
// changed and leaves c at the paragraph start.
func WrapParentheses(c Cursor, present bool, rec Recorder) bool {
	if rec == nil {
		rec = nopRecorder{}
	}
	text := c.ParagraphText()
	has := Parenthesized(text)
	start := c.ParagraphStart()
	defer c.SetPosition(start)

	switch {
	case present && !has:
		c.SetPosition(start)
		rec.RecordEdit(start, 1)
		c.InsertText("(")
		end := c.ParagraphEnd()
		c.SetPosition(end)
		rec.RecordEdit(end, 1)
		c.InsertText(")")
		return true
	case !present && has:
		r := []rune(text)
		open := leadingSpace(r)
		closing := len(r) - 1 - trailingSpace(r)
		// recorded front to back, each offset after the previous edit;
		// deleted back to front
		rec.RecordEdit(start+open, -1)
		rec.RecordEdit(start+closing-1, -1)
		c.SetPosition(start + closing)
		c.DeleteChar()
		c.SetPosition(start + open)
		c.DeleteChar()
		return true
	}
	return false
}

// ColonSuffix adds a trailing ":" to the paragraph under c (present) or
// removes the last one. It reports whether the text changed and leaves c at
// the paragraph start.
func ColonSuffix(c Cursor, present bool, rec Recorder) bool {
	if rec == nil {
		rec = nopRecorder{}
	}
	text := c.ParagraphText()
	has := ColonTerminated(text)
	start := c.ParagraphStart()
	defer c.SetPosition(start)

	switch {
	case present && !has:
		end := c.ParagraphEnd()
		c.SetPosition(end)
		rec.RecordEdit(end, 1)
		c.InsertText(":")
		return true
	case !present && has:
		r := []rune(text)
		colon := start + len(r) - 1 - trailingSpace(r)
		rec.RecordEdit(colon, -1)
		c.SetPosition(colon)
		c.DeleteChar()
		return true
	}
	return false
}

func leadingSpace(r []rune) int {
	n := 0
	for n < len(r) && unicode.IsSpace(r[n]) {
		n++
	}
	return n
}

func trailingSpace(r []rune) int {
	n := 0
	for n < len(r) && unicode.IsSpace(r[len(r)-1-n]) {
		n++
	}
	return n
}
