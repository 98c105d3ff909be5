/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package characters

import (
	"strings"
	"unicode"
)

// EndOfWord lists the characters that end a completion word.
const EndOfWord = "~!@#$%^&*()_+{}|:\"<>?,./;'[]\\-="

// Completer is the suggestion popup driven by the editor.
type Completer interface {
	// SetCandidates replaces the known names.
	SetCandidates(names []string)
	// Show offers completions for prefix.
	Show(prefix string, matches []string)
	Hide()
}

// EndsWord reports whether r terminates the word being completed.
func EndsWord(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(EndOfWord, r)
}

// PrefixAt returns the word fragment that ends at rune offset pos of text.
func PrefixAt(text string, pos int) string {
	r := []rune(text)
	if pos > len(r) {
		pos = len(r)
	}
	start := pos
	for start > 0 && !EndsWord(r[start-1]) {
		start--
	}
	return string(r[start:pos])
}

// Suffix returns the part of completion still missing after prefix. Prefix
// matching ignores case, as the popup does.
func Suffix(completion, prefix string) string {
	c, p := []rune(completion), []rune(prefix)
	if len(p) > len(c) || !strings.EqualFold(string(c[:len(p)]), prefix) {
		return ""
	}
	return string(c[len(p):])
}
