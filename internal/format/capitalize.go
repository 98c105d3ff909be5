/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

import "unicode"

// Capitalize upper-cases the first letter of text and the first letter after
// each '.' at rune index i where i+3 <= len(text). Whitespace between the
// period and the letter is skipped. The result has the same length as text.
func Capitalize(text string) string {
	r := []rune(text)
	if len(r) == 0 {
		return text
	}
	upperFrom(r, 0)
	for i, ch := range r {
		if ch == '.' && i+3 <= len(r) {
			upperFrom(r, i+1)
		}
	}
	return string(r)
}

func upperFrom(r []rune, i int) {
	for i < len(r) && unicode.IsSpace(r[i]) {
		i++
	}
	if i < len(r) && unicode.IsLetter(r[i]) {
		r[i] = unicode.ToUpper(r[i])
	}
}
