/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"bufio"
	"regexp"
	"strings"
	"unicode"

	"screenwriter/internal/style"
)

var (
	reScene      = regexp.MustCompile(`^(#+)\s*(.*)$`)
	reSceneAlt   = regexp.MustCompile(`^(?i)\s*Scene:\s*(.+)$`)
	reSlug       = regexp.MustCompile(`^(?i)(INT|EXT|INT\./EXT|I/E|EST)[\.\s]`)
	reName       = regexp.MustCompile(`^([A-Za-z0-9_\-\. ']{1,64})\s*:\s*(.*)$`)
	reTransition = regexp.MustCompile(`^[A-Z0-9 \.'\-]* (TO|IN|OUT):$|^(FADE OUT|FADE TO BLACK)\.$`)
	reFront      = regexp.MustCompile(`^(?i)(title|author)\s*:\s*(.*)$`)
)

// Parse parses a plain-text screenplay into styled blocks.
// Supported syntax:
//   - Title: and Author: lines before the first block fill the front matter.
//   - Scene headings: lines starting with "#", "Scene:" or a slug line
//     prefix (INT., EXT., I/E, EST.).
//   - Transitions: upper-case lines ending in "TO:", "IN:" or "OUT:", plus
//     "FADE OUT." and "FADE TO BLACK.".
//   - Dialogue: NAME: text yields a Character block and a Dialogue block.
//     A line that is entirely upper case opens a speech as well.
//   - Lines in parentheses are Parenthetical and open a speech. Inside a
//     speech the other lines are Dialogue. A blank line ends the speech.
//   - Continuation lines indented by 2+ spaces are appended to the previous
//     Action, Dialogue or Parenthetical block.
//   - Notes: lines starting with ';'.
//
// Everything else is Action.
func Parse(input string) (Script, []Error) {
	var s Script
	var errs []Error

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	inSpeech := false
	front := true
	var last *Block

	add := func(st style.Style, text string) {
		s.Blocks = append(s.Blocks, Block{Style: st, Text: text, LineNo: lineNo})
		last = &s.Blocks[len(s.Blocks)-1]
		front = false
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		// Continuation line (indented) -> append to the previous block
		if strings.HasPrefix(line, "  ") && last != nil && continues(last.Style) {
			if cont := strings.TrimSpace(line); cont != "" {
				last.Text += " " + cont
			}
			continue
		}

		trim := strings.TrimSpace(line)
		if trim == "" {
			inSpeech = false
			last = nil
			continue
		}

		if strings.HasPrefix(trim, ";") {
			s.Notes = append(s.Notes, Note{Text: strings.TrimSpace(strings.TrimPrefix(trim, ";")), LineNo: lineNo})
			continue
		}

		if front {
			if m := reFront.FindStringSubmatch(trim); m != nil {
				if strings.EqualFold(m[1], "title") {
					s.Title = strings.TrimSpace(m[2])
				} else {
					s.Author = strings.TrimSpace(m[2])
				}
				continue
			}
		}

		if m := reScene.FindStringSubmatch(trim); m != nil {
			inSpeech = false
			add(style.Heading, strings.TrimSpace(m[2]))
			continue
		}
		if m := reSceneAlt.FindStringSubmatch(trim); m != nil {
			inSpeech = false
			add(style.Heading, strings.TrimSpace(m[1]))
			continue
		}
		if reSlug.MatchString(trim) {
			inSpeech = false
			add(style.Heading, trim)
			continue
		}

		if reTransition.MatchString(trim) {
			inSpeech = false
			add(style.Transition, trim)
			continue
		}

		if strings.HasPrefix(trim, "(") {
			if !strings.HasSuffix(trim, ")") {
				errs = append(errs, Error{Line: lineNo, Column: strings.Index(line, "(") + 1, Message: "unbalanced parenthesis"})
				add(style.Action, trim)
				continue
			}
			add(style.Parenthetical, trim)
			inSpeech = true
			continue
		}

		if inSpeech {
			add(style.Dialogue, trim)
			continue
		}

		// NAME: text
		if m := reName.FindStringSubmatch(trim); m != nil {
			add(style.Character, strings.ToUpper(strings.TrimSpace(m[1])))
			if text := strings.TrimSpace(m[2]); text != "" {
				add(style.Dialogue, text)
			}
			inSpeech = true
			continue
		}

		if isUpperName(trim) {
			add(style.Character, trim)
			inSpeech = true
			continue
		}

		add(style.Action, trim)
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Column: 1, Message: err.Error()})
	}
	return s, errs
}

func continues(st style.Style) bool {
	return st == style.Action || st == style.Dialogue || st == style.Parenthetical
}

// isUpperName reports whether line looks like a character cue: at least one
// letter, no lower-case letters and no sentence punctuation at the end.
func isUpperName(line string) bool {
	if len(line) > 64 || strings.ContainsAny(line[len(line)-1:], ".!?,") {
		return false
	}
	letters := 0
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 0
}
