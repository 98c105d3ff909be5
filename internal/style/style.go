/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package style defines the six screenplay paragraph styles and the character
// and paragraph formatting each of them carries.
package style

import (
	"fmt"
	"strings"
)

// Style is a screenplay paragraph category. The zero value is NoStyle, which
// means the formatting at a position matches none of the catalog entries.
type Style int

const (
	NoStyle Style = iota
	Action
	Character
	Dialogue
	Parenthetical
	Heading
	Transition
)

// order is the catalog order, which is also the cycle order.
var order = []Style{Action, Character, Dialogue, Parenthetical, Heading, Transition}

// All returns the six catalog styles in cycle order.
func All() []Style { return append([]Style(nil), order...) }

// Valid reports whether s is one of the six catalog styles.
func (s Style) Valid() bool { return s >= Action && s <= Transition }

func (s Style) String() string {
	switch s {
	case Action:
		return "Action"
	case Character:
		return "Character"
	case Dialogue:
		return "Dialogue"
	case Parenthetical:
		return "Parenthetical"
	case Heading:
		return "Heading"
	case Transition:
		return "Transition"
	case NoStyle:
		return "NoStyle"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// Next returns the style that follows s in cycle order, wrapping from
// Transition back to Action. NoStyle cycles to Action.
func (s Style) Next() Style {
	if !s.Valid() {
		return Action
	}
	for i, o := range order {
		if o == s {
			return order[(i+1)%len(order)]
		}
	}
	return Action
}

// Continuation returns the style of a paragraph created by the paragraph-break
// key while s is active.
func (s Style) Continuation() Style {
	switch s {
	case Character:
		return Dialogue
	case Parenthetical:
		return Dialogue
	default:
		// Action, Dialogue, Heading, Transition and NoStyle all fall back to Action
		return Action
	}
}

// ParseStyle resolves a user-supplied style name. Matching is case-insensitive
// and accepts a few common aliases ("scene", "paren", "paranthesis").
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "action", "a", "1":
		return Action, nil
	case "character", "char", "c", "2":
		return Character, nil
	case "dialogue", "dialog", "d", "3":
		return Dialogue, nil
	case "parenthetical", "paren", "paranthesis", "parenthesis", "p", "4":
		return Parenthetical, nil
	case "heading", "scene", "scene-heading", "h", "5":
		return Heading, nil
	case "transition", "t", "6":
		return Transition, nil
	}
	return NoStyle, fmt.Errorf("unknown style %q", name)
}
