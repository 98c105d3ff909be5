/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// KeyCode names the keys the session reacts to. Printable input is KeyRune.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyTab
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyEscape
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
)

// Key is one key press. Alt marks the Alt modifier; Rune is set for KeyRune.
type Key struct {
	Code KeyCode
	Rune rune
	Alt  bool
}

var namedKeys = map[string]KeyCode{
	"tab":       KeyTab,
	"enter":     KeyEnter,
	"return":    KeyEnter,
	"bs":        KeyBackspace,
	"backspace": KeyBackspace,
	"del":       KeyDelete,
	"delete":    KeyDelete,
	"esc":       KeyEscape,
	"escape":    KeyEscape,
	"left":      KeyLeft,
	"right":     KeyRight,
	"up":        KeyUp,
	"down":      KeyDown,
	"home":      KeyHome,
	"end":       KeyEnd,
}

// ParseKeys turns a key script into key presses. Plain text is typed as is;
// special keys go in angle brackets: <tab>, <enter>, <bs>, <del>, <esc>,
// <left>, <right>, <up>, <down>, <home>, <end>. An "alt-" prefix adds the
// modifier (<alt-1> .. <alt-6>, <alt-`>, <alt-enter>). <lt> types a literal '<'.
func ParseKeys(script string) ([]Key, error) {
	var keys []Key
	for i := 0; i < len(script); {
		if script[i] != '<' {
			r, n := utf8.DecodeRuneInString(script[i:])
			if r == '\n' {
				keys = append(keys, Key{Code: KeyEnter})
			} else {
				keys = append(keys, Key{Code: KeyRune, Rune: r})
			}
			i += n
			continue
		}
		end := strings.IndexByte(script[i:], '>')
		if end < 0 {
			return nil, fmt.Errorf("unterminated key at byte %d", i)
		}
		name := strings.ToLower(script[i+1 : i+end])
		k, err := parseNamed(name)
		if err != nil {
			return nil, fmt.Errorf("key at byte %d: %w", i, err)
		}
		keys = append(keys, k)
		i += end + 1
	}
	return keys, nil
}

func parseNamed(name string) (Key, error) {
	if name == "lt" {
		return Key{Code: KeyRune, Rune: '<'}, nil
	}
	alt := false
	if rest, ok := strings.CutPrefix(name, "alt-"); ok {
		alt, name = true, rest
	}
	if code, ok := namedKeys[name]; ok {
		return Key{Code: code, Alt: alt}, nil
	}
	if alt && utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return Key{Code: KeyRune, Rune: r, Alt: true}, nil
	}
	return Key{}, fmt.Errorf("unknown key %q", name)
}
