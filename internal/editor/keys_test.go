/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"screenwriter/internal/style"
)

func TestParseKeys(t *testing.T) {
	keys, err := ParseKeys("Hi<alt-2><Enter>a<lt>\n<alt-`><alt-enter><bs><up>")
	require.NoError(t, err)
	require.Equal(t, []Key{
		{Code: KeyRune, Rune: 'H'},
		{Code: KeyRune, Rune: 'i'},
		{Code: KeyRune, Rune: '2', Alt: true},
		{Code: KeyEnter},
		{Code: KeyRune, Rune: 'a'},
		{Code: KeyRune, Rune: '<'},
		{Code: KeyEnter},
		{Code: KeyRune, Rune: '`', Alt: true},
		{Code: KeyEnter, Alt: true},
		{Code: KeyBackspace},
		{Code: KeyUp},
	}, keys)
}

func TestParseKeysErrors(t *testing.T) {
	_, err := ParseKeys("abc<tab")
	require.ErrorContains(t, err, "unterminated")
	_, err = ParseKeys("<nope>")
	require.ErrorContains(t, err, `unknown key "nope"`)
	_, err = ParseKeys("<alt-xy>")
	require.Error(t, err)
}

func TestKeyScriptDrivesSession(t *testing.T) {
	s := testSession(editorConfig(), nil)
	keys, err := ParseKeys("<alt-2>beth<enter>hello. there<enter>")
	require.NoError(t, err)
	s.HandleKeys(keys)
	require.Equal(t, []style.Style{style.Character, style.Dialogue, style.Action}, stylesOf(s))
	require.Equal(t, "beth\nhello. there\n", s.Text())
	require.Equal(t, []string{"BETH"}, s.Registry().List())
}

func TestNavigationFollowsParagraphStyle(t *testing.T) {
	s := testSession(editorConfig(), nil)
	s.Import("INT. HALL - DAY\nA door opens.")
	s.SetPosition(0)
	require.Equal(t, style.Heading, s.State().Current)
	s.HandleKey(Key{Code: KeyDown})
	require.Equal(t, style.Action, s.State().Current)
	s.HandleKey(Key{Code: KeyEnd})
	require.Equal(t, s.Document().Len(), s.Cursor().Position())
	s.HandleKey(Key{Code: KeyHome})
	s.HandleKey(Key{Code: KeyLeft})
	require.Equal(t, style.Heading, s.State().Current)
}
