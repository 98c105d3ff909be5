/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"ok. great job": "Ok. Great job",
		"hi.x":          "Hi.x",
		"a. b":          "A. B",
		"mr. smith.":    "Mr. Smith.",
		"  leading":     "  Leading",
		"end.":          "End.",
		"1st. place":    "1st. Place",
	}
	for in, want := range cases {
		require.Equal(t, want, Capitalize(in), "input %q", in)
	}
}

func TestCapitalizeKeepsLength(t *testing.T) {
	for _, in := range []string{"x. y. z", "über. ärger", "  . a"} {
		require.Equal(t, len([]rune(in)), len([]rune(Capitalize(in))))
	}
}
