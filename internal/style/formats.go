/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package style

// Capitalization is the display-level case mode of a character format.
// It never changes the stored text.
type Capitalization int

const (
	MixedCase Capitalization = iota
	AllUppercase
	AllLowercase
	SentenceCase
)

// Alignment is the horizontal alignment of a paragraph.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// CharFormat describes the character formatting of a run of text.
// LetterSpacing is a percentage (100 is normal spacing).
type CharFormat struct {
	Family         string
	PointSize      float64
	Capitalization Capitalization
	Italic         bool
	Underline      bool
	Bold           bool
	LetterSpacing  float64
}

// Discriminant is the subset of CharFormat used to classify a paragraph.
// Font family and size are not part of it.
type Discriminant struct {
	Capitalization Capitalization
	Italic         bool
	Underline      bool
	LetterSpacing  float64
}

// Discriminant extracts the classifying fields of f.
func (f CharFormat) Discriminant() Discriminant {
	return Discriminant{
		Capitalization: f.Capitalization,
		Italic:         f.Italic,
		Underline:      f.Underline,
		LetterSpacing:  f.LetterSpacing,
	}
}

// BlockFormat describes paragraph layout. Margins are in pixels.
type BlockFormat struct {
	LeftMargin  float64
	RightMargin float64
	Alignment   Alignment
}
