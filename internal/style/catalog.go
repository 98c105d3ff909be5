/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package style

import (
	"fmt"
	"strings"
)

// Attributes is the complete formatting a style applies to a paragraph.
type Attributes struct {
	Char  CharFormat
	Block BlockFormat
}

const (
	DefaultFamily    = "Courier"
	DefaultPointSize = 12
)

// builtin holds the six style definitions. Action/Dialogue and
// Character/Transition only differ in letter spacing among the classifying
// fields; the 101 value keeps them apart.
var builtin = map[Style]Attributes{
	Action: {
		Char:  CharFormat{Capitalization: MixedCase, LetterSpacing: 101},
		Block: BlockFormat{Alignment: AlignLeft},
	},
	Character: {
		Char:  CharFormat{Capitalization: AllUppercase, LetterSpacing: 100},
		Block: BlockFormat{LeftMargin: 240, Alignment: AlignLeft},
	},
	Dialogue: {
		Char:  CharFormat{Capitalization: MixedCase, LetterSpacing: 100},
		Block: BlockFormat{LeftMargin: 120, RightMargin: 120, Alignment: AlignLeft},
	},
	Parenthetical: {
		Char:  CharFormat{Capitalization: MixedCase, Italic: true, LetterSpacing: 100},
		Block: BlockFormat{LeftMargin: 190, RightMargin: 190, Alignment: AlignLeft},
	},
	Heading: {
		Char:  CharFormat{Capitalization: AllUppercase, Underline: true, LetterSpacing: 100},
		Block: BlockFormat{Alignment: AlignCenter},
	},
	Transition: {
		Char:  CharFormat{Capitalization: AllUppercase, LetterSpacing: 101},
		Block: BlockFormat{Alignment: AlignRight},
	},
}

// Catalog is the immutable style table. The zero value is not usable; build
// one with DefaultCatalog or NewCatalog.
type Catalog struct {
	attrs map[Style]Attributes
}

// DefaultCatalog returns the catalog with the default Courier 12pt font.
func DefaultCatalog() Catalog { return NewCatalog(DefaultFamily, DefaultPointSize) }

// NewCatalog returns the builtin catalog with every style set in the given
// font. Family and size do not take part in classification, so any font keeps
// the catalog unambiguous.
func NewCatalog(family string, pointSize float64) Catalog {
	if strings.TrimSpace(family) == "" {
		family = DefaultFamily
	}
	if pointSize <= 0 {
		pointSize = DefaultPointSize
	}
	m := make(map[Style]Attributes, len(builtin))
	for s, a := range builtin {
		a.Char.Family = family
		a.Char.PointSize = pointSize
		m[s] = a
	}
	return Catalog{attrs: m}
}

// Of returns the attributes of s. It panics for NoStyle or an unknown value,
// which are programming errors.
func (c Catalog) Of(s Style) Attributes {
	a, ok := c.attrs[s]
	if !ok {
		panic(fmt.Sprintf("style: no attributes for %v", s))
	}
	return a
}

// Styles returns the catalog styles in cycle order.
func (c Catalog) Styles() []Style { return All() }

// Match classifies f against the catalog by its discriminant and returns the
// matching style or NoStyle.
func (c Catalog) Match(f CharFormat) Style {
	d := f.Discriminant()
	for _, s := range order {
		if c.attrs[s].Char.Discriminant() == d {
			return s
		}
	}
	return NoStyle
}

// Validate checks that the discriminants of the six styles are pairwise
// distinct.
func (c Catalog) Validate() error {
	seen := make(map[Discriminant]Style, len(order))
	for _, s := range order {
		a, ok := c.attrs[s]
		if !ok {
			return fmt.Errorf("style %v missing from catalog", s)
		}
		d := a.Char.Discriminant()
		if other, dup := seen[d]; dup {
			return fmt.Errorf("styles %v and %v share discriminant %+v", other, s, d)
		}
		seen[d] = s
	}
	return nil
}
