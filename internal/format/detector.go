/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

import "screenwriter/internal/style"

// Detector classifies the paragraph under a cursor by the character format at
// the cursor position. It only looks at one position, never at the text.
type Detector struct {
	catalog style.Catalog
	guard   *Guard
}

func NewDetector(catalog style.Catalog, guard *Guard) *Detector {
	if guard == nil {
		guard = &Guard{}
	}
	return &Detector{catalog: catalog, guard: guard}
}

// Detect returns the style whose discriminant matches the format at c, or
// NoStyle. While the guard is suspended it always returns NoStyle.
func (d *Detector) Detect(c Cursor) style.Style {
	if !d.guard.Enabled() {
		return style.NoStyle
	}
	return d.catalog.Match(c.CharFormat())
}

// Classify is Detect without the guard check. The engine uses it on
// paragraphs it is about to rewrite.
func (d *Detector) Classify(f style.CharFormat) style.Style {
	return d.catalog.Match(f)
}
