/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the persisted data model of a screenplay (.writer file).
// The editor works on internal/document; these types are the lossless
// serialization of its paragraphs plus script-level metadata.

// FormatVersion is bumped when the on-disk structure changes incompatibly.
const FormatVersion = 1

// Screenplay is the root object of a .writer file.
type Screenplay struct {
	ID            string      `json:"id"`
	FormatVersion int         `json:"formatVersion"`
	Title         string      `json:"title,omitempty"`
	Author        string      `json:"author,omitempty"`
	Characters    []string    `json:"characters"`
	Paragraphs    []Paragraph `json:"paragraphs"`
	Metadata      Metadata    `json:"metadata,omitempty"`
}

// Metadata contains optional descriptive fields.
type Metadata struct {
	Notes   string `json:"notes,omitempty"`
	Updated string `json:"updated,omitempty"` // RFC3339
}

// Paragraph is one paragraph with its uniform paragraph format, the character
// format used when it is empty, and its text runs.
// Style is informational (the detected style at save time); formats are the
// source of truth.
type Paragraph struct {
	Style  string     `json:"style,omitempty"`
	Format CharFormat `json:"format"`
	Block  Block      `json:"block"`
	Runs   []Run      `json:"runs"`
}

// Run is a maximal stretch of text sharing one character format.
type Run struct {
	Text   string     `json:"text"`
	Format CharFormat `json:"format"`
}

// CharFormat mirrors style.CharFormat with readable enum values.
type CharFormat struct {
	Family         string  `json:"family,omitempty"`
	Size           float64 `json:"size,omitempty"`
	Capitalization string  `json:"capitalization,omitempty"` // mixed, upper, lower, sentence
	Italic         bool    `json:"italic,omitempty"`
	Underline      bool    `json:"underline,omitempty"`
	Bold           bool    `json:"bold,omitempty"`
	LetterSpacing  float64 `json:"letterSpacing,omitempty"`
}

// Block mirrors style.BlockFormat.
type Block struct {
	LeftMargin  float64 `json:"leftMargin,omitempty"`
	RightMargin float64 `json:"rightMargin,omitempty"`
	Alignment   string  `json:"alignment,omitempty"` // left, center, right
}
