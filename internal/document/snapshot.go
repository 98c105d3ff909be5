/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"strings"

	"screenwriter/internal/domain"
	"screenwriter/internal/style"
)

// Export converts the paragraphs into their persisted form. classify, when
// non-nil, fills the informational Style field.
func (d *Document) Export(classify func(style.CharFormat) style.Style) []domain.Paragraph {
	out := make([]domain.Paragraph, 0, len(d.paras))
	for i, p := range d.paras {
		dp := domain.Paragraph{
			Format: charToDomain(p.format),
			Block:  blockToDomain(p.block),
			Runs:   []domain.Run{},
		}
		for _, r := range runsOf(p) {
			dp.Runs = append(dp.Runs, domain.Run{Text: r.Text, Format: charToDomain(r.Format)})
		}
		if classify != nil {
			if s := classify(d.CharFormatAt(d.offsets()[i])); s != style.NoStyle {
				dp.Style = s.String()
			}
		}
		out = append(out, dp)
	}
	return out
}

// Import builds a document from persisted paragraphs.
func Import(id string, ps []domain.Paragraph) *Document {
	d := New()
	d.SetID(id)
	d.Restore(ps)
	return d
}

// Restore replaces the whole content in place, keeping the document identity.
// Cursors into the document must be repositioned by the caller.
func (d *Document) Restore(ps []domain.Paragraph) {
	paras := make([]*paragraph, 0, len(ps))
	for _, dp := range ps {
		p := &paragraph{format: charFromDomain(dp.Format), block: blockFromDomain(dp.Block)}
		for _, r := range dp.Runs {
			f := charFromDomain(r.Format)
			for _, ch := range r.Text {
				p.text = append(p.text, ch)
				p.fmts = append(p.fmts, f)
			}
		}
		paras = append(paras, p)
	}
	if len(paras) == 0 {
		paras = append(paras, &paragraph{})
	}
	d.paras = paras
	d.touch()
}

func charToDomain(f style.CharFormat) domain.CharFormat {
	return domain.CharFormat{
		Family:         f.Family,
		Size:           f.PointSize,
		Capitalization: capToString(f.Capitalization),
		Italic:         f.Italic,
		Underline:      f.Underline,
		Bold:           f.Bold,
		LetterSpacing:  f.LetterSpacing,
	}
}

func charFromDomain(f domain.CharFormat) style.CharFormat {
	return style.CharFormat{
		Family:         f.Family,
		PointSize:      f.Size,
		Capitalization: capFromString(f.Capitalization),
		Italic:         f.Italic,
		Underline:      f.Underline,
		Bold:           f.Bold,
		LetterSpacing:  f.LetterSpacing,
	}
}

func blockToDomain(b style.BlockFormat) domain.Block {
	return domain.Block{LeftMargin: b.LeftMargin, RightMargin: b.RightMargin, Alignment: b.Alignment.String()}
}

func blockFromDomain(b domain.Block) style.BlockFormat {
	out := style.BlockFormat{LeftMargin: b.LeftMargin, RightMargin: b.RightMargin}
	switch strings.ToLower(b.Alignment) {
	case "center":
		out.Alignment = style.AlignCenter
	case "right":
		out.Alignment = style.AlignRight
	}
	return out
}

func capToString(c style.Capitalization) string {
	switch c {
	case style.AllUppercase:
		return "upper"
	case style.AllLowercase:
		return "lower"
	case style.SentenceCase:
		return "sentence"
	default:
		return "mixed"
	}
}

func capFromString(s string) style.Capitalization {
	switch strings.ToLower(s) {
	case "upper":
		return style.AllUppercase
	case "lower":
		return style.AllLowercase
	case "sentence":
		return style.SentenceCase
	default:
		return style.MixedCase
	}
}
