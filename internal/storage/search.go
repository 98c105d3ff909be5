/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// SearchQuery describes a paragraph search.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Styles restricts matches to paragraph styles such as Dialogue or Heading.
// Speaker restricts Dialogue and Parenthetical matches to one character.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text    string
	Styles  []string
	Speaker string
	Limit   int
	Offset  int
}

// SearchResult is one matching paragraph. Snippet marks the matched terms
// with [ ] when Text was given.
type SearchResult struct {
	Index   int
	Style   string
	Speaker string
	Text    string
	Snippet string
}

// Search runs q against the index of the script at scriptPath.
// When q.Text is empty it scans paragraphs with the filters applied.
func Search(ctx context.Context, scriptPath string, q SearchQuery) (res []SearchResult, err error) {
	if strings.TrimSpace(scriptPath) == "" {
		return nil, errors.New("script path is required")
	}
	db, err := InitOrOpenIndex(scriptPath)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) (out []SearchResult, err error) {
	var args []any
	var sb strings.Builder
	if strings.TrimSpace(q.Text) != "" {
		sb.WriteString("SELECT p.idx, COALESCE(p.style,''), COALESCE(p.speaker,''), p.text, COALESCE(snippet(fts_paragraphs, 0, '[', ']', '...', 10),'')\n")
		sb.WriteString("FROM fts_paragraphs JOIN paragraphs p ON fts_paragraphs.rowid = p.para_id\n")
		sb.WriteString("WHERE fts_paragraphs MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT p.idx, COALESCE(p.style,''), COALESCE(p.speaker,''), p.text, ''\n")
		sb.WriteString("FROM paragraphs p\nWHERE 1=1\n")
	}
	if len(q.Styles) > 0 {
		sb.WriteString(" AND p.style IN (" + placeholders(len(q.Styles)) + ")\n")
		for _, s := range q.Styles {
			args = append(args, s)
		}
	}
	if s := strings.TrimSpace(q.Speaker); s != "" {
		sb.WriteString(" AND p.speaker = ?\n")
		args = append(args, strings.ToUpper(s))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := max(q.Offset, 0)
	sb.WriteString("ORDER BY p.idx\nLIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer func() { err = multierr.Append(err, rows.Close()) }()
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Index, &r.Style, &r.Speaker, &r.Text, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
