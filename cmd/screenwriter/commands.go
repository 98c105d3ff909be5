/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"screenwriter/internal/editor"
	"screenwriter/internal/format"
	applog "screenwriter/internal/log"
	"screenwriter/internal/storage"
	"screenwriter/internal/style"
	"screenwriter/internal/version"
)

// target is where a command puts the cursor before editing. Without flags
// the cursor goes to the end of the script.
type target struct {
	paragraph int
	at        int
	to        int
}

func (t *target) bind(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&t.paragraph, "paragraph", "p", -1, "place the cursor at the end of paragraph `N`")
	cmd.Flags().IntVar(&t.at, "at", -1, "place the cursor at character offset `POS`")
	cmd.Flags().IntVar(&t.to, "to", -1, "extend the selection to character offset `POS`")
}

func (t target) apply(s *editor.Session) error {
	doc := s.Document()
	pos := doc.Len()
	switch {
	case t.paragraph >= 0:
		if t.paragraph >= doc.ParagraphCount() {
			return fmt.Errorf("paragraph %d out of range (script has %d)", t.paragraph, doc.ParagraphCount())
		}
		p := doc.Paragraph(t.paragraph)
		pos = p.Start + utf8.RuneCountInString(p.Text)
	case t.at >= 0:
		if t.at > doc.Len() {
			return fmt.Errorf("offset %d out of range (script has %d characters)", t.at, doc.Len())
		}
		pos = t.at
	}
	if t.to < 0 {
		s.SetPosition(pos)
		return nil
	}
	if t.to > doc.Len() {
		return fmt.Errorf("offset %d out of range (script has %d characters)", t.to, doc.Len())
	}
	s.Select(pos, t.to)
	return nil
}

func printParagraphs(w io.Writer, s *editor.Session) {
	for _, p := range s.Paragraphs() {
		fmt.Fprintf(w, "%3d  %-13s  %s\n", p.Index, p.Style, p.Text)
	}
}

// reportEdit tells the user which paragraphs the last reformat touched.
func reportEdit(w io.Writer, s *editor.Session) string {
	e, ok := s.LastEdit()
	if !ok {
		return format.ChangeLabel
	}
	if e.FirstParagraph == e.LastParagraph {
		fmt.Fprintf(w, "%s: paragraph %d as %s\n", e.Label, e.FirstParagraph, e.Target)
	} else {
		fmt.Fprintf(w, "%s: paragraphs %d-%d as %s\n", e.Label, e.FirstParagraph, e.LastParagraph, e.Target)
	}
	return e.Label
}

func newNewCommand(a *app) *cobra.Command {
	var (
		dir    string
		author string
		header bool
	)
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a script",
		Long: `Create a script named after its title in the given directory.

Examples:
  screenwriter new "Night Shift"
  screenwriter new "Night Shift" --author "Sam Lee" --header`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(filepath.Join(dir, storage.SuggestFileName(args[0])))
			if err != nil {
				return fmt.Errorf("resolve script path: %w", err)
			}
			s := editor.New(a.options())
			s.SetTitle(args[0])
			if author != "" {
				s.SetAuthor(author)
			}
			if header {
				s.GenerateHeader(format.HeaderOptions{
					IncludeTitle:      true,
					IncludeAuthor:     s.Author() != "",
					IncludeCharacters: true,
				})
			}
			h, err := storage.Create(path, s.ToScreenplay())
			if err != nil {
				return err
			}
			a.handle, a.session = h, s
			ctx := applog.ContextWithScript(cmd.Context(), path)
			if err := a.index(ctx, "Created"); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Created", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory for the new script")
	cmd.Flags().StringVarP(&author, "author", "a", "", "author name (default from config)")
	cmd.Flags().BoolVar(&header, "header", false, "start with a title header")
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print the paragraphs of a script with their styles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.open(cmd.Context(), args[0]); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Title: %s\n", a.session.Title())
			fmt.Fprintf(w, "Author: %s\n", a.session.Author())
			fmt.Fprintf(w, "Characters: %s\n\n", strings.Join(a.session.Registry().List(), ", "))
			printParagraphs(w, a.session)
			return nil
		},
	}
}

func newFormatCommand(a *app) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "format <file> <style>",
		Short: "Apply a style to the paragraphs under the cursor",
		Long: `Apply one of the six styles to every paragraph touched by the
selection. Styles can be given by name or shortcut number:
1 action, 2 character, 3 dialogue, 4 parenthetical, 5 heading, 6 transition.

Examples:
  screenwriter format play.writer character -p 2
  screenwriter format play.writer 4 --at 10 --to 40`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := style.ParseStyle(args[1])
			if err != nil {
				return err
			}
			ctx, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := t.apply(a.session); err != nil {
				return err
			}
			a.session.ChangeFormatTo(st)
			if err := a.commit(ctx, reportEdit(cmd.ErrOrStderr(), a.session)); err != nil {
				return err
			}
			printParagraphs(cmd.OutOrStdout(), a.session)
			return nil
		},
	}
	t.bind(cmd)
	return cmd
}

func newCycleCommand(a *app) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "cycle <file>",
		Short: "Apply the next style in cycle order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := t.apply(a.session); err != nil {
				return err
			}
			st := a.session.CycleStyle()
			if err := a.commit(ctx, reportEdit(cmd.ErrOrStderr(), a.session)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), st)
			return nil
		},
	}
	t.bind(cmd)
	return cmd
}

func newContinueCommand(a *app) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "continue <file>",
		Short: "Start a new paragraph in the style that follows the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := t.apply(a.session); err != nil {
				return err
			}
			st := a.session.AutoContinue()
			if err := a.commit(ctx, format.ChangeLabel); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), st)
			return nil
		},
	}
	t.bind(cmd)
	return cmd
}

func newDetectCommand(a *app) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Print the style of the paragraph under the cursor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.open(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := t.apply(a.session); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.session.Detect())
			return nil
		},
	}
	t.bind(cmd)
	return cmd
}

func newTypeCommand(a *app) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "type <file> <keys>",
		Short: "Type into a script as if at the keyboard",
		Long: `Feed key presses to the editor. Plain text is typed as is and a line
break presses Enter. Special keys go in angle brackets: <tab>, <enter>,
<bs>, <del>, <esc>, <left>, <right>, <up>, <down>, <home>, <end>, and
<alt-1> .. <alt-6>, <alt-`+"`"+`>, <alt-enter> for the style shortcuts. <lt> types '<'.

Examples:
  screenwriter type play.writer '<alt-2>sam<enter>Where were you?<enter>'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := editor.ParseKeys(args[1])
			if err != nil {
				return err
			}
			ctx, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := t.apply(a.session); err != nil {
				return err
			}
			a.session.HandleKeys(keys)
			if err := a.commit(ctx, editor.LabelTyping); err != nil {
				return err
			}
			printParagraphs(cmd.OutOrStdout(), a.session)
			return nil
		},
	}
	t.bind(cmd)
	return cmd
}

func newHeaderCommand(a *app) *cobra.Command {
	var (
		opts                            format.HeaderOptions
		noTitle, noAuthor, noCharacters bool
	)
	cmd := &cobra.Command{
		Use:   "header <file>",
		Short: "Insert a title header at the start of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts.IncludeTitle = !noTitle
			opts.IncludeAuthor = !noAuthor
			opts.IncludeCharacters = !noCharacters
			a.session.GenerateHeader(opts)
			if err := a.commit(ctx, editor.LabelHeader); err != nil {
				return err
			}
			printParagraphs(cmd.OutOrStdout(), a.session)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Title, "title", "", "title line (default: script title)")
	cmd.Flags().StringVar(&opts.Author, "author", "", "author line (default: script author)")
	cmd.Flags().BoolVar(&noTitle, "no-title", false, "leave out the title")
	cmd.Flags().BoolVar(&noAuthor, "no-author", false, "leave out the author")
	cmd.Flags().BoolVar(&noCharacters, "no-characters", false, "leave out the character list")
	return cmd
}

func newCharactersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "characters",
		Aliases: []string{"chars"},
		Short:   "List and edit the character names of a script",
	}
	var sorted bool
	list := &cobra.Command{
		Use:   "list <file>",
		Short: "Print the registered names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.open(cmd.Context(), args[0]); err != nil {
				return err
			}
			names := a.session.Registry().List()
			if sorted {
				names = a.session.Registry().Sorted()
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&sorted, "sort", false, "print in natural order instead of registration order")
	cmd.AddCommand(list)
	cmd.AddCommand(&cobra.Command{
		Use:   "add <file> <name>...",
		Short: "Register names; they are stored in upper case",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, n := range args[1:] {
				if !a.session.RegisterCharacter(n) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s is already registered\n", n)
				}
			}
			return a.commit(ctx, "Characters")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <file> <name>...",
		Short: "Remove names; the match is exact",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, n := range args[1:] {
				if !a.session.UnregisterCharacter(n) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s is not registered\n", n)
				}
			}
			return a.commit(ctx, "Characters")
		},
	})
	return cmd
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file> <text-file>",
		Short: "Append a plain-text screenplay",
		Long: `Append a plain-text screenplay to a script. "-" reads standard input.

Recognised lines:
  Title: / Author:         front matter
  INT. HOUSE - DAY, # Hall scene headings
  NAME: line               character and dialogue
  NAME on its own line     character, followed by dialogue lines
  (quietly)                parenthetical
  CUT TO:                  transition
  ; note                   ignored
Everything else is action. Indented lines continue the previous paragraph.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[1] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[1])
			}
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			ctx, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			doc := a.session.Document()
			before := doc.ParagraphCount()
			if doc.Len() == 0 {
				// the empty first paragraph is filled, not kept
				before--
			}
			for _, e := range a.session.Import(string(data)) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", e)
			}
			if err := a.commit(ctx, editor.LabelImport); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d paragraphs\n", doc.ParagraphCount()-before)
			return nil
		},
	}
}

func newSearchCommand(a *app) *cobra.Command {
	var (
		q      storage.SearchQuery
		styles []string
	)
	cmd := &cobra.Command{
		Use:   "search <file> [text]",
		Short: "Search the paragraphs of a script",
		Long: `Full-text search over the paragraphs of a script, optionally limited to
some styles or to the lines of one character.

Examples:
  screenwriter search play.writer soup
  screenwriter search play.writer --speaker beth
  screenwriter search play.writer --style heading --style transition`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range styles {
				st, err := style.ParseStyle(s)
				if err != nil {
					return err
				}
				q.Styles = append(q.Styles, st.String())
			}
			if len(args) == 2 {
				q.Text = args[1]
			}
			ctx, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := storage.Search(ctx, a.handle.Path, q)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range res {
				text := r.Text
				if r.Snippet != "" {
					text = r.Snippet
				}
				if r.Speaker != "" {
					text = r.Speaker + ": " + text
				}
				fmt.Fprintf(w, "%3d  %-13s  %s\n", r.Index, r.Style, text)
			}
			if len(res) == 0 {
				fmt.Fprintln(w, "No matches")
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&styles, "style", "s", nil, "only paragraphs of this style (repeatable)")
	cmd.Flags().StringVar(&q.Speaker, "speaker", "", "only lines of this character")
	cmd.Flags().IntVarP(&q.Limit, "limit", "n", 0, "maximum number of results")
	return cmd
}

func newHistoryCommand(a *app) *cobra.Command {
	var (
		limit int
		show  bool
	)
	cmd := &cobra.Command{
		Use:   "history <file>",
		Short: "List the saved versions of the script text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			snaps, err := storage.ListScriptSnapshots(ctx, a.handle, limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, s := range snaps {
				fmt.Fprintf(w, "%s  %-24s  %d characters\n", s.TS.Local().Format("2006-01-02 15:04:05"), s.Label, utf8.RuneCountInString(s.Text))
				if show && i == 0 {
					fmt.Fprintf(w, "%s\n\n", s.Text)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of versions to list")
	cmd.Flags().BoolVar(&show, "show", false, "print the text of the latest version")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Screenwriter", version.String())
		},
	}
}
