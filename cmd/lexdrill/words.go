package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/lexdrill/internal/model"
	"github.com/verte-zerg/lexdrill/internal/store"
	"github.com/verte-zerg/lexdrill/internal/wordlist"
)

const shortIDLen = 8

var rmAll bool

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <word> <translation>",
		Short: "Add a word pair",
		Args:  cobra.ExactArgs(2),
		RunE:  runAddCmd,
	}
}

func runAddCmd(cmd *cobra.Command, args []string) error {
	w, err := model.NewWordPair(model.NewWordInput{Source: args[0], Target: args[1]}, time.Now())
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeQuietly(st, "db")

	n, err := st.AddWords(context.Background(), []model.WordPair{w})
	if err != nil {
		return fmt.Errorf("failed to add word: %w", err)
	}
	if n == 0 {
		logErrf("%s = %s is already in the list\n", w.Source, w.Target)
		return nil
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s  %s = %s\n", shortID(w.ID), w.Source, w.Target)
	return err
}

func newWordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "List word pairs",
		Args:  cobra.NoArgs,
		RunE:  runWordsCmd,
	}
}

func runWordsCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeQuietly(st, "db")

	words, err := st.ListWords(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list words: %w", err)
	}
	if len(words) == 0 {
		logErrln("No words yet. Add one with: lexdrill add <word> <translation>")
		return nil
	}
	return writeWords(cmd.OutOrStdout(), words)
}

func writeWords(w io.Writer, words []model.WordPair) error {
	width := 0
	for _, word := range words {
		width = max(width, runewidth.StringWidth(word.Source))
	}
	for _, word := range words {
		line := fmt.Sprintf("%s  %s  %s", shortID(word.ID), runewidth.FillRight(word.Source, width), word.Target)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id-prefix>",
		Short: "Remove a word pair",
		Args: func(cmd *cobra.Command, args []string) error {
			if rmAll {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: runRmCmd,
	}
	cmd.Flags().BoolVar(&rmAll, "all", false, "remove every word")
	return cmd
}

func runRmCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeQuietly(st, "db")
	ctx := context.Background()

	if rmAll {
		n, err := st.ClearWords(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear words: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d words\n", n)
		return err
	}

	w, err := resolveWord(ctx, st, args[0])
	if err != nil {
		return err
	}
	if err := st.DeleteWord(ctx, w.ID); err != nil {
		return fmt.Errorf("failed to remove word: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s = %s\n", w.Source, w.Target)
	return err
}

type wordFinder interface {
	FindWords(ctx context.Context, prefix string) ([]model.WordPair, error)
}

func resolveWord(ctx context.Context, st wordFinder, prefix string) (model.WordPair, error) {
	matches, err := st.FindWords(ctx, prefix)
	if err != nil {
		return model.WordPair{}, fmt.Errorf("failed to look up word: %w", err)
	}
	switch len(matches) {
	case 0:
		return model.WordPair{}, fmt.Errorf("no word with id %q: %w", prefix, store.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = fmt.Sprintf("%s (%s)", m.ID, m.Source)
	}
	return model.WordPair{}, fmt.Errorf("id prefix %q is ambiguous: %s", prefix, strings.Join(ids, ", "))
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import word pairs from a file",
		Long:  "Import one pair per line, separated by a tab, \" = \", \"=\" or \";\". Blank lines and # comments are skipped.",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	inputs, err := wordlist.LoadPairs(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	now := time.Now()
	words := make([]model.WordPair, 0, len(inputs))
	var invalid []error
	for i, in := range inputs {
		w, err := model.NewWordPair(in, now)
		if err != nil {
			invalid = append(invalid, fmt.Errorf("pair %d: %w", i+1, err))
			continue
		}
		words = append(words, w)
	}
	if len(invalid) > 0 {
		return errors.Join(invalid...)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeQuietly(st, "db")

	n, err := st.AddWords(context.Background(), words)
	if err != nil {
		return fmt.Errorf("failed to import words: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words (%d duplicates skipped)\n", n, len(words)-n)
	return err
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}
