// Package main provides the CLI entrypoint for lexdrill.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/lexdrill/internal/config"
	"github.com/verte-zerg/lexdrill/internal/logging"
	"github.com/verte-zerg/lexdrill/internal/model"
	"github.com/verte-zerg/lexdrill/internal/quiz"
	"github.com/verte-zerg/lexdrill/internal/store"
	"github.com/verte-zerg/lexdrill/internal/tui"
)

const (
	defaultDirection      = string(model.DirectionTargetToSource)
	defaultMistakesWindow = 5
	defaultCurveWindow    = 5
	defaultMissedTop      = 10
)

var (
	quizDirection      string
	quizMistakes       bool
	quizMistakesWindow int
	quizSeed           int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lexdrill",
		Short:         "Terminal vocabulary quiz",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runQuizCmd,
	}

	rootCmd.Flags().StringVar(&quizDirection, "direction", defaultDirection, "quiz direction: target-source or source-target")
	rootCmd.Flags().BoolVar(&quizMistakes, "mistakes", false, "quiz only words missed in recent quizzes")
	rootCmd.Flags().IntVar(&quizMistakesWindow, "mistakes-window", defaultMistakesWindow, "number of recent quizzes to collect mistakes from")
	rootCmd.Flags().Int64Var(&quizSeed, "seed", 0, "shuffle seed (0 picks a random one)")

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "direction", &quizDirection, fileCfg.Quiz.Direction)
	applyBoolConfig(cmd, "mistakes", &quizMistakes, fileCfg.Quiz.Mistakes)
	applyIntConfig(cmd, "mistakes-window", &quizMistakesWindow, fileCfg.Quiz.MistakesWindow)

	cfg := model.Config{
		Direction:      model.Direction(strings.TrimSpace(quizDirection)),
		Mistakes:       quizMistakes,
		MistakesWindow: quizMistakesWindow,
		Seed:           quizSeed,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	log, closeLog, err := openLogger(fileCfg)
	if err != nil {
		return err
	}
	defer closeQuietly(closeLog, "log file")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeQuietly(st, "db")

	var words quiz.WordSource = st
	if cfg.Mistakes {
		words = store.NewMissedWordSource(st, cfg.MistakesWindow)
	}
	opts := []quiz.Option{
		quiz.WithLogger(log),
		quiz.WithDirection(cfg.Direction),
	}
	if cfg.Seed != 0 {
		opts = append(opts, quiz.WithRand(rand.New(rand.NewSource(cfg.Seed))))
	}
	engine := quiz.NewEngine(words, st, opts...)

	ctx := context.Background()
	session, err := engine.StartSession(ctx)
	if err != nil {
		if errors.Is(err, quiz.ErrNoWords) {
			return noWordsError(cfg)
		}
		return fmt.Errorf("failed to start quiz: %w", err)
	}

	m := tui.NewModel(engine, session, st, log)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func noWordsError(cfg model.Config) error {
	if cfg.Mistakes {
		return fmt.Errorf("no missed words in the last %d quizzes", cfg.MistakesWindow)
	}
	lines := []string{
		"no words to quiz",
		"Add one:    lexdrill add <word> <translation>",
		"Or import:  lexdrill import <file>",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func openLogger(fileCfg config.FileConfig) (*slog.Logger, io.Closer, error) {
	levelName := ""
	if fileCfg.Log.Level != nil {
		levelName = *fileCfg.Log.Level
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid [log] level: %w", err)
	}
	log, closer, err := logging.OpenFile(config.DefaultLogPath(), level)
	if err != nil {
		return nil, nil, err
	}
	return log, closer, nil
}

func closeQuietly(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		logErrf("failed to close %s: %v\n", what, err)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# lexdrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# direction = %q   # target-source shows the translation, source-target the word
# mistakes = false              # Quiz only recently missed words
# mistakes-window = %d           # Recent quizzes to collect mistakes from

[history]
# curve-window = %d              # Moving average window for the score curve
# missed-top = %d               # Rows in the most-missed table

[log]
# level = "info"                # debug, info, warn or error
`,
		defaultDirection,
		defaultMistakesWindow,
		defaultCurveWindow,
		defaultMissedTop,
	)
}

func validateConfig(cfg model.Config) error {
	if !cfg.Direction.Valid() {
		return fmt.Errorf("--direction must be %q or %q", model.DirectionTargetToSource, model.DirectionSourceToTarget)
	}
	if cfg.MistakesWindow < 1 {
		return fmt.Errorf("--mistakes-window must be >= 1")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
