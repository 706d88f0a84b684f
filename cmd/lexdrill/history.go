package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/lexdrill/internal/config"
	"github.com/verte-zerg/lexdrill/internal/historyui"
	"github.com/verte-zerg/lexdrill/internal/model"
	"github.com/verte-zerg/lexdrill/internal/quiz"
	"github.com/verte-zerg/lexdrill/internal/stats"
)

var (
	historySince       string
	historyLast        int
	historyCurveWindow int
	historyMissedTop   int
	historyPrint       bool
	historyExport      string
	historyClear       bool
	historyKeep        int
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past quiz results",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N quizzes")
	cmd.Flags().IntVar(&historyCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&historyMissedTop, "missed-top", defaultMissedTop, "rows in the most-missed table")
	cmd.Flags().BoolVar(&historyPrint, "print", false, "print a text report instead of opening the browser")
	cmd.Flags().StringVar(&historyExport, "export", "", "write history as JSON to a file")
	cmd.Flags().BoolVar(&historyClear, "clear", false, "delete all history")
	cmd.Flags().IntVar(&historyKeep, "keep", -1, "delete all but the newest N quizzes")
	cmd.MarkFlagsMutuallyExclusive("print", "export", "clear", "keep")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "curve-window", &historyCurveWindow, fileCfg.History.CurveWindow)
	applyIntConfig(cmd, "missed-top", &historyMissedTop, fileCfg.History.MissedTop)

	cfg, err := historyConfig()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeQuietly(st, "db")
	ctx := context.Background()

	switch {
	case historyClear:
		n, err := st.ClearHistory(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d quizzes\n", n)
		return err
	case cmd.Flags().Changed("keep"):
		n, err := st.TruncateHistory(ctx, historyKeep)
		if err != nil {
			return fmt.Errorf("failed to truncate history: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d quizzes\n", n)
		return err
	case historyExport != "":
		entries, err := st.ListHistory(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		data, err := quiz.MarshalHistory(entries)
		if err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		if err := writeFileAtomic(historyExport, data); err != nil {
			return err
		}
		logErrf("Wrote %d quizzes to %s\n", len(entries), historyExport)
		return nil
	case historyPrint:
		report, err := stats.BuildReport(ctx, st, cfg)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		return report.Render(cmd.OutOrStdout(), cfg, 0)
	}

	m := historyui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func historyConfig() (model.HistoryConfig, error) {
	var since *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}
	if historyLast < 0 {
		return model.HistoryConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if historyCurveWindow < 1 {
		return model.HistoryConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	if historyMissedTop < 0 {
		return model.HistoryConfig{}, fmt.Errorf("--missed-top must be >= 0")
	}
	return model.HistoryConfig{
		Since:       since,
		Last:        historyLast,
		CurveWindow: historyCurveWindow,
		MissedTop:   historyMissedTop,
	}, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
