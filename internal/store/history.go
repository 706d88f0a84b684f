package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/lexdrill/internal/model"
)

// PrependHistory stores a finished session and its results in one transaction.
// Writing an entry whose ID is already stored is a no-op.
func (s *Store) PrependHistory(ctx context.Context, entry model.HistoryEntry) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO history (id, recorded_at, direction, total_words, correct_answers, incorrect_answers, percentage)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		entry.ID,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		string(entry.Direction),
		entry.TotalWords,
		entry.CorrectAnswers,
		entry.IncorrectAnswers,
		entry.Percentage,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return tx.Commit()
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO history_results (history_id, position, word_id, source, target, user_answer, is_correct)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, r := range entry.Results {
		if _, err = stmt.ExecContext(ctx, entry.ID, i, r.Word.ID, r.Word.Source, r.Word.Target, r.UserAnswer, r.IsCorrect); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListHistory returns entries with their results, newest first.
func (s *Store) ListHistory(ctx context.Context, cfg model.HistoryConfig) ([]model.HistoryEntry, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "recorded_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, recorded_at, direction, total_words, correct_answers, incorrect_answers, percentage
		FROM history
		WHERE %s
		ORDER BY seq DESC`, strings.Join(clauses, " AND "))
	if cfg.Last > 0 {
		query += " LIMIT ?"
		args = append(args, cfg.Last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.HistoryEntry
	index := map[string]int{}
	for rows.Next() {
		var e model.HistoryEntry
		var recordedAt, direction string
		if err := rows.Scan(&e.ID, &recordedAt, &direction, &e.TotalWords, &e.CorrectAnswers, &e.IncorrectAnswers, &e.Percentage); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, err
		}
		e.Timestamp = parsed
		e.Direction = model.Direction(direction)
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}
	if err := s.loadResults(ctx, entries, index); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) loadResults(ctx context.Context, entries []model.HistoryEntry, index map[string]int) error {
	placeholders := make([]string, len(entries))
	args := make([]any, len(entries))
	for i, e := range entries {
		placeholders[i] = "?"
		args[i] = e.ID
	}
	query := fmt.Sprintf(`SELECT history_id, word_id, source, target, user_answer, is_correct
		FROM history_results
		WHERE history_id IN (%s)
		ORDER BY history_id, position ASC`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var historyID string
		var r model.AnswerRecord
		if err := rows.Scan(&historyID, &r.Word.ID, &r.Word.Source, &r.Word.Target, &r.UserAnswer, &r.IsCorrect); err != nil {
			return err
		}
		i, ok := index[historyID]
		if !ok {
			continue
		}
		entries[i].Results = append(entries[i].Results, r)
	}
	return rows.Err()
}

// ClearHistory deletes every history entry and returns how many were removed.
func (s *Store) ClearHistory(ctx context.Context) (int64, error) {
	return s.deleteHistory(ctx, `DELETE FROM history`)
}

// TruncateHistory keeps the newest keep entries and deletes the rest.
func (s *Store) TruncateHistory(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be >= 0")
	}
	return s.deleteHistory(ctx,
		`DELETE FROM history WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)`, keep)
}

func (s *Store) deleteHistory(ctx context.Context, query string, args ...any) (n int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err = res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM history_results WHERE history_id NOT IN (SELECT id FROM history)`); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// ListWordAggregates aggregates answers per word across the given entries.
func (s *Store) ListWordAggregates(ctx context.Context, historyIDs []string) ([]model.WordAggregate, error) {
	if len(historyIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(historyIDs))
	args := make([]any, len(historyIDs))
	for i, id := range historyIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT word_id, MAX(source), MAX(target),
		SUM(CASE WHEN is_correct THEN 1 ELSE 0 END) AS correct,
		SUM(CASE WHEN is_correct THEN 0 ELSE 1 END) AS incorrect
		FROM history_results
		WHERE history_id IN (%s)
		GROUP BY word_id`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.WordAggregate
	for rows.Next() {
		var agg model.WordAggregate
		if err := rows.Scan(&agg.WordID, &agg.Source, &agg.Target, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MissedWords returns stored words answered incorrectly in the most recent
// window history entries, in word list order.
func (s *Store) MissedWords(ctx context.Context, window int) ([]model.WordPair, error) {
	if window <= 0 {
		return nil, nil
	}
	return s.queryWords(ctx, `WITH recent AS (
		SELECT id FROM history ORDER BY seq DESC LIMIT ?
	)
	SELECT w.id, w.source, w.target, w.created_at
	FROM words w
	WHERE EXISTS (
		SELECT 1 FROM history_results r
		JOIN recent ON recent.id = r.history_id
		WHERE r.word_id = w.id AND r.is_correct = 0
	)
	ORDER BY w.seq ASC`, window)
}

// MissedWordSource snapshots only the words missed in recent sessions.
type MissedWordSource struct {
	store  *Store
	window int
}

// NewMissedWordSource returns a word source over the last window history entries.
func NewMissedWordSource(st *Store, window int) *MissedWordSource {
	return &MissedWordSource{store: st, window: window}
}

// Snapshot implements quiz.WordSource.
func (m *MissedWordSource) Snapshot(ctx context.Context) ([]model.WordPair, error) {
	return m.store.MissedWords(ctx, m.window)
}

// CountWords returns the number of stored words.
func (s *Store) CountWords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
