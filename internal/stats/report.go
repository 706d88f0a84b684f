package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/lexdrill/internal/model"
)

// HistoryReader is the store view a report needs.
type HistoryReader interface {
	ListHistory(ctx context.Context, cfg model.HistoryConfig) ([]model.HistoryEntry, error)
	ListWordAggregates(ctx context.Context, historyIDs []string) ([]model.WordAggregate, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Entries []model.HistoryEntry
	Words   []model.WordAggregate
	Totals  Totals
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st HistoryReader, cfg model.HistoryConfig) (Report, error) {
	entries, err := st.ListHistory(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	words, err := st.ListWordAggregates(ctx, entryIDs(entries))
	if err != nil {
		return Report{}, err
	}
	return Report{
		Entries: entries,
		Words:   words,
		Totals:  Summarize(entries),
	}, nil
}

// Render prints the full text report.
func (r Report) Render(w io.Writer, cfg model.HistoryConfig, width int) error {
	if err := RenderSummary(w, r.Entries); err != nil {
		return err
	}
	if err := RenderScoreCurve(w, r.Entries, cfg.CurveWindow, width); err != nil {
		return err
	}
	if err := RenderHistoryTable(w, r.Entries); err != nil {
		return err
	}
	if len(r.Entries) == 0 {
		return nil
	}
	return RenderMissedTable(w, r.Words, cfg.MissedTop)
}

func entryIDs(entries []model.HistoryEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
