// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/lexdrill/internal/model"
	"github.com/verte-zerg/lexdrill/internal/quiz"
	statsPkg "github.com/verte-zerg/lexdrill/internal/stats"
)

// HistoryLister loads past results for the footer.
type HistoryLister interface {
	ListHistory(ctx context.Context, cfg model.HistoryConfig) ([]model.HistoryEntry, error)
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	engine  *quiz.Engine
	history HistoryLister
	log     *slog.Logger

	session *quiz.Session
	input   textinput.Model

	last    *model.AnswerRecord
	notice  string
	entry   *model.HistoryEntry
	saveErr error

	width  int
	height int

	lastScore int
	hasLast   bool
	allScore  float64
	allCount  int
}

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	scoreStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a quiz TUI model around a started session.
func NewModel(engine *quiz.Engine, session *quiz.Session, history HistoryLister, log *slog.Logger) *Model {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Model{
		engine:  engine,
		history: history,
		log:     log,
		session: session,
		input:   newAnswerInput(),
	}
	m.loadFooterStats()
	return m
}

func newAnswerInput() textinput.Model {
	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = "type the answer, Enter to submit"
	in.CharLimit = 200
	in.Focus()
	return in
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.contentWidth() - 4
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			// Leaving mid-quiz abandons the session; nothing is recorded.
			return m, tea.Quit
		}
		if m.session.Finished() {
			return m.updateFinished(msg)
		}
		if msg.Type == tea.KeyEnter {
			m.submit()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateFinished(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		if m.saveErr != nil {
			m.finalize()
		}
		return m, nil
	case "enter":
		if m.saveErr != nil {
			return m, nil
		}
		m.restart()
		return m, nil
	}
	return m, nil
}

func (m *Model) submit() {
	rec, err := m.engine.SubmitAnswer(m.session, m.input.Value())
	if err != nil {
		if errors.Is(err, quiz.ErrEmptyAnswer) {
			m.notice = "Type an answer first."
			return
		}
		m.notice = err.Error()
		return
	}
	m.notice = ""
	m.last = &rec
	m.input.Reset()
	if m.session.Finished() {
		m.input.Blur()
		m.finalize()
	}
}

func (m *Model) finalize() {
	entry, err := m.engine.Finalize(context.Background(), m.session)
	if err != nil {
		m.saveErr = err
		m.log.Error("failed to save quiz", slog.String("error", err.Error()))
		return
	}
	m.saveErr = nil
	m.entry = &entry
	m.lastScore = entry.Percentage
	m.hasLast = true
	m.allScore = (m.allScore*float64(m.allCount) + float64(entry.Percentage)) / float64(m.allCount+1)
	m.allCount++
}

func (m *Model) restart() {
	session, err := m.engine.StartSession(context.Background())
	if err != nil {
		if errors.Is(err, quiz.ErrNoWords) {
			m.notice = "No words left to quiz."
		} else {
			m.notice = err.Error()
			m.log.Error("failed to start quiz", slog.String("error", err.Error()))
		}
		return
	}
	m.session = session
	m.last = nil
	m.entry = nil
	m.notice = ""
	m.input.Reset()
	m.input.Focus()
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	if m.session.Finished() {
		body = m.renderFinished()
	} else {
		body = m.renderQuestion()
	}
	content := lipgloss.NewStyle().Width(m.contentWidth()).Render(body)
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	main := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return main + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 60
	}
	w := int(float64(m.width) * 0.70)
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) renderQuestion() string {
	answered, total := m.session.Progress()
	lines := []string{
		mutedStyle.Render(fmt.Sprintf("Word %d of %d", answered+1, total)),
		"",
		promptStyle.Render(m.session.Prompt()),
		"",
		m.input.View(),
		"",
	}
	if m.last != nil {
		lines = append(lines, m.renderFeedback(*m.last))
	}
	if m.notice != "" {
		lines = append(lines, mutedStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFeedback(rec model.AnswerRecord) string {
	if rec.IsCorrect {
		return correctStyle.Render("✓ correct")
	}
	return incorrectStyle.Render(fmt.Sprintf("✗ %s → %s", promptFor(m.session, rec.Word), m.session.Expected(rec.Word)))
}

func promptFor(s *quiz.Session, w model.WordPair) string {
	if s.Direction() == model.DirectionSourceToTarget {
		return w.Source
	}
	return w.Target
}

func (m *Model) renderFinished() string {
	records := m.session.Records()
	sum := quiz.Summarize(records)
	lines := []string{
		scoreStyle.Render(fmt.Sprintf("%d%%", sum.Percentage)),
		fmt.Sprintf("%d of %d correct", sum.Correct, sum.Total),
		"",
	}
	missed := 0
	for _, r := range records {
		if r.IsCorrect {
			continue
		}
		if missed == 0 {
			lines = append(lines, "Mistakes:")
		}
		missed++
		line := fmt.Sprintf("  %s → %s (you typed: %s)", promptFor(m.session, r.Word), m.session.Expected(r.Word), r.UserAnswer)
		lines = append(lines, incorrectStyle.Render(runewidth.Truncate(line, m.contentWidth(), "…")))
	}
	if missed == 0 {
		lines = append(lines, correctStyle.Render("No mistakes."))
	}
	lines = append(lines, "")
	if m.saveErr != nil {
		lines = append(lines,
			incorrectStyle.Render("Could not save result: "+m.saveErr.Error()),
			mutedStyle.Render("r retry · q quit"),
		)
	} else {
		lines = append(lines, mutedStyle.Render("Saved to history · Enter new quiz · q quit"))
	}
	if m.notice != "" {
		lines = append(lines, mutedStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) loadFooterStats() {
	if m.history == nil {
		return
	}
	entries, err := m.history.ListHistory(context.Background(), model.HistoryConfig{})
	if err != nil {
		m.log.Warn("failed to load history for footer", slog.String("error", err.Error()))
		return
	}
	if len(entries) == 0 {
		return
	}
	totals := statsPkg.Summarize(entries)
	m.lastScore = totals.LastScore
	m.hasLast = true
	m.allScore = totals.AvgScore
	m.allCount = totals.Sessions
}

func (m *Model) renderFooter() string {
	answered, total := m.session.Progress()
	progress := 0
	if total > 0 {
		progress = answered * 100 / total
	}
	segments := []string{
		fmt.Sprintf("Progress %d%%", progress),
		fmt.Sprintf("Score %d/%d", m.session.Score(), answered),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d%%", m.lastScore))
	}
	if m.allCount > 0 {
		segments = append(segments, fmt.Sprintf("All-time %.1f%% over %d", m.allScore, m.allCount))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
