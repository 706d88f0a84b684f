// Package historyui provides the Bubble Tea history browser.
package historyui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/lexdrill/internal/model"
	"github.com/verte-zerg/lexdrill/internal/stats"
)

const (
	tabOverview = iota
	tabQuizzes
	tabWords
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea history UI.
type Model struct {
	store stats.HistoryReader
	cfg   model.HistoryConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	quizzes   table.Model
	words     table.Model

	detail     viewport.Model
	detailOpen bool

	width  int
	height int

	filterMode bool
	form       settingsForm
}

// NewModel constructs a history UI model.
func NewModel(st stats.HistoryReader, cfg model.HistoryConfig) *Model {
	if cfg.CurveWindow < 1 {
		cfg.CurveWindow = 1
	}
	m := &Model{
		store:    st,
		cfg:      cfg,
		tabs:     []string{"Overview", "Quizzes", "Words"},
		overview: viewport.New(0, 0),
		detail:   viewport.New(0, 0),
		quizzes:  newTable(quizColumns(), 1),
		words:    newTable(wordColumns(), 1),
	}
	m.form = newSettingsForm()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		if m.detailOpen {
			return m.updateDetail(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.renderContents()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.renderContents()
			return m, nil
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabQuizzes {
				m.openDetail()
			}
			return m, nil
		}
		return m.updateActive(msg)
	}
	return m, nil
}

func (m *Model) updateActive(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case tabQuizzes:
		m.quizzes, cmd = m.quizzes.Update(msg)
	case tabWords:
		m.words, cmd = m.words.Update(msg)
	default:
		m.overview, cmd = m.overview.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter, tea.KeyBackspace:
		m.detailOpen = false
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.detail.Width = m.width
	m.detail.Height = bodyHeight
	for _, t := range []*table.Model{&m.quizzes, &m.words} {
		t.SetWidth(m.width)
		t.SetHeight(max(1, bodyHeight-1))
	}
	m.form.setWidth(m.width)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	m.quizzes.Blur()
	m.words.Blur()
	switch m.activeTab {
	case tabQuizzes:
		m.quizzes.Focus()
	case tabWords:
		m.words.Focus()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{}
		m.overview.SetContent("Failed to load history.")
		m.quizzes.SetRows(nil)
		m.words.SetRows(nil)
		return
	}
	m.errMsg = ""
	m.report = report
	m.quizzes.SetRows(quizRows(report.Entries))
	m.words.SetRows(wordRows(report.Words))
	m.quizzes.GotoTop()
	m.words.GotoTop()
	m.renderContents()
}

func (m *Model) renderContents() {
	if m.errMsg != "" {
		return
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg, m.contentWidth()))
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func (m *Model) openDetail() {
	idx := m.quizzes.Cursor()
	if idx < 0 || idx >= len(m.report.Entries) {
		return
	}
	m.detail.SetContent(renderEntry(m.report.Entries[idx], m.contentWidth()))
	m.detail.GotoTop()
	m.detailOpen = true
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return m.renderTabs() + "\n" + m.renderFilterSummary()
}

func (m *Model) renderFilterSummary() string {
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: since=%s  last=%s  window=%d", since, last, m.cfg.CurveWindow)
	return headerStyle.Render(runewidth.Truncate(summary, m.contentWidth(), "..."))
}

func (m *Model) renderHelp() string {
	switch {
	case m.filterMode:
		return "tab/shift+tab: next field  enter: apply  esc: cancel"
	case m.detailOpen:
		return "Scroll: up/down  Back: esc/enter  Quit: q"
	case m.activeTab == tabQuizzes:
		return "Nav: left/right  Select: up/down  Open: enter  Settings: /  Quit: q"
	default:
		return "Nav: left/right  Scroll: up/down  Window: -/=  Settings: /  Quit: q"
	}
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render(m.renderHelp())
	if !m.filterMode && m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.filterMode {
		return m.form.view()
	}
	if m.detailOpen {
		return m.detail.View()
	}
	switch m.activeTab {
	case tabQuizzes:
		if len(m.report.Entries) == 0 {
			return "No quizzes yet."
		}
		return tableMutedStyle.Render(m.quizzes.View())
	case tabWords:
		if len(m.report.Words) == 0 {
			return "No answers recorded."
		}
		return tableMutedStyle.Render(m.words.View())
	}
	return m.overview.View()
}

func renderOverview(report stats.Report, cfg model.HistoryConfig, width int) string {
	if len(report.Entries) == 0 {
		return "No quizzes yet."
	}
	var buf bytes.Buffer
	if err := stats.RenderScoreCurve(&buf, report.Entries, cfg.CurveWindow, width); err != nil {
		return fmt.Sprintf("Failed to render curve: %v", err)
	}
	if err := stats.RenderMissedTable(&buf, report.Words, cfg.MissedTop); err != nil {
		return fmt.Sprintf("Failed to render missed words: %v", err)
	}
	cards := renderSummaryCards(report.Totals, width)
	return strings.TrimRight(cards+"\n\n"+buf.String(), "\n")
}

func renderSummaryCards(t stats.Totals, width int) string {
	cards := []string{
		metricCard("Quizzes", strconv.Itoa(t.Sessions)),
		metricCard("Avg score", fmt.Sprintf("%.1f%%", t.AvgScore)),
		metricCard("Best score", fmt.Sprintf("%d%%", t.BestScore)),
		metricCard("Words", strconv.Itoa(t.Words)),
		metricCard("Accuracy", fmt.Sprintf("%.1f%%", t.Accuracy()*100)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderEntry(e model.HistoryEntry, width int) string {
	lines := []string{
		cardValueStyle.Render(fmt.Sprintf("%s  %d%%", e.Timestamp.Local().Format("2006-01-02 15:04"), e.Percentage)),
		headerStyle.Render(fmt.Sprintf("%d of %d correct", e.CorrectAnswers, e.TotalWords)),
		"",
	}
	for _, r := range e.Results {
		mark := okStyle.Render("✓")
		if !r.IsCorrect {
			mark = errorStyle.Render("✗")
		}
		line := fmt.Sprintf("%s = %s  (answer: %s)", r.Word.Source, r.Word.Target, r.UserAnswer)
		lines = append(lines, mark+" "+runewidth.Truncate(line, max(10, width-2), "…"))
	}
	return strings.Join(lines, "\n")
}

func quizColumns() []table.Column {
	return []table.Column{
		{Title: "When", Width: 16},
		{Title: "Words", Width: 6},
		{Title: "Correct", Width: 8},
		{Title: "Incorrect", Width: 9},
		{Title: "Score", Width: 6},
	}
}

func wordColumns() []table.Column {
	return []table.Column{
		{Title: "Word", Width: 20},
		{Title: "Translation", Width: 20},
		{Title: "Accuracy", Width: 9},
		{Title: "Correct", Width: 8},
		{Title: "Incorrect", Width: 9},
	}
}

func quizRows(entries []model.HistoryEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row(stats.HistoryRow(e)))
	}
	return rows
}

// wordRows lists every answered word, weakest first.
func wordRows(aggs []model.WordAggregate) []table.Row {
	weak := stats.SelectWeakWords(aggs, 0)
	seen := make(map[string]bool, len(weak))
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range weak {
		seen[agg.WordID] = true
		rows = append(rows, table.Row(stats.MissedRow(agg)))
	}
	for _, agg := range aggs {
		if !seen[agg.WordID] {
			rows = append(rows, table.Row(stats.MissedRow(agg)))
		}
	}
	return rows
}

func newTable(columns []table.Column, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(height),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	return m, m.form.open(m.cfg)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	result, cmd := m.form.update(msg, &m.cfg)
	switch result {
	case formCancelled:
		m.filterMode = false
	case formApplied:
		m.filterMode = false
		m.refreshReport()
		m.updateLayout()
	}
	return m, cmd
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
