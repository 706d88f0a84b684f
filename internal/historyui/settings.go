package historyui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/lexdrill/internal/model"
)

const (
	fieldSince = iota
	fieldLast
	fieldWindow
)

// formResult tells the caller what a key did to the settings form.
type formResult int

const (
	formEditing formResult = iota
	formCancelled
	formApplied
)

// settingsForm edits the history filters in place.
type settingsForm struct {
	fields []textinput.Model
	focus  int
	err    string
}

func newSettingsForm() settingsForm {
	prompts := []string{"Since (YYYY-MM-DD): ", "Last: ", "Curve window: "}
	f := settingsForm{fields: make([]textinput.Model, len(prompts))}
	for i, p := range prompts {
		in := textinput.New()
		in.Prompt = p
		in.Cursor.SetMode(cursor.CursorBlink)
		f.fields[i] = in
	}
	return f
}

// open fills the fields from cfg and focuses the first one.
func (f *settingsForm) open(cfg model.HistoryConfig) tea.Cmd {
	f.err = ""
	since := ""
	if cfg.Since != nil {
		since = cfg.Since.Format("2006-01-02")
	}
	last := ""
	if cfg.Last > 0 {
		last = strconv.Itoa(cfg.Last)
	}
	f.fields[fieldSince].SetValue(since)
	f.fields[fieldLast].SetValue(last)
	f.fields[fieldWindow].SetValue(strconv.Itoa(cfg.CurveWindow))
	return f.focusField(0)
}

func (f *settingsForm) setWidth(width int) {
	for i := range f.fields {
		f.fields[i].Width = max(10, width-lipgloss.Width(f.fields[i].Prompt)-2)
	}
}

// update handles a key. On formApplied, cfg holds the new settings.
func (f *settingsForm) update(msg tea.KeyMsg, cfg *model.HistoryConfig) (formResult, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		f.err = ""
		return formCancelled, nil
	case tea.KeyEnter:
		next, err := f.parse(*cfg)
		if err != nil {
			f.err = err.Error()
			return formEditing, nil
		}
		*cfg = next
		f.err = ""
		return formApplied, nil
	case tea.KeyTab:
		return formEditing, f.focusField(f.focus + 1)
	case tea.KeyShiftTab:
		return formEditing, f.focusField(f.focus - 1)
	}
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return formEditing, cmd
}

func (f *settingsForm) focusField(idx int) tea.Cmd {
	n := len(f.fields)
	f.focus = (idx%n + n) % n
	var cmd tea.Cmd
	for i := range f.fields {
		if i == f.focus {
			cmd = f.fields[i].Focus()
			continue
		}
		f.fields[i].Blur()
	}
	return cmd
}

func (f *settingsForm) parse(cfg model.HistoryConfig) (model.HistoryConfig, error) {
	cfg.Since = nil
	if v := strings.TrimSpace(f.fields[fieldSince].Value()); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return cfg, errors.New("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}
	cfg.Last = 0
	if v := strings.TrimSpace(f.fields[fieldLast].Value()); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, errors.New("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = n
	}
	if v := strings.TrimSpace(f.fields[fieldWindow].Value()); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, errors.New("invalid curve window (use integer >= 1)")
		}
		cfg.CurveWindow = n
	}
	return cfg, nil
}

func (f *settingsForm) view() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, in := range f.fields {
		lines = append(lines, in.View())
	}
	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}
