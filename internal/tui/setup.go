// ABOUTME: Bubbletea wizard that points postadmin at a posts backend.
// ABOUTME: Asks for the base URL and an optional x-api-key, then checks GET /posts/ before saving.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/postadmin/internal/config"
)

type setupStep int

const (
	stepURL setupStep = iota
	stepKey
	stepChecking
	stepDone
	stepFailed
)

type checkResultMsg struct {
	err error
}

// ValidateFn checks that a backend answers at apiURL with apiKey.
type ValidateFn func(ctx context.Context, apiURL, apiKey string) error

// cancelHolder lets value-receiver models share one cancel func.
type cancelHolder struct {
	cancel context.CancelFunc
}

func (h *cancelHolder) fire() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetupModel collects backend connection settings.
type SetupModel struct {
	step     setupStep
	url      textinput.Model
	key      textinput.Model
	spin     spinner.Model
	check    ValidateFn
	pending  *cancelHolder
	checkErr error
	aborted  bool
}

// NewSetupModel starts the wizard with the current settings filled in.
func NewSetupModel(apiURL, apiKey string) SetupModel {
	url := textinput.New()
	url.Prompt = "url> "
	url.Placeholder = config.DefaultAPIURL
	url.Width = 50
	url.SetValue(apiURL)
	url.Focus()

	key := textinput.New()
	key.Prompt = "key> "
	key.Placeholder = "none"
	key.EchoMode = textinput.EchoPassword
	key.Width = 50
	key.SetValue(apiKey)

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	return SetupModel{
		step:    stepURL,
		url:     url,
		key:     key,
		spin:    spin,
		check:   ValidateConnection,
		pending: &cancelHolder{},
	}
}

// NormalizeAPIURL trims trailing slashes and a pasted collection path.
func NormalizeAPIURL(raw string) string {
	val := strings.TrimSpace(raw)
	val = strings.TrimRight(val, "/")
	val = strings.TrimSuffix(val, "/posts")
	return val
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEscape {
			return m.abort()
		}
		switch m.step {
		case stepURL:
			return m.updateURL(msg)
		case stepKey:
			return m.updateKey(msg)
		case stepFailed:
			return m.updateFailed(msg)
		}

	case checkResultMsg:
		m.pending.cancel = nil
		if msg.err != nil {
			m.checkErr = msg.err
			m.step = stepFailed
			return m, nil
		}
		m.step = stepDone
		return m, tea.Quit

	case spinner.TickMsg:
		if m.step == stepChecking {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m SetupModel) abort() (tea.Model, tea.Cmd) {
	m.aborted = true
	m.pending.fire()
	return m, tea.Quit
}

func (m SetupModel) updateURL(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.url, cmd = m.url.Update(msg)
		return m, cmd
	}
	base := NormalizeAPIURL(m.url.Value())
	if base == "" {
		base = config.DefaultAPIURL
	}
	m.url.SetValue(base)
	m.url.Blur()
	m.step = stepKey
	return m, m.key.Focus()
}

func (m SetupModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.key, cmd = m.key.Update(msg)
		return m, cmd
	}
	m.key.Blur()
	return m.runCheck()
}

func (m SetupModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) == 0 {
		return m, nil
	}
	switch msg.Runes[0] {
	case 'r':
		m.checkErr = nil
		return m.runCheck()
	case 's':
		m.step = stepDone
		return m, tea.Quit
	case 'q':
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

// runCheck moves to the checking step. The check command comes first in the
// batch, ahead of the spinner tick.
func (m SetupModel) runCheck() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.pending.cancel = cancel
	m.step = stepChecking

	apiURL, apiKey, check := m.url.Value(), m.key.Value(), m.check
	run := func() tea.Msg {
		return checkResultMsg{err: check(ctx, apiURL, apiKey)}
	}
	return m, tea.Batch(run, m.spin.Tick)
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(brandStyle.Render("POSTADMIN"))
	b.WriteString(titleStyle.Render(" backend"))
	b.WriteString("\n\n")

	switch m.step {
	case stepURL:
		b.WriteString(stepStyle.Render("Backend URL (1/2)"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("blank uses " + config.DefaultAPIURL))
		b.WriteString("\n")
		b.WriteString(m.url.View())

	case stepKey:
		b.WriteString(promptStyle.Render("url: " + m.url.Value()))
		b.WriteString("\n\n")
		b.WriteString(stepStyle.Render("API key (2/2)"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("sent as x-api-key, blank for open backends"))
		b.WriteString("\n")
		b.WriteString(m.key.View())

	case stepChecking:
		fmt.Fprintf(&b, "%s GET %s/posts/", m.spin.View(), m.url.Value())

	case stepDone:
		b.WriteString(successStyle.Render("Backend reachable at " + m.url.Value()))

	case stepFailed:
		reason := "no error detail"
		if m.checkErr != nil {
			reason = m.checkErr.Error()
		}
		b.WriteString(errorStyle.Render("Backend check failed: " + reason))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("r retry, s save anyway, q quit"))
	}

	b.WriteString("\n")
	return b.String()
}

// Result returns the entered URL and key.
func (m SetupModel) Result() (apiURL, apiKey string) {
	return m.url.Value(), m.key.Value()
}

// ShouldSave reports whether the settings should be written.
func (m SetupModel) ShouldSave() bool {
	return m.step == stepDone && !m.aborted
}
