// ABOUTME: Main postadmin screen: paginated post table, search box, add/edit and delete dialogs.
// ABOUTME: Reads the store after every change and routes all mutations through admin.Service.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/postadmin/internal/admin"
	"github.com/2389-research/postadmin/internal/config"
	"github.com/2389-research/postadmin/internal/models"
	"github.com/2389-research/postadmin/internal/store"
)

// badgeTTL is how long an error badge stays on screen.
const badgeTTL = 3 * time.Second

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirm
)

// loadedMsg reports the end of a list fetch.
type loadedMsg struct {
	err error
}

// createdMsg reports the end of a create round trip.
type createdMsg struct {
	post models.Post
	err  error
}

// clearBadgeMsg expires the error badge with the matching sequence number.
type clearBadgeMsg struct {
	seq int
}

// AdminModel is the bubbletea model for the post admin screen.
type AdminModel struct {
	svc         *admin.Service
	ctx         context.Context
	cancelCtx   *cancelHolder
	mode        mode
	table       table.Model
	search      textinput.Model
	form        formModel
	page        int
	rowsPerPage int
	pageItems   []models.Post
	loading     bool
	status      string
	badge       string
	badgeSeq    int
	quitting    bool
}

// NewAdminModel creates the admin screen over svc. rowsPerPage falls back to
// the configured default when not positive.
func NewAdminModel(svc *admin.Service, rowsPerPage int) AdminModel {
	if rowsPerPage <= 0 {
		rowsPerPage = config.DefaultRowsPerPage
	}

	ctx, cancel := context.WithCancel(context.Background())

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Title", Width: 30},
			{Title: "Body", Width: 50},
			{Title: "User", Width: 6},
		}),
		table.WithFocused(true),
	)
	// SetHeight counts the header row; grow by whatever it took so a full
	// page of rows stays visible.
	t.SetHeight(rowsPerPage)
	t.SetHeight(2*rowsPerPage - t.Height())

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "filter by id, title or body"
	search.Width = 40

	m := AdminModel{
		svc:         svc,
		ctx:         ctx,
		cancelCtx:   &cancelHolder{cancel: cancel},
		table:       t,
		search:      search,
		rowsPerPage: rowsPerPage,
		loading:     true,
	}
	return m.refresh()
}

// Init implements tea.Model.
func (m AdminModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AdminModel) loadCmd() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: svc.LoadAll(ctx)}
	}
}

func (m AdminModel) resetFilterCmd() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: svc.ResetFilter(ctx)}
	}
}

func (m AdminModel) reloadFreshCmd() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: svc.ReloadFresh(ctx)}
	}
}

func (m AdminModel) createCmd(draft models.Post) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		post, err := svc.CreatePost(ctx, draft)
		return createdMsg{post: post, err: err}
	}
}

// Update implements tea.Model.
func (m AdminModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}

	case loadedMsg:
		m.loading = false
		m = m.refresh()
		return m.takeNotice()

	case createdMsg:
		m = m.refresh()
		if msg.err != nil {
			var verrs models.ValidationErrors
			if errors.As(msg.err, &verrs) {
				m.svc.Store().Dispatch(store.SaveFailed{Err: msg.err})
				m.form.errs = verrs
			}
			return m.takeNotice()
		}
		m.mode = modeList
		m = m.selectID(msg.post.ID)
		return m.takeNotice()

	case clearBadgeMsg:
		if msg.seq == m.badgeSeq {
			m.badge = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		return m, nil
	}

	if m.mode == modeForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m AdminModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancelCtx.fire()
	return m, tea.Quit
}

func (m AdminModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "/":
		m.mode = modeSearch
		return m, m.search.Focus()
	case "x":
		m.search.SetValue("")
		m.loading = true
		return m, m.resetFilterCmd()
	case "r":
		m.loading = true
		return m, m.loadCmd()
	case "R":
		m.search.SetValue("")
		m.loading = true
		return m, m.reloadFreshCmd()
	case "a":
		m.form = newForm(nil)
		m.mode = modeForm
		return m, textinput.Blink
	case "e", "enter":
		post, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.svc.SelectPost(post)
		m.form = newForm(&post)
		m.mode = modeForm
		return m, textinput.Blink
	case "d":
		post, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.svc.SelectPost(post)
		m.mode = modeConfirm
		return m, nil
	case "n", "right", "pgdown":
		if m.page < m.pageCount()-1 {
			m.page++
			m = m.refresh()
			m.table.SetCursor(0)
		}
		return m, nil
	case "p", "left", "pgup":
		if m.page > 0 {
			m.page--
			m = m.refresh()
			m.table.SetCursor(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m AdminModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.svc.ApplyFilter(m.search.Value())
		m.search.Blur()
		m.mode = modeList
		m.page = 0
		m = m.refresh()
		return m.takeNotice()
	case tea.KeyEscape:
		m.search.Blur()
		m.mode = modeList
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m AdminModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		return m, nil
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.form.onLastField() {
			return m.submit()
		}
		m.form = m.form.move(1)
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m AdminModel) submit() (tea.Model, tea.Cmd) {
	if m.svc.Store().State().IsSaving {
		return m, nil
	}

	var ok bool
	m.form, ok = m.form.validate()
	if !ok {
		return m, nil
	}

	draft := m.form.draft()
	if !m.form.editMode() {
		m.svc.Store().Dispatch(store.MarkSaving{})
		return m, m.createCmd(draft)
	}

	post, err := m.svc.SaveOrUpdate(draft)
	if err != nil {
		return m.fail(err)
	}
	m.mode = modeList
	m = m.refresh()
	m = m.selectID(post.ID)
	return m.takeNotice()
}

func (m AdminModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.svc.DeleteActive()
		m.mode = modeList
		m = m.refresh()
		return m.takeNotice()
	case "n", "N", "esc", "q":
		m.mode = modeList
		return m, nil
	}
	return m, nil
}

// takeNotice consumes the store notice once. Successes go to the status
// line; errors raise a badge that expires after badgeTTL.
func (m AdminModel) takeNotice() (tea.Model, tea.Cmd) {
	notice, ok := m.svc.Notice()
	if !ok {
		return m, nil
	}
	text := notice.Title
	if notice.Message != "" {
		text += ": " + notice.Message
	}
	if notice.Kind == store.NoticeError {
		return m.showBadge(text)
	}
	m.status = text
	return m, nil
}

func (m AdminModel) fail(err error) (tea.Model, tea.Cmd) {
	return m.showBadge(err.Error())
}

func (m AdminModel) showBadge(text string) (tea.Model, tea.Cmd) {
	m.badge = text
	m.badgeSeq++
	seq := m.badgeSeq
	return m, tea.Tick(badgeTTL, func(time.Time) tea.Msg {
		return clearBadgeMsg{seq: seq}
	})
}

func (m AdminModel) pageCount() int {
	n := len(m.svc.Store().State().Items)
	if n == 0 {
		return 1
	}
	return (n + m.rowsPerPage - 1) / m.rowsPerPage
}

// refresh re-reads the store and rebuilds the visible page.
func (m AdminModel) refresh() AdminModel {
	items := m.svc.Store().State().Items

	pages := m.pageCount()
	if m.page >= pages {
		m.page = pages - 1
	}
	if m.page < 0 {
		m.page = 0
	}

	start := m.page * m.rowsPerPage
	end := min(start+m.rowsPerPage, len(items))
	if start > end {
		start = end
	}
	m.pageItems = items[start:end]

	rows := make([]table.Row, 0, len(m.pageItems))
	for _, p := range m.pageItems {
		rows = append(rows, table.Row{
			strconv.Itoa(p.ID),
			truncate(p.Title, 30),
			truncate(p.Body, 50),
			strconv.Itoa(p.UserID),
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
	return m
}

// selectID moves the page and cursor onto the post with id.
func (m AdminModel) selectID(id int) AdminModel {
	for i, p := range m.svc.Store().State().Items {
		if p.ID == id {
			m.page = i / m.rowsPerPage
			m = m.refresh()
			m.table.SetCursor(i % m.rowsPerPage)
			return m
		}
	}
	return m
}

func (m AdminModel) selected() (models.Post, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.pageItems) {
		return models.Post{}, false
	}
	return m.pageItems[c], true
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// View implements tea.Model.
func (m AdminModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(brandStyle.Render("POSTADMIN"))
	b.WriteString(titleStyle.Render(" - Posts"))
	if m.badge != "" {
		b.WriteString("  ")
		b.WriteString(errorBadgeStyle.Render(m.badge))
	}
	b.WriteString("\n\n")

	switch m.mode {
	case modeForm:
		b.WriteString(m.form.View(m.svc.Store().State().IsSaving))
		b.WriteString("\n")
		return b.String()
	case modeConfirm:
		b.WriteString(m.confirmView())
		b.WriteString("\n")
		return b.String()
	}

	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	total := len(m.svc.Store().State().Items)
	b.WriteString(stepStyle.Render(fmt.Sprintf("Page %d of %d (%d posts)", m.page+1, m.pageCount(), total)))
	if m.loading {
		b.WriteString(stepStyle.Render("  loading..."))
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(successStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(promptStyle.Render("[a]dd [e]dit [d]elete [/]filter [x] clear filter [r]eload [n/p] page [q]uit"))
	b.WriteString("\n")
	return b.String()
}

func (m AdminModel) confirmView() string {
	active := m.svc.Store().State().Active
	if active == nil {
		return dialogStyle.Render("Nothing selected.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Delete post"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Delete #%d %q?", active.ID, active.Title))
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render("[y]es  [n]o"))
	return dialogStyle.Render(b.String())
}
