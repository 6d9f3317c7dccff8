// ABOUTME: Add/edit dialog for a single post with per-field validation messages.
// ABOUTME: Prefilled from an existing post in edit mode, empty in create mode.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/postadmin/internal/models"
)

const (
	fieldTitle = iota
	fieldBody
)

var fieldNames = [2]string{"title", "body"}

type formModel struct {
	inputs  [2]textinput.Model
	focus   int
	editing *models.Post
	errs    models.ValidationErrors
}

// newForm builds the dialog. A nil post opens it in create mode.
func newForm(post *models.Post) formModel {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200
	title.Width = 50

	body := textinput.New()
	body.Placeholder = "Body"
	body.CharLimit = 2000
	body.Width = 50

	f := formModel{inputs: [2]textinput.Model{title, body}}
	if post != nil {
		p := *post
		f.editing = &p
		f.inputs[fieldTitle].SetValue(p.Title)
		f.inputs[fieldBody].SetValue(p.Body)
	}
	f.inputs[fieldTitle].Focus()
	return f
}

func (f formModel) editMode() bool {
	return f.editing != nil
}

// onLastField reports whether enter should submit instead of moving on.
func (f formModel) onLastField() bool {
	return f.focus == len(f.inputs)-1
}

func (f formModel) move(delta int) formModel {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
	return f
}

// draft returns the post the form would submit.
func (f formModel) draft() models.Post {
	post := models.NewDraft(f.inputs[fieldTitle].Value(), f.inputs[fieldBody].Value())
	if f.editing != nil {
		post.ID = f.editing.ID
		post.UserID = f.editing.UserID
	}
	return post
}

// validate records field errors and reports whether the draft may be submitted.
func (f formModel) validate() (formModel, bool) {
	f.errs = nil
	err := models.ValidateDraft(f.draft())
	if err == nil {
		return f, true
	}
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		f.errs = verrs
	}
	return f, false
}

func (f formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			return f.move(1), textinput.Blink
		case "shift+tab", "up":
			return f.move(-1), textinput.Blink
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	if f.errs != nil {
		delete(f.errs, fieldNames[f.focus])
	}
	return f, cmd
}

func (f formModel) View(saving bool) string {
	var b strings.Builder

	if f.editMode() {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Edit post #%d", f.editing.ID)))
	} else {
		b.WriteString(titleStyle.Render("New post"))
	}
	b.WriteString("\n\n")

	for i, input := range f.inputs {
		label := strings.ToUpper(fieldNames[i][:1]) + fieldNames[i][1:]
		b.WriteString(promptStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n")
		if msg, ok := f.errs[fieldNames[i]]; ok {
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if saving {
		b.WriteString(stepStyle.Render("Saving..."))
	} else {
		b.WriteString(promptStyle.Render("[tab] next field  [enter] save  [esc] cancel"))
	}
	return dialogStyle.Render(b.String())
}
