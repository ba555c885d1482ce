package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// field is one form row: free text, or a choice cycled with left/right.
type field struct {
	label   string
	input   textinput.Model
	options []string
	choice  int
}

func (f field) isChoice() bool {
	return len(f.options) > 0
}

func (f field) value() string {
	if f.isChoice() {
		return f.options[f.choice]
	}
	return f.input.Value()
}

// form is a vertical list of fields with one focused at a time.
type form struct {
	title  string
	fields []field
	focus  int
	keys   KeyMap
}

func newForm(title string) form {
	return form{title: title, keys: DefaultKeyMap()}
}

// addText appends a text field. Masked fields echo bullets.
func (f *form) addText(label, value string, masked bool) {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 40
	ti.SetValue(value)
	if masked {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	if len(f.fields) == 0 {
		ti.Focus()
	}
	f.fields = append(f.fields, field{label: label, input: ti})
}

// addChoice appends a choice field preselected to value.
func (f *form) addChoice(label string, options []string, value string) {
	fl := field{label: label, options: options}
	for i, o := range options {
		if o == value {
			fl.choice = i
		}
	}
	f.fields = append(f.fields, fl)
}

func (f form) value(i int) string {
	if i < 0 || i >= len(f.fields) {
		return ""
	}
	return f.fields[i].value()
}

func (f *form) setValue(i int, v string) {
	if i < 0 || i >= len(f.fields) {
		return
	}
	fl := &f.fields[i]
	if fl.isChoice() {
		for j, o := range fl.options {
			if o == v {
				fl.choice = j
			}
		}
		return
	}
	fl.input.SetValue(v)
}

func (f *form) setFocus(i int) {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focus].input.Blur()
	f.focus = (i + len(f.fields)) % len(f.fields)
	if !f.fields[f.focus].isChoice() {
		f.fields[f.focus].input.Focus()
	}
}

// update handles focus movement and forwards everything else to the focused
// field. Submit and cancel keys are left to the caller.
func (f form) update(msg tea.KeyMsg) (form, tea.Cmd) {
	if len(f.fields) == 0 {
		return f, nil
	}
	switch {
	case key.Matches(msg, f.keys.NextField):
		f.setFocus(f.focus + 1)
		return f, nil
	case key.Matches(msg, f.keys.PrevField):
		f.setFocus(f.focus - 1)
		return f, nil
	}

	fl := &f.fields[f.focus]
	if fl.isChoice() {
		switch msg.String() {
		case "left", "h":
			fl.choice = (fl.choice - 1 + len(fl.options)) % len(fl.options)
		case "right", "l", " ":
			fl.choice = (fl.choice + 1) % len(fl.options)
		}
		return f, nil
	}

	var cmd tea.Cmd
	fl.input, cmd = fl.input.Update(msg)
	return f, cmd
}

func (f form) view() string {
	var s strings.Builder
	if f.title != "" {
		s.WriteString(modalTitleStyle.Render(f.title))
		s.WriteString("\n\n")
	}
	for i, fl := range f.fields {
		label := fieldLabelStyle.Render(fl.label)
		if i == f.focus {
			label = fieldFocusedLabelStyle.Render(fl.label)
		}
		s.WriteString(label)
		if fl.isChoice() {
			s.WriteString(renderChoice(fl.options, fl.choice, i == f.focus))
		} else {
			s.WriteString(fl.input.View())
		}
		s.WriteString("\n")
	}
	return strings.TrimRight(s.String(), "\n")
}

func renderChoice(options []string, selected int, focused bool) string {
	parts := make([]string, len(options))
	for i, o := range options {
		switch {
		case i == selected && focused:
			parts[i] = cursorStyle.Render("‹" + o + "›")
		case i == selected:
			parts[i] = selectedStyle.Render(o)
		default:
			parts[i] = helpStyle.Render(o)
		}
	}
	return strings.Join(parts, " ")
}
