package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wikivigil/vigil/internal/model"
)

// settingsFieldType distinguishes cycling selects from numeric inputs.
type settingsFieldType int

const (
	fieldSelect settingsFieldType = iota
	fieldNumber
)

// settingsField is one editable preference. Original holds the value the
// form was primed with; only fields whose value differs from it end up
// in the save patch.
type settingsField struct {
	label    string
	key      string // preference field name
	typ      settingsFieldType
	options  []string        // for select fields
	selected int             // current option index
	input    textinput.Model // for number fields
	original string
	min, max int // bounds for number fields
}

// settingsAction is the outcome of one key handled by the form.
type settingsAction int

const (
	settingsNone settingsAction = iota
	settingsSave
	settingsReset
	settingsCancel
)

// SettingsForm is the interactive preference editor. It is primed from
// the current effective preferences and accumulates a patch containing
// only the fields the user actually changed.
type SettingsForm struct {
	fields  []settingsField
	focused int
	errMsg  string
}

var (
	originOptions    = []string{model.OriginRecentChanges, model.OriginWatchlist}
	scopeOptions     = []string{model.NamespaceAll, model.NamespaceContent, model.NamespaceNonContent}
	directionOptions = []string{model.DirectionOlder, model.DirectionNewer}
	newOnlyOptions   = []string{"all changes", "new pages only"}
)

// NewSettingsForm builds a form primed with the current preferences.
func NewSettingsForm(current model.Preferences) *SettingsForm {
	newOnly := newOnlyOptions[0]
	if current.NewOnly {
		newOnly = newOnlyOptions[1]
	}

	f := &SettingsForm{
		fields: []settingsField{
			makeSelect("Source", "origin", current.Origin, originOptions),
			makeNumber("Entries", "quantity", current.Quantity, model.MinQuantity, model.MaxQuantity),
			makeNumber("Interval (s)", "frequency", current.Frequency, model.MinFrequency, model.MaxFrequency),
			makeSelect("Show", "newOnly", newOnly, newOnlyOptions),
			makeSelect("Namespaces", "namespace", current.Namespace, scopeOptions),
			makeSelect("Order", "direction", current.Direction, directionOptions),
		},
	}
	f.focusField(0)
	return f
}

func makeSelect(label, key, value string, options []string) settingsField {
	selected := 0
	for i, opt := range options {
		if opt == value {
			selected = i
			break
		}
	}
	return settingsField{
		label:    label,
		key:      key,
		typ:      fieldSelect,
		options:  options,
		selected: selected,
		original: options[selected],
	}
}

func makeNumber(label, key string, value, min, max int) settingsField {
	input := textinput.New()
	input.CharLimit = 4
	input.Width = 6
	input.SetValue(strconv.Itoa(value))
	return settingsField{
		label:    label,
		key:      key,
		typ:      fieldNumber,
		input:    input,
		original: strconv.Itoa(value),
		min:      min,
		max:      max,
	}
}

// Update handles one key press and reports the resulting action.
func (f *SettingsForm) Update(msg tea.KeyMsg) (settingsAction, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return settingsCancel, nil
	case "enter":
		if _, err := f.Patch(); err != nil {
			f.errMsg = err.Error()
			return settingsNone, nil
		}
		return settingsSave, nil
	case "ctrl+r":
		return settingsReset, nil
	case "up", "shift+tab":
		f.focusField((f.focused - 1 + len(f.fields)) % len(f.fields))
		return settingsNone, nil
	case "down", "tab":
		f.focusField((f.focused + 1) % len(f.fields))
		return settingsNone, nil
	}

	field := &f.fields[f.focused]
	switch field.typ {
	case fieldSelect:
		switch msg.String() {
		case "left", "h":
			field.selected = (field.selected - 1 + len(field.options)) % len(field.options)
		case "right", "l", " ":
			field.selected = (field.selected + 1) % len(field.options)
		}
		return settingsNone, nil
	case fieldNumber:
		var cmd tea.Cmd
		field.input, cmd = field.input.Update(msg)
		f.errMsg = ""
		return settingsNone, cmd
	}
	return settingsNone, nil
}

func (f *SettingsForm) focusField(idx int) {
	for i := range f.fields {
		f.fields[i].input.Blur()
	}
	f.focused = idx
	if f.fields[idx].typ == fieldNumber {
		f.fields[idx].input.Focus()
	}
}

// Patch returns the partial preference set covering only the fields the
// user changed from their primed values. Number fields are validated
// against their bounds.
func (f *SettingsForm) Patch() (model.PrefPatch, error) {
	var patch model.PrefPatch

	for _, field := range f.fields {
		switch field.typ {
		case fieldSelect:
			value := field.options[field.selected]
			if value == field.original {
				continue
			}
			switch field.key {
			case "origin":
				patch.Origin = &value
			case "namespace":
				patch.Namespace = &value
			case "direction":
				patch.Direction = &value
			case "newOnly":
				newOnly := value == newOnlyOptions[1]
				patch.NewOnly = &newOnly
			}
		case fieldNumber:
			raw := strings.TrimSpace(field.input.Value())
			if raw == field.original {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil || n < field.min || n > field.max {
				return model.PrefPatch{}, fmt.Errorf("%s must be a number between %d and %d", field.label, field.min, field.max)
			}
			switch field.key {
			case "quantity":
				patch.Quantity = &n
			case "frequency":
				patch.Frequency = &n
			}
		}
	}

	return patch, nil
}

// View renders the form.
func (f *SettingsForm) View(width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	for i, field := range f.fields {
		cursor := "  "
		label := field.label
		if i == f.focused {
			cursor = accentStyle.Render("> ")
			label = accentStyle.Render(field.label)
		}

		var value string
		switch field.typ {
		case fieldSelect:
			value = "◂ " + field.options[field.selected] + " ▸"
		case fieldNumber:
			value = field.input.View()
		}

		b.WriteString(fmt.Sprintf("%s%-14s %s\n", cursor, label, value))
	}

	b.WriteString("\n")
	if f.errMsg != "" {
		b.WriteString(negativeStyle.Render(f.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("enter: save • ctrl+r: reset to defaults • esc: cancel"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2)
	if width > 0 {
		box = box.MaxWidth(width)
	}
	return box.Render(b.String())
}
