// Package tui provides terminal user interface components for forage-ns
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionShell
	ActionNew
	ActionDelete
	ActionQuit
)

// PickerResult holds the result of the picker
type PickerResult struct {
	Action  Action
	Sandbox *sandbox.Summary

	// CreateOptions is set when ActionNew completed the wizard.
	CreateOptions *sandbox.CreateOptions
}

// sandboxItem implements list.Item for sandbox display
type sandboxItem struct {
	summary *sandbox.Summary
	uptime  string
}

func (i sandboxItem) Title() string {
	return fmt.Sprintf("%s  #%d", i.summary.Name, i.summary.Index)
}

func (i sandboxItem) Description() string {
	return fmt.Sprintf("%s %s | %s | %s | %s",
		i.summary.Status.Icon(),
		i.summary.Status,
		i.summary.Network.SandboxIP,
		i.uptime,
		truncatePath(i.summary.Workspace, 30),
	)
}

func (i sandboxItem) FilterValue() string {
	return i.summary.Name + " " + i.summary.ID
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the sandbox picker
type Model struct {
	list     list.Model
	wizard   *wizardModel
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a new sandbox picker
func NewPicker(sandboxes []*sandbox.Summary) Model {
	items := buildGroupedItems(sandboxes)

	l := list.New(items, newGroupedDelegate(), 80, 20)
	l.Title = "Forage - Sandboxes"
	l.SetShowStatusBar(true)
	l.SetStatusBarItemName("sandbox", "sandboxes")
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	// Start on the first selectable row.
	if len(items) > 0 {
		skipHeaders(&l, 1)
	}

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.list.SetSize(size.Width, size.Height-4)
		if m.wizard == nil {
			return m, nil
		}
	}

	if m.wizard != nil {
		done, opts, cmd := m.wizard.Update(msg)
		if !done {
			return m, cmd
		}
		m.wizard = nil
		if opts == nil {
			return m, nil
		}
		m.result = PickerResult{Action: ActionNew, CreateOptions: opts}
		m.quitting = true
		return m, tea.Quit
	}

	if key, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch key.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(sandboxItem); ok {
				return m.finish(ActionShell, item.summary)
			}
			return m, nil

		case "n":
			w := newWizardModel()
			m.wizard = &w
			return m, m.wizard.Init()

		case "d":
			if item, ok := m.list.SelectedItem().(sandboxItem); ok {
				return m.finish(ActionDelete, item.summary)
			}
			return m, nil

		case "q", "esc":
			return m.finish(ActionQuit, nil)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	if key, ok := msg.(tea.KeyMsg); ok {
		skipHeaders(&m.list, navigationDirection(key))
	}
	return m, cmd
}

func (m Model) finish(action Action, sb *sandbox.Summary) (tea.Model, tea.Cmd) {
	m.result = PickerResult{Action: action, Sandbox: sb}
	m.quitting = true
	return m, tea.Quit
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.wizard != nil {
		return m.wizard.View()
	}

	count := len(m.list.Items()) - headerCount(m.list.Items())
	help := helpStyle.Render(fmt.Sprintf("%d sandboxes  [enter] Shell  [n] New  [d] Delete  [/] Filter  [q] Quit", count))

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive sandbox picker
func RunPicker(sandboxes []*sandbox.Summary) (PickerResult, error) {
	m := NewPicker(sandboxes)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}

	return finalModel.(Model).Result(), nil
}

// SimplePicker is a non-interactive picker that just lists sandboxes
func SimplePicker(sandboxes []*sandbox.Summary) string {
	var sb strings.Builder

	sb.WriteString("Forage - Sandboxes\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(sandboxes) == 0 {
		sb.WriteString("No sandboxes found.\n")
		sb.WriteString("Create one with: forage-ns create --name <name>\n")
		return sb.String()
	}

	for _, s := range sandboxes {
		sb.WriteString(fmt.Sprintf("%d. %s %s (%s)\n",
			s.Index, s.Status.Icon(), s.Name, s.Status))
		sb.WriteString(fmt.Sprintf("   IP: %s | Workspace: %s\n\n",
			s.Network.SandboxIP, truncatePath(s.Workspace, 40)))
	}

	return sb.String()
}
