package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
)

// wizardStep identifies the current step.
type wizardStep int

const (
	stepName wizardStep = iota
	stepWorkspace
	stepCommand
	stepConfirm
)

var stepNames = []string{"Name", "Workspace", "Command", "Confirm"}

// wizardModel drives the sandbox creation form.
type wizardModel struct {
	step wizardStep

	nameInput      textinput.Model
	workspaceInput textinput.Model
	commandInput   textinput.Model

	// Collected values
	name      string
	workspace string
	command   []string

	err string
}

// wizardStyles
var (
	wizardTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				MarginBottom(1)

	wizardStepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	wizardActiveStepStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	wizardLabelStyle = lipgloss.NewStyle().
				Bold(true).
				MarginBottom(1)

	wizardValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39"))

	wizardDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	wizardErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))
)

func newWizardModel() wizardModel {
	ni := textinput.New()
	ni.Placeholder = "sandbox-<index>"
	ni.CharLimit = 63
	ni.Width = 40
	ni.Focus()

	wi := textinput.New()
	wi.Placeholder = "private workspace"
	wi.CharLimit = 256
	wi.Width = 60

	ci := textinput.New()
	ci.Placeholder = strings.Join(config.DefaultCommand, " ")
	ci.CharLimit = 512
	ci.Width = 60

	return wizardModel{
		nameInput:      ni,
		workspaceInput: wi,
		commandInput:   ci,
	}
}

func (w *wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update processes a message and returns (done, createOptions, cmd).
// done=true with non-nil opts means wizard completed successfully.
// done=true with nil opts means wizard was cancelled.
func (w *wizardModel) Update(msg tea.Msg) (bool, *sandbox.CreateOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyCtrlC:
			return true, nil, nil
		case tea.KeyEsc:
			return w.handleBack()
		}
	}

	switch w.step {
	case stepName:
		return w.updateInput(msg, &w.nameInput, w.acceptName)
	case stepWorkspace:
		return w.updateInput(msg, &w.workspaceInput, w.acceptWorkspace)
	case stepCommand:
		return w.updateInput(msg, &w.commandInput, w.acceptCommand)
	case stepConfirm:
		return w.updateConfirm(msg)
	}

	return false, nil, nil
}

func (w *wizardModel) input(step wizardStep) *textinput.Model {
	switch step {
	case stepName:
		return &w.nameInput
	case stepWorkspace:
		return &w.workspaceInput
	case stepCommand:
		return &w.commandInput
	}
	return nil
}

// goTo moves to step and focuses its input, if any.
func (w *wizardModel) goTo(step wizardStep) tea.Cmd {
	if ti := w.input(w.step); ti != nil {
		ti.Blur()
	}
	w.step = step
	w.err = ""
	if ti := w.input(step); ti != nil {
		ti.Focus()
		return textinput.Blink
	}
	return nil
}

func (w *wizardModel) handleBack() (bool, *sandbox.CreateOptions, tea.Cmd) {
	if w.step == stepName {
		// Esc at first step cancels wizard
		return true, nil, nil
	}
	return false, nil, w.goTo(w.step - 1)
}

func (w *wizardModel) updateInput(msg tea.Msg, ti *textinput.Model, accept func(string) error) (bool, *sandbox.CreateOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		if err := accept(strings.TrimSpace(ti.Value())); err != nil {
			w.err = err.Error()
			return false, nil, nil
		}
		return false, nil, w.goTo(w.step + 1)
	}

	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	return false, nil, cmd
}

func (w *wizardModel) acceptName(v string) error {
	if v != "" {
		if err := config.ValidateSandboxName(v); err != nil {
			return err
		}
	}
	w.name = v
	return nil
}

func (w *wizardModel) acceptWorkspace(v string) error {
	w.workspace = v
	return nil
}

func (w *wizardModel) acceptCommand(v string) error {
	words, err := shellquote.Split(v)
	if err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}
	w.command = words
	return nil
}

func (w *wizardModel) updateConfirm(msg tea.Msg) (bool, *sandbox.CreateOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter", "y":
			return true, w.options(), nil
		case "n":
			// Restart wizard
			for _, ti := range []*textinput.Model{&w.nameInput, &w.workspaceInput, &w.commandInput} {
				ti.SetValue("")
			}
			w.name, w.workspace, w.command = "", "", nil
			return false, nil, w.goTo(stepName)
		}
	}
	return false, nil, nil
}

func (w *wizardModel) options() *sandbox.CreateOptions {
	return &sandbox.CreateOptions{
		Name:      w.name,
		Workspace: w.workspace,
		Command:   w.command,
	}
}

func (w *wizardModel) View() string {
	var b strings.Builder

	b.WriteString(wizardTitleStyle.Render("Create New Sandbox"))
	b.WriteString("\n")
	b.WriteString(w.progressBar())
	b.WriteString("\n\n")

	switch w.step {
	case stepName:
		b.WriteString(wizardLabelStyle.Render("Sandbox name:"))
		b.WriteString("\n")
		b.WriteString(w.nameInput.View())
		b.WriteString("\n\n")
		b.WriteString(wizardDimStyle.Render("Leave empty to name it after its index."))
	case stepWorkspace:
		b.WriteString(wizardLabelStyle.Render("Workspace:"))
		b.WriteString("\n")
		b.WriteString(w.workspaceInput.View())
		b.WriteString("\n\n")
		b.WriteString(wizardDimStyle.Render("Absolute path, or relative to the workspaces directory."))
	case stepCommand:
		b.WriteString(wizardLabelStyle.Render("Command:"))
		b.WriteString("\n")
		b.WriteString(w.commandInput.View())
		b.WriteString("\n\n")
		b.WriteString(wizardDimStyle.Render("Shell-quoted; leave empty for the default."))
	case stepConfirm:
		b.WriteString(wizardLabelStyle.Render("Confirm:"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  Name:      %s\n", wizardValueStyle.Render(orDefault(w.name, "(auto)"))))
		b.WriteString(fmt.Sprintf("  Workspace: %s\n", wizardValueStyle.Render(orDefault(w.workspace, "(private)"))))
		b.WriteString(fmt.Sprintf("  Command:   %s\n", wizardValueStyle.Render(orDefault(shellquote.Join(w.command...), "(default)"))))
		b.WriteString("\n")
		b.WriteString(wizardDimStyle.Render("Enter to create, n to restart, Esc to go back."))
	}

	if w.err != "" {
		b.WriteString("\n\n")
		b.WriteString(wizardErrorStyle.Render(w.err))
	}

	return b.String()
}

func (w *wizardModel) progressBar() string {
	parts := make([]string, len(stepNames))
	for i, name := range stepNames {
		label := fmt.Sprintf("%d. %s", i+1, name)
		if wizardStep(i) == w.step {
			parts[i] = wizardActiveStepStyle.Render(label)
		} else {
			parts[i] = wizardStepStyle.Render(label)
		}
	}
	return strings.Join(parts, wizardStepStyle.Render(" → "))
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
