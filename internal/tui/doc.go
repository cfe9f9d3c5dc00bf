// Package tui provides terminal user interface components for forage-ns.
//
// This package uses the Bubble Tea framework for the interactive sandbox
// picker behind the pick command.
//
// # Sandbox Picker
//
// The picker displays sandboxes grouped by status and allows selection:
//
//	result, err := tui.RunPicker(summaries)
//	switch result.Action {
//	case tui.ActionShell:
//	    // Enter result.Sandbox
//	case tui.ActionNew:
//	    // Create from result.CreateOptions
//	case tui.ActionDelete:
//	    // Delete result.Sandbox
//	case tui.ActionQuit:
//	    // Exit
//	}
//
// # Picker Features
//
//   - Sandboxes grouped by status (running, exited, unknown)
//   - Keyboard navigation (j/k or arrows), headers auto-skipped
//   - Quick actions: Enter (shell), n (new), d (delete), q (quit)
//   - Creation wizard (name, workspace, command, confirm)
//
// SimplePicker renders the same list as plain text for non-terminals.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
