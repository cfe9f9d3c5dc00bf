package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/health"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/network"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
)

func testSummary(name string, index int, status health.Status) *sandbox.Summary {
	return &sandbox.Summary{
		ID:        "id-" + name,
		Index:     index,
		Name:      name,
		CreatedAt: time.Now().Add(-2*time.Hour - 30*time.Minute),
		Workspace: "/var/lib/forage-ns/workspaces/" + name,
		Status:    status,
		Network:   network.Network{SandboxIP: "10.201.0.2"},
		PID:       1000 + index,
	}
}

func runes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path   string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"/home/user/workspace", 20, "/home/user/workspace"},
		{"/home/user/very/long/path/to/workspace", 20, "...path/to/workspace"},
		{"", 10, ""},
		{"exactly10!", 10, "exactly10!"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := truncatePath(tt.path, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncatePath(%q, %d) = %q, want %q", tt.path, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestSandboxItemMethods(t *testing.T) {
	item := sandboxItem{summary: testSummary("web", 3, health.StatusRunning), uptime: "2h30m"}

	if got := item.Title(); got != "web  #3" {
		t.Errorf("Title() = %q", got)
	}
	if got := item.FilterValue(); !strings.Contains(got, "web") || !strings.Contains(got, "id-web") {
		t.Errorf("FilterValue() = %q", got)
	}

	desc := item.Description()
	for _, want := range []string{"●", "running", "10.201.0.2", "2h30m"} {
		if !strings.Contains(desc, want) {
			t.Errorf("Description() = %q, missing %q", desc, want)
		}
	}
}

func TestModelKeyHandling(t *testing.T) {
	sandboxes := []*sandbox.Summary{
		testSummary("web", 0, health.StatusRunning),
		testSummary("old", 1, health.StatusExited),
	}

	t.Run("quit with q", func(t *testing.T) {
		m := NewPicker(sandboxes)
		newModel, cmd := m.Update(runes('q'))
		model := newModel.(Model)

		if model.result.Action != ActionQuit {
			t.Errorf("Action = %v, want ActionQuit", model.result.Action)
		}
		if !model.quitting {
			t.Error("Model should be quitting")
		}
		if cmd == nil {
			t.Error("Should return tea.Quit command")
		}
	})

	t.Run("quit with esc", func(t *testing.T) {
		m := NewPicker(sandboxes)
		newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

		if newModel.(Model).result.Action != ActionQuit {
			t.Errorf("Action = %v, want ActionQuit", newModel.(Model).result.Action)
		}
	})

	t.Run("enter opens shell on first sandbox", func(t *testing.T) {
		m := NewPicker(sandboxes)
		newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		result := newModel.(Model).Result()

		if result.Action != ActionShell {
			t.Fatalf("Action = %v, want ActionShell", result.Action)
		}
		if result.Sandbox == nil || result.Sandbox.Name != "web" {
			t.Errorf("Sandbox = %+v, want web", result.Sandbox)
		}
	})

	t.Run("delete with d", func(t *testing.T) {
		m := NewPicker(sandboxes)
		newModel, _ := m.Update(runes('d'))
		result := newModel.(Model).Result()

		if result.Action != ActionDelete || result.Sandbox == nil {
			t.Errorf("result = %+v, want delete of a sandbox", result)
		}
	})

	t.Run("n opens the wizard", func(t *testing.T) {
		m := NewPicker(sandboxes)
		newModel, _ := m.Update(runes('n'))
		model := newModel.(Model)

		if model.wizard == nil {
			t.Fatal("wizard should be open")
		}
		if model.quitting {
			t.Error("opening the wizard should not quit")
		}
		if !strings.Contains(model.View(), "Create New Sandbox") {
			t.Error("View should render the wizard")
		}
	})

	t.Run("window size update", func(t *testing.T) {
		m := NewPicker(sandboxes)
		newModel, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
		model := newModel.(Model)

		if model.width != 100 || model.height != 50 {
			t.Errorf("size = %dx%d, want 100x50", model.width, model.height)
		}
		if cmd != nil {
			t.Error("Window size update should not return a command")
		}
	})
}

func TestModelWizardFlow(t *testing.T) {
	m := tea.Model(NewPicker(nil))
	m, _ = m.Update(runes('n'))

	var steps []tea.Msg
	for _, r := range "api" {
		steps = append(steps, runes(r))
	}
	steps = append(steps, tea.KeyMsg{Type: tea.KeyEnter}) // name
	steps = append(steps, tea.KeyMsg{Type: tea.KeyEnter}) // workspace
	for _, r := range "sleep 60" {
		steps = append(steps, runes(r))
	}
	steps = append(steps, tea.KeyMsg{Type: tea.KeyEnter}) // command
	steps = append(steps, tea.KeyMsg{Type: tea.KeyEnter}) // confirm

	var cmd tea.Cmd
	for _, msg := range steps {
		m, cmd = m.Update(msg)
	}

	result := m.(Model).Result()
	if result.Action != ActionNew {
		t.Fatalf("Action = %v, want ActionNew", result.Action)
	}
	if cmd == nil {
		t.Error("completing the wizard should quit")
	}
	opts := result.CreateOptions
	if opts == nil {
		t.Fatal("CreateOptions should be set")
	}
	if opts.Name != "api" || opts.Workspace != "" {
		t.Errorf("options = %+v", opts)
	}
	if len(opts.Command) != 2 || opts.Command[0] != "sleep" || opts.Command[1] != "60" {
		t.Errorf("command = %v", opts.Command)
	}
}

func TestModelWizardCancel(t *testing.T) {
	m := tea.Model(NewPicker(nil))
	m, _ = m.Update(runes('n'))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	model := m.(Model)
	if model.wizard != nil {
		t.Error("Esc on the first step should close the wizard")
	}
	if model.quitting {
		t.Error("cancelling the wizard should return to the list")
	}
}

func TestModelInit(t *testing.T) {
	m := Model{}
	if cmd := m.Init(); cmd != nil {
		t.Error("Init() should return nil")
	}
}

func TestModelView(t *testing.T) {
	t.Run("normal view contains help", func(t *testing.T) {
		m := NewPicker([]*sandbox.Summary{testSummary("web", 0, health.StatusRunning)})
		view := m.View()

		for _, want := range []string{"[enter] Shell", "[n] New", "[d] Delete", "[q] Quit", "1 sandboxes"} {
			if !strings.Contains(view, want) {
				t.Errorf("View should contain %q", want)
			}
		}
	})

	t.Run("quitting view is empty", func(t *testing.T) {
		m := NewPicker(nil)
		m.quitting = true
		if view := m.View(); view != "" {
			t.Errorf("View() = %q, want empty", view)
		}
	})
}

func TestSimplePicker(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out := SimplePicker(nil)
		if !strings.Contains(out, "No sandboxes found") {
			t.Error("should report no sandboxes")
		}
		if !strings.Contains(out, "forage-ns create") {
			t.Error("should suggest the create command")
		}
	})

	t.Run("with sandboxes", func(t *testing.T) {
		out := SimplePicker([]*sandbox.Summary{
			testSummary("web", 0, health.StatusRunning),
			testSummary("old", 4, health.StatusExited),
		})
		for _, want := range []string{"0. ● web (running)", "4. ○ old (exited)", "IP: 10.201.0.2"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}
