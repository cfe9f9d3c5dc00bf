package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeInto(w *wizardModel, s string) {
	for _, r := range s {
		w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func enter(w *wizardModel) (bool, bool) {
	done, opts, _ := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return done, opts != nil
}

func TestWizard_Defaults(t *testing.T) {
	w := newWizardModel()

	for i := 0; i < 3; i++ {
		if done, _ := enter(&w); done {
			t.Fatalf("wizard finished early at step %d", i)
		}
	}
	if w.step != stepConfirm {
		t.Fatalf("step = %d, want confirm", w.step)
	}
	if !strings.Contains(w.View(), "(auto)") {
		t.Error("confirm view should show the automatic name")
	}

	done, opts, _ := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !done || opts == nil {
		t.Fatal("confirm should finish with options")
	}
	if opts.Name != "" || opts.Workspace != "" || len(opts.Command) != 0 {
		t.Errorf("options = %+v, want all defaults", opts)
	}
}

func TestWizard_InvalidName(t *testing.T) {
	w := newWizardModel()
	typeInto(&w, "Bad Name")
	enter(&w)

	if w.step != stepName {
		t.Errorf("step = %d, want to stay on name", w.step)
	}
	if w.err == "" || !strings.Contains(w.View(), "invalid sandbox name") {
		t.Error("View should show the validation error")
	}
}

func TestWizard_InvalidCommand(t *testing.T) {
	w := newWizardModel()
	enter(&w)
	enter(&w)
	typeInto(&w, `echo "unterminated`)
	enter(&w)

	if w.step != stepCommand {
		t.Errorf("step = %d, want to stay on command", w.step)
	}
	if !strings.Contains(w.err, "invalid command") {
		t.Errorf("err = %q", w.err)
	}
}

func TestWizard_BackAndRestart(t *testing.T) {
	w := newWizardModel()
	typeInto(&w, "web")
	enter(&w)
	typeInto(&w, "/srv/web")
	enter(&w)

	w.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if w.step != stepWorkspace {
		t.Fatalf("step = %d, want workspace after Esc", w.step)
	}
	enter(&w)
	enter(&w)

	view := w.View()
	for _, want := range []string{"web", "/srv/web", "(default)"} {
		if !strings.Contains(view, want) {
			t.Errorf("confirm view missing %q", want)
		}
	}

	w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if w.step != stepName || w.name != "" || w.nameInput.Value() != "" {
		t.Error("n should restart the wizard with empty fields")
	}
}

func TestWizard_Cancel(t *testing.T) {
	for _, key := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		w := newWizardModel()
		done, opts, _ := w.Update(key)
		if !done || opts != nil {
			t.Errorf("%s: done=%v opts=%v, want cancelled", key.String(), done, opts)
		}
	}
}

func TestWizard_ProgressBar(t *testing.T) {
	w := newWizardModel()
	bar := w.progressBar()
	for _, name := range stepNames {
		if !strings.Contains(bar, name) {
			t.Errorf("progress bar missing %q", name)
		}
	}
}
