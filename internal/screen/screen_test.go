package screen

import "testing"

func TestShowIsExclusive(t *testing.T) {
	var c Controller
	if c.Active() != Selection {
		t.Fatalf("zero controller shows %v", c.Active())
	}
	for _, s := range []Screen{Learning, Simulation, Completion, Selection} {
		c.Show(s)
		if c.Active() != s {
			t.Errorf("Show(%v) left %v active", s, c.Active())
		}
	}
}

func TestModalsDoNotChangeScreen(t *testing.T) {
	var c Controller
	c.Show(Simulation)
	c.Open(ModalBackground)
	c.Open(ModalRubric)
	if c.Active() != Simulation {
		t.Errorf("opening modals changed screen to %v", c.Active())
	}
	if c.Top() != ModalRubric {
		t.Errorf("Top() = %v, want rubric", c.Top())
	}
}

func TestCloseTop(t *testing.T) {
	var c Controller
	c.Open(ModalBackground)
	c.Open(ModalFeedbackDetail)

	if !c.CloseTop() || c.Top() != ModalBackground {
		t.Fatalf("after first CloseTop, Top() = %v", c.Top())
	}
	if !c.CloseTop() || c.Top() != ModalNone {
		t.Fatalf("after second CloseTop, Top() = %v", c.Top())
	}
	if c.CloseTop() {
		t.Error("CloseTop with nothing open should report false")
	}
}

func TestOpenMovesToTop(t *testing.T) {
	var c Controller
	c.Open(ModalRubric)
	c.Open(ModalBackground)
	c.Open(ModalRubric)
	got := c.Modals()
	if len(got) != 2 || got[0] != ModalBackground || got[1] != ModalRubric {
		t.Errorf("Modals() = %v", got)
	}
	c.Open(ModalNone)
	if len(c.Modals()) != 2 {
		t.Error("ModalNone must not be pushed")
	}
}

func TestToggle(t *testing.T) {
	var c Controller
	c.Toggle(ModalDebug)
	if !c.IsOpen(ModalDebug) {
		t.Fatal("Toggle should open")
	}
	c.Toggle(ModalDebug)
	if c.IsOpen(ModalDebug) {
		t.Fatal("Toggle should close")
	}
}

func TestShowKeepsModals(t *testing.T) {
	var c Controller
	c.Open(ModalRubric)
	c.Open(ModalDebug)
	c.Show(Completion)
	if got := c.Modals(); len(got) != 2 || got[0] != ModalRubric || got[1] != ModalDebug {
		t.Errorf("modals after Show = %v, want [rubric debug]", got)
	}

	c.CloseAll()
	if c.Top() != ModalNone || c.Active() != Completion {
		t.Errorf("CloseAll: top=%v active=%v", c.Top(), c.Active())
	}
}

func TestNoticeBlocks(t *testing.T) {
	var c Controller
	if c.Blocked() {
		t.Fatal("fresh controller blocked")
	}
	c.Notify("Error", "first")
	c.Notify("Error", "second")
	if !c.Blocked() || c.Notice().Message != "second" {
		t.Fatalf("Notice() = %+v", c.Notice())
	}
	c.Dismiss()
	if c.Blocked() || c.Notice() != nil {
		t.Error("Dismiss should clear the notice")
	}
}
