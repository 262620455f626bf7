// Package screen tracks which top-level screen is showing, which modals are
// stacked over it, and whether a blocking notice is waiting to be dismissed.
package screen

// Screen is one of the mutually exclusive top-level views.
type Screen int

const (
	Selection Screen = iota
	Learning
	Simulation
	Completion
)

func (s Screen) String() string {
	switch s {
	case Selection:
		return "selection"
	case Learning:
		return "learning"
	case Simulation:
		return "simulation"
	case Completion:
		return "completion"
	default:
		return "unknown"
	}
}

// Modal is a dialog drawn over the active screen.
type Modal int

const (
	ModalNone Modal = iota
	ModalRubric
	ModalBackground
	ModalFeedbackDetail
	ModalDebug
)

func (m Modal) String() string {
	switch m {
	case ModalRubric:
		return "rubric"
	case ModalBackground:
		return "background"
	case ModalFeedbackDetail:
		return "feedback_detail"
	case ModalDebug:
		return "debug"
	default:
		return "none"
	}
}

// Notice is a blocking message the user must acknowledge.
type Notice struct {
	Title   string
	Message string
}

// Controller holds navigation state. The zero value shows Selection with no
// modals open.
type Controller struct {
	active Screen
	modals []Modal
	notice *Notice
}

// Active returns the current screen.
func (c *Controller) Active() Screen { return c.active }

// Show switches to s. The modal stack is left as it is.
func (c *Controller) Show(s Screen) { c.active = s }

// Open pushes m on top of the modal stack. Opening a modal that is already
// open moves it to the top.
func (c *Controller) Open(m Modal) {
	if m == ModalNone {
		return
	}
	c.remove(m)
	c.modals = append(c.modals, m)
}

// Close removes m wherever it sits in the stack.
func (c *Controller) Close(m Modal) { c.remove(m) }

// Toggle opens m, or closes it if it is already open.
func (c *Controller) Toggle(m Modal) {
	if c.IsOpen(m) {
		c.remove(m)
		return
	}
	c.Open(m)
}

// CloseTop closes the top-most modal and reports whether one was open.
func (c *Controller) CloseTop() bool {
	if len(c.modals) == 0 {
		return false
	}
	c.modals = c.modals[:len(c.modals)-1]
	return true
}

// CloseAll empties the modal stack.
func (c *Controller) CloseAll() { c.modals = nil }

// Top returns the top-most modal, or ModalNone.
func (c *Controller) Top() Modal {
	if len(c.modals) == 0 {
		return ModalNone
	}
	return c.modals[len(c.modals)-1]
}

// IsOpen reports whether m is anywhere in the stack.
func (c *Controller) IsOpen(m Modal) bool {
	for _, open := range c.modals {
		if open == m {
			return true
		}
	}
	return false
}

// Modals returns the open modals, bottom first.
func (c *Controller) Modals() []Modal {
	out := make([]Modal, len(c.modals))
	copy(out, c.modals)
	return out
}

// Notify raises a blocking notice, replacing any notice already shown.
func (c *Controller) Notify(title, message string) {
	c.notice = &Notice{Title: title, Message: message}
}

// Notice returns the pending notice, if any.
func (c *Controller) Notice() *Notice { return c.notice }

// Blocked reports whether input other than dismissing the notice is refused.
func (c *Controller) Blocked() bool { return c.notice != nil }

// Dismiss clears the notice.
func (c *Controller) Dismiss() { c.notice = nil }

func (c *Controller) remove(m Modal) {
	out := c.modals[:0]
	for _, open := range c.modals {
		if open != m {
			out = append(out, open)
		}
	}
	c.modals = out
}
