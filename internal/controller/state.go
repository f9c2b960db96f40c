package controller

import "context"

type View int

const (
	ViewAuth View = iota
	ViewMain
)

func (v View) String() string {
	if v == ViewMain {
		return "main"
	}
	return "auth"
}

type Kind int

const (
	KindNone Kind = iota
	KindSuccess
	KindError
)

// Message is the content of one message area.
type Message struct {
	Text string
	Kind Kind
}

func success(text string) Message { return Message{Text: text, Kind: KindSuccess} }
func failure(text string) Message { return Message{Text: "Error: " + text, Kind: KindError} }

// Option is one entry of the doctor picker. The placeholder has an empty Value.
type Option struct {
	Value string
	Label string
}

// AppointmentItem is one rendered appointment; ID feeds the cancel control.
type AppointmentItem struct {
	ID   int64
	Text string
}

// State is the whole rendered UI. Slices are replaced, never edited in place,
// so a shallow copy is a safe snapshot.
type State struct {
	View View

	RegisterMsg Message
	LoginMsg    Message
	BookingMsg  Message

	// DoctorsText replaces Doctors when set (load failure).
	Doctors       []string
	DoctorsText   string
	DoctorOptions []Option

	// AppointmentsText replaces Appointments when set (empty list or failure).
	Appointments     []AppointmentItem
	AppointmentsText string
}

// Renderer draws a State. Alert shows a one-off notice that is not part of the view.
type Renderer interface {
	Render(s State)
	Alert(m Message)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}
