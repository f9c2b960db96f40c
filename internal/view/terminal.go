package view

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"hospital-booking/internal/controller"
)

// Terminal draws controller state as plain text and reads answers from in.
type Terminal struct {
	out io.Writer
	in  *bufio.Reader
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{out: out, in: bufio.NewReader(in)}
}

func (t *Terminal) Render(s controller.State) {
	var b strings.Builder
	b.WriteString("\n")
	if s.View == controller.ViewAuth {
		b.WriteString("== Register ==\n")
		writeMsg(&b, s.RegisterMsg)
		b.WriteString("== Login ==\n")
		writeMsg(&b, s.LoginMsg)
		b.WriteString("\ncommands: register <username> <email> <password> | login <email> <password> | help | quit\n")
		_, _ = io.WriteString(t.out, b.String())
		return
	}

	b.WriteString("== Doctors ==\n")
	if s.DoctorsText != "" {
		fmt.Fprintf(&b, "  %s\n", s.DoctorsText)
	}
	for _, d := range s.Doctors {
		fmt.Fprintf(&b, "  %s\n", d)
	}

	b.WriteString("== Book an appointment ==\n")
	for _, o := range s.DoctorOptions {
		if o.Value == "" {
			fmt.Fprintf(&b, "  %s\n", o.Label)
			continue
		}
		fmt.Fprintf(&b, "  [%s] %s\n", o.Value, o.Label)
	}
	writeMsg(&b, s.BookingMsg)

	b.WriteString("== My appointments ==\n")
	if s.AppointmentsText != "" {
		fmt.Fprintf(&b, "  %s\n", s.AppointmentsText)
	}
	for _, a := range s.Appointments {
		fmt.Fprintf(&b, "  %s  (cancel %d)\n", a.Text, a.ID)
	}
	b.WriteString("\ncommands: doctors [specialty] | appointments | book <doctor-id> <YYYY-MM-DDTHH:MM> | cancel <id> | logout | help | quit\n")
	_, _ = io.WriteString(t.out, b.String())
}

func (t *Terminal) Alert(m controller.Message) {
	fmt.Fprintf(t.out, "\n%s %s\n", marker(m.Kind), m.Text)
}

// Confirm asks prompt and accepts y or yes. EOF and cancelled contexts answer no.
func (t *Terminal) Confirm(ctx context.Context, prompt string) bool {
	if ctx.Err() != nil {
		return false
	}
	fmt.Fprintf(t.out, "%s [y/N] ", prompt)
	line, err := t.ReadLine()
	if err != nil {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	}
	return false
}

// ReadLine returns the next input line without its line ending.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) Prompt(view controller.View) {
	fmt.Fprintf(t.out, "%s> ", view)
}

func (t *Terminal) Println(a ...any) {
	fmt.Fprintln(t.out, a...)
}

func writeMsg(b *strings.Builder, m controller.Message) {
	if m.Text == "" && m.Kind == controller.KindNone {
		return
	}
	fmt.Fprintf(b, "  %s %s\n", marker(m.Kind), m.Text)
}

func marker(k controller.Kind) string {
	switch k {
	case controller.KindSuccess:
		return "[ok]"
	case controller.KindError:
		return "[!!]"
	}
	return "[--]"
}
