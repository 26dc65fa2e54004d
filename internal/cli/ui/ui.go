package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

var ErrNotInteractive = errors.New("input required in non-interactive mode")

// UI is the terminal the CLI talks to
type UI struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Std returns a UI bound to the process's standard streams
func Std() *UI {
	return &UI{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Alert prints a message the user must see, on stderr
func (u *UI) Alert(msg string) {
	fmt.Fprintf(u.Err, "⚠ %s\n", msg)
}

func (u *UI) Printf(format string, args ...any) {
	fmt.Fprintf(u.Out, format, args...)
}

func (u *UI) Println(args ...any) {
	fmt.Fprintln(u.Out, args...)
}

// Table is a tab-aligned writer with a header and underline row
type Table struct {
	w *tabwriter.Writer
}

func (u *UI) Table(headers ...string) *Table {
	w := tabwriter.NewWriter(u.Out, 0, 0, 2, ' ', 0)
	underline := make([]string, len(headers))
	for i, h := range headers {
		underline[i] = strings.Repeat("─", len([]rune(h)))
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	fmt.Fprintln(w, strings.Join(underline, "\t"))
	return &Table{w: w}
}

func (t *Table) Row(cells ...any) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(t.w, strings.Join(parts, "\t"))
}

func (t *Table) Flush() error {
	return t.w.Flush()
}

// terminalFd returns the descriptor of In when it is an interactive terminal
func (u *UI) terminalFd() (int, bool) {
	f, ok := u.In.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// Password reads a secret without echo. Fails when input is not a terminal.
func (u *UI) Password(label string) (string, error) {
	fd, ok := u.terminalFd()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotInteractive, strings.ToLower(label))
	}

	fmt.Fprintf(u.Err, "%s: ", label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(u.Err) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

// Prompt asks for a line of input
func (u *UI) Prompt(label string) (string, error) {
	if _, ok := u.terminalFd(); !ok {
		return "", fmt.Errorf("%w: %s", ErrNotInteractive, strings.ToLower(label))
	}

	p := promptui.Prompt{
		Label: label,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("value is required")
			}
			return nil
		},
	}
	v, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return strings.TrimSpace(v), nil
}

// Confirm asks a yes/no question. Non-interactive sessions get an error
// so destructive commands require --yes there.
func (u *UI) Confirm(label string) (bool, error) {
	if _, ok := u.terminalFd(); !ok {
		return false, fmt.Errorf("%w: confirm with --yes", ErrNotInteractive)
	}

	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("prompt cancelled: %w", err)
	}
	return true, nil
}
