package model

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

const macosClearCmd = "clear"

// TerminalRenderer writes universes to a terminal
type TerminalRenderer struct {
	Out io.Writer
}

func (r *TerminalRenderer) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

// Display renders the universe to the terminal
func (r *TerminalRenderer) Display(u *Universe) {
	fmt.Fprint(r.out(), u.Render())
}

// Clear clears the terminal screen
func (r *TerminalRenderer) Clear() {
	cmd := exec.Command(macosClearCmd)
	cmd.Stdout = r.out()
	if err := cmd.Run(); err != nil {
		fmt.Fprintln(r.out(), "Error clearing terminal:", err)
	}
}
