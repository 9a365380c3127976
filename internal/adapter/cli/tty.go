package cli

import (
	"os"

	"golang.org/x/term"
)

// IsOutputTerminal checks if stdout is a TTY. When it is not, the compile
// command emits only the reply body so output can be piped straight into a
// mail client; the human summary appears only on a terminal.
func IsOutputTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
