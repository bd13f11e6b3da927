//go:build linux

package wings

import (
	"os"

	"golang.org/x/sys/unix"
)

// stdoutIsTerminal probes whether stdout is attached to a terminal.
func stdoutIsTerminal() bool {
	_, err := unix.IoctlGetTermios(int(os.Stdout.Fd()), unix.TCGETS)
	return err == nil
}
