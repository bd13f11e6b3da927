//go:build !linux

package wings

// stdoutIsTerminal reports false on platforms without a terminal probe; the
// host can force the result through the isatty config option.
func stdoutIsTerminal() bool { return false }
