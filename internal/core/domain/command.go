package domain

import (
	"fmt"
	"strings"
)

// Command is a single invocation of an external tool.
type Command struct {
	// Name is the executable, resolved against the PATH of Env when not absolute.
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds "KEY=VALUE" overrides applied on top of the process environment.
	Env []string
}

// String renders the command line the way a user would type it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, arg := range c.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			parts = append(parts, fmt.Sprintf("%q", arg))
			continue
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// CommandError reports a failed external command with its exit status and the
// tail of its combined output, exactly as the tool produced it.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

// Error returns the command line, the exit status and the captured output.
func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command %q exited with status %d", e.Command, e.ExitCode)
	if out := strings.TrimRight(e.Output, "\n"); out != "" {
		b.WriteString("\n")
		b.WriteString(out)
	}
	return b.String()
}

// Unwrap returns the underlying process error.
func (e *CommandError) Unwrap() error {
	return e.Err
}
