package mosaic

import (
	"github.com/matzehuels/mosaic/pkg/errors"
)

// Command names an operation that can be invoked on an Engine by name,
// e.g. from a CLI argument or an HTTP request.
type Command string

const (
	// CommandFit recomputes the layout.
	CommandFit Command = "fit"

	// CommandReset drops the retained layout.
	CommandReset Command = "reset"
)

// Commands lists the recognized commands.
var Commands = []Command{CommandFit, CommandReset}

// ParseCommand converts a name into a Command.
func ParseCommand(name string) (Command, error) {
	switch c := Command(name); c {
	case CommandFit, CommandReset:
		return c, nil
	}
	return "", errors.New(errors.ErrCodeInvalidCommand, "unknown command %q (must be one of: fit, reset)", name)
}

// Exec runs cmd on the engine.
func (e *Engine) Exec(cmd Command) error {
	switch cmd {
	case CommandFit:
		e.Fit()
	case CommandReset:
		e.reset()
	default:
		return errors.New(errors.ErrCodeInvalidCommand, "unknown command %q", cmd)
	}
	return nil
}
