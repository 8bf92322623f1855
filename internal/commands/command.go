package commands

import (
	"context"
	"fmt"
	"strings"
)

// Command is one entry of a version's command table.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args []string, kwargs map[string]string) (*Result, error)
}

// Result captures the outcome of a command execution.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Table is the ordered set of commands a version exposes.
type Table struct {
	Version string
	Root    string

	commands []Command
	index    map[string]Command
}

// NewTable builds a table from cmds, keeping their order. Later entries with
// a duplicate name are ignored.
func NewTable(version, root string, cmds ...Command) *Table {
	t := &Table{
		Version: version,
		Root:    root,
		index:   make(map[string]Command, len(cmds)),
	}
	for _, c := range cmds {
		if _, dup := t.index[c.Name()]; dup {
			continue
		}
		t.index[c.Name()] = c
		t.commands = append(t.commands, c)
	}
	return t
}

// Lookup returns the command registered under exactly name.
func (t *Table) Lookup(name string) (Command, bool) {
	if t == nil {
		return nil, false
	}
	c, ok := t.index[name]
	return c, ok
}

// Commands returns the commands in declaration order.
func (t *Table) Commands() []Command {
	if t == nil {
		return nil
	}
	out := make([]Command, len(t.commands))
	copy(out, t.commands)
	return out
}

// Names returns the command names in declaration order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Commands()))
	for _, c := range t.Commands() {
		names = append(names, c.Name())
	}
	return names
}

// InvalidInstallationError reports a version directory whose command table
// cannot be loaded.
type InvalidInstallationError struct {
	Root string
	Err  error
}

func (e *InvalidInstallationError) Error() string {
	return fmt.Sprintf("invalid installation at %s: %v", e.Root, e.Err)
}

func (e *InvalidInstallationError) Unwrap() error { return e.Err }

// UnknownCommandError reports a command name missing from the table.
type UnknownCommandError struct {
	Name      string
	Version   string
	Available []string
}

func (e *UnknownCommandError) Error() string {
	msg := fmt.Sprintf("command %q doesn't exist in version %s", e.Name, e.Version)
	if len(e.Available) > 0 {
		msg += ", available: " + strings.Join(e.Available, ", ")
	}
	return msg
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Name string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Name, e.Code)
}
