package versions

import (
	"fmt"
	"strings"
)

// Latest is the specifier used when no version is given.
const Latest = "latest"

// Version is one resolvable version: an installed copy or a linked folder.
type Version struct {
	Name   string
	Path   string
	Linked bool
}

func (v Version) String() string {
	if v.Linked {
		return fmt.Sprintf("%s -> %s", v.Name, v.Path)
	}
	return v.Name
}

// NotFoundError reports a specifier that matches no link and no installed
// version.
type NotFoundError struct {
	Spec string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("version %s not found", e.Spec)
}

// State is the resolution progress of a single Get call.
type State int

const (
	StateUnresolved State = iota
	StateResolving
	StateInstalling
	StateResolved
	StateFailed
)

var stateNames = [...]string{
	StateUnresolved: "unresolved",
	StateResolving:  "resolving",
	StateInstalling: "installing",
	StateResolved:   "resolved",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// hidden reports whether a directory entry is internal bookkeeping
// (staging dirs, backups) rather than an installed version.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
