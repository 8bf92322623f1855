// Package cli defines the Cobra command tree for the gitbook CLI. Each file
// in this package builds one built-in command (versions, version:install,
// version:link, ...). Any other command name is delegated to the command
// table of the version selected with --gitbook.
package cli
