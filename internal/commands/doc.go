// Package commands builds the command table of an installed version from its
// command manifest and dispatches named commands to it. Commands run as child
// processes rooted at the version directory; their output is streamed to the
// configured writers and captured in the returned Result.
package commands
