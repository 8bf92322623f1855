// Package versions enumerates installed versions and resolves version
// specifiers against links and the install directory.
//
// Resolution order for a specifier:
//
//  1. A link with that name (a link always beats an installed copy).
//  2. "latest": the highest installed stable semantic version.
//  3. An installed directory named exactly like the specifier.
//  4. A semantic version constraint such as "^3.0.0".
//
// Get composes resolution with installation: when nothing installed matches,
// the configured Installer is asked once for the version and the result is
// resolved again.
package versions
