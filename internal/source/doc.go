// Package source talks to the package registry that publishes gitbook
// releases. It reads npm-registry-compatible metadata, resolves a version
// specifier (dist-tag, exact version, or semver constraint) to a published
// release, downloads and verifies the release tarball, and extracts it into
// a directory chosen by the caller.
package source
