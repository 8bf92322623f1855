// Package installer installs versions from the package source into the
// install directory, records and removes links, and uninstalls versions.
//
// Installs are staged in a hidden directory inside the install directory and
// moved into place only after the download has been verified, extracted, and
// its command manifest validated, so an interrupted install never shows up as
// an installed version.
package installer
