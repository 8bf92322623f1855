// Package platform provides cross-platform filesystem operations used by the
// installer: permission management, symlink inspection inside the install
// directory, and atomic directory replacement with rollback.
package platform
