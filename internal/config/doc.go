// Package config manages the persisted settings stored at ~/.gitbook/config.yaml:
// the install directory, the package registry, and the link table that maps
// version aliases to local folders. A Store is created once per process and
// passed to the registry and installer; there is no package-level state.
package config
