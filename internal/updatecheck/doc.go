// Package updatecheck tells the user when the registry's latest release is
// newer than the newest installed version. The registry answer is cached in
// the config directory for a day so most invocations stay offline.
package updatecheck
