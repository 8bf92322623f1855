// Package manifest handles the command manifest shipped inside every
// installed gitbook version. The manifest declares the version's command
// table (name, description, and the process to run) and may be written as
// YAML, JSON, or TOML. Manifests are validated against an embedded JSON
// Schema before any command is exposed.
package manifest
