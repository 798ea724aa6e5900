// Package config loads the routing core's file configuration: the tier
// table, provider registrations, and failover/breaker/escalation settings.
//
// YAML and TOML files are supported, selected by extension, with COGKIT_
// environment-variable overrides applied after parsing. Watch re-applies
// provider registrations when the file changes on disk, and Schema exports
// a JSON schema of the file format.
package config
