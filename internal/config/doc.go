// Package config manages the persisted settings of the toolkit.
//
// It handles:
//   - Template repositories and the GitHub organization
//   - Intro, readiness and merge timing preferences
//   - The last answers of every tool, used as defaults on the next run
//
// The store is a JSON file read and written through viper, validated against
// an embedded JSON schema, and migrated on load when an older layout is found.
package config
