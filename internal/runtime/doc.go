// Package runtime provides the execution context for the tool commands.
//
// It carries the shared dependencies every command needs, such as the
// logger, the config and credential stores, the prompt collector, the step
// runner and the factories for the GitHub client and shell runner.
package runtime
