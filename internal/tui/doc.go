// Package tui renders console output for the command line tools.
//
// Splog is the structured logger every command writes through. Indicators
// show a spinner while a pipeline step runs, and the target progress view
// tracks bulk operations across many repositories.
package tui
