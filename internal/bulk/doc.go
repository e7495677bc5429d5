// Package bulk implements the repository management commands that apply one
// change to many GitHub repositories or pull requests at once.
//
// Every command follows the same shape: ask for a token and a search query,
// search, let the operator pick targets, confirm, then process all targets
// concurrently with Run. A failing target is reported with its name and
// never stops the others.
package bulk
