// Package scaffold generates WordPress plugins, themes and projects from
// their boilerplate repositories.
//
// Every generator follows the same shape: collect answers, check that the
// target repository and directory are free, then run a pipeline that creates
// the repository from a template, clones it, renames the placeholders and
// publishes the result. The in-place replace and checkout commands reuse the
// same rule sets without touching GitHub.
package scaffold
