// Package cli holds the plumbing shared by the command binaries:
// configuration bootstrap, exit codes, run ledger writes and the terminal
// tables printed when stdout is interactive.
package cli
