// Package report renders the curated dataset as a signed HTML article and,
// when a Chrome binary is available, prints it to an A4 PDF.
package report
