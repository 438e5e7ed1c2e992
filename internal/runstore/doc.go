// Package runstore keeps the SQLite ledger of curate and validate runs.
package runstore
