// Package store persists analysis results in SQLite, one row per analyzed
// attachment, so that a file's metadata can be read back without walking it
// again.
//
// Rows carry the headline fields as columns for listing and the complete
// record as JSON. Writers from separate processes serialize through a lock
// file next to the database.
package store
