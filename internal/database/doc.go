// Package database persists crawl run results and target profiles in
// SQLite. Records are stored as JSON documents with a few indexed columns
// for lookup; the core packages depend only on the save/load contract, not
// on the schema.
package database
