// Package importer applies the check, confirm and insert protocol to
// candidate events.
//
// For every candidate the importer fetches a fresh window of upcoming
// events, runs conflict detection against it, asks a Decider when the
// candidate overlaps something, and inserts it. Candidates are handled one
// at a time in input order. A failed insert is reported and counted; it
// never stops the batch.
//
// The protocol is best effort. Nothing is locked between the fetch and the
// insert, so another writer can still create an overlapping event in
// between.
package importer
