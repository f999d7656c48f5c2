// Package journal records the history of organizer runs in SQLite.
//
// Each run is a row in runs keyed by its run ID; every file the run handled is
// a row in link_entries. The journal is append-only history for the history
// command and never influences which files a run processes; that is the file
// index's job.
package journal
