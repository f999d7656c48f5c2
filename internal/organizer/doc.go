// Package organizer runs one pass of the scan/map/link pipeline.
//
// A run takes the index lock, loads the persisted file index, scans the source
// tree for files not yet indexed, maps each to its destination, and links it.
// Per-file failures are recorded in the Report and never abort the run; a file
// whose link failed is dropped from the index so the next run retries it.
// The index is saved once at the end.
//
// Three modes exist:
//   - ModeLink performs the full pipeline.
//   - ModeDryRun computes and reports every mapping but never links, never
//     saves the index, and never writes the journal.
//   - ModeIndexOnly rebuilds the index from an empty set and saves it without
//     linking anything.
//
// Only a failed preflight, an unreadable source root, a held index lock, or a
// failed index save return an error from Run.
package organizer
