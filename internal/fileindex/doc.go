// Package fileindex persists the set of source files already processed.
//
// The index is a JSON array of absolute paths. Its default location is derived
// from the working directory, so runs started from different directories keep
// separate indexes. A missing or unreadable index is a cold start: Load logs a
// warning and returns an empty set. Save rewrites the whole file through a
// temporary file and rename.
//
// A Store can hold an advisory lock (a sibling ".lock" file) for the duration
// of a run so two invocations never interleave their saves.
package fileindex
