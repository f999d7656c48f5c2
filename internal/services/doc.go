// Package services defines the error markers shared by the organizer and the
// CLI.
//
// Run-aborting failures are wrapped with Wrap so they carry a marker (one of
// the exported sentinels) plus stage and operation context. The CLI maps the
// marker to a process exit code with ExitCode. Per-file failures never pass
// through here; they are recorded in the run report instead.
package services
