// Package preflight provides readiness checks for the directories a run
// touches.
//
// The organizer runs the source and destination checks before scanning. A
// failing source check aborts the run; a failing same-filesystem check aborts
// link runs, since every hard link would fail with EXDEV. The CLI "config
// validate" command reports the same checks for the configured data directory.
package preflight
