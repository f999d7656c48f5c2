// Package logs reads the strikeout log file for the `strikeout logs` command.
//
// Last returns the trailing lines with bounded memory, and Follow polls for
// appended lines until its context is cancelled, restarting from the top when
// the file is truncated or rotated.
package logs
