// Package main hosts the strikeout CLI entrypoint and command graph.
//
// "strikeout run <source> <destination>" links every file in the source tree
// that earlier runs have not seen into the destination tree under a canonical
// episode name. The index, history, and config commands inspect and maintain
// the state that makes those runs incremental.
//
// Configuration resolution, working-directory handling, and logger setup live
// in commandContext so subcommands only translate flags into internal calls.
package main
