// Package linker materializes destination entries as hard links.
//
// Link creates any missing parent directories and then hard-links the source
// to the destination. An existing destination that already is the source file
// counts as success. Any other existing entry is a collision: it is replaced
// only when Options.Overwrite is set, and reported as ErrDestinationExists
// otherwise. Hard links cannot span filesystems; such failures surface as
// *CrossDeviceError and are never turned into copies.
package linker
