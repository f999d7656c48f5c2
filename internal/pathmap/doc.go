// Package pathmap computes where a source file lands in the destination tree.
//
// The relative directory structure under the source root is mirrored under
// the destination root. The final path component is the canonical episode
// name when one can be derived from the file name and its parent directory,
// and the original file name otherwise. Mapping a file that lies under the
// source root never fails.
package pathmap
